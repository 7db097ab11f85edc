package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreateNovelRequest struct {
	Title    string         `json:"title" validate:"required"`
	Genre    string         `json:"genre"`
	Premise  string         `json:"premise"`
	Outline  string         `json:"outline"`
	Metadata datatypes.JSON `json:"metadata"`
}

type CreateNovelResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateNovelRequest struct {
	Id       uuid.UUID
	Title    string         `json:"title" validate:"required"`
	Genre    string         `json:"genre"`
	Premise  string         `json:"premise"`
	Metadata datatypes.JSON `json:"metadata"`
}

type UpdateNovelResponse struct {
	Id uuid.UUID `json:"id"`
}

type SaveOutlineRequest struct {
	Id      uuid.UUID
	Outline string `json:"outline" validate:"required"`
}

// StageItem is one arc stage of the parsed outline, for display.
type StageItem struct {
	Label        string `json:"label"`
	Title        string `json:"title"`
	StartChapter int    `json:"start_chapter"`
	EndChapter   int    `json:"end_chapter"`
}

type ShowNovelResponse struct {
	Id             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Genre          string         `json:"genre"`
	Premise        string         `json:"premise"`
	Outline        string         `json:"outline"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	Stages         []StageItem    `json:"stages,omitempty"`
	ChapterCount   int            `json:"chapter_count"`
	PlannedUpTo    int            `json:"planned_up_to"` // highest chapter with per-chapter detail
	ExpansionCount int            `json:"expansion_count"`
	LastExpandedAt *time.Time     `json:"last_expanded_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at"`
}

type NovelListItem struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Genre        string     `json:"genre"`
	ChapterCount int        `json:"chapter_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type SemanticSearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

type SemanticSearchResponse struct {
	ChapterId      uuid.UUID `json:"chapter_id"`
	ChapterNumber  int       `json:"chapter_number"`
	ChapterTitle   string    `json:"chapter_title"`
	Excerpt        string    `json:"excerpt"`
	RelevanceScore float64   `json:"relevance_score"` // 0.0-1.0
}
