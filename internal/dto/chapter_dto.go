package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChapterListItem struct {
	Id        uuid.UUID `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ShowChapterResponse struct {
	Id        uuid.UUID  `json:"id"`
	NovelId   uuid.UUID  `json:"novel_id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	WordCount int        `json:"word_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateChapterRequest struct {
	Id      uuid.UUID
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

type UpdateChapterResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChapterCountResponse struct {
	NovelId uuid.UUID `json:"novel_id"`
	Count   int       `json:"count"`
}

// PublishEmbedChapterMessage is the payload queued for the embedding consumer
// after a chapter is created or edited.
type PublishEmbedChapterMessage struct {
	ChapterId uuid.UUID `json:"chapter_id"`
}
