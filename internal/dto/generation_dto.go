package dto

import (
	"time"

	"github.com/google/uuid"
)

// Batch lifecycle states, also published to the progress channel.
const (
	BatchStateIdle       = "idle"
	BatchStatePreparing  = "preparing"
	BatchStateGenerating = "generating"
	BatchStatePersisting = "persisting"
	BatchStateCompleted  = "completed"
	BatchStateAborted    = "aborted"
	BatchStateFailed     = "failed"
)

type GenerateBatchRequest struct {
	Count      int    `json:"count" validate:"required,min=1,max=20"`
	UserPrompt string `json:"user_prompt"`
}

// PlanningOutcomeResponse reports one planner invocation inside a batch.
type PlanningOutcomeResponse struct {
	Kind    string `json:"kind"` // "skipped" | "planned" | "failed"
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
	Chapter int    `json:"chapter"` // chapter being generated when the planner ran
}

type EvidenceItem struct {
	Concept string  `json:"concept"`
	Ratio   float64 `json:"ratio"`
}

// ComplianceResponse is advisory: a flagged chapter is still persisted.
type ComplianceResponse struct {
	Compliant  bool           `json:"compliant"`
	StageLabel string         `json:"stage_label,omitempty"`
	StageTitle string         `json:"stage_title,omitempty"`
	Evidence   []EvidenceItem `json:"evidence,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

type GeneratedChapterResult struct {
	Id         uuid.UUID           `json:"id"`
	Number     int                 `json:"number"`
	Title      string              `json:"title"`
	WordCount  int                 `json:"word_count"`
	Compliance *ComplianceResponse `json:"compliance,omitempty"`
}

type BatchResult struct {
	NovelId     uuid.UUID                 `json:"novel_id"`
	State       string                    `json:"state"`
	Requested   int                       `json:"requested"`
	Completed   int                       `json:"completed"`
	AbortReason string                    `json:"abort_reason,omitempty"`
	Chapters    []GeneratedChapterResult  `json:"chapters"`
	Planning    []PlanningOutcomeResponse `json:"planning,omitempty"`
}

// BatchProgress is the snapshot stored in Redis and pushed over the websocket.
type BatchProgress struct {
	NovelId        uuid.UUID `json:"novel_id"`
	State          string    `json:"state"`
	Requested      int       `json:"requested"`
	Completed      int       `json:"completed"`
	CurrentChapter int       `json:"current_chapter,omitempty"`
	Message        string    `json:"message,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
