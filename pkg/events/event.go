package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAPTER_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type codes emitted by the generation engine.
const (
	TypeChapterGenerated = "CHAPTER_GENERATED"
	TypeOutlineExpanded  = "OUTLINE_EXPANDED"
	TypeBatchCompleted   = "BATCH_COMPLETED"
)

// BaseEvent is the generic implementation used across the system.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ChapterGenerated is emitted after a chapter has been persisted.
func ChapterGenerated(novelID uuid.UUID, number int, title string, wordCount int) BaseEvent {
	return BaseEvent{
		Type: TypeChapterGenerated,
		Data: map[string]interface{}{
			"novel_id":   novelID,
			"number":     number,
			"title":      title,
			"word_count": wordCount,
		},
		OccurredAt: time.Now(),
	}
}

// OutlineExpanded is emitted when the planner splices a new act into the outline.
func OutlineExpanded(novelID uuid.UUID, lastPlanned int) BaseEvent {
	return BaseEvent{
		Type: TypeOutlineExpanded,
		Data: map[string]interface{}{
			"novel_id":     novelID,
			"last_planned": lastPlanned,
		},
		OccurredAt: time.Now(),
	}
}

// BatchCompleted is emitted once per finished generation batch.
func BatchCompleted(novelID uuid.UUID, requested, completed int) BaseEvent {
	return BaseEvent{
		Type: TypeBatchCompleted,
		Data: map[string]interface{}{
			"novel_id":  novelID,
			"requested": requested,
			"completed": completed,
		},
		OccurredAt: time.Now(),
	}
}
