package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChapterEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	ChapterId      uuid.UUID
	NovelId        uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
