package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chapter struct {
	Id        uuid.UUID
	NovelId   uuid.UUID
	Number    int
	Title     string
	Content   string
	WordCount int
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
