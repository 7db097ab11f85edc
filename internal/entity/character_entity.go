package entity

import (
	"time"

	"github.com/google/uuid"
)

type Character struct {
	Id          uuid.UUID
	NovelId     uuid.UUID
	Name        string
	Role        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
