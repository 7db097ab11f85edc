package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Novel struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	Genre          string
	Premise        string
	Outline        string
	Metadata       datatypes.JSON
	ExpansionCount int
	LastExpandedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
