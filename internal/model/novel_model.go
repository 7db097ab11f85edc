package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Novel struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title          string         `gorm:"type:varchar(255);not null"`
	Genre          string         `gorm:"type:varchar(100)"`
	Premise        string         `gorm:"type:text"`
	Outline        string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	ExpansionCount int            `gorm:"default:0"`
	LastExpandedAt *time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Novel) TableName() string {
	return "novels"
}
