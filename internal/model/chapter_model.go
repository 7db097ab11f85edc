package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelId   uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_chapters_novel_number"`
	Number    int            `gorm:"not null;uniqueIndex:idx_chapters_novel_number"`
	Title     string         `gorm:"type:varchar(255)"`
	Content   string         `gorm:"type:text"`
	WordCount int            `gorm:"default:0"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Chapter) TableName() string {
	return "chapters"
}
