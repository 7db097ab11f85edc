package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByNovelID struct {
	NovelID uuid.UUID
}

func (s ByNovelID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("novel_id = ?", s.NovelID)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByChapterNumber struct {
	Number int
}

func (s ByChapterNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("number = ?", s.Number)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}
