package mapper

import (
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/model"

	"gorm.io/gorm"
)

type ChapterMapper struct{}

func NewChapterMapper() *ChapterMapper {
	return &ChapterMapper{}
}

func (m *ChapterMapper) ToEntity(e *model.Chapter) *entity.Chapter {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chapter{
		Id:        e.Id,
		NovelId:   e.NovelId,
		Number:    e.Number,
		Title:     e.Title,
		Content:   e.Content,
		WordCount: e.WordCount,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *ChapterMapper) ToModel(e *entity.Chapter) *model.Chapter {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Chapter{
		Id:        e.Id,
		NovelId:   e.NovelId,
		Number:    e.Number,
		Title:     e.Title,
		Content:   e.Content,
		WordCount: e.WordCount,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChapterMapper) ToEntities(chapters []*model.Chapter) []*entity.Chapter {
	entities := make([]*entity.Chapter, len(chapters))
	for i, e := range chapters {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
