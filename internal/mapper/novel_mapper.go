package mapper

import (
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/model"

	"gorm.io/gorm"
)

type NovelMapper struct{}

func NewNovelMapper() *NovelMapper {
	return &NovelMapper{}
}

func (m *NovelMapper) ToEntity(e *model.Novel) *entity.Novel {
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

	return &entity.Novel{
		Id:             e.Id,
		UserId:         e.UserId,
		Title:          e.Title,
		Genre:          e.Genre,
		Premise:        e.Premise,
		Outline:        e.Outline,
		Metadata:       e.Metadata,
		ExpansionCount: e.ExpansionCount,
		LastExpandedAt: e.LastExpandedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *NovelMapper) ToModel(e *entity.Novel) *model.Novel {
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

	return &model.Novel{
		Id:             e.Id,
		UserId:         e.UserId,
		Title:          e.Title,
		Genre:          e.Genre,
		Premise:        e.Premise,
		Outline:        e.Outline,
		Metadata:       e.Metadata,
		ExpansionCount: e.ExpansionCount,
		LastExpandedAt: e.LastExpandedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *NovelMapper) ToEntities(novels []*model.Novel) []*entity.Novel {
	entities := make([]*entity.Novel, len(novels))
	for i, e := range novels {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
