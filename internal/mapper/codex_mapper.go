package mapper

import (
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/model"

	"gorm.io/gorm"
)

// CodexMapper converts the character and world-setting records that together
// form a novel's codex.
type CodexMapper struct{}

func NewCodexMapper() *CodexMapper {
	return &CodexMapper{}
}

func (m *CodexMapper) CharacterToEntity(e *model.Character) *entity.Character {
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

	return &entity.Character{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Role:        e.Role,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *CodexMapper) CharacterToModel(e *entity.Character) *model.Character {
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

	return &model.Character{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Role:        e.Role,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *CodexMapper) CharactersToEntities(characters []*model.Character) []*entity.Character {
	entities := make([]*entity.Character, len(characters))
	for i, e := range characters {
		entities[i] = m.CharacterToEntity(e)
	}
	return entities
}

func (m *CodexMapper) SettingToEntity(e *model.WorldSetting) *entity.WorldSetting {
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

	return &entity.WorldSetting{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *CodexMapper) SettingToModel(e *entity.WorldSetting) *model.WorldSetting {
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

	return &model.WorldSetting{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *CodexMapper) SettingsToEntities(settings []*model.WorldSetting) []*entity.WorldSetting {
	entities := make([]*entity.WorldSetting, len(settings))
	for i, e := range settings {
		entities[i] = m.SettingToEntity(e)
	}
	return entities
}
