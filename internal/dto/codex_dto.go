package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCharacterRequest struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

type UpdateCharacterRequest struct {
	Id          uuid.UUID
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

type CharacterResponse struct {
	Id          uuid.UUID  `json:"id"`
	NovelId     uuid.UUID  `json:"novel_id"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type CreateWorldSettingRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type UpdateWorldSettingRequest struct {
	Id          uuid.UUID
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type WorldSettingResponse struct {
	Id          uuid.UUID  `json:"id"`
	NovelId     uuid.UUID  `json:"novel_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
