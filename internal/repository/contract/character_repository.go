package contract

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CharacterRepository interface {
	Create(ctx context.Context, character *entity.Character) error
	Update(ctx context.Context, character *entity.Character) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Character, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Character, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
