package contract

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NovelRepository interface {
	Create(ctx context.Context, novel *entity.Novel) error
	Update(ctx context.Context, novel *entity.Novel) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Novel, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Novel, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SaveOutline replaces only the outline column, leaving other fields alone.
	SaveOutline(ctx context.Context, id uuid.UUID, outline string) error
	// RecordExpansion bumps the expansion counter and stamps last_expanded_at.
	RecordExpansion(ctx context.Context, id uuid.UUID) error
}
