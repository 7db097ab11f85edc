package contract

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChapterRepository interface {
	Create(ctx context.Context, chapter *entity.Chapter) error
	Update(ctx context.Context, chapter *entity.Chapter) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindLatest returns the highest-numbered chapter of a novel, nil when none exist.
	FindLatest(ctx context.Context, novelId uuid.UUID) (*entity.Chapter, error)
}
