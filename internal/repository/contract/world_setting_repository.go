package contract

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorldSettingRepository interface {
	Create(ctx context.Context, setting *entity.WorldSetting) error
	Update(ctx context.Context, setting *entity.WorldSetting) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorldSetting, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorldSetting, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
