package implementation

import (
	"context"
	"errors"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/mapper"
	"ai-novelforge-be/internal/model"
	"ai-novelforge-be/internal/repository/contract"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorldSettingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CodexMapper
}

func NewWorldSettingRepository(db *gorm.DB) contract.WorldSettingRepository {
	return &WorldSettingRepositoryImpl{
		db:     db,
		mapper: mapper.NewCodexMapper(),
	}
}

func (r *WorldSettingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorldSettingRepositoryImpl) Create(ctx context.Context, setting *entity.WorldSetting) error {
	m := r.mapper.SettingToModel(setting)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*setting = *r.mapper.SettingToEntity(m)
	return nil
}

func (r *WorldSettingRepositoryImpl) Update(ctx context.Context, setting *entity.WorldSetting) error {
	m := r.mapper.SettingToModel(setting)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*setting = *r.mapper.SettingToEntity(m)
	return nil
}

func (r *WorldSettingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.WorldSetting{}, id).Error
}

func (r *WorldSettingRepositoryImpl) DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("novel_id = ?", novelId).Delete(&model.WorldSetting{}).Error
}

func (r *WorldSettingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorldSetting, error) {
	var m model.WorldSetting
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SettingToEntity(&m), nil
}

func (r *WorldSettingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorldSetting, error) {
	var models []*model.WorldSetting
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SettingsToEntities(models), nil
}

func (r *WorldSettingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WorldSetting{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
