package implementation

import (
	"context"
	"errors"
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/mapper"
	"ai-novelforge-be/internal/model"
	"ai-novelforge-be/internal/repository/contract"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NovelRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NovelMapper
}

func NewNovelRepository(db *gorm.DB) contract.NovelRepository {
	return &NovelRepositoryImpl{
		db:     db,
		mapper: mapper.NewNovelMapper(),
	}
}

func (r *NovelRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NovelRepositoryImpl) Create(ctx context.Context, novel *entity.Novel) error {
	m := r.mapper.ToModel(novel)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*novel = *r.mapper.ToEntity(m)
	return nil
}

func (r *NovelRepositoryImpl) Update(ctx context.Context, novel *entity.Novel) error {
	m := r.mapper.ToModel(novel)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*novel = *r.mapper.ToEntity(m)
	return nil
}

func (r *NovelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Novel{}, id).Error
}

func (r *NovelRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Novel, error) {
	var m model.Novel
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NovelRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Novel, error) {
	var models []*model.Novel
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NovelRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Novel{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NovelRepositoryImpl) SaveOutline(ctx context.Context, id uuid.UUID, outline string) error {
	return r.db.WithContext(ctx).
		Model(&model.Novel{}).
		Where("id = ?", id).
		Update("outline", outline).Error
}

func (r *NovelRepositoryImpl) RecordExpansion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Novel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"expansion_count":  gorm.Expr("expansion_count + 1"),
			"last_expanded_at": time.Now(),
		}).Error
}
