package implementation

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/mapper"
	"ai-novelforge-be/internal/model"
	"ai-novelforge-be/internal/repository/contract"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChapterEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChapterEmbeddingMapper
}

func NewChapterEmbeddingRepository(db *gorm.DB) contract.ChapterEmbeddingRepository {
	return &ChapterEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChapterEmbeddingMapper(),
	}
}

func (r *ChapterEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChapterEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ChapterEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChapterEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChapterEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChapterEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ChapterEmbedding{}, id).Error
}

func (r *ChapterEmbeddingRepositoryImpl) DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chapter_id = ?", chapterId).Delete(&model.ChapterEmbedding{}).Error
}

func (r *ChapterEmbeddingRepositoryImpl) DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("novel_id = ?", novelId).Delete(&model.ChapterEmbedding{}).Error
}

func (r *ChapterEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChapterEmbedding, error) {
	var models []*model.ChapterEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChapterEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChapterEmbedding{}).Count(&count).Error
	return count, err
}

func (r *ChapterEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, novelId uuid.UUID) ([]*entity.ChapterEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.ChapterEmbedding

	// pgvector cosine distance: embedding_value <=> vector
	err := r.db.WithContext(ctx).
		Where("novel_id = ?", novelId).
		Where("deleted_at IS NULL").
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so similarity is 1 - distance.
func (r *ChapterEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, novelId uuid.UUID, threshold float64) ([]*contract.ScoredChapterEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ChapterEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chapter_embeddings").
		Select("chapter_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("novel_id = ?", novelId).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChapterEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChapterEmbedding{
			Embedding:  r.mapper.ToEntity(&res.ChapterEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
