package mapper

import (
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChapterEmbeddingMapper struct{}

func NewChapterEmbeddingMapper() *ChapterEmbeddingMapper {
	return &ChapterEmbeddingMapper{}
}

func (m *ChapterEmbeddingMapper) ToEntity(e *model.ChapterEmbedding) *entity.ChapterEmbedding {
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

	return &entity.ChapterEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ChapterId:      e.ChapterId,
		NovelId:        e.NovelId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *ChapterEmbeddingMapper) ToModel(e *entity.ChapterEmbedding) *model.ChapterEmbedding {
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

	return &model.ChapterEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ChapterId:      e.ChapterId,
		NovelId:        e.NovelId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ChapterEmbeddingMapper) ToEntities(embeddings []*model.ChapterEmbedding) []*entity.ChapterEmbedding {
	entities := make([]*entity.ChapterEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *ChapterEmbeddingMapper) ToModels(embeddings []*entity.ChapterEmbedding) []*model.ChapterEmbedding {
	models := make([]*model.ChapterEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
