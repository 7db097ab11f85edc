package contract

import (
	"context"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChapterEmbedding wraps ChapterEmbedding with its similarity score
type ScoredChapterEmbedding struct {
	Embedding  *entity.ChapterEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChapterEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ChapterEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ChapterEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error
	DeleteByNovelId(ctx context.Context, novelId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChapterEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns the closest chunks within one novel by cosine distance.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, novelId uuid.UUID) ([]*entity.ChapterEmbedding, error)
	// SearchSimilarWithScore additionally filters by a minimum similarity threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, novelId uuid.UUID, threshold float64) ([]*ScoredChapterEmbedding, error)
}
