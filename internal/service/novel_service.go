// FILE: internal/service/novel_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/embedding"
	"ai-novelforge-be/pkg/events"
	pktNats "ai-novelforge-be/pkg/nats"
	"ai-novelforge-be/pkg/story/outline"

	"github.com/google/uuid"
)

type INovelService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNovelRequest) (*dto.CreateNovelResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNovelResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NovelListItem, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNovelRequest) (*dto.UpdateNovelResponse, error)
	SaveOutline(ctx context.Context, userId uuid.UUID, req *dto.SaveOutlineRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	SemanticSearch(ctx context.Context, userId uuid.UUID, novelId uuid.UUID, req *dto.SemanticSearchRequest) ([]*dto.SemanticSearchResponse, error)
}

type novelService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewNovelService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) INovelService {
	return &novelService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (c *novelService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNovelRequest) (*dto.CreateNovelResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc := outline.Parse(req.Outline)
	novel := entity.Novel{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		Genre:     req.Genre,
		Premise:   req.Premise,
		Outline:   doc.Serialize(),
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	if err := uow.NovelRepository().Create(ctx, &novel); err != nil {
		return nil, err
	}

	return &dto.CreateNovelResponse{
		Id: novel.Id,
	}, nil
}

func (c *novelService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNovelResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, nil // Not found
	}

	count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: id})
	if err != nil {
		return nil, err
	}

	doc := outline.Parse(novel.Outline)
	stages := make([]dto.StageItem, 0, len(doc.Stages))
	for _, s := range doc.Stages {
		stages = append(stages, dto.StageItem{
			Label:        s.Label,
			Title:        s.Title,
			StartChapter: s.Range.Start,
			EndChapter:   s.Range.End,
		})
	}

	return &dto.ShowNovelResponse{
		Id:             novel.Id,
		Title:          novel.Title,
		Genre:          novel.Genre,
		Premise:        novel.Premise,
		Outline:        novel.Outline,
		Metadata:       novel.Metadata,
		Stages:         stages,
		ChapterCount:   int(count),
		PlannedUpTo:    doc.LastPlanned(),
		ExpansionCount: novel.ExpansionCount,
		LastExpandedAt: novel.LastExpandedAt,
		CreatedAt:      novel.CreatedAt,
		UpdatedAt:      novel.UpdatedAt,
	}, nil
}

func (c *novelService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NovelListItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	novels, err := uow.NovelRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NovelListItem, 0, len(novels))
	for _, novel := range novels {
		count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: novel.Id})
		if err != nil {
			return nil, err
		}
		items = append(items, &dto.NovelListItem{
			Id:           novel.Id,
			Title:        novel.Title,
			Genre:        novel.Genre,
			ChapterCount: int(count),
			CreatedAt:    novel.CreatedAt,
			UpdatedAt:    novel.UpdatedAt,
		})
	}
	return items, nil
}

func (c *novelService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNovelRequest) (*dto.UpdateNovelResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, nil
	}

	now := time.Now()
	novel.Title = req.Title
	novel.Genre = req.Genre
	novel.Premise = req.Premise
	if req.Metadata != nil {
		novel.Metadata = req.Metadata
	}
	novel.UpdatedAt = &now

	if err := uow.NovelRepository().Update(ctx, novel); err != nil {
		return nil, err
	}

	return &dto.UpdateNovelResponse{
		Id: novel.Id,
	}, nil
}

// SaveOutline normalizes the submitted outline (loose chapter markers, legacy
// section order) before persisting, so downstream parsing sees one format.
func (c *novelService) SaveOutline(ctx context.Context, userId uuid.UUID, req *dto.SaveOutlineRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if novel == nil {
		return nil
	}

	doc := outline.Parse(req.Outline)
	return uow.NovelRepository().SaveOutline(ctx, req.Id, doc.Serialize())
}

func (c *novelService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if novel == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NovelRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.ChapterRepository().DeleteByNovelId(ctx, id); err != nil {
		return err
	}
	if err := uow.CharacterRepository().DeleteByNovelId(ctx, id); err != nil {
		return err
	}
	if err := uow.WorldSettingRepository().DeleteByNovelId(ctx, id); err != nil {
		return err
	}
	if err := uow.ChapterEmbeddingRepository().DeleteByNovelId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *novelService) SemanticSearch(ctx context.Context, userId uuid.UUID, novelId uuid.UUID, req *dto.SemanticSearchRequest) ([]*dto.SemanticSearchResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: novelId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, nil
	}

	res, err := c.embeddingProvider.Generate(req.Query, embedding.TaskQuery)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	const threshold = 0.35
	scored, err := uow.ChapterEmbeddingRepository().SearchSimilarWithScore(ctx, res.Values, limit, novelId, threshold)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return []*dto.SemanticSearchResponse{}, nil
	}

	// Resolve chapters, deduplicated and ordered by relevance.
	response := make([]*dto.SemanticSearchResponse, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, sr := range scored {
		if seen[sr.Embedding.ChapterId] {
			continue
		}
		seen[sr.Embedding.ChapterId] = true

		chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: sr.Embedding.ChapterId})
		if err != nil {
			return nil, err
		}
		if chapter == nil {
			continue
		}

		response = append(response, &dto.SemanticSearchResponse{
			ChapterId:      chapter.Id,
			ChapterNumber:  chapter.Number,
			ChapterTitle:   chapter.Title,
			Excerpt:        sr.Embedding.Document,
			RelevanceScore: sr.Similarity,
		})
	}

	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "SEMANTIC_SEARCH_PERFORMED",
			Data: map[string]interface{}{
				"novel_id": novelId,
				"user_id":  userId,
				"results":  len(response),
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SEMANTIC_SEARCH_PERFORMED event: %v\n", err)
		}
	}

	return response, nil
}
