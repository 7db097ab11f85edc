// FILE: internal/service/chapter_service.go
package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChapterService interface {
	List(ctx context.Context, userId, novelId uuid.UUID, limit, offset int) ([]*dto.ChapterListItem, error)
	Count(ctx context.Context, userId, novelId uuid.UUID) (*dto.ChapterCountResponse, error)
	Show(ctx context.Context, userId, novelId, id uuid.UUID) (*dto.ShowChapterResponse, error)
	Update(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateChapterRequest) (*dto.UpdateChapterResponse, error)
	Delete(ctx context.Context, userId, novelId, id uuid.UUID) error
}

type chapterService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewChapterService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService) IChapterService {
	return &chapterService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *chapterService) ownedNovel(ctx context.Context, uow unitofwork.UnitOfWork, userId, novelId uuid.UUID) (bool, error) {
	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: novelId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	return novel != nil, nil
}

func (c *chapterService) List(ctx context.Context, userId, novelId uuid.UUID, limit, offset int) ([]*dto.ChapterListItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	chapters, err := uow.ChapterRepository().FindAll(ctx,
		specification.ByNovelID{NovelID: novelId},
		specification.OrderBy{Field: "number", Desc: false},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChapterListItem, len(chapters))
	for i, chapter := range chapters {
		items[i] = &dto.ChapterListItem{
			Id:        chapter.Id,
			Number:    chapter.Number,
			Title:     chapter.Title,
			WordCount: chapter.WordCount,
			CreatedAt: chapter.CreatedAt,
		}
	}
	return items, nil
}

func (c *chapterService) Count(ctx context.Context, userId, novelId uuid.UUID) (*dto.ChapterCountResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: novelId})
	if err != nil {
		return nil, err
	}

	return &dto.ChapterCountResponse{
		NovelId: novelId,
		Count:   int(count),
	}, nil
}

func (c *chapterService) Show(ctx context.Context, userId, novelId, id uuid.UUID) (*dto.ShowChapterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	chapter, err := uow.ChapterRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	return &dto.ShowChapterResponse{
		Id:        chapter.Id,
		NovelId:   chapter.NovelId,
		Number:    chapter.Number,
		Title:     chapter.Title,
		Content:   chapter.Content,
		WordCount: chapter.WordCount,
		CreatedAt: chapter.CreatedAt,
		UpdatedAt: chapter.UpdatedAt,
	}, nil
}

func (c *chapterService) Update(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateChapterRequest) (*dto.UpdateChapterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	chapter, err := uow.ChapterRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	now := time.Now()
	if req.Title != "" {
		chapter.Title = req.Title
	}
	chapter.Content = req.Content
	chapter.WordCount = utf8.RuneCountInString(req.Content)
	chapter.UpdatedAt = &now

	if err := uow.ChapterRepository().Update(ctx, chapter); err != nil {
		return nil, err
	}

	// Edited content needs fresh embeddings.
	payload, _ := json.Marshal(dto.PublishEmbedChapterMessage{ChapterId: chapter.Id})
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.UpdateChapterResponse{
		Id: chapter.Id,
	}, nil
}

func (c *chapterService) Delete(ctx context.Context, userId, novelId, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return err
	}

	chapter, err := uow.ChapterRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return err
	}
	if chapter == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChapterRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.ChapterEmbeddingRepository().DeleteByChapterId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}
