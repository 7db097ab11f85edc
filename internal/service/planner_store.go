package service

import (
	"context"

	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/story"
	"ai-novelforge-be/pkg/story/planner"

	"github.com/google/uuid"
)

// plannerStore adapts the repository layer to the narrow view the planner
// and the generation loop need: a fresh snapshot, a chapter count, and a
// single-column outline write.
type plannerStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlannerStore(uowFactory unitofwork.RepositoryFactory) planner.Store {
	return &plannerStore{
		uowFactory: uowFactory,
	}
}

func (s *plannerStore) GetNovel(ctx context.Context, id uuid.UUID) (*story.NovelSnapshot, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	novel, err := uow.NovelRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, nil
	}

	characters, err := uow.CharacterRepository().FindAll(ctx, specification.ByNovelID{NovelID: id})
	if err != nil {
		return nil, err
	}
	settings, err := uow.WorldSettingRepository().FindAll(ctx, specification.ByNovelID{NovelID: id})
	if err != nil {
		return nil, err
	}

	snap := &story.NovelSnapshot{
		ID:      novel.Id,
		Title:   novel.Title,
		Genre:   novel.Genre,
		Premise: novel.Premise,
		Outline: novel.Outline,
	}
	for _, c := range characters {
		snap.Characters = append(snap.Characters, story.CharacterBrief{
			Name:        c.Name,
			Role:        c.Role,
			Description: c.Description,
		})
	}
	for _, w := range settings {
		snap.Settings = append(snap.Settings, story.SettingBrief{
			Name:        w.Name,
			Description: w.Description,
		})
	}
	return snap, nil
}

func (s *plannerStore) GetChapterCount(ctx context.Context, id uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: id})
	return int(count), err
}

func (s *plannerStore) SaveOutline(ctx context.Context, id uuid.UUID, text string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NovelRepository().SaveOutline(ctx, id, text)
}
