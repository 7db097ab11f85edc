package unitofwork

import (
	"context"

	"ai-novelforge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NovelRepository() contract.NovelRepository
	ChapterRepository() contract.ChapterRepository
	CharacterRepository() contract.CharacterRepository
	WorldSettingRepository() contract.WorldSettingRepository
	ChapterEmbeddingRepository() contract.ChapterEmbeddingRepository
}
