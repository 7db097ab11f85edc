package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.NovelRepository())
	assert.NotNil(t, uow.ChapterRepository())
	assert.NotNil(t, uow.ChapterEmbeddingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Novel Repository", func(t *testing.T) {
		count, err := uow.NovelRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Novel count: %d", count)
	})

	t.Run("Check Chapter Embedding Repository", func(t *testing.T) {
		count, err := uow.ChapterEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChapterEmbedding count: %d", count)
	})

	t.Run("Novel And Chapter Roundtrip", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()

		novel := &entity.Novel{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "Integration Test Novel",
			Genre:     "测试",
			Outline:   "第1章: 起点\n第2章: 转折\n",
			CreatedAt: time.Now(),
		}
		assert.NoError(t, uow.NovelRepository().Create(ctx, novel))

		chapter := &entity.Chapter{
			Id:        uuid.New(),
			NovelId:   novel.Id,
			Number:    1,
			Title:     "起点",
			Content:   "正文内容。",
			WordCount: 5,
			CreatedAt: time.Now(),
		}
		assert.NoError(t, uow.ChapterRepository().Create(ctx, chapter))

		latest, err := uow.ChapterRepository().FindLatest(ctx, novel.Id)
		assert.NoError(t, err)
		if assert.NotNil(t, latest) {
			assert.Equal(t, 1, latest.Number)
		}

		count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: novel.Id})
		assert.NoError(t, err)
		assert.EqualValues(t, 1, count)

		// Cleanup
		assert.NoError(t, uow.ChapterRepository().DeleteByNovelId(ctx, novel.Id))
		assert.NoError(t, uow.NovelRepository().Delete(ctx, novel.Id))
	})
}
