// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/embedding"
	"ai-novelforge-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChapterMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing chapter embedding for ChapterId: %s", payload.ChapterId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: payload.ChapterId})
	if err != nil {
		log.Printf("[ERROR] Failed to get chapter %s: %v", payload.ChapterId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if chapter == nil {
		log.Printf("[ERROR] Chapter not found: %s", payload.ChapterId)
		msg.Ack() // Chapter deleted? Ack.
		return
	}

	novel, err := uow.NovelRepository().FindOne(ctx, specification.ByID{ID: chapter.NovelId})
	if err != nil {
		log.Printf("[ERROR] Failed to get novel %s: %v", chapter.NovelId, err)
		msg.Nack()
		return
	}
	novelTitle := "Unknown"
	if novel != nil {
		novelTitle = novel.Title
	} else {
		log.Printf("[WARN] Chapter %s has no novel (implied id %s)", chapter.Id, chapter.NovelId)
	}

	content := fmt.Sprintf(`Novel: %s
Chapter %d: %s

%s`,
		novelTitle,
		chapter.Number,
		chapter.Title,
		chapter.Content,
	)

	log.Printf("[INFO] Generating embeddings for chapter %s (content length: %d)", payload.ChapterId, len(content))

	// ChunkSize 1500 chars with 200 overlap keeps each chunk safely inside
	// the embedding model's context.
	chunks := utils.SplitText(content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newEmbeddings []*entity.ChapterEmbedding

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of chapter %s: %v", i, payload.ChapterId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.ChapterEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Values,
			ChapterId:      chapter.Id,
			NovelId:        chapter.NovelId,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ChapterEmbeddingRepository().DeleteByChapterId(ctx, chapter.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.ChapterEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Chapter processed: %d chunks for ChapterId: %s", len(newEmbeddings), payload.ChapterId)
	msg.Ack()
}
