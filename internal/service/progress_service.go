package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/pkg/logger"
	"ai-novelforge-be/internal/websocket"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const progressTTL = time.Hour

type IProgressService interface {
	Publish(ctx context.Context, progress dto.BatchProgress)
	Get(ctx context.Context, novelId uuid.UUID) (*dto.BatchProgress, error)
	// ScheduleReset flips the stored state back to idle after the grace delay,
	// giving pollers a chance to observe the terminal state first.
	ScheduleReset(novelId uuid.UUID, delay time.Duration)
}

type progressService struct {
	rdb    *redis.Client
	hub    *websocket.Hub
	logger logger.ILogger
}

func NewProgressService(rdb *redis.Client, hub *websocket.Hub, log logger.ILogger) IProgressService {
	return &progressService{
		rdb:    rdb,
		hub:    hub,
		logger: log,
	}
}

func progressKey(novelId uuid.UUID) string {
	return fmt.Sprintf("novel:%s:progress", novelId)
}

func (s *progressService) Publish(ctx context.Context, progress dto.BatchProgress) {
	progress.UpdatedAt = time.Now()

	data, err := json.Marshal(progress)
	if err != nil {
		s.logger.Error("Progress", "Failed to marshal progress", map[string]interface{}{"error": err.Error()})
		return
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, progressKey(progress.NovelId), data, progressTTL).Err(); err != nil {
			s.logger.Warn("Progress", "Failed to store progress in Redis", map[string]interface{}{
				"novel_id": progress.NovelId,
				"error":    err.Error(),
			})
		}
	}

	if s.hub != nil {
		s.hub.BroadcastProgress(progress.NovelId, data)
	}
}

func (s *progressService) Get(ctx context.Context, novelId uuid.UUID) (*dto.BatchProgress, error) {
	if s.rdb == nil {
		return &dto.BatchProgress{NovelId: novelId, State: dto.BatchStateIdle}, nil
	}

	data, err := s.rdb.Get(ctx, progressKey(novelId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &dto.BatchProgress{NovelId: novelId, State: dto.BatchStateIdle}, nil
		}
		return nil, err
	}

	var progress dto.BatchProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *progressService) ScheduleReset(novelId uuid.UUID, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.Publish(context.Background(), dto.BatchProgress{
			NovelId: novelId,
			State:   dto.BatchStateIdle,
		})
	})
}
