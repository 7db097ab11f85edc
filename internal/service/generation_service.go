// FILE: internal/service/generation_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/pkg/logger"
	"ai-novelforge-be/internal/repository/memory"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/events"
	"ai-novelforge-be/pkg/llm"
	pktNats "ai-novelforge-be/pkg/nats"
	"ai-novelforge-be/pkg/story/leakage"
	"ai-novelforge-be/pkg/story/outline"
	"ai-novelforge-be/pkg/story/planner"
	"ai-novelforge-be/pkg/story/prompt"

	"github.com/google/uuid"
)

// ErrBatchInProgress is returned when a second batch is requested while one
// is still running for the same novel.
var ErrBatchInProgress = errors.New("a generation batch is already running for this novel")

// previousTailRunes bounds how much of the prior chapter's ending feeds the
// next chapter's prompt.
const previousTailRunes = 500

var chapterTitleRe = regexp.MustCompile(`^第\s*(\d+)\s*章\s*[:：]?\s*(.*)$`)

type IGenerationService interface {
	// GenerateBatch runs the full per-chapter loop: plan, prompt, generate,
	// persist, check, publish. It returns the batch report, not an error, for
	// partial completions; errors are reserved for preconditions.
	GenerateBatch(ctx context.Context, userId, novelId uuid.UUID, req *dto.GenerateBatchRequest) (*dto.BatchResult, error)

	// PlanNextAct triggers one planning pass outside a batch.
	PlanNextAct(ctx context.Context, userId, novelId uuid.UUID) (*dto.PlanningOutcomeResponse, error)

	// CheckCompliance re-runs the leakage check against a stored chapter.
	CheckCompliance(ctx context.Context, userId, novelId uuid.UUID, chapterNumber int) (*dto.ComplianceResponse, error)
}

type generationService struct {
	uowFactory       unitofwork.RepositoryFactory
	store            planner.Store
	llm              llm.LLMProvider
	planner          *planner.Planner
	checker          *leakage.Checker
	prompts          *prompt.Builder
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	progress         IProgressService
	locks            *memory.BatchLockRegistry
	logger           logger.ILogger
	resetDelay       time.Duration
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	store planner.Store,
	llmProvider llm.LLMProvider,
	actPlanner *planner.Planner,
	checker *leakage.Checker,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	progress IProgressService,
	locks *memory.BatchLockRegistry,
	sysLogger logger.ILogger,
	resetDelay time.Duration,
) IGenerationService {
	return &generationService{
		uowFactory:       uowFactory,
		store:            store,
		llm:              llmProvider,
		planner:          actPlanner,
		checker:          checker,
		prompts:          prompt.NewBuilder(),
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		progress:         progress,
		locks:            locks,
		logger:           sysLogger,
		resetDelay:       resetDelay,
	}
}

func (g *generationService) GenerateBatch(ctx context.Context, userId, novelId uuid.UUID, req *dto.GenerateBatchRequest) (*dto.BatchResult, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
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

	if !g.locks.Acquire(novelId) {
		return nil, ErrBatchInProgress
	}
	defer g.locks.Release(novelId)

	result := &dto.BatchResult{
		NovelId:   novelId,
		Requested: req.Count,
		Chapters:  []dto.GeneratedChapterResult{},
	}

	g.publishProgress(ctx, novelId, dto.BatchStatePreparing, req.Count, 0, 0, "")

	for i := 0; i < req.Count; i++ {
		if ctx.Err() != nil {
			result.State = dto.BatchStateAborted
			result.AbortReason = "request canceled"
			break
		}

		// Chapter count is re-read every iteration so concurrent edits and
		// the chapters this loop itself persisted are both observed.
		count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: novelId})
		if err != nil {
			result.State = dto.BatchStateFailed
			result.AbortReason = fmt.Sprintf("chapter count: %v", err)
			break
		}
		nextNumber := int(count) + 1

		// Planning runs before every chapter. A failed planning pass is
		// logged and reported but never blocks generation.
		outcome := g.planner.MaybePlanNextAct(ctx, novelId)
		result.Planning = append(result.Planning, planningResponse(outcome, nextNumber))
		switch {
		case outcome.IsPlanned():
			if err := uow.NovelRepository().RecordExpansion(ctx, novelId); err != nil {
				g.logger.Warn("Generation", "Failed to record expansion", map[string]interface{}{
					"novel_id": novelId, "error": err.Error(),
				})
			}
			planned := outline.Parse(outcome.Outline)
			g.publishEvent(ctx, events.OutlineExpanded(novelId, planned.LastPlanned()))
		case outcome.IsFailed():
			g.logger.Warn("Generation", "Planning failed, continuing batch", map[string]interface{}{
				"novel_id": novelId, "error": outcome.Err.Error(),
			})
		}

		// Snapshot is re-fetched after planning so a freshly spliced outline
		// feeds this chapter's prompt.
		snap, err := g.store.GetNovel(ctx, novelId)
		if err != nil || snap == nil {
			result.State = dto.BatchStateFailed
			result.AbortReason = "novel disappeared mid-batch"
			break
		}
		doc := outline.Parse(snap.Outline)

		previousTail, err := g.previousTail(ctx, uow, novelId)
		if err != nil {
			result.State = dto.BatchStateFailed
			result.AbortReason = fmt.Sprintf("load previous chapter: %v", err)
			break
		}

		in := prompt.ChapterInput{
			ChapterNumber: nextNumber,
			Stage:         doc.StageForChapter(nextNumber),
			ChapterDetail: doc.DetailForChapter(nextNumber),
			PreviousTail:  previousTail,
		}
		if i == 0 {
			// The author's ad-hoc instruction applies to the first chapter
			// only; repeating it would drag every chapter toward one beat.
			in.UserPrompt = req.UserPrompt
		}

		g.publishProgress(ctx, novelId, dto.BatchStateGenerating, req.Count, result.Completed, nextNumber, "")

		text, err := g.llm.Generate(ctx, g.prompts.Chapter(snap, in))
		if err != nil {
			result.State = dto.BatchStateFailed
			result.AbortReason = fmt.Sprintf("generate chapter %d: %v", nextNumber, err)
			break
		}
		if strings.TrimSpace(text) == "" {
			result.State = dto.BatchStateAborted
			result.AbortReason = fmt.Sprintf("model returned empty chapter %d", nextNumber)
			break
		}

		title, body := splitChapterTitle(text, nextNumber)

		g.publishProgress(ctx, novelId, dto.BatchStatePersisting, req.Count, result.Completed, nextNumber, "")

		chapter := entity.Chapter{
			Id:        uuid.New(),
			NovelId:   novelId,
			Number:    nextNumber,
			Title:     title,
			Content:   body,
			WordCount: utf8.RuneCountInString(body),
			CreatedAt: time.Now(),
		}
		if err := uow.ChapterRepository().Create(ctx, &chapter); err != nil {
			result.State = dto.BatchStateFailed
			result.AbortReason = fmt.Sprintf("persist chapter %d: %v", nextNumber, err)
			break
		}

		chapterResult := dto.GeneratedChapterResult{
			Id:        chapter.Id,
			Number:    chapter.Number,
			Title:     chapter.Title,
			WordCount: chapter.WordCount,
		}

		// Compliance is advisory: a flagged chapter stays persisted and the
		// report travels with the batch result.
		report := g.checker.Check(body, nextNumber, &doc)
		chapterResult.Compliance = complianceResponse(report)
		if !report.Compliant {
			g.logger.Warn("Generation", "Chapter leaks future plot", map[string]interface{}{
				"novel_id": novelId, "chapter": nextNumber, "reason": report.Reason,
			})
		}

		payload, _ := json.Marshal(dto.PublishEmbedChapterMessage{ChapterId: chapter.Id})
		if err := g.publisherService.Publish(ctx, payload); err != nil {
			g.logger.Warn("Generation", "Failed to queue embedding", map[string]interface{}{
				"chapter_id": chapter.Id, "error": err.Error(),
			})
		}
		g.publishEvent(ctx, events.ChapterGenerated(novelId, chapter.Number, chapter.Title, chapter.WordCount))

		result.Chapters = append(result.Chapters, chapterResult)
		result.Completed++
	}

	if result.State == "" {
		result.State = dto.BatchStateCompleted
	}

	g.publishEvent(ctx, events.BatchCompleted(novelId, result.Requested, result.Completed))
	g.publishProgress(ctx, novelId, result.State, req.Count, result.Completed, 0, result.AbortReason)
	g.progress.ScheduleReset(novelId, g.resetDelay)

	return result, nil
}

func (g *generationService) PlanNextAct(ctx context.Context, userId, novelId uuid.UUID) (*dto.PlanningOutcomeResponse, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
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

	count, err := uow.ChapterRepository().Count(ctx, specification.ByNovelID{NovelID: novelId})
	if err != nil {
		return nil, err
	}

	outcome := g.planner.MaybePlanNextAct(ctx, novelId)
	if outcome.IsPlanned() {
		if err := uow.NovelRepository().RecordExpansion(ctx, novelId); err != nil {
			g.logger.Warn("Generation", "Failed to record expansion", map[string]interface{}{
				"novel_id": novelId, "error": err.Error(),
			})
		}
		planned := outline.Parse(outcome.Outline)
		g.publishEvent(ctx, events.OutlineExpanded(novelId, planned.LastPlanned()))
	}

	res := planningResponse(outcome, int(count)+1)
	return &res, nil
}

func (g *generationService) CheckCompliance(ctx context.Context, userId, novelId uuid.UUID, chapterNumber int) (*dto.ComplianceResponse, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
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

	chapter, err := uow.ChapterRepository().FindOne(ctx,
		specification.ByNovelID{NovelID: novelId},
		specification.ByChapterNumber{Number: chapterNumber},
	)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	doc := outline.Parse(novel.Outline)
	report := g.checker.Check(chapter.Content, chapterNumber, &doc)
	return complianceResponse(report), nil
}

// previousTail returns the closing runes of the latest chapter, empty when the
// novel has none yet.
func (g *generationService) previousTail(ctx context.Context, uow unitofwork.UnitOfWork, novelId uuid.UUID) (string, error) {
	latest, err := uow.ChapterRepository().FindLatest(ctx, novelId)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", nil
	}

	runes := []rune(latest.Content)
	if len(runes) <= previousTailRunes {
		return latest.Content, nil
	}
	return string(runes[len(runes)-previousTailRunes:]), nil
}

func (g *generationService) publishProgress(ctx context.Context, novelId uuid.UUID, state string, requested, completed, current int, message string) {
	g.progress.Publish(ctx, dto.BatchProgress{
		NovelId:        novelId,
		State:          state,
		Requested:      requested,
		Completed:      completed,
		CurrentChapter: current,
		Message:        message,
	})
}

func (g *generationService) publishEvent(ctx context.Context, evt events.BaseEvent) {
	if g.eventPublisher == nil {
		return
	}
	if err := g.eventPublisher.Publish(ctx, evt); err != nil {
		g.logger.Warn("Generation", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(), "error": err.Error(),
		})
	}
}

// splitChapterTitle separates the "第N章: 标题" heading the prompt demands from
// the prose. Models that skip the heading get a plain numbered title.
func splitChapterTitle(text string, number int) (title, body string) {
	trimmed := strings.TrimSpace(text)
	firstLine := trimmed
	rest := ""
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine = strings.TrimSpace(trimmed[:idx])
		rest = strings.TrimSpace(trimmed[idx+1:])
	}

	if m := chapterTitleRe.FindStringSubmatch(firstLine); m != nil {
		title = strings.TrimSpace(m[2])
		if title == "" {
			title = fmt.Sprintf("第%d章", number)
		}
		if rest == "" {
			rest = trimmed
		}
		return title, rest
	}

	return fmt.Sprintf("第%d章", number), trimmed
}

func planningResponse(outcome planner.Outcome, chapter int) dto.PlanningOutcomeResponse {
	res := dto.PlanningOutcomeResponse{
		Kind:    string(outcome.Kind),
		Reason:  outcome.Reason,
		Chapter: chapter,
	}
	if outcome.Err != nil {
		res.Error = outcome.Err.Error()
	}
	return res
}

func complianceResponse(report leakage.Report) *dto.ComplianceResponse {
	res := &dto.ComplianceResponse{
		Compliant:  report.Compliant,
		StageLabel: report.StageLabel,
		StageTitle: report.StageTitle,
		Reason:     report.Reason,
	}
	for _, ev := range report.Evidence {
		res.Evidence = append(res.Evidence, dto.EvidenceItem{
			Concept: ev.Concept,
			Ratio:   ev.Ratio,
		})
	}
	return res
}
