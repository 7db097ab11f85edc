package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/pkg/logger"
	"ai-novelforge-be/internal/repository/contract"
	"ai-novelforge-be/internal/repository/memory"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/pkg/llm"
	"ai-novelforge-be/pkg/story"
	"ai-novelforge-be/pkg/story/leakage"
	"ai-novelforge-be/pkg/story/outline"
	"ai-novelforge-be/pkg/story/planner"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ----- Fakes -----

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

var _ logger.ILogger = nopLogger{}

type fakeNovelRepo struct {
	novel          *entity.Novel
	expansionCalls int
}

func (r *fakeNovelRepo) Create(context.Context, *entity.Novel) error { return nil }
func (r *fakeNovelRepo) Update(context.Context, *entity.Novel) error { return nil }
func (r *fakeNovelRepo) Delete(context.Context, uuid.UUID) error     { return nil }
func (r *fakeNovelRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Novel, error) {
	return r.novel, nil
}
func (r *fakeNovelRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Novel, error) {
	return nil, nil
}
func (r *fakeNovelRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeNovelRepo) SaveOutline(_ context.Context, _ uuid.UUID, text string) error {
	if r.novel != nil {
		r.novel.Outline = text
	}
	return nil
}
func (r *fakeNovelRepo) RecordExpansion(context.Context, uuid.UUID) error {
	r.expansionCalls++
	return nil
}

type fakeChapterRepo struct {
	chapters []*entity.Chapter
}

func (r *fakeChapterRepo) Create(_ context.Context, chapter *entity.Chapter) error {
	r.chapters = append(r.chapters, chapter)
	return nil
}
func (r *fakeChapterRepo) Update(context.Context, *entity.Chapter) error     { return nil }
func (r *fakeChapterRepo) Delete(context.Context, uuid.UUID) error           { return nil }
func (r *fakeChapterRepo) DeleteByNovelId(context.Context, uuid.UUID) error  { return nil }
func (r *fakeChapterRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Chapter, error) {
	for _, spec := range specs {
		if byNumber, ok := spec.(specification.ByChapterNumber); ok {
			for _, c := range r.chapters {
				if c.Number == byNumber.Number {
					return c, nil
				}
			}
			return nil, nil
		}
	}
	if len(r.chapters) > 0 {
		return r.chapters[0], nil
	}
	return nil, nil
}
func (r *fakeChapterRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Chapter, error) {
	return r.chapters, nil
}
func (r *fakeChapterRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.chapters)), nil
}
func (r *fakeChapterRepo) FindLatest(context.Context, uuid.UUID) (*entity.Chapter, error) {
	var latest *entity.Chapter
	for _, c := range r.chapters {
		if latest == nil || c.Number > latest.Number {
			latest = c
		}
	}
	return latest, nil
}

type fakeUow struct {
	novels   *fakeNovelRepo
	chapters *fakeChapterRepo
}

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error               { return nil }
func (u *fakeUow) Rollback() error             { return nil }

func (u *fakeUow) NovelRepository() contract.NovelRepository     { return u.novels }
func (u *fakeUow) ChapterRepository() contract.ChapterRepository { return u.chapters }
func (u *fakeUow) CharacterRepository() contract.CharacterRepository {
	return nil
}
func (u *fakeUow) WorldSettingRepository() contract.WorldSettingRepository {
	return nil
}
func (u *fakeUow) ChapterEmbeddingRepository() contract.ChapterEmbeddingRepository {
	return nil
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeSnapshotStore struct {
	uow *fakeUow
}

func (s *fakeSnapshotStore) GetNovel(_ context.Context, _ uuid.UUID) (*story.NovelSnapshot, error) {
	n := s.uow.novels.novel
	if n == nil {
		return nil, nil
	}
	return &story.NovelSnapshot{
		ID:      n.Id,
		Title:   n.Title,
		Genre:   n.Genre,
		Premise: n.Premise,
		Outline: n.Outline,
	}, nil
}

func (s *fakeSnapshotStore) GetChapterCount(context.Context, uuid.UUID) (int, error) {
	return len(s.uow.chapters.chapters), nil
}

func (s *fakeSnapshotStore) SaveOutline(ctx context.Context, id uuid.UUID, text string) error {
	return s.uow.novels.SaveOutline(ctx, id, text)
}

type queuedLLM struct {
	responses []string
	err       error
	prompts   []string
}

func (f *queuedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if len(history) > 0 {
		return f.generate(history[len(history)-1].Content)
	}
	return f.generate("")
}

func (f *queuedLLM) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, opts ...llm.Option) error {
	text, err := f.Chat(ctx, history, opts...)
	if err != nil {
		return err
	}
	return handler(text)
}

func (f *queuedLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	return f.generate(prompt)
}

func (f *queuedLLM) generate(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no queued response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type recordingProgress struct {
	states      []string
	resetCalled bool
}

func (p *recordingProgress) Publish(_ context.Context, progress dto.BatchProgress) {
	p.states = append(p.states, progress.State)
}

func (p *recordingProgress) Get(context.Context, uuid.UUID) (*dto.BatchProgress, error) {
	return nil, nil
}

func (p *recordingProgress) ScheduleReset(uuid.UUID, time.Duration) {
	p.resetCalled = true
}

type recordingPublisher struct {
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

// ----- Harness -----

type generationHarness struct {
	service   IGenerationService
	uow       *fakeUow
	llm       *queuedLLM
	progress  *recordingProgress
	publisher *recordingPublisher
	locks     *memory.BatchLockRegistry
	userId    uuid.UUID
	novelId   uuid.UUID
}

func newGenerationHarness(outlineText string, checker *leakage.Checker) *generationHarness {
	userId := uuid.New()
	novelId := uuid.New()

	uow := &fakeUow{
		novels: &fakeNovelRepo{novel: &entity.Novel{
			Id:      novelId,
			UserId:  userId,
			Title:   "测试小说",
			Genre:   "科幻",
			Outline: outlineText,
		}},
		chapters: &fakeChapterRepo{},
	}

	provider := &queuedLLM{}
	store := &fakeSnapshotStore{uow: uow}
	actPlanner := planner.New(store, provider, nil)
	if checker == nil {
		checker = leakage.NewChecker()
	}

	progress := &recordingProgress{}
	publisher := &recordingPublisher{}
	locks := memory.NewBatchLockRegistry()

	svc := NewGenerationService(
		&fakeUowFactory{uow: uow},
		store,
		provider,
		actPlanner,
		checker,
		publisher,
		nil,
		progress,
		locks,
		nopLogger{},
		0,
	)

	return &generationHarness{
		service:   svc,
		uow:       uow,
		llm:       provider,
		progress:  progress,
		publisher: publisher,
		locks:     locks,
		userId:    userId,
		novelId:   novelId,
	}
}

// simpleOutline has planned chapters but no arc stages, so every planning pass
// skips and chapter generation runs without act expansion.
const simpleOutline = "第1章: 起点\n第2章: 转折\n第3章: 高潮\n"

// ----- Tests -----

func TestGenerateBatchPersistsChapters(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.llm.responses = []string{
		"第1章: 起点\n主角踏上旅程。",
		"第2章: 转折\n盟友加入了队伍。",
	}

	result, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 2})

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, dto.BatchStateCompleted, result.State)
		assert.Equal(t, 2, result.Completed)
		assert.Empty(t, result.AbortReason)
		assert.Len(t, result.Chapters, 2)
		assert.Equal(t, "起点", result.Chapters[0].Title)
		assert.Equal(t, "转折", result.Chapters[1].Title)
	}

	assert.Len(t, h.uow.chapters.chapters, 2)
	assert.Equal(t, 1, h.uow.chapters.chapters[0].Number)
	assert.Equal(t, 2, h.uow.chapters.chapters[1].Number)

	// One embedding message per persisted chapter.
	assert.Len(t, h.publisher.payloads, 2)

	// Progress walks through the lifecycle and resets afterwards.
	assert.Equal(t, dto.BatchStatePreparing, h.progress.states[0])
	assert.Equal(t, dto.BatchStateCompleted, h.progress.states[len(h.progress.states)-1])
	assert.True(t, h.progress.resetCalled)
}

func TestGenerateBatchStopsOnEmptyResponse(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.llm.responses = []string{
		"第1章: 起点\n主角踏上旅程。",
		"   ",
		"第3章: 高潮\n不应被请求。",
	}

	result, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 3})

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		// A blank completion aborts the batch; the chapters already persisted
		// stay counted and the reason says which chapter stopped it.
		assert.Equal(t, dto.BatchStateAborted, result.State)
		assert.Equal(t, 1, result.Completed)
		assert.Contains(t, result.AbortReason, "empty chapter")
	}

	// The third response was never requested.
	assert.Len(t, h.llm.prompts, 2)
	assert.Len(t, h.uow.chapters.chapters, 1)
}

func TestGenerateBatchFailsOnProviderError(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.llm.err = errors.New("model unavailable")

	result, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 1})

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, dto.BatchStateFailed, result.State)
		assert.Equal(t, 0, result.Completed)
		assert.Contains(t, result.AbortReason, "model unavailable")
	}
}

func TestGenerateBatchRejectsConcurrentRun(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	assert.True(t, h.locks.Acquire(h.novelId))
	defer h.locks.Release(h.novelId)

	result, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 1})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBatchInProgress)
}

func TestGenerateBatchReleasesLock(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.llm.responses = []string{"第1章: 起点\n正文。"}

	_, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 1})
	assert.NoError(t, err)
	assert.False(t, h.locks.Held(h.novelId))
}

func TestGenerateBatchUnknownNovel(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.uow.novels.novel = nil

	result, err := h.service.GenerateBatch(context.Background(), h.userId, uuid.New(), &dto.GenerateBatchRequest{Count: 1})

	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestGenerateBatchUserPromptFirstChapterOnly(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.llm.responses = []string{
		"第1章: 起点\n正文一。",
		"第2章: 转折\n正文二。",
	}

	const instruction = "从一场暴雨写起"
	_, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{
		Count:      2,
		UserPrompt: instruction,
	})

	assert.NoError(t, err)
	if assert.Len(t, h.llm.prompts, 2) {
		assert.Contains(t, h.llm.prompts[0], instruction)
		assert.NotContains(t, h.llm.prompts[1], instruction)
	}
}

func TestGenerateBatchFeedsPreviousTail(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	h.uow.chapters.chapters = []*entity.Chapter{{
		Id:      uuid.New(),
		NovelId: h.novelId,
		Number:  1,
		Title:   "起点",
		Content: "旅程开始了。夜色渐深。",
	}}
	h.llm.responses = []string{"第2章: 转折\n正文。"}

	_, err := h.service.GenerateBatch(context.Background(), h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 1})

	assert.NoError(t, err)
	if assert.Len(t, h.llm.prompts, 1) {
		assert.Contains(t, h.llm.prompts[0], "夜色渐深")
	}
}

func TestGenerateBatchCanceledContext(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.service.GenerateBatch(ctx, h.userId, h.novelId, &dto.GenerateBatchRequest{Count: 2})

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, dto.BatchStateAborted, result.State)
		assert.Equal(t, "request canceled", result.AbortReason)
		assert.Equal(t, 0, result.Completed)
	}
	assert.Empty(t, h.llm.prompts)
}

func TestPlanNextActSkipsWithoutStages(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)

	res, err := h.service.PlanNextAct(context.Background(), h.userId, h.novelId)

	assert.NoError(t, err)
	if assert.NotNil(t, res) {
		assert.Equal(t, string(planner.KindSkipped), res.Kind)
		assert.Equal(t, 1, res.Chapter)
	}
	assert.Zero(t, h.uow.novels.expansionCalls)
}

func TestPlanNextActRecordsExpansion(t *testing.T) {
	// Two stages, all of stage one planned, runway short: planning must run.
	outlineText := "**第一幕: 开端 (第1-3章)**\n核心概述: 启程\n" +
		"**第二幕: 对抗 (第4-6章)**\n核心概述: 冲突" +
		outline.SeparatorCurrent +
		"第1章: 起点\n第2章: 转折\n第3章: 高潮\n"
	h := newGenerationHarness(outlineText, nil)
	h.llm.responses = []string{"第4章: 对峙\n第5章: 反击\n第6章: 决裂\n"}

	res, err := h.service.PlanNextAct(context.Background(), h.userId, h.novelId)

	assert.NoError(t, err)
	if assert.NotNil(t, res) {
		assert.Equal(t, string(planner.KindPlanned), res.Kind)
	}
	assert.Equal(t, 1, h.uow.novels.expansionCalls)
	assert.True(t, strings.Contains(h.uow.novels.novel.Outline, "第6章"))
}

func TestCheckComplianceFlagsFuturePlot(t *testing.T) {
	outlineText := "**第一幕: 开端 (第1-5章)**\n核心概述: 日常生活\n" +
		"**第二幕: 对抗 (第6-10章)**\n核心概述: 「赤色彗星」坠落" +
		outline.SeparatorCurrent +
		"第1章: 起点\n"
	checker := &leakage.Checker{MatchRatio: leakage.DefaultMatchRatio, FlagThreshold: 1}
	h := newGenerationHarness(outlineText, checker)
	h.uow.chapters.chapters = []*entity.Chapter{{
		Id:      uuid.New(),
		NovelId: h.novelId,
		Number:  1,
		Content: "赤色彗星出现在天边。",
	}}

	res, err := h.service.CheckCompliance(context.Background(), h.userId, h.novelId, 1)

	assert.NoError(t, err)
	if assert.NotNil(t, res) {
		assert.False(t, res.Compliant)
		assert.NotEmpty(t, res.Evidence)
	}
}

func TestCheckComplianceUnknownChapter(t *testing.T) {
	h := newGenerationHarness(simpleOutline, nil)

	res, err := h.service.CheckCompliance(context.Background(), h.userId, h.novelId, 7)

	assert.NoError(t, err)
	assert.Nil(t, res)
}
