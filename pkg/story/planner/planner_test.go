package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-novelforge-be/pkg/llm"
	"ai-novelforge-be/pkg/story"
	"ai-novelforge-be/pkg/story/outline"

	"github.com/google/uuid"
)

type fakeStore struct {
	novel        *story.NovelSnapshot
	chapterCount int
	savedOutline string
	saveCalls    int
	getErr       error
}

func (s *fakeStore) GetNovel(_ context.Context, _ uuid.UUID) (*story.NovelSnapshot, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.novel, nil
}

func (s *fakeStore) GetChapterCount(_ context.Context, _ uuid.UUID) (int, error) {
	return s.chapterCount, nil
}

func (s *fakeStore) SaveOutline(_ context.Context, _ uuid.UUID, text string) error {
	s.saveCalls++
	s.savedOutline = text
	if s.novel != nil {
		s.novel.Outline = text
	}
	return nil
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if len(history) > 0 {
		f.prompts = append(f.prompts, history[len(history)-1].Content)
	}
	return f.response, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, opts ...llm.Option) error {
	text, err := f.Chat(ctx, history, opts...)
	if err != nil {
		return err
	}
	return handler(text)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func snapshot(outlineText string) *story.NovelSnapshot {
	return &story.NovelSnapshot{
		ID:      uuid.New(),
		Title:   "群星之烬",
		Genre:   "奇幻",
		Outline: outlineText,
	}
}

func markerLines(from, to int) string {
	var sb strings.Builder
	for n := from; n <= to; n++ {
		fmt.Fprintf(&sb, "第%d章: 细纲%d\n", n, n)
	}
	return sb.String()
}

func newPlanner(store Store, provider llm.LLMProvider) *Planner {
	return New(store, provider, nil)
}

func TestSkipWhenNoOutline(t *testing.T) {
	store := &fakeStore{novel: snapshot("")}
	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())

	if !out.IsSkipped() {
		t.Fatalf("outcome = %+v, want skip", out)
	}
}

func TestSkipWhenNoPlannedChapters(t *testing.T) {
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 对抗 (第11-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + "尚未规划任何章节"
	store := &fakeStore{novel: snapshot(text)}

	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() {
		t.Fatalf("outcome = %+v, want skip", out)
	}
}

func TestSkipWhenRunwaySufficient(t *testing.T) {
	text := "**第一幕: 开端 (第1-30章)**\n核心概述: 启程\n**第二幕: 对抗 (第31-60章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 30)
	store := &fakeStore{novel: snapshot(text), chapterCount: 5} // buffer = 30 - 6 = 24

	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() || !strings.Contains(out.Reason, "runway") {
		t.Fatalf("outcome = %+v, want runway skip", out)
	}
}

func TestSkipWhenSingleStage(t *testing.T) {
	// A novel whose macro section holds only the opening act: generation
	// proceeds against stage-1 context, planning has nothing to extend.
	text := "**第一幕: 开端 (第1-5章)**\n核心概述: 主角发现神秘信件\n" +
		outline.SeparatorCurrent + markerLines(1, 5)
	store := &fakeStore{novel: snapshot(text), chapterCount: 5} // next chapter = 6

	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() {
		t.Fatalf("outcome = %+v, want skip", out)
	}
}

func TestSkipWhenNoStageEndsAtLastPlanned(t *testing.T) {
	text := "**第一幕: 开端 (第1-50章)**\n核心概述: 启程\n**第二幕: 对抗 (第51-120章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 40)
	store := &fakeStore{novel: snapshot(text), chapterCount: 38}

	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() || !strings.Contains(out.Reason, "ambiguous") {
		t.Fatalf("outcome = %+v, want ambiguous-state skip", out)
	}
}

func TestSkipAtFinalAct(t *testing.T) {
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 终局 (第11-20章)**\n核心概述: 决战\n" +
		outline.SeparatorCurrent + markerLines(1, 20)
	store := &fakeStore{novel: snapshot(text), chapterCount: 18}

	out := newPlanner(store, &fakeLLM{}).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() || !strings.Contains(out.Reason, "final") {
		t.Fatalf("outcome = %+v, want final-act skip", out)
	}
}

func TestSkipWhenNextStageAlreadyPlanned(t *testing.T) {
	// Overlapping ranges are tolerated; if another planning call already
	// wrote the next stage's opening chapter, this one must back off.
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 对抗 (第8-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 10)
	store := &fakeStore{novel: snapshot(text), chapterCount: 7}
	provider := &fakeLLM{response: "should not be called"}

	out := newPlanner(store, provider).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsSkipped() {
		t.Fatalf("outcome = %+v, want skip", out)
	}
	if len(provider.prompts) != 0 {
		t.Error("LLM invoked despite already-planned next stage")
	}
}

func TestPlansNextActAndSplicesOutline(t *testing.T) {
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 对抗 (第11-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 10)
	store := &fakeStore{novel: snapshot(text), chapterCount: 8}
	provider := &fakeLLM{response: markerLines(11, 20)}

	out := newPlanner(store, provider).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsPlanned() {
		t.Fatalf("outcome = %+v, want planned", out)
	}
	if store.saveCalls != 1 {
		t.Fatalf("saveCalls = %d, want 1", store.saveCalls)
	}

	doc := outline.Parse(store.savedOutline)
	if got := doc.LastPlanned(); got != 20 {
		t.Errorf("LastPlanned after planning = %d, want 20", got)
	}
	if len(doc.Stages) != 2 {
		t.Errorf("stages lost during splice: %d", len(doc.Stages))
	}

	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "第二幕") {
		t.Errorf("prompt should target the next stage, got %q", provider.prompts)
	}
}

func TestPlanningIsIdempotent(t *testing.T) {
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 对抗 (第11-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 10)
	store := &fakeStore{novel: snapshot(text), chapterCount: 8}
	provider := &fakeLLM{response: markerLines(11, 20)}
	p := newPlanner(store, provider)

	first := p.MaybePlanNextAct(context.Background(), uuid.New())
	second := p.MaybePlanNextAct(context.Background(), uuid.New())

	if !first.IsPlanned() {
		t.Fatalf("first outcome = %+v, want planned", first)
	}
	if !second.IsSkipped() {
		t.Fatalf("second outcome = %+v, want skip", second)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1 (no double splice)", store.saveCalls)
	}
}

func TestContextWindowIsBounded(t *testing.T) {
	text := "**第一幕: 开端 (第1-12章)**\n核心概述: 启程\n**第二幕: 对抗 (第13-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 12)
	store := &fakeStore{novel: snapshot(text), chapterCount: 11}
	provider := &fakeLLM{response: markerLines(13, 20)}

	out := newPlanner(store, provider).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsPlanned() {
		t.Fatalf("outcome = %+v, want planned", out)
	}

	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "细纲3") {
		t.Error("context window should include chapter 3 detail")
	}
	if strings.Contains(prompt, "细纲2\n") || strings.Contains(prompt, "细纲1\n") {
		t.Error("context window should not reach back past 10 chapters")
	}
}

func TestFailureSurfacesError(t *testing.T) {
	text := "**第一幕: 开端 (第1-10章)**\n核心概述: 启程\n**第二幕: 对抗 (第11-20章)**\n核心概述: 冲突\n" +
		outline.SeparatorCurrent + markerLines(1, 10)
	store := &fakeStore{novel: snapshot(text), chapterCount: 8}
	provider := &fakeLLM{err: errors.New("model unavailable")}

	out := newPlanner(store, provider).MaybePlanNextAct(context.Background(), uuid.New())
	if !out.IsFailed() || out.Err == nil {
		t.Fatalf("outcome = %+v, want failure", out)
	}
}
