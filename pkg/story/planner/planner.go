// Package planner decides whether a novel's outline needs its next act
// expanded into per-chapter detail, and requests that expansion from the LLM.
// Every ambiguous or already-satisfied precondition short-circuits to a skip:
// doing nothing is always safer than corrupting the outline.
package planner

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-novelforge-be/pkg/llm"
	"ai-novelforge-be/pkg/story"
	"ai-novelforge-be/pkg/story/outline"
	"ai-novelforge-be/pkg/story/prompt"

	"github.com/google/uuid"
)

const (
	// DefaultBufferThreshold is the planned-chapter runway above which no
	// expansion is needed yet.
	DefaultBufferThreshold = 10

	// DefaultContextWindow bounds how many trailing planned chapters feed the
	// expansion prompt.
	DefaultContextWindow = 10
)

// Store is the narrow persistence capability the planner consumes. The outline
// is re-read on every call so the planner observes the latest write.
type Store interface {
	GetNovel(ctx context.Context, id uuid.UUID) (*story.NovelSnapshot, error)
	GetChapterCount(ctx context.Context, id uuid.UUID) (int, error)
	SaveOutline(ctx context.Context, id uuid.UUID, text string) error
}

// Planner extends a novel's outline with the next arc stage's chapter detail
// when the remaining runway gets short. All collaborators are injected; the
// planner holds no process-wide client state.
type Planner struct {
	store   Store
	llm     llm.LLMProvider
	prompts *prompt.Builder
	logger  *log.Logger

	BufferThreshold int
	ContextWindow   int
}

func New(store Store, provider llm.LLMProvider, logger *log.Logger) *Planner {
	return &Planner{
		store:           store,
		llm:             provider,
		prompts:         prompt.NewBuilder(),
		logger:          logger,
		BufferThreshold: DefaultBufferThreshold,
		ContextWindow:   DefaultContextWindow,
	}
}

// MaybePlanNextAct runs the precondition chain and, when every check passes,
// splices freshly generated chapter detail for the next stage into the
// outline's detailed section. Calling it twice in succession is a no-op the
// second time: once the next stage's first chapter is planned, the call skips.
func (p *Planner) MaybePlanNextAct(ctx context.Context, novelID uuid.UUID) Outcome {
	novel, err := p.store.GetNovel(ctx, novelID)
	if err != nil {
		return Failed(fmt.Errorf("load novel: %w", err))
	}
	if novel == nil || strings.TrimSpace(novel.Outline) == "" {
		return Skipped("novel has no outline")
	}

	doc := outline.Parse(novel.Outline)
	planned := doc.PlannedChapters()
	if len(planned) == 0 {
		return Skipped("outline has no planned chapters")
	}
	lastPlanned := planned[len(planned)-1]

	count, err := p.store.GetChapterCount(ctx, novelID)
	if err != nil {
		return Failed(fmt.Errorf("chapter count: %w", err))
	}
	nextChapter := count + 1

	if buffer := lastPlanned - nextChapter; buffer > p.BufferThreshold {
		return Skipped(fmt.Sprintf("sufficient runway: %d chapters planned ahead", buffer))
	}

	if len(doc.Stages) < 2 {
		return Skipped("fewer than two arc stages, nothing to plan")
	}

	currentIdx := doc.StageEndingAt(lastPlanned)
	if currentIdx < 0 {
		return Skipped("no stage ends at the last planned chapter, state ambiguous")
	}

	target := doc.NextStage(currentIdx)
	if target == nil {
		return Skipped("already at the final act")
	}

	if containsChapter(planned, target.Range.Start) {
		return Skipped(fmt.Sprintf("chapter %d already planned", target.Range.Start))
	}

	contextText := p.contextWindow(&doc, lastPlanned)
	text, err := p.llm.Generate(ctx, p.prompts.NextActOutline(novel, target, contextText))
	if err != nil {
		return Failed(fmt.Errorf("generate act outline: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return Failed(fmt.Errorf("empty act outline for stage %s", target.Label))
	}

	doc.AppendDetailed(outline.Normalize(text))
	newOutline := doc.Serialize()
	if err := p.store.SaveOutline(ctx, novelID, newOutline); err != nil {
		return Failed(fmt.Errorf("save outline: %w", err))
	}

	if p.logger != nil {
		p.logger.Printf("planned next act %s (%d-%d) for novel %s",
			target.Label, target.Range.Start, target.Range.End, novelID)
	}
	return Planned(newOutline)
}

// contextWindow gathers the detail text of the trailing chapters of the most
// recently planned stage: the highest-numbered stage that has planned content,
// which may differ from the stage the reader is in when ranges overlap. The
// window is bounded by ContextWindow chapters to keep the prompt small.
func (p *Planner) contextWindow(doc *outline.Document, lastPlanned int) string {
	var latest *outline.ArcStage
	for i := range doc.Stages {
		s := &doc.Stages[i]
		if s.Range.Start > lastPlanned {
			continue
		}
		if latest == nil || s.Range.End > latest.Range.End {
			latest = s
		}
	}
	if latest == nil {
		return ""
	}

	end := latest.Range.End
	if end > lastPlanned {
		end = lastPlanned
	}
	from := end - p.ContextWindow + 1
	if from < latest.Range.Start {
		from = latest.Range.Start
	}

	var parts []string
	for n := from; n <= end; n++ {
		if detail := doc.DetailForChapter(n); detail != "" {
			parts = append(parts, detail)
		}
	}
	return strings.Join(parts, "\n")
}

func containsChapter(planned []int, n int) bool {
	for _, c := range planned {
		if c == n {
			return true
		}
	}
	return false
}
