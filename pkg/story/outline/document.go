// Package outline holds the two-tier plot outline model: a macro section of
// coarse arc stages and a detailed per-chapter section, joined in storage by a
// literal separator. Parsing is tolerant and never fails; malformed input
// degrades to a document with an empty macro section.
package outline

import "strings"

// Section separators as persisted on the novel record. The current format
// stores the macro section first; the legacy format stored the sections in the
// opposite order. Both must parse, only the current form is ever written.
const (
	SeparatorCurrent = "\n---\n**逐章细纲**\n---\n"
	SeparatorLegacy  = "\n---\n**宏观叙事规划**\n---\n"
)

// ChapterRange is an inclusive chapter span.
type ChapterRange struct {
	Start int
	End   int
}

// Contains reports whether chapter n falls inside the range.
func (r ChapterRange) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// ArcStage is one coarse narrative phase of the macro section.
type ArcStage struct {
	Label       string // e.g. "第一幕"
	Title       string // e.g. "开端"
	Range       ChapterRange
	Summary     string
	KeyElements []string
}

// Document is the parsed form of one novel's outline text. Stages are derived
// from Macro on every parse and never mutated in place; a new document replaces
// the old one.
type Document struct {
	Macro    string
	Stages   []ArcStage
	Detailed string
}

// PlannedChapters returns the distinct chapter numbers that appear in the
// detailed section, in ascending order.
func (d *Document) PlannedChapters() []int {
	return ChapterMarkers(d.Detailed)
}

// LastPlanned returns the highest planned chapter number, or 0 when the
// detailed section carries no chapter markers.
func (d *Document) LastPlanned() int {
	planned := d.PlannedChapters()
	if len(planned) == 0 {
		return 0
	}
	return planned[len(planned)-1]
}

// StageIndexForChapter resolves the stage covering chapter n. A chapter beyond
// the final stage's range clamps to the final stage; a chapter before the first
// range (or an empty macro section) resolves to -1, meaning "stage unknown".
func (d *Document) StageIndexForChapter(n int) int {
	for i, s := range d.Stages {
		if s.Range.Contains(n) {
			return i
		}
	}
	if len(d.Stages) > 0 && n > d.Stages[len(d.Stages)-1].Range.End {
		return len(d.Stages) - 1
	}
	return -1
}

// StageForChapter is the pointer convenience of StageIndexForChapter.
func (d *Document) StageForChapter(n int) *ArcStage {
	idx := d.StageIndexForChapter(n)
	if idx < 0 {
		return nil
	}
	return &d.Stages[idx]
}

// NextStage returns the stage following index idx in document order, or nil at
// the final stage.
func (d *Document) NextStage(idx int) *ArcStage {
	if idx < 0 || idx+1 >= len(d.Stages) {
		return nil
	}
	return &d.Stages[idx+1]
}

// StageEndingAt returns the index of the stage whose range ends exactly at
// chapter n, or -1 when no stage matches.
func (d *Document) StageEndingAt(n int) int {
	for i, s := range d.Stages {
		if s.Range.End == n {
			return i
		}
	}
	return -1
}

// DetailForChapter extracts the detailed plan text for chapter n: everything
// from its canonical marker up to the next marker or the end of the section.
// Returns "" when the chapter is not planned.
func (d *Document) DetailForChapter(n int) string {
	return chapterDetail(d.Detailed, n)
}

// AppendDetailed splices freshly planned detail text onto the end of the
// detailed section.
func (d *Document) AppendDetailed(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if strings.TrimSpace(d.Detailed) == "" {
		d.Detailed = text
		return
	}
	d.Detailed = strings.TrimRight(d.Detailed, "\n") + "\n\n" + text
}

// Serialize renders the document back to its storage text form, always with
// the current separator. A document without a macro section round-trips to the
// detailed text alone.
func (d *Document) Serialize() string {
	if strings.TrimSpace(d.Macro) == "" {
		return d.Detailed
	}
	return d.Macro + SeparatorCurrent + d.Detailed
}
