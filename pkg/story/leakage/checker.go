// Package leakage is an advisory lint that flags chapters which appear to
// reveal plot concepts belonging to a future arc stage. It is a heuristic
// signal, never a gate: callers decide whether to log, warn, or regenerate.
package leakage

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-novelforge-be/pkg/story/outline"
)

const (
	// DefaultMatchRatio is the character-overlap ratio a long concept must
	// reach inside the chapter text to count as present. Inherited tuning,
	// not empirically calibrated; override via the Checker fields.
	DefaultMatchRatio = 0.7

	// DefaultFlagThreshold is how many distinct matched concepts mark a
	// chapter as non-compliant.
	DefaultFlagThreshold = 3

	maxConcepts      = 12
	maxConceptRunes  = 20
	minConceptRunes  = 2
	maxClauseRunes   = 16
	exactMatchLength = 3 // concepts this short need exact containment
)

var (
	quotedRe = regexp.MustCompile(`[「“"]([^」”"]{1,40})[」”"]`)
	colonRe  = regexp.MustCompile(`[:：]`)
	clauseRe = regexp.MustCompile("[,，。;；!！?？\n]")

	// Words that usually mark a plot-turning event inside a stage summary.
	eventMarkers = []string{
		"发现", "死亡", "之死", "牺牲", "背叛", "结盟", "联盟",
		"真相", "揭露", "秘密", "觉醒", "重逢", "决裂", "复仇",
		"death", "betray", "alliance", "discover", "reveal", "secret",
	}
)

// Evidence is one matched concept with the overlap ratio that matched it.
type Evidence struct {
	Concept string  `json:"concept"`
	Ratio   float64 `json:"ratio"`
}

// Report is the advisory outcome of a compliance check.
type Report struct {
	Compliant     bool       `json:"compliant"`
	ChapterNumber int        `json:"chapter_number"`
	StageLabel    string     `json:"stage_label,omitempty"`
	StageTitle    string     `json:"stage_title,omitempty"`
	Evidence      []Evidence `json:"evidence,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// Checker compares chapter prose against the next arc stage's summary.
type Checker struct {
	MatchRatio    float64
	FlagThreshold int
}

func NewChecker() *Checker {
	return &Checker{
		MatchRatio:    DefaultMatchRatio,
		FlagThreshold: DefaultFlagThreshold,
	}
}

// Check resolves the stage containing chapterNumber and lints chapterText
// against the summary of the stage that follows it. When the stage cannot be
// resolved, or the chapter already sits in the final stage, the chapter is
// reported compliant: there is nothing left to leak.
func (c *Checker) Check(chapterText string, chapterNumber int, doc *outline.Document) Report {
	report := Report{Compliant: true, ChapterNumber: chapterNumber}

	idx := doc.StageIndexForChapter(chapterNumber)
	if idx < 0 {
		return report
	}
	next := doc.NextStage(idx)
	if next == nil {
		return report
	}
	report.StageLabel = next.Label
	report.StageTitle = next.Title

	for _, concept := range extractConcepts(next.Summary) {
		if ratio, ok := c.conceptPresent(chapterText, concept); ok {
			report.Evidence = append(report.Evidence, Evidence{Concept: concept, Ratio: ratio})
		}
	}

	if len(report.Evidence) >= c.FlagThreshold {
		names := make([]string, len(report.Evidence))
		for i, e := range report.Evidence {
			names[i] = e.Concept
		}
		report.Compliant = false
		report.Reason = fmt.Sprintf(
			"疑似提前引入「%s %s」的剧情要点: %s",
			next.Label, next.Title, strings.Join(names, "、"),
		)
	}
	return report
}

// conceptPresent applies fuzzy containment for long concepts (share of the
// concept's characters found anywhere in the chapter) and exact containment
// for short ones.
func (c *Checker) conceptPresent(chapterText, concept string) (float64, bool) {
	runes := []rune(concept)
	if len(runes) <= exactMatchLength {
		if strings.Contains(chapterText, concept) {
			return 1.0, true
		}
		return 0, false
	}

	matched := 0
	for _, r := range runes {
		if strings.ContainsRune(chapterText, r) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(runes))
	return ratio, ratio >= c.MatchRatio
}

// extractConcepts pulls candidate key concepts from a stage summary using
// three heuristics: quoted call-outs, text following a colon up to the next
// clause boundary, and short clauses containing an event-marker word.
func extractConcepts(summary string) []string {
	seen := make(map[string]struct{})
	var concepts []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		n := utf8.RuneCountInString(s)
		if n < minConceptRunes || n > maxConceptRunes {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		concepts = append(concepts, s)
	}

	for _, m := range quotedRe.FindAllStringSubmatch(summary, -1) {
		add(m[1])
	}

	for _, loc := range colonRe.FindAllStringIndex(summary, -1) {
		tail := summary[loc[1]:]
		if end := clauseRe.FindStringIndex(tail); end != nil {
			tail = tail[:end[0]]
		}
		add(truncateRunes(tail, maxConceptRunes))
	}

	for _, clause := range clauseRe.Split(summary, -1) {
		clause = strings.TrimSpace(clause)
		if utf8.RuneCountInString(clause) > maxClauseRunes {
			continue
		}
		for _, marker := range eventMarkers {
			if strings.Contains(clause, marker) {
				add(clause)
				break
			}
		}
	}

	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}
	return concepts
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
