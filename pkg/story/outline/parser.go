package outline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// Loose chapter mentions ("第 3 章：", "第3章", full-width colon, stray
	// spacing) rewritten to the single canonical form "第3章: " so every later
	// extraction has one shape to match.
	chapterLooseRe = regexp.MustCompile(`第[ \t]*(\d+)[ \t]*章[ \t]*[:：]?[ \t]*`)

	// Canonical chapter marker, valid only after normalization.
	chapterMarkerRe = regexp.MustCompile(`第(\d+)章: `)

	// Stage header: bold label/title followed by a chapter range in ASCII or
	// full-width brackets, e.g. "**第二幕: 对抗 (第51-120章)**".
	stageHeaderRe = regexp.MustCompile(`\*\*(.+?)[(（][ \t]*第[ \t]*(\d+)[ \t]*[-—–~～][ \t]*(\d+)[ \t]*章[ \t]*[)）][ \t]*\*\*`)

	listMarkerRe = regexp.MustCompile(`(?m)^[ \t]*[-*•·][ \t]*`)
	keyElementRe = regexp.MustCompile(`[「“"]([^」”"]{1,40})[」”"]`)
	labelSplitRe = regexp.MustCompile(`[:：]`)
)

// Normalize rewrites every loose chapter mention in text to the canonical
// "第N章: " form. Range expressions such as "第51-120章" are left untouched
// because the hyphen breaks the single-chapter pattern.
func Normalize(text string) string {
	return chapterLooseRe.ReplaceAllString(text, "第${1}章: ")
}

// ChapterMarkers returns the distinct chapter numbers referenced by canonical
// markers in text, ascending. Input is normalized first, so the result is
// independent of the original marker formatting and mention order.
func ChapterMarkers(text string) []int {
	matches := chapterMarkerRe.FindAllStringSubmatch(Normalize(text), -1)
	seen := make(map[int]struct{}, len(matches))
	var chapters []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		chapters = append(chapters, n)
	}
	sort.Ints(chapters)
	return chapters
}

// Parse converts raw outline text into a Document. It never fails: text with
// no recognized separator becomes a document with an empty macro section and
// the (normalized) input as its detailed section, and a macro section with no
// valid stage headers yields an empty stage list.
func Parse(raw string) Document {
	norm := Normalize(raw)

	var macro, detailed string
	if parts := strings.Split(norm, SeparatorCurrent); len(parts) == 2 {
		macro, detailed = parts[0], parts[1]
	} else if parts := strings.Split(norm, SeparatorLegacy); len(parts) == 2 {
		// Legacy documents stored the sections in the opposite order.
		detailed, macro = parts[0], parts[1]
	} else {
		return Document{Detailed: norm}
	}

	return Document{
		Macro:    macro,
		Stages:   parseStages(macro),
		Detailed: detailed,
	}
}

func parseStages(macro string) []ArcStage {
	headers := stageHeaderRe.FindAllStringSubmatchIndex(macro, -1)
	if len(headers) == 0 {
		return nil
	}

	stages := make([]ArcStage, 0, len(headers))
	for i, h := range headers {
		head := macro[h[2]:h[3]]
		start, _ := strconv.Atoi(macro[h[4]:h[5]])
		end, _ := strconv.Atoi(macro[h[6]:h[7]])

		label, title := splitHead(head)

		bodyFrom := h[1]
		bodyTo := len(macro)
		if i+1 < len(headers) {
			bodyTo = headers[i+1][0]
		}
		summary := cleanSummary(macro[bodyFrom:bodyTo])

		// A start greater than end is recorded as-is; downstream lookups
		// simply fail to resolve a stage for the affected chapters.
		stages = append(stages, ArcStage{
			Label:       label,
			Title:       title,
			Range:       ChapterRange{Start: start, End: end},
			Summary:     summary,
			KeyElements: extractKeyElements(summary),
		})
	}
	return stages
}

// splitHead separates "第一幕: 开端" into label and title. Without a colon the
// whole head is the label.
func splitHead(head string) (string, string) {
	head = strings.TrimSpace(head)
	if loc := labelSplitRe.FindStringIndex(head); loc != nil {
		return strings.TrimSpace(head[:loc[0]]), strings.TrimSpace(head[loc[1]:])
	}
	return head, ""
}

func cleanSummary(body string) string {
	return strings.TrimSpace(listMarkerRe.ReplaceAllString(body, ""))
}

func extractKeyElements(summary string) []string {
	matches := keyElementRe.FindAllStringSubmatch(summary, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var elements []string
	for _, m := range matches {
		phrase := strings.TrimSpace(m[1])
		if phrase == "" {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		elements = append(elements, phrase)
	}
	return elements
}

func chapterDetail(detailed string, n int) string {
	marker := "第" + strconv.Itoa(n) + "章: "
	from := strings.Index(detailed, marker)
	if from < 0 {
		return ""
	}
	rest := detailed[from:]
	// Skip past this marker when searching for the next one.
	if next := chapterMarkerRe.FindStringIndex(rest[len(marker):]); next != nil {
		return strings.TrimSpace(rest[:len(marker)+next[0]])
	}
	return strings.TrimSpace(rest)
}
