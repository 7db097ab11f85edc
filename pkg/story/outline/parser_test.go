package outline

import (
	"reflect"
	"testing"
)

const macroFixture = "**第一幕: 开端 (第1-50章)**\n核心概述: 主角在雨夜收到「神秘信件」\n- 离开故乡\n**第二幕: 对抗 (第51-120章)**\n核心概述: 「黑塔」崩塌，盟友背叛\n"

const detailedFixture = "第1章: 雨夜来信\n第2章: 告别\n第3章: 渡口相遇"

func TestParseCurrentFormat(t *testing.T) {
	doc := Parse(macroFixture + SeparatorCurrent + detailedFixture)

	if len(doc.Stages) != 2 {
		t.Fatalf("Stages = %d, want 2", len(doc.Stages))
	}

	first := doc.Stages[0]
	if first.Label != "第一幕" || first.Title != "开端" {
		t.Errorf("first stage = %q/%q, want 第一幕/开端", first.Label, first.Title)
	}
	if first.Range != (ChapterRange{Start: 1, End: 50}) {
		t.Errorf("first range = %+v, want [1,50]", first.Range)
	}
	if !reflect.DeepEqual(first.KeyElements, []string{"神秘信件"}) {
		t.Errorf("key elements = %v, want [神秘信件]", first.KeyElements)
	}

	second := doc.Stages[1]
	if second.Range != (ChapterRange{Start: 51, End: 120}) {
		t.Errorf("second range = %+v, want [51,120]", second.Range)
	}

	if got := doc.PlannedChapters(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("planned chapters = %v, want [1 2 3]", got)
	}
}

func TestParseFullWidthPunctuationHeaders(t *testing.T) {
	macro := "**第一幕：开端 （第1-5章）**\n核心概述：平静的日常\n**第二幕：对抗 （第6-10章）**\n核心概述：风暴将至\n"
	doc := Parse(macro + SeparatorCurrent + "第1章：起点\n第2章：出发")

	if len(doc.Stages) != 2 {
		t.Fatalf("Stages = %d, want 2", len(doc.Stages))
	}

	first := doc.Stages[0]
	if first.Label != "第一幕" || first.Title != "开端" {
		t.Errorf("first stage = %q/%q, want 第一幕/开端", first.Label, first.Title)
	}
	if first.Range != (ChapterRange{Start: 1, End: 5}) {
		t.Errorf("first range = %+v, want [1,5]", first.Range)
	}

	if got := doc.PlannedChapters(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("planned chapters = %v, want [1 2]", got)
	}
}

func TestParseLegacyFormatSwapsSections(t *testing.T) {
	doc := Parse(detailedFixture + SeparatorLegacy + macroFixture)

	if len(doc.Stages) != 2 {
		t.Fatalf("Stages = %d, want 2", len(doc.Stages))
	}
	if got := doc.LastPlanned(); got != 3 {
		t.Errorf("LastPlanned = %d, want 3", got)
	}
}

func TestParseWithoutSeparatorDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain prose", "主角的故事从这里开始。第4章: 转折"},
		{"empty", ""},
		{"macro-looking text only", macroFixture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.raw)
			if len(doc.Stages) != 0 {
				t.Errorf("Stages = %d, want 0", len(doc.Stages))
			}
			if doc.Macro != "" {
				t.Errorf("Macro = %q, want empty", doc.Macro)
			}
			if doc.Detailed != Normalize(tt.raw) {
				t.Errorf("Detailed = %q, want normalized input", doc.Detailed)
			}
		})
	}
}

func TestParseMacroWithoutHeaders(t *testing.T) {
	doc := Parse("没有任何幕标题的规划文本" + SeparatorCurrent + detailedFixture)
	if len(doc.Stages) != 0 {
		t.Errorf("Stages = %d, want 0", len(doc.Stages))
	}
	if doc.Detailed != detailedFixture {
		t.Errorf("Detailed = %q, want fixture", doc.Detailed)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"第 3 章：雨夜", "第3章: 雨夜"},
		{"第3章:雨夜", "第3章: 雨夜"},
		{"第3章 雨夜", "第3章: 雨夜"},
		{"第12章: 已经规范", "第12章: 已经规范"},
		{"范围 (第51-120章) 保持不变", "范围 (第51-120章) 保持不变"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChapterMarkersDistinctAndOrderIndependent(t *testing.T) {
	a := ChapterMarkers("第2章: b\n第1章: a\n第2章: 重复")
	b := ChapterMarkers("第1章: a\n第2章: 重复\n第2章: b")

	want := []int{1, 2}
	if !reflect.DeepEqual(a, want) || !reflect.DeepEqual(b, want) {
		t.Errorf("markers = %v / %v, want %v", a, b, want)
	}

	// Idempotent over already-normalized text.
	if got := ChapterMarkers("第1章: a\n第2章: b"); !reflect.DeepEqual(got, want) {
		t.Errorf("markers = %v, want %v", got, want)
	}
}

func TestStageForChapterClampsToLast(t *testing.T) {
	doc := Parse(macroFixture + SeparatorCurrent + detailedFixture)

	tests := []struct {
		chapter   int
		wantLabel string
	}{
		{40, "第一幕"},
		{120, "第二幕"},
		{200, "第二幕"}, // beyond the final range clamps to the final stage
	}
	for _, tt := range tests {
		stage := doc.StageForChapter(tt.chapter)
		if stage == nil || stage.Label != tt.wantLabel {
			t.Errorf("StageForChapter(%d) = %v, want %s", tt.chapter, stage, tt.wantLabel)
		}
	}

	if stage := doc.StageForChapter(0); stage != nil {
		t.Errorf("StageForChapter(0) = %v, want nil", stage)
	}
}

func TestRoundTripCurrentFormat(t *testing.T) {
	raw := macroFixture + SeparatorCurrent + detailedFixture
	doc := Parse(raw)

	if got := doc.Serialize(); got != raw {
		t.Errorf("Serialize() = %q, want %q", got, raw)
	}

	// Legacy documents re-serialize with the current separator.
	legacy := Parse(detailedFixture + SeparatorLegacy + macroFixture)
	again := Parse(legacy.Serialize())
	if !reflect.DeepEqual(again.Stages, legacy.Stages) || again.Detailed != legacy.Detailed {
		t.Error("legacy document did not round-trip through current format")
	}
}

func TestDetailForChapter(t *testing.T) {
	doc := Parse(macroFixture + SeparatorCurrent + detailedFixture)

	if got := doc.DetailForChapter(2); got != "第2章: 告别" {
		t.Errorf("DetailForChapter(2) = %q", got)
	}
	if got := doc.DetailForChapter(3); got != "第3章: 渡口相遇" {
		t.Errorf("DetailForChapter(3) = %q", got)
	}
	if got := doc.DetailForChapter(9); got != "" {
		t.Errorf("DetailForChapter(9) = %q, want empty", got)
	}
}

func TestAppendDetailed(t *testing.T) {
	doc := Parse(macroFixture + SeparatorCurrent + detailedFixture)
	doc.AppendDetailed("第4章: 入城\n第5章: 旧识")

	if got := doc.LastPlanned(); got != 5 {
		t.Errorf("LastPlanned after append = %d, want 5", got)
	}

	reparsed := Parse(doc.Serialize())
	if got := reparsed.LastPlanned(); got != 5 {
		t.Errorf("LastPlanned after round-trip = %d, want 5", got)
	}
}
