package leakage

import (
	"strings"
	"testing"

	"ai-novelforge-be/pkg/story/outline"
)

const twoStageOutline = "**第一幕: 开端 (第1-50章)**\n核心概述: 主角离开故乡，踏上旅途\n" +
	"**第二幕: 对抗 (第51-120章)**\n核心概述: 「赤色彗星」坠落，「王座陷落」，「预言之子」现身\n" +
	outline.SeparatorCurrent +
	"第1章: 出发\n第2章: 渡口"

func TestCheckFlagsVerbatimFutureConcepts(t *testing.T) {
	doc := outline.Parse(twoStageOutline)
	checker := NewChecker()

	chapter := "夜里，赤色彗星划过天空。有人低语王座陷落的传闻，而预言之子就站在桥头。"
	report := checker.Check(chapter, 40, &doc)

	if report.Compliant {
		t.Fatal("chapter lifting three future concepts should be flagged")
	}
	if len(report.Evidence) < 3 {
		t.Errorf("Evidence = %d entries, want >= 3", len(report.Evidence))
	}
	if report.StageLabel != "第二幕" {
		t.Errorf("StageLabel = %q, want 第二幕", report.StageLabel)
	}
	if !strings.Contains(report.Reason, "第二幕") {
		t.Errorf("Reason = %q, should name the offending stage", report.Reason)
	}
}

func TestCheckCompliantWhenNoOverlap(t *testing.T) {
	doc := outline.Parse(twoStageOutline)
	checker := NewChecker()

	report := checker.Check("他走向渡口，雨还没有停。", 40, &doc)
	if !report.Compliant {
		t.Errorf("chapter sharing no concepts flagged: %+v", report)
	}
}

func TestCheckFinalStageAlwaysCompliant(t *testing.T) {
	doc := outline.Parse(twoStageOutline)
	checker := NewChecker()

	// Chapter 60 sits in the final stage; nothing left to leak.
	report := checker.Check("赤色彗星坠落，王座陷落，预言之子现身。", 60, &doc)
	if !report.Compliant {
		t.Errorf("final-stage chapter flagged: %+v", report)
	}
}

func TestCheckUnresolvableStageCompliant(t *testing.T) {
	doc := outline.Parse("没有宏观规划的旧文档，第1章: 出发")
	checker := NewChecker()

	report := checker.Check("任何内容", 1, &doc)
	if !report.Compliant {
		t.Errorf("unresolvable stage should be compliant, got %+v", report)
	}
}

func TestCheckThresholdIsConfigurable(t *testing.T) {
	doc := outline.Parse(twoStageOutline)
	checker := &Checker{MatchRatio: DefaultMatchRatio, FlagThreshold: 1}

	report := checker.Check("赤色彗星出现了。", 40, &doc)
	if report.Compliant {
		t.Error("single match should trip a threshold of 1")
	}
}

func TestExtractConceptsHeuristics(t *testing.T) {
	summary := "核心概述: 「赤色彗星」坠落\n转折: 盟友背叛主角\n王都的秘密被揭露"
	concepts := extractConcepts(summary)

	if len(concepts) == 0 {
		t.Fatal("no concepts extracted")
	}

	want := map[string]bool{"赤色彗星": false}
	for _, c := range concepts {
		if _, ok := want[c]; ok {
			want[c] = true
		}
	}
	for c, found := range want {
		if !found {
			t.Errorf("concept %q not extracted from %v", c, concepts)
		}
	}

	// Event-marker clause heuristic should pick up the betrayal clause.
	var hasBetrayal bool
	for _, c := range concepts {
		if strings.Contains(c, "背叛") {
			hasBetrayal = true
		}
	}
	if !hasBetrayal {
		t.Errorf("betrayal clause missing from %v", concepts)
	}
}

func TestExtractConceptsFullWidthColon(t *testing.T) {
	concepts := extractConcepts("转折：盟友背叛主角")

	var found bool
	for _, c := range concepts {
		if c == "盟友背叛主角" {
			found = true
		}
	}
	if !found {
		t.Errorf("colon concept missing from %v", concepts)
	}
}
