// Package prompt builds the LLM prompts for act planning and chapter
// generation. Prompts are plain strings; model configuration travels
// separately through the llm options.
package prompt

import (
	"fmt"
	"strings"

	"ai-novelforge-be/pkg/story"
	"ai-novelforge-be/pkg/story/outline"
)

// Builder renders prompts from a novel snapshot. It carries no state beyond
// formatting; a zero Builder is usable.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// NextActOutline asks the model to expand the target stage into per-chapter
// detail. contextText is the trailing detail of the most recently planned
// chapters, bounded by the caller to keep the prompt small.
func (b *Builder) NextActOutline(snap *story.NovelSnapshot, target *outline.ArcStage, contextText string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "你是一位长篇小说的剧情策划。小说《%s》（%s）正在连载。\n", snap.Title, snap.Genre)
	if snap.Premise != "" {
		fmt.Fprintf(&sb, "故事前提：%s\n", snap.Premise)
	}
	if cs := snap.CharacterSheet(); cs != "" {
		sb.WriteString("主要角色：\n")
		sb.WriteString(cs)
	}
	if ws := snap.SettingSheet(); ws != "" {
		sb.WriteString("世界观设定：\n")
		sb.WriteString(ws)
	}

	fmt.Fprintf(&sb, "\n即将进入「%s %s」（第%d-%d章）。该幕的核心概述：\n%s\n",
		target.Label, target.Title, target.Range.Start, target.Range.End, target.Summary)

	if contextText != "" {
		sb.WriteString("\n最近已规划章节的细纲（保持情节连贯）：\n")
		sb.WriteString(contextText)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb,
		"\n请为第%d章到第%d章逐章撰写细纲。每章独立一行，必须以「第N章: 」开头，"+
			"概括该章的核心事件与情绪转折。只输出细纲本身，不要输出其他说明。\n",
		target.Range.Start, target.Range.End)

	return sb.String()
}

// ChapterInput bundles everything the chapter prompt needs for one iteration.
type ChapterInput struct {
	ChapterNumber int
	Stage         *outline.ArcStage // nil when the outline has no stages
	ChapterDetail string            // detailed plan for this chapter, may be ""
	PreviousTail  string            // closing text of the previous chapter
	UserPrompt    string            // only set on the first chapter of a batch
}

// Chapter renders the prose-generation prompt for one chapter.
func (b *Builder) Chapter(snap *story.NovelSnapshot, in ChapterInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "你是一位小说家，正在续写长篇小说《%s》（%s）。\n", snap.Title, snap.Genre)
	if snap.Premise != "" {
		fmt.Fprintf(&sb, "故事前提：%s\n", snap.Premise)
	}
	if cs := snap.CharacterSheet(); cs != "" {
		sb.WriteString("主要角色：\n")
		sb.WriteString(cs)
	}
	if ws := snap.SettingSheet(); ws != "" {
		sb.WriteString("世界观设定：\n")
		sb.WriteString(ws)
	}

	if in.Stage != nil {
		fmt.Fprintf(&sb, "\n当前处于「%s %s」（第%d-%d章）：\n%s\n",
			in.Stage.Label, in.Stage.Title, in.Stage.Range.Start, in.Stage.Range.End, in.Stage.Summary)
	}
	if in.ChapterDetail != "" {
		fmt.Fprintf(&sb, "\n本章细纲：\n%s\n", in.ChapterDetail)
	}
	if in.PreviousTail != "" {
		fmt.Fprintf(&sb, "\n上一章结尾（衔接用）：\n%s\n", in.PreviousTail)
	}
	if in.UserPrompt != "" {
		fmt.Fprintf(&sb, "\n作者对本章的额外要求：%s\n", in.UserPrompt)
	}

	fmt.Fprintf(&sb,
		"\n请撰写第%d章的正文。第一行输出「第%d章: 章节标题」，其后为正文。"+
			"不要透露后续幕的剧情。\n",
		in.ChapterNumber, in.ChapterNumber)

	return sb.String()
}
