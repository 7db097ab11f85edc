package story

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NovelSnapshot is the request-scoped view of a novel that generation and
// planning work against. It is re-fetched before every decision so the engine
// always observes the latest persisted outline.
type NovelSnapshot struct {
	ID      uuid.UUID
	Title   string
	Genre   string
	Premise string
	Outline string

	Characters []CharacterBrief
	Settings   []SettingBrief
}

// CharacterBrief is the slice of a character record that prompts care about.
type CharacterBrief struct {
	Name        string
	Role        string
	Description string
}

// SettingBrief is a world-building entry (location, faction, rule system).
type SettingBrief struct {
	Name        string
	Description string
}

// CharacterSheet renders the character list as prompt-ready lines.
func (s *NovelSnapshot) CharacterSheet() string {
	if len(s.Characters) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range s.Characters {
		if c.Role != "" {
			fmt.Fprintf(&b, "- %s（%s）：%s\n", c.Name, c.Role, c.Description)
		} else {
			fmt.Fprintf(&b, "- %s：%s\n", c.Name, c.Description)
		}
	}
	return b.String()
}

// SettingSheet renders world settings as prompt-ready lines.
func (s *NovelSnapshot) SettingSheet() string {
	if len(s.Settings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range s.Settings {
		fmt.Fprintf(&b, "- %s：%s\n", w.Name, w.Description)
	}
	return b.String()
}
