// Package prompt assembles the system prompts for the two conversational
// modes. Assembly is pure: everything the prompt mentions is passed in.
package prompt

import (
	"fmt"
	"strings"

	"ai-memories/internal/history"
	"ai-memories/internal/journal"
	"ai-memories/internal/knowledge"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
)

type Assembler struct {
	t Templates
}

func NewAssembler(t Templates) *Assembler {
	return &Assembler{t: t}
}

type JournalingInput struct {
	Profile profile.Profile
	Summary knowledge.Summary
	// History is the normalized transcript that accompanies the prompt.
	History []llm.Message
	// Recent entries are rendered as-is; the caller trims them.
	Recent []journal.Entry
}

type PastSelfInput struct {
	Profile profile.Profile
	Summary knowledge.Summary
	// Entries are already era-filtered and trimmed by the caller.
	Entries []journal.Entry
	Era     journal.Era
}

type OpeningInput struct {
	Mode history.Mode
	Era  journal.Era
	// Entry is the just-written journal text, if any.
	Entry string
}

func (a *Assembler) Journaling(in JournalingInput) string {
	var b strings.Builder
	b.WriteString(a.t.Journaling)

	if len(in.History) > 0 {
		b.WriteString("\n\n")
		b.WriteString(a.t.NoReintroduce)
	}

	b.WriteString("\n\nUser profile: ")
	b.WriteString(profileLine(in.Profile))

	if !in.Summary.IsNoMemories() {
		b.WriteString("\n\nKnowledge graph:\n")
		b.WriteString(in.Summary.String())
	}

	if len(in.Recent) > 0 {
		b.WriteString("\n\nRecent entries:\n")
		b.WriteString(renderEntries(in.Recent))
	}
	return b.String()
}

func (a *Assembler) PastSelf(in PastSelfInput) string {
	var b strings.Builder
	b.WriteString(a.t.PastSelf)

	// a start-only era has no "after" to cut off at
	if in.Era.End != nil || in.Era.Label != "" {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, a.t.EraBoundary, in.Era.Name())
	}

	b.WriteString("\n\nProfile:\n")
	b.WriteString(profileBlock(in.Profile))

	if !in.Summary.IsNoMemories() {
		b.WriteString("\n\nKnowledge graph:\n")
		b.WriteString(in.Summary.String())
	}

	b.WriteString("\n\nAvailable memories:\n")
	if len(in.Entries) == 0 {
		b.WriteString(a.t.NoRecollection)
	} else {
		b.WriteString(renderEntries(in.Entries))
	}

	b.WriteString("\n\n")
	b.WriteString(a.t.Decline)
	return b.String()
}

// Opening returns the synthetic first user turn that starts a conversation.
func (a *Assembler) Opening(in OpeningInput) string {
	if in.Mode == history.ModePastSelf {
		from := ""
		if name := in.Era.Name(); in.Era.Bounded() && name != "" {
			from = fmt.Sprintf(" from %q", name)
		}
		return fmt.Sprintf(a.t.OpeningPastSelf, from)
	}
	if entry := strings.TrimSpace(in.Entry); entry != "" {
		return fmt.Sprintf(a.t.OpeningJournalEntry, entry)
	}
	return a.t.OpeningJournal
}

func profileLine(p profile.Profile) string {
	return fmt.Sprintf("Name/life stage: %s | Foundational memory: %s | Voice: %s",
		orUnknown(p.NameAndLifeStage()), orUnknown(p.FoundationalMemory()), orUnknown(p.LinguisticStyle()))
}

func profileBlock(p profile.Profile) string {
	return fmt.Sprintf("Name/life stage: %s\nFoundational memory: %s\nVoice: %s",
		orUnknown(p.NameAndLifeStage()), orUnknown(p.FoundationalMemory()), orUnknown(p.LinguisticStyle()))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}

func renderEntries(entries []journal.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s]: %s", e.Day(), e.Content))
	}
	return strings.Join(lines, "\n\n")
}
