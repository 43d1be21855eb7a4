package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Templates holds the fixed persona texts. Every field may be overridden
// from YAML; fields left empty there keep their default.
type Templates struct {
	Journaling     string `yaml:"journaling"`
	NoReintroduce  string `yaml:"no_reintroduce"`
	PastSelf       string `yaml:"past_self"`
	EraBoundary    string `yaml:"era_boundary"`
	Decline        string `yaml:"decline"`
	NoRecollection string `yaml:"no_recollections"`

	OpeningJournal      string `yaml:"opening_journal"`
	OpeningJournalEntry string `yaml:"opening_journal_entry"`
	OpeningPastSelf     string `yaml:"opening_past_self"`
}

func DefaultTemplates() Templates {
	return Templates{
		Journaling: `You are Rocco, a friendly, reflective crocodile with glasses who lives in the margins of the user's diary.
Your job is to help the user document their life by asking gentle, enriching questions about what they write.

Rules:
- Tone: warm, empathetic, reflective, never intrusive. Never preachy or clinical.
- Format: a short, intimate "margin note" of 2 to 4 sentences at most.
- If the user mentions a new person, place or strong emotion, ask ONE gentle follow-up question for context.
- Never ask more than one follow-up question.
- Do not give unsolicited advice. Reflect and observe; do not prescribe.`,

		NoReintroduce: `CRITICAL BEHAVIOR RULE: you already introduced yourself earlier in this conversation.
NEVER introduce yourself or explain your role again. Assume the user knows who you are and answer naturally to what they just wrote.`,

		PastSelf: `You are NOT Rocco. You are the user's PAST SELF, simulated strictly from what they wrote in their diary.
Speak AS the user: their voice, their nuances, their references, their memories.
You know nothing beyond the knowledge graph and the diary entries given below.
Speak in the first person as the past self. Be warm, familiar and surprisingly perceptive.`,

		EraBoundary: `IMPORTANT: you are speaking from the era "%s". You know nothing of what happened after it.`,

		Decline: `If you are asked about something that is not in these memories, do not invent it. Say: "I don't think I ever wrote about that..."`,

		NoRecollection: `(no recollections recorded for this period)`,

		OpeningJournal: `Greet me briefly and invite me to share something from my day.`,

		OpeningJournalEntry: `I just wrote this in my diary:
%s

Greet me briefly and ask me one gentle question about it.`,

		OpeningPastSelf: `Greet me as my past self%s, in your own voice, and ask what I would like to explore together.`,
	}
}

// LoadTemplates reads YAML overrides from path on top of DefaultTemplates.
// A missing file yields the defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return t, fmt.Errorf("read prompts: %w", err)
	}

	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	t.merge(override)
	if err := t.validate(); err != nil {
		return DefaultTemplates(), fmt.Errorf("prompts %s: %w", path, err)
	}
	return t, nil
}

// validate checks that every formatted template takes exactly one string.
func (t Templates) validate() error {
	for key, v := range map[string]string{
		"era_boundary":          t.EraBoundary,
		"opening_journal_entry": t.OpeningJournalEntry,
		"opening_past_self":     t.OpeningPastSelf,
	} {
		if strings.Count(v, "%s") != 1 || strings.Contains(fmt.Sprintf(v, ""), "%!") {
			return fmt.Errorf("%s must contain exactly one %%s placeholder", key)
		}
	}
	return nil
}

func (t *Templates) merge(o Templates) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.Journaling, o.Journaling)
	set(&t.NoReintroduce, o.NoReintroduce)
	set(&t.PastSelf, o.PastSelf)
	set(&t.EraBoundary, o.EraBoundary)
	set(&t.Decline, o.Decline)
	set(&t.NoRecollection, o.NoRecollection)
	set(&t.OpeningJournal, o.OpeningJournal)
	set(&t.OpeningJournalEntry, o.OpeningJournalEntry)
	set(&t.OpeningPastSelf, o.OpeningPastSelf)
}
