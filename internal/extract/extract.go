// Package extract turns free journal text into typed tags using an LLM.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
)

const prompt = `You are a silent data structuring engine. Analyze the journal entry and extract structured tags.
Return ONLY a valid JSON array (no markdown, no explanation).

Tag types:
- "Event": A specific occurrence
- "Entity": A person, pet, place, or organization
- "Sentiment/Trigger": An emotion and what triggered it
- "Core Belief": A value, opinion, or life philosophy
- "Syntax": A distinctive phrase, word, or tone pattern

Format: [{"type":"Event","value":"..."},{"type":"Entity","value":"..."}]

Journal entry:
`

// Tags asks client for the tags of text. Callers treat any error as "no tags".
func Tags(ctx context.Context, client llm.Client, text string) ([]journal.Tag, error) {
	resp, err := client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt + text}})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return Parse(resp.Content)
}

type rawTag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Parse decodes a model reply into tags. Code fences are stripped, entries
// with a blank value are dropped and a blank type becomes Other("Unknown").
func Parse(reply string) ([]journal.Tag, error) {
	reply = stripFences(reply)

	var raw []rawTag
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, reply)
	}

	tags := make([]journal.Tag, 0, len(raw))
	for _, r := range raw {
		value := strings.TrimSpace(r.Value)
		if value == "" {
			continue
		}
		typ := journal.Other("Unknown")
		if strings.TrimSpace(r.Type) != "" {
			typ = journal.ParseTagType(r.Type)
		}
		tags = append(tags, journal.Tag{Type: typ, Value: value})
	}
	return tags, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
