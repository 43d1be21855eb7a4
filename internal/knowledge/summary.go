// Package knowledge derives the accumulated view of tags across journal entries.
package knowledge

import (
	"strings"
	"time"

	"ai-memories/internal/journal"
)

// NoMemoriesText is how the empty-journal sentinel renders in prompts.
const NoMemoriesText = "No memories recorded yet."

// Group is the deduplicated values seen for one tag type, in first-seen order.
type Group struct {
	Type   journal.TagType `json:"type"`
	Values []string        `json:"values"`
}

// Summary is the knowledge view of a journal. The zero value is a real but
// empty summary; NoMemories is the distinct sentinel for an empty journal.
type Summary struct {
	noMemories bool
	groups     []Group
}

// NoMemories is returned by Summarize for an empty journal.
var NoMemories = Summary{noMemories: true}

func (s Summary) IsNoMemories() bool { return s.noMemories }

// Groups returns a copy of the groups in first-seen type order.
func (s Summary) Groups() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = Group{Type: g.Type, Values: append([]string(nil), g.Values...)}
	}
	return out
}

// Values returns the values recorded for t, or nil.
func (s Summary) Values(t journal.TagType) []string {
	for _, g := range s.groups {
		if g.Type == t {
			return append([]string(nil), g.Values...)
		}
	}
	return nil
}

// String renders one "[Type]: a | b" line per group.
func (s Summary) String() string {
	if s.noMemories {
		return NoMemoriesText
	}
	lines := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		lines = append(lines, "["+g.Type.String()+"]: "+strings.Join(g.Values, " | "))
	}
	return strings.Join(lines, "\n")
}

// Summarize groups every tag of every entry by type, keeping each value
// once per type in first-seen order.
func Summarize(entries []journal.Entry) Summary {
	if len(entries) == 0 {
		return NoMemories
	}
	var s Summary
	index := make(map[journal.TagType]int)
	seen := make(map[journal.TagType]map[string]struct{})
	for _, e := range entries {
		for _, tag := range e.Tags {
			i, ok := index[tag.Type]
			if !ok {
				i = len(s.groups)
				index[tag.Type] = i
				seen[tag.Type] = make(map[string]struct{})
				s.groups = append(s.groups, Group{Type: tag.Type})
			}
			if _, dup := seen[tag.Type][tag.Value]; dup {
				continue
			}
			seen[tag.Type][tag.Value] = struct{}{}
			s.groups[i].Values = append(s.groups[i].Values, tag.Value)
		}
	}
	return s
}

// TagRecord is a tag with a back-reference to the entry that owns it.
type TagRecord struct {
	journal.Tag
	EntryID   int64     `json:"entryId"`
	CreatedAt time.Time `json:"date"`
}

// ListAllTags flattens tags in entry order, then within-entry order.
func ListAllTags(entries []journal.Entry) []TagRecord {
	out := make([]TagRecord, 0)
	for _, e := range entries {
		for _, tag := range e.Tags {
			out = append(out, TagRecord{Tag: tag, EntryID: e.ID, CreatedAt: e.CreatedAt})
		}
	}
	return out
}
