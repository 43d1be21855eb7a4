package journal

import (
	"encoding/json"
	"time"
)

// Entry is a single journal record. Entries are never edited after Append.
type Entry struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	AIResponse string    `json:"aiResponse,omitempty"`
	Tags       []Tag     `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasTimestamp reports whether CreatedAt was present and parseable.
func (e Entry) HasTimestamp() bool { return !e.CreatedAt.IsZero() }

// Day formats CreatedAt as YYYY-MM-DD, or "?" when unknown.
func (e Entry) Day() string {
	if !e.HasTimestamp() {
		return "?"
	}
	return e.CreatedAt.UTC().Format("2006-01-02")
}

type entryJSON struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	AIResponse string `json:"aiResponse,omitempty"`
	Tags       []Tag  `json:"tags"`
	CreatedAt  string `json:"createdAt"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		ID:         e.ID,
		Content:    e.Content,
		AIResponse: e.AIResponse,
		Tags:       e.Tags,
	}
	if out.Tags == nil {
		out.Tags = []Tag{}
	}
	if e.HasTimestamp() {
		out.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON leaves CreatedAt zero when the stored value is missing or
// unparseable instead of failing the whole log.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var in struct {
		ID         int64           `json:"id"`
		Content    string          `json:"content"`
		AIResponse string          `json:"aiResponse"`
		Tags       []Tag           `json:"tags"`
		CreatedAt  json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = Entry{ID: in.ID, Content: in.Content, AIResponse: in.AIResponse, Tags: in.Tags}
	var raw string
	if json.Unmarshal(in.CreatedAt, &raw) == nil {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			e.CreatedAt = ts.UTC()
		}
	}
	return nil
}
