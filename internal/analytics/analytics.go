package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-memories/internal/journal"
)

// DailyStats summarizes one day of journaling.
type DailyStats struct {
	Date        string         `json:"date"`
	Entries     int            `json:"entries"`
	Words       int            `json:"words"`
	WithReply   int            `json:"with_reply"`
	TagsTotal   int            `json:"tags_total"`
	TagsByType  map[string]int `json:"tags_by_type"`
	NewEntities []string       `json:"new_entities"`
}

// AnalyzeDay computes statistics for the day of targetDate. Entries without
// a timestamp never count. An entity is "new" when no earlier entry
// mentioned it.
func AnalyzeDay(entries []journal.Entry, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:        startOfDay.Format("2006-01-02"),
		TagsByType:  make(map[string]int),
		NewEntities: []string{},
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.HasTimestamp() || !e.CreatedAt.Before(startOfDay) {
			continue
		}
		for _, t := range e.Tags {
			if t.Type == journal.Entity {
				seen[strings.ToLower(t.Value)] = true
			}
		}
	}

	for _, e := range entries {
		if !e.HasTimestamp() || e.CreatedAt.Before(startOfDay) || !e.CreatedAt.Before(endOfDay) {
			continue
		}
		stats.Entries++
		stats.Words += len(strings.Fields(e.Content))
		if e.AIResponse != "" {
			stats.WithReply++
		}
		for _, t := range e.Tags {
			stats.TagsTotal++
			stats.TagsByType[t.Type.String()]++
			key := strings.ToLower(t.Value)
			if t.Type == journal.Entity && !seen[key] {
				seen[key] = true
				stats.NewEntities = append(stats.NewEntities, t.Value)
			}
		}
	}
	return stats
}

// GenerateReportSummary renders the stats as a short digest.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Journal digest for %s\n\n", ds.Date)

	if ds.Entries == 0 {
		b.WriteString("Nothing was written today.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Entries: %d (%d words)\n", ds.Entries, ds.Words)
	fmt.Fprintf(&b, "- Answered by the companion: %d\n", ds.WithReply)
	fmt.Fprintf(&b, "- Tags extracted: %d\n", ds.TagsTotal)

	if len(ds.TagsByType) > 0 {
		types := make([]string, 0, len(ds.TagsByType))
		for t := range ds.TagsByType {
			types = append(types, t)
		}
		sort.Strings(types)
		b.WriteString("\nTags by type:\n")
		for _, t := range types {
			fmt.Fprintf(&b, "- %s: %d\n", t, ds.TagsByType[t])
		}
	}

	if len(ds.NewEntities) > 0 {
		fmt.Fprintf(&b, "\nNew in your story: %s\n", strings.Join(ds.NewEntities, ", "))
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
