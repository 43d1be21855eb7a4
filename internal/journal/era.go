package journal

import (
	"fmt"

	"ai-memories/internal/apperr"
)

// Era is an inclusive year range. A nil bound is open on that side.
type Era struct {
	Start *int   `json:"yearStart,omitempty"`
	End   *int   `json:"yearEnd,omitempty"`
	Label string `json:"label,omitempty"`
}

// NewEra builds an era from optional bounds.
func NewEra(start, end *int, label string) Era {
	return Era{Start: start, End: end, Label: label}
}

// Years returns a closed era covering [start, end].
func Years(start, end int) Era {
	return Era{Start: &start, End: &end}
}

func (e Era) Bounded() bool { return e.Start != nil || e.End != nil }

func (e Era) Validate() error {
	if e.Start != nil && e.End != nil && *e.Start > *e.End {
		return apperr.Validation("era", fmt.Sprintf("yearStart %d is after yearEnd %d", *e.Start, *e.End))
	}
	return nil
}

// Contains reports whether year lies within the era.
func (e Era) Contains(year int) bool {
	if e.Start != nil && year < *e.Start {
		return false
	}
	if e.End != nil && year > *e.End {
		return false
	}
	return true
}

// Name is the human label for the era, derived from the bounds when unset.
func (e Era) Name() string {
	switch {
	case e.Label != "":
		return e.Label
	case e.Start != nil && e.End != nil && *e.Start == *e.End:
		return fmt.Sprintf("%d", *e.Start)
	case e.Start != nil && e.End != nil:
		return fmt.Sprintf("%d-%d", *e.Start, *e.End)
	case e.Start != nil:
		return fmt.Sprintf("since %d", *e.Start)
	case e.End != nil:
		return fmt.Sprintf("up to %d", *e.End)
	default:
		return ""
	}
}

// FilterByEra selects entries whose creation year falls within era.
// An unbounded era returns entries itself. Entries without a usable
// timestamp are excluded from any bounded query.
func FilterByEra(entries []Entry, era Era) []Entry {
	if !era.Bounded() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.HasTimestamp() {
			continue
		}
		if era.Contains(e.CreatedAt.UTC().Year()) {
			out = append(out, e)
		}
	}
	return out
}
