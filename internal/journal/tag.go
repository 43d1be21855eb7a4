package journal

import "strings"

// TagKind is the closed set of tag categories produced by extraction.
type TagKind uint8

const (
	// TagOther holds any type name extraction returned that is not in the closed set.
	TagOther TagKind = iota
	TagEvent
	TagEntity
	TagSentiment
	TagCoreBelief
	TagSyntax
)

var kindNames = map[TagKind]string{
	TagEvent:      "Event",
	TagEntity:     "Entity",
	TagSentiment:  "Sentiment/Trigger",
	TagCoreBelief: "Core Belief",
	TagSyntax:     "Syntax",
}

// TagType is a TagKind plus, for TagOther, the unrecognized name verbatim.
// It is comparable and can be used as a map key.
type TagType struct {
	Kind TagKind
	Name string
}

var (
	Event      = TagType{Kind: TagEvent}
	Entity     = TagType{Kind: TagEntity}
	Sentiment  = TagType{Kind: TagSentiment}
	CoreBelief = TagType{Kind: TagCoreBelief}
	Syntax     = TagType{Kind: TagSyntax}
)

// Other returns the pass-through type for an unrecognized name.
func Other(name string) TagType { return TagType{Kind: TagOther, Name: name} }

// ParseTagType maps a type name to its closed-set variant, matching
// case-insensitively; anything else becomes Other(name).
func ParseTagType(s string) TagType {
	trimmed := strings.TrimSpace(s)
	for k, name := range kindNames {
		if strings.EqualFold(trimmed, name) {
			return TagType{Kind: k}
		}
	}
	return Other(s)
}

func (t TagType) String() string {
	if t.Kind == TagOther {
		return t.Name
	}
	return kindNames[t.Kind]
}

func (t TagType) IsKnown() bool { return t.Kind != TagOther }

func (t TagType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TagType) UnmarshalText(b []byte) error {
	*t = ParseTagType(string(b))
	return nil
}

// Tag is a typed annotation owned by exactly one Entry.
type Tag struct {
	Type  TagType `json:"type"`
	Value string  `json:"value"`
}
