package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-memories/internal/journal"
	"ai-memories/internal/llm"
)

type fakeLLM struct {
	resp llm.Response
	err  error
	got  []llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, msgs []llm.Message) (llm.Response, error) {
	f.got = msgs
	return f.resp, f.err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []journal.Tag
	}{
		{
			name:  "bare array",
			reply: `[{"type":"Entity","value":"Rocco"}]`,
			want:  []journal.Tag{{Type: journal.Entity, Value: "Rocco"}},
		},
		{
			name:  "fenced json",
			reply: "```json\n[{\"type\":\"Core Belief\",\"value\":\"family first\"}]\n```",
			want:  []journal.Tag{{Type: journal.CoreBelief, Value: "family first"}},
		},
		{
			name:  "unknown and blank types",
			reply: `[{"type":"Place","value":"Retiro"},{"type":"","value":"x"},{"type":"Event","value":"  "}]`,
			want: []journal.Tag{
				{Type: journal.Other("Place"), Value: "Retiro"},
				{Type: journal.Other("Unknown"), Value: "x"},
			},
		},
		{
			name:  "empty array",
			reply: `[]`,
			want:  []journal.Tag{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, reply := range []string{"Sure! Here are your tags", `{"type":"Event"}`, ""} {
		_, err := Parse(reply)
		assert.Error(t, err, reply)
	}
}

func TestTags(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: `[{"type":"Entity","value":"Rocco"}]`}}
	tags, err := Tags(context.Background(), f, "Fui al parque con mi perro Rocco")
	require.NoError(t, err)
	assert.Equal(t, []journal.Tag{{Type: journal.Entity, Value: "Rocco"}}, tags)
	require.Len(t, f.got, 1)
	assert.True(t, strings.HasSuffix(f.got[0].Content, "Fui al parque con mi perro Rocco"))

	_, err = Tags(context.Background(), &fakeLLM{err: errors.New("quota")}, "x")
	assert.Error(t, err)
}
