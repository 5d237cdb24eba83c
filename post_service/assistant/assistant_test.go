package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestSummarize(t *testing.T) {
	gen := &fakeGenerator{reply: "  Go is fun. Channels help.\n"}
	a := New(gen)

	summary, err := a.Summarize(context.Background(), "<p>Go post</p>")
	require.NoError(t, err)
	assert.Equal(t, "Go is fun. Channels help.", summary)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "exactly 2 sentences")
	assert.Contains(t, gen.prompts[0], "<p>Go post</p>")
}

func TestSummarizeEmptyContent(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := New(gen).Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Empty(t, gen.prompts)
}

func TestSummarizeGeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := New(&fakeGenerator{err: boom}).Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
}

func TestSuggestSEO(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"suggestedTitle\":\"Go Channels\",\"metaDescription\":\"Learn channels\",\"keywords\":[\"go\",\"channels\"]}\n```"}

	s, err := New(gen).SuggestSEO(context.Background(), "content")
	require.NoError(t, err)
	assert.Equal(t, bindings.SEOSuggestion{
		SuggestedTitle:  "Go Channels",
		MetaDescription: "Learn channels",
		Keywords:        []string{"go", "channels"},
	}, s)
	assert.Contains(t, gen.prompts[0], "Required JSON format")
}

func TestParseSEO(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		ok    bool
	}{
		{"plain json", `{"suggestedTitle":"T","metaDescription":"D","keywords":["k"]}`, true},
		{"prose around", "Here you go:\n{\"suggestedTitle\":\"T\"}\nEnjoy", true},
		{"no object", "I cannot help with that", false},
		{"broken json", `{"suggestedTitle":`, false},
		{"empty object", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSEO(tt.reply)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadReply)
			}
		})
	}
}
