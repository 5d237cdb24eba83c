// Package assistant generates post summaries and SEO suggestions with a
// generative model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash-8b"

var (
	ErrEmptyContent = errors.New("content is empty")
	ErrBadReply     = errors.New("model reply is not valid SEO JSON")
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

type Assistant struct {
	gen Generator
}

func New(gen Generator) *Assistant {
	return &Assistant{gen: gen}
}

const summaryPrompt = `You are a Flash Summary AI model. Create an extremely concise yet informative summary of the following blog post in exactly 2 sentences. Focus on the key points and main takeaways. Make it engaging and clear.

Blog content:
%s`

const seoPrompt = `You are an SEO optimization expert. Analyze the following content and provide SEO optimization suggestions in JSON format. Focus on creating engaging, click-worthy titles while maintaining accuracy. Include trending keywords where relevant.

Required JSON format:
{
  "suggestedTitle": "SEO-optimized title that is engaging and accurate",
  "metaDescription": "Compelling meta description under 160 characters that drives clicks",
  "keywords": ["5-7 relevant and trending keywords"]
}

Content to analyze:
%s`

// Summarize returns a two sentence summary of content.
func (a *Assistant) Summarize(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	text, err := a.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (a *Assistant) SuggestSEO(ctx context.Context, content string) (bindings.SEOSuggestion, error) {
	if strings.TrimSpace(content) == "" {
		return bindings.SEOSuggestion{}, ErrEmptyContent
	}
	text, err := a.gen.Generate(ctx, fmt.Sprintf(seoPrompt, content))
	if err != nil {
		return bindings.SEOSuggestion{}, err
	}
	return ParseSEO(text)
}

// ParseSEO extracts the suggestion object from a model reply, which may wrap
// it in a markdown code fence or surrounding prose.
func ParseSEO(reply string) (bindings.SEOSuggestion, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return bindings.SEOSuggestion{}, ErrBadReply
	}
	var s bindings.SEOSuggestion
	if err := json.Unmarshal([]byte(reply[start:end+1]), &s); err != nil {
		return bindings.SEOSuggestion{}, fmt.Errorf("%w: %w", ErrBadReply, err)
	}
	if s.SuggestedTitle == "" && s.MetaDescription == "" && len(s.Keywords) == 0 {
		return bindings.SEOSuggestion{}, ErrBadReply
	}
	return s, nil
}
