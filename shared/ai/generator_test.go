package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", "  {\"a\":1}\n", `{"a":1}`},
		{"leading only", "```json {\"a\":1}", `{"a":1}`},
		{"trailing only", "{\"a\":1}```", `{"a":1}`},
		{"upper case tag", "```JSON\n[]\n```", `[]`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFence(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripCodeFence(got), "stripping must be idempotent")
		})
	}
}

type fakeModels struct {
	calls   [][]*genai.Part
	configs []*genai.GenerateContentConfig
	respond func(call int, parts []*genai.Part) (*genai.GenerateContentResponse, error)
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	parts := contents[0].Parts
	f.calls = append(f.calls, parts)
	f.configs = append(f.configs, cfg)
	return f.respond(len(f.calls), parts)
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
	}
}

func TestGeminiGeneratorSendsPrompt(t *testing.T) {
	fake := &fakeModels{respond: func(int, []*genai.Part) (*genai.GenerateContentResponse, error) {
		return textResponse("a drone short"), nil
	}}
	g := &GeminiGenerator{models: fake, model: "test-model"}

	out, err := g.Generate(context.Background(), Prompt{
		System:      "You are an expert video content analyzer.",
		User:        "Analyze this YouTube short",
		MediaURI:    "https://www.youtube.com/watch?v=abc",
		Temperature: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "a drone short", out)

	require.Len(t, fake.calls, 1)
	require.Len(t, fake.calls[0], 2)
	assert.Equal(t, "Analyze this YouTube short", fake.calls[0][0].Text)
	require.NotNil(t, fake.calls[0][1].FileData)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", fake.calls[0][1].FileData.FileURI)

	require.NotNil(t, fake.configs[0].Temperature)
	assert.Equal(t, float32(0), *fake.configs[0].Temperature)
	require.NotNil(t, fake.configs[0].SystemInstruction)
}

func TestGeminiGeneratorFallsBackToText(t *testing.T) {
	fake := &fakeModels{respond: func(call int, parts []*genai.Part) (*genai.GenerateContentResponse, error) {
		if len(parts) > 1 {
			return nil, errors.New("Error 400, Message: input token count exceeds the maximum, Status: INVALID_ARGUMENT")
		}
		return textResponse("metadata only"), nil
	}}
	g := &GeminiGenerator{models: fake, model: "test-model"}

	out, err := g.Generate(context.Background(), Prompt{User: "u", MediaURI: "https://example.com/v"})
	require.NoError(t, err)
	assert.Equal(t, "metadata only", out)
	require.Len(t, fake.calls, 2)
	assert.Len(t, fake.calls[1], 1)
}

func TestGeminiGeneratorErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		fake := &fakeModels{respond: func(int, []*genai.Part) (*genai.GenerateContentResponse, error) {
			return textResponse("   "), nil
		}}
		g := &GeminiGenerator{models: fake, model: "m"}

		_, err := g.Generate(context.Background(), Prompt{User: "u"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("other error is not retried", func(t *testing.T) {
		fake := &fakeModels{respond: func(int, []*genai.Part) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota exhausted")
		}}
		g := &GeminiGenerator{models: fake, model: "m"}

		_, err := g.Generate(context.Background(), Prompt{User: "u", MediaURI: "https://example.com/v"})
		assert.Error(t, err)
		assert.Len(t, fake.calls, 1)
	})
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(_ context.Context, p Prompt) (string, error) {
		return p.User + "!", nil
	})
	out, err := g.Generate(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))

	// "é" is two bytes; a cut inside it must back off to the rune start.
	got := Truncate("caféteria", 4)
	assert.Equal(t, "caf...", got)
	assert.True(t, utf8.ValidString(got))

	hindi := strings.Repeat("ड्रोन ", 200)
	got = Truncate(hindi, 500)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 503)
}
