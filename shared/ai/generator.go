// Package ai wraps the text generation backend behind a small interface.
package ai

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Prompt is one generation request. MediaURI, when set, is attached as a video
// part next to the user text.
type Prompt struct {
	System      string
	User        string
	MediaURI    string
	Temperature float32
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// StripCodeFence removes one leading ``` or ```json marker and one trailing ```
// marker, then trims surrounding whitespace. Text without fences is only trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most maxBytes bytes plus an ellipsis, cutting on a
// rune boundary.
func Truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := max(maxBytes, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
