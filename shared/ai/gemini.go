package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements Generator on the Gemini API.
type GeminiGenerator struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

func NewGeminiGenerator(ctx context.Context, cfg *config.AIConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	text, err := g.generate(ctx, p, p.MediaURI != "")
	if err != nil && p.MediaURI != "" && isMediaRejected(err) {
		// The model could not ingest the video, so judge it from the text alone.
		slog.Warn("media rejected, retrying text-only", "uri", p.MediaURI, "error", Truncate(err.Error(), 200))
		return g.generate(ctx, p, false)
	}
	return text, err
}

func (g *GeminiGenerator) generate(ctx context.Context, p Prompt, withMedia bool) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	parts := []*genai.Part{genai.NewPartFromText(p.User)}
	if withMedia {
		parts = append(parts, genai.NewPartFromURI(p.MediaURI, "video/mp4"))
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.Temperature),
	}
	if p.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	start := time.Now()
	result, err := g.models.GenerateContent(ctx, g.model, contents, genCfg)
	if err == nil && strings.TrimSpace(result.Text()) == "" {
		err = ErrEmptyResponse
	}
	monitoring.RecordGeneration(err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", g.model, err)
	}

	return result.Text(), nil
}

func isMediaRejected(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "token count") || strings.Contains(msg, "INVALID_ARGUMENT")
}
