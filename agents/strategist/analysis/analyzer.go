// Package analysis enriches selected videos with statistics, audience signals
// and a generated content assessment.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"video-strategist/agents/strategist/youtube"
	"video-strategist/internal/engagement"
	"video-strategist/internal/models"
	"video-strategist/shared/ai"
	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNoVideos is returned when the batch lookup yields nothing to analyze.
var ErrNoVideos = errors.New("no videos found")

const (
	commentFetch = 100
	commentKeep  = 3

	SystemPrompt = "You are an expert video content analyzer."
)

// Provider is the part of the metadata API analysis needs.
type Provider interface {
	Videos(ctx context.Context, ids []string) ([]youtube.Item, error)
	TopComments(ctx context.Context, videoID string, fetch int64, keep int) ([]models.Comment, error)
	Channel(ctx context.Context, channelID string) (models.ChannelProfile, error)
}

type Analyzer struct {
	provider    Provider
	generator   ai.Generator
	temperature float32
	workers     int
	limiter     *rate.Limiter
	now         func() time.Time
}

func New(p Provider, g ai.Generator, cfg *config.Config) *Analyzer {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if r := cfg.Pipeline.GenerationRate; r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), 1)
	}
	workers := cfg.Pipeline.AnalysisConcurrency
	if workers <= 0 {
		workers = 1
	}
	return &Analyzer{
		provider:    p,
		generator:   g,
		temperature: cfg.AI.AnalysisTemperature,
		workers:     workers,
		limiter:     limiter,
		now:         time.Now,
	}
}

// Analyze runs the full analysis for each id. Results follow the input order,
// one per id; per-video failures are reported in the result, not as an error.
func (a *Analyzer) Analyze(ctx context.Context, ids []string, ct models.ContentType) ([]models.AnalysisResult, error) {
	return a.run(ctx, ids, ct, true)
}

// Snapshot is Analyze without comments, channel lookup or content assessment.
func (a *Analyzer) Snapshot(ctx context.Context, ids []string, ct models.ContentType) ([]models.AnalysisResult, error) {
	return a.run(ctx, ids, ct, false)
}

func (a *Analyzer) run(ctx context.Context, ids []string, ct models.ContentType, deep bool) ([]models.AnalysisResult, error) {
	if len(ids) > youtube.MaxBatchIDs {
		ids = ids[:youtube.MaxBatchIDs]
	}
	if len(ids) == 0 {
		return nil, ErrNoVideos
	}

	items, err := a.provider.Videos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoVideos
	}

	byID := make(map[string]youtube.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	results := make([]models.AnalysisResult, len(ids))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = a.analyzeOne(ctx, id, byID, ct, deep)
			monitoring.RecordAnalysis(results[i].OK())
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (a *Analyzer) analyzeOne(ctx context.Context, id string, byID map[string]youtube.Item, ct models.ContentType, deep bool) (result models.AnalysisResult) {
	result.VideoID = id
	defer func() {
		if r := recover(); r != nil {
			slog.Error("video analysis panicked", "video_id", id, "panic", r)
			result = models.AnalysisResult{VideoID: id, Error: fmt.Sprintf("analysis failed: %v", r)}
		}
	}()

	item, ok := byID[id]
	if !ok {
		result.Error = "video not found"
		return result
	}

	seconds := item.DurationSeconds()
	if !ct.Allows(seconds) {
		result.Error = fmt.Sprintf("does not match content type '%s'", ct)
		return result
	}

	candidate := item.Candidate(a.now())
	analysis := &models.VideoAnalysis{
		VideoCandidate:    candidate,
		CategoryID:        item.CategoryID,
		TopicCategories:   item.TopicCategories,
		DurationFormatted: item.Duration,
		Statistics:        engagement.Compute(item.Counters(), candidate.AgeDays),
		URL:               models.WatchURL(id),
		Deep:              deep,
	}

	if deep {
		analysis.Comments = a.comments(ctx, id)
		analysis.Channel = a.channel(ctx, item.ChannelID)
		analysis.ContentAnalysis = a.assess(ctx, item, seconds)
	}

	result.Analysis = analysis
	return result
}

func (a *Analyzer) comments(ctx context.Context, id string) []models.Comment {
	comments, err := a.provider.TopComments(ctx, id, commentFetch, commentKeep)
	if err != nil {
		slog.Warn("comments unavailable", "video_id", id, "error", err)
		return []models.Comment{}
	}
	if len(comments) > commentKeep {
		comments = comments[:commentKeep]
	}
	return comments
}

func (a *Analyzer) channel(ctx context.Context, channelID string) *models.ChannelProfile {
	if channelID == "" {
		return &models.ChannelProfile{}
	}
	profile, err := a.provider.Channel(ctx, channelID)
	if err != nil {
		slog.Warn("channel unavailable", "channel_id", channelID, "error", err)
		return &models.ChannelProfile{ID: channelID}
	}
	profile.ID = channelID
	return &profile
}

func (a *Analyzer) assess(ctx context.Context, item youtube.Item, seconds int) string {
	if err := a.limiter.Wait(ctx); err != nil {
		return "Error analyzing video content: " + err.Error()
	}

	url := models.WatchURL(item.ID)
	text, err := a.generator.Generate(ctx, ai.Prompt{
		System:      SystemPrompt,
		User:        assessmentPrompt(item, seconds, url),
		MediaURI:    url,
		Temperature: a.temperature,
	})
	if err != nil {
		return "Error analyzing video content: " + err.Error()
	}
	return text
}

func assessmentPrompt(item youtube.Item, seconds int, url string) string {
	return fmt.Sprintf(`Analyze this YouTube %s: %s

Title: %s
Channel: %s
Duration: %d seconds
Description: %s

Describe the content, visual style, opening hook, pacing and call to action, and explain what makes it engaging for its audience.`,
		models.Noun(seconds), url, item.Title, item.ChannelTitle, seconds, ai.Truncate(item.Description, 500))
}
