// Package discovery finds candidate videos for a topic from two angles: what is
// trending now and what the longer-tail search surfaces.
package discovery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"video-strategist/agents/strategist/youtube"
	"video-strategist/internal/models"
	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"github.com/go-playground/validator/v10"
)

const (
	SourceTrending = "trending"
	SourceSearch   = "search"
)

// Provider is the part of the metadata API discovery needs.
type Provider interface {
	Search(ctx context.Context, q youtube.SearchQuery) ([]string, error)
	Videos(ctx context.Context, ids []string) ([]youtube.Item, error)
}

type Query struct {
	Topic       string
	Region      string
	ContentType models.ContentType
}

// Source produces one CandidateSet per query.
type Source struct {
	name          string
	provider      Provider
	window        time.Duration
	sendHint      bool
	maxResults    int64
	defaultRegion string
	now           func() time.Time
}

var validate = validator.New()

// NewTrending returns the recent, broad-reach source.
func NewTrending(p Provider, cfg *config.PipelineConfig) *Source {
	return newSource(SourceTrending, p, cfg, cfg.TrendingWindowDays, false)
}

// NewSearch returns the wider-window source, which also asks the provider to
// pre-filter by duration.
func NewSearch(p Provider, cfg *config.PipelineConfig) *Source {
	return newSource(SourceSearch, p, cfg, cfg.SearchWindowDays, true)
}

func newSource(name string, p Provider, cfg *config.PipelineConfig, windowDays int, hint bool) *Source {
	return &Source{
		name:          name,
		provider:      p,
		window:        time.Duration(windowDays) * 24 * time.Hour,
		sendHint:      hint,
		maxResults:    cfg.MaxResults,
		defaultRegion: cfg.DefaultRegion,
		now:           time.Now,
	}
}

func (s *Source) Name() string { return s.name }

// Fetch never fails: provider errors yield an empty set carrying the error text.
func (s *Source) Fetch(ctx context.Context, q Query) models.CandidateSet {
	set := models.CandidateSet{
		Source: s.name,
		Topic:  q.Topic,
		Region: s.region(q.Region),
		Videos: []models.VideoCandidate{},
	}
	now := s.now()

	sq := youtube.SearchQuery{
		Query:          q.Topic,
		Region:         set.Region,
		MaxResults:     s.maxResults,
		PublishedAfter: now.Add(-s.window),
	}
	if s.sendHint {
		sq.DurationHint = q.ContentType.DurationHint()
	}

	ids, err := s.provider.Search(ctx, sq)
	if err != nil {
		return s.failed(set, err)
	}
	if len(ids) == 0 {
		monitoring.RecordCandidates(s.name, 0)
		return set
	}

	items, err := s.provider.Videos(ctx, ids)
	if err != nil {
		return s.failed(set, err)
	}

	for _, item := range items {
		if len(set.Videos) == models.MaxCandidates {
			break
		}
		if !q.ContentType.Allows(item.DurationSeconds()) {
			continue
		}
		set.Videos = append(set.Videos, item.Candidate(now))
	}

	monitoring.RecordCandidates(s.name, len(set.Videos))
	slog.Debug("candidates fetched", "source", s.name, "topic", q.Topic, "region", set.Region, "found", len(ids), "kept", len(set.Videos))
	return set
}

func (s *Source) failed(set models.CandidateSet, err error) models.CandidateSet {
	slog.Warn("candidate source failed", "source", s.name, "topic", set.Topic, "error", err)
	monitoring.RecordCandidates(s.name, 0)
	set.Error = err.Error()
	return set
}

// region normalizes a region code, falling back to the configured default when
// the code is absent or not an ISO 3166-1 alpha-2 code.
func (s *Source) region(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && validate.Var(code, "iso3166_1_alpha2") == nil {
		return code
	}
	return s.defaultRegion
}
