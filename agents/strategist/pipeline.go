// Package strategist turns a content request into a video marketing strategy:
// two discovery sources, a selection, deep analysis and a synthesized report.
package strategist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"video-strategist/agents/strategist/analysis"
	"video-strategist/agents/strategist/discovery"
	"video-strategist/agents/strategist/selection"
	"video-strategist/agents/strategist/youtube"
	"video-strategist/internal/models"
	"video-strategist/shared/ai"
	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Provider is the full metadata capability the pipeline's stages use.
type Provider interface {
	Search(ctx context.Context, q youtube.SearchQuery) ([]string, error)
	Videos(ctx context.Context, ids []string) ([]youtube.Item, error)
	TopComments(ctx context.Context, videoID string, fetch int64, keep int) ([]models.Comment, error)
	Channel(ctx context.Context, channelID string) (models.ChannelProfile, error)
}

// ErrMissingPrompt is returned for a request without a prompt.
var ErrMissingPrompt = errors.New("prompt is required")

type Request struct {
	Prompt      string
	ContentType models.ContentType
	Region      string
}

// NewRequest validates raw request values.
func NewRequest(prompt, contentType, region string) (Request, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Request{}, ErrMissingPrompt
	}
	ct, err := models.ParseContentType(contentType)
	if err != nil {
		return Request{}, err
	}
	return Request{Prompt: prompt, ContentType: ct, Region: region}, nil
}

type Pipeline struct {
	trending    *discovery.Source
	search      *discovery.Source
	selector    *selection.Policy
	analyzer    *analysis.Analyzer
	generator   ai.Generator
	temperature float32
}

func New(cfg *config.Config, provider Provider, generator ai.Generator) *Pipeline {
	return &Pipeline{
		trending:    discovery.NewTrending(provider, &cfg.Pipeline),
		search:      discovery.NewSearch(provider, &cfg.Pipeline),
		selector:    selection.New(generator, cfg.AI.ReasoningTemperature),
		analyzer:    analysis.New(provider, generator, cfg),
		generator:   generator,
		temperature: cfg.AI.ReasoningTemperature,
	}
}

// Run executes every stage for one request. Only synthesis failures and
// cancellation are returned; discovery and analysis problems shrink the
// evidence instead. A run whose context ends is reported with the context
// error, never as ErrSynthesis.
func (p *Pipeline) Run(ctx context.Context, req Request) (doc *models.ReportDocument, err error) {
	rc := RunContext{
		RunID:       uuid.NewString(),
		Prompt:      req.Prompt,
		ContentType: req.ContentType,
		Region:      req.Region,
	}
	log := slog.With("run_id", rc.RunID)
	start := time.Now()
	log.Info("pipeline started", "prompt", req.Prompt, "content_type", req.ContentType, "region", req.Region)
	defer func() {
		monitoring.RecordPipelineRun(err)
		if err != nil {
			log.Error("pipeline failed", "error", err, "duration", time.Since(start))
			return
		}
		log.Info("pipeline finished", "duration", time.Since(start))
	}()

	topic, rationale := p.planTopic(ctx, req.Prompt)
	rc.Topic = topic
	log.Debug("topic planned", "topic", topic)

	query := discovery.Query{Topic: topic, Region: req.Region, ContentType: req.ContentType}
	var trendingSet, searchSet models.CandidateSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stageTimer(StageTrending)()
		trendingSet = p.trending.Fetch(gctx, query)
		return nil
	})
	g.Go(func() error {
		defer stageTimer(StageSearch)()
		searchSet = p.search.Fetch(gctx, query)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc.Region = trendingSet.Region
	rc = rc.With(StageOutput{StageTrending, candidateStageText(rationale, rc, trendingSet)})
	rc = rc.With(StageOutput{StageSearch, candidateStageText(rationale, rc, searchSet)})
	log.Info("candidates found", "trending", len(trendingSet.Videos), "search", len(searchSet.Videos))

	done := stageTimer(StageSelection)
	sel := p.selector.Select(ctx, selection.Input{Prompt: req.Prompt, Trending: trendingSet, Search: searchSet})
	done()
	rc = rc.With(StageOutput{StageSelection, selectionStageText(sel)})
	log.Info("videos selected", "featured", sel.FeaturedIDs(), "remaining", len(sel.Remaining))

	done = stageTimer(StageDeepAnalysis)
	stage, deep, snapshots := p.analyze(ctx, log, sel, req.ContentType)
	done()
	rc = rc.With(StageOutput{StageDeepAnalysis, analysisStageText(stage)})

	done = stageTimer(StageSynthesis)
	text, err := p.generator.Generate(ctx, ai.Prompt{
		System:      strategistSystem,
		User:        synthesisPrompt(rc),
		Temperature: p.temperature,
	})
	done()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("synthesis: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	report, err := Draft{Raw: text}.Parse()
	if err != nil {
		return nil, err
	}
	reconcile(report, newEvidence(deep, snapshots))

	return &models.ReportDocument{MarketingStrategy: report}, nil
}

func (p *Pipeline) analyze(ctx context.Context, log *slog.Logger, sel models.SelectionResult, ct models.ContentType) (analysisStage, []models.AnalysisResult, []models.AnalysisResult) {
	stage := analysisStage{Analyzed: []models.AnalysisResult{}, RemainingMetrics: []models.AnalysisResult{}}

	var deep, snapshots []models.AnalysisResult
	if ids := sel.FeaturedIDs(); len(ids) > 0 {
		results, err := p.analyzer.Analyze(ctx, ids, ct)
		if err != nil {
			log.Warn("deep analysis failed", "error", err)
			stage.Errors = append(stage.Errors, "deep analysis: "+err.Error())
		}
		deep = results
	}
	if ids := sel.RemainingIDs(); len(ids) > 0 {
		results, err := p.analyzer.Snapshot(ctx, ids, ct)
		if err != nil {
			log.Warn("remaining metrics failed", "error", err)
			stage.Errors = append(stage.Errors, "remaining metrics: "+err.Error())
		}
		snapshots = results
	}

	if deep != nil {
		stage.Analyzed = deep
	}
	if snapshots != nil {
		stage.RemainingMetrics = snapshots
	}
	return stage, deep, snapshots
}

func stageTimer(stage Stage) func() {
	start := time.Now()
	return func() {
		monitoring.RecordStage(string(stage), time.Since(start))
	}
}
