package strategist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"video-strategist/internal/models"
	"video-strategist/shared/config"
	"video-strategist/shared/scheduler"
)

// Runner runs one request through the pipeline.
type Runner interface {
	Run(ctx context.Context, req Request) (*models.ReportDocument, error)
}

type Mailer interface {
	SendReport(report *models.DigestReport) error
}

// DigestMetrics summarizes one digest tick.
type DigestMetrics struct {
	Requests  int
	Succeeded int
	Failed    int
}

func (m DigestMetrics) GetSummary() string {
	return fmt.Sprintf("%d requests, %d reports, %d failed", m.Requests, m.Succeeded, m.Failed)
}

// DigestAgent runs every configured request on each scheduler tick and mails
// the reports. It implements scheduler.Agent.
type DigestAgent struct {
	config *config.Config
	init   func() (Runner, Mailer, error)
	runner Runner
	mailer Mailer
	now    func() time.Time
}

// NewDigestAgent builds an agent whose runner and mailer are created lazily by
// init on Initialize.
func NewDigestAgent(cfg *config.Config, init func() (Runner, Mailer, error)) *DigestAgent {
	return &DigestAgent{config: cfg, init: init, now: time.Now}
}

func (d *DigestAgent) Name() string {
	return "Video Strategy Digest"
}

func (d *DigestAgent) Initialize() error {
	if d.runner != nil && d.mailer != nil {
		return nil
	}
	if err := d.config.ValidateDigest(); err != nil {
		return fmt.Errorf("digest config: %w", err)
	}
	runner, mailer, err := d.init()
	if err != nil {
		return err
	}
	d.runner, d.mailer = runner, mailer
	slog.Info("digest agent initialized", "requests", len(d.config.Digest.Requests))
	return nil
}

func (d *DigestAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	start := time.Now()
	report := &models.DigestReport{Date: d.now()}
	metrics := DigestMetrics{Requests: len(d.config.Digest.Requests)}

	for i, r := range d.config.Digest.Requests {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := models.DigestEntry{Prompt: r.Prompt, Region: r.RegionCode}
		req, err := NewRequest(r.Prompt, r.ContentType, r.RegionCode)
		if err == nil {
			entry.ContentType = req.ContentType
			var doc *models.ReportDocument
			doc, err = d.runner.Run(ctx, req)
			if err == nil {
				entry.Report = doc.MarketingStrategy
			}
		}
		if err != nil {
			metrics.Failed++
			entry.Error = err.Error()
			events.OnPartialFailure(fmt.Errorf("request %d (%q): %w", i, r.Prompt, err), time.Since(start))
		} else {
			metrics.Succeeded++
		}
		report.Entries = append(report.Entries, entry)
	}

	if metrics.Requests > 0 && metrics.Succeeded == 0 {
		err := fmt.Errorf("all %d digest requests failed", metrics.Requests)
		events.OnCriticalFailure(err, time.Since(start))
		return err
	}

	if err := d.mailer.SendReport(report); err != nil {
		err = fmt.Errorf("failed to send digest: %w", err)
		events.OnCriticalFailure(err, time.Since(start))
		return err
	}

	events.OnSuccess(metrics, time.Since(start))
	return nil
}
