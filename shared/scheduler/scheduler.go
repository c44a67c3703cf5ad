// Package scheduler runs an agent on a cron schedule and reports each run's
// outcome to a monitoring.Monitor served on the health port.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics is the per-run summary an agent hands back on success.
type Metrics interface {
	GetSummary() string
}

// AgentEvents lets an agent report outcomes while it runs. A partial failure
// leaves the service healthy; a critical one marks it unhealthy until the next
// successful run.
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

type Scheduler struct {
	agent      Agent
	schedule   string
	healthPort int
	monitor    *monitoring.Monitor
	cron       *cron.Cron
}

func New(cfg *config.Config, agent Agent) *Scheduler {
	logger := cronLogger{log: slog.With("agent", agent.Name())}
	return &Scheduler{
		agent:      agent,
		schedule:   cfg.Digest.Schedule,
		healthPort: cfg.Monitoring.HealthPort,
		monitor:    monitoring.NewMonitor(),
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Start initializes the agent, serves health endpoints and runs the agent on
// its schedule until ctx ends. Ticks that fire while a run is still going are
// skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	health := monitoring.NewHealthServer(s.monitor, s.healthPort)
	health.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = health.Shutdown(shutdownCtx)
	}()

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			slog.Error("scheduled run failed", "agent", s.agent.Name(), "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	slog.Info("scheduler started", "agent", s.agent.Name(), "schedule", s.schedule)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped", "agent", s.agent.Name())
	return ctx.Err()
}

// RunOnce runs the agent a single time. An error the agent did not already
// report as critical is recorded here.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	name := s.agent.Name()
	start := time.Now()
	slog.Info("run starting", "agent", name)

	var reported bool
	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s: %w", name, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			reported = true
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s: %w", name, err), duration)
		},
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		if !reported {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s: %w", name, err), time.Since(start))
		}
		return fmt.Errorf("%s run failed: %w", name, err)
	}
	return nil
}

// cronLogger routes cron's own messages (skipped ticks, recovered panics)
// through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
