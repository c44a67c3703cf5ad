package strategist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"video-strategist/internal/models"
	"video-strategist/shared/config"
	"video-strategist/shared/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	fail map[string]error
	reqs []Request
}

func (r *stubRunner) Run(_ context.Context, req Request) (*models.ReportDocument, error) {
	r.reqs = append(r.reqs, req)
	if err := r.fail[req.Prompt]; err != nil {
		return nil, err
	}
	return &models.ReportDocument{MarketingStrategy: &models.StrategyReport{TargetAudience: "audience for " + req.Prompt}}, nil
}

type stubMailer struct {
	sent []*models.DigestReport
	err  error
}

func (m *stubMailer) SendReport(r *models.DigestReport) error {
	m.sent = append(m.sent, r)
	return m.err
}

type eventLog struct {
	success  []string
	partial  []error
	critical []error
}

func (l *eventLog) events() *scheduler.AgentEvents {
	return &scheduler.AgentEvents{
		OnSuccess:         func(m scheduler.Metrics, _ time.Duration) { l.success = append(l.success, m.GetSummary()) },
		OnPartialFailure:  func(err error, _ time.Duration) { l.partial = append(l.partial, err) },
		OnCriticalFailure: func(err error, _ time.Duration) { l.critical = append(l.critical, err) },
	}
}

func digestConfig(requests ...config.DigestRequest) *config.Config {
	return &config.Config{
		Email: config.EmailConfig{
			SMTPServer: "smtp.example.com",
			Username:   "u",
			Password:   "p",
			FromEmail:  "from@example.com",
			ToEmail:    "to@example.com",
		},
		Digest: config.DigestConfig{Schedule: "0 0 9 * * *", Requests: requests},
	}
}

func newTestAgent(t *testing.T, cfg *config.Config, runner *stubRunner, mailer *stubMailer) *DigestAgent {
	t.Helper()
	agent := NewDigestAgent(cfg, func() (Runner, Mailer, error) { return runner, mailer, nil })
	require.NoError(t, agent.Initialize())
	return agent
}

func TestDigestAgentName(t *testing.T) {
	assert.Equal(t, "Video Strategy Digest", NewDigestAgent(&config.Config{}, nil).Name())
}

func TestDigestRunOnce(t *testing.T) {
	runner := &stubRunner{}
	mailer := &stubMailer{}
	cfg := digestConfig(
		config.DigestRequest{Prompt: "drone photography", ContentType: "shorts", RegionCode: "US"},
		config.DigestRequest{Prompt: "street food"},
	)
	log := &eventLog{}

	require.NoError(t, newTestAgent(t, cfg, runner, mailer).RunOnce(context.Background(), log.events()))

	require.Len(t, runner.reqs, 2)
	assert.Equal(t, models.ContentShorts, runner.reqs[0].ContentType)
	assert.Equal(t, models.ContentBoth, runner.reqs[1].ContentType)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, 2, mailer.sent[0].Succeeded())
	assert.Equal(t, []string{"2 requests, 2 reports, 0 failed"}, log.success)
	assert.Empty(t, log.partial)
}

func TestDigestPartialFailure(t *testing.T) {
	runner := &stubRunner{fail: map[string]error{"street food": ErrSynthesis}}
	mailer := &stubMailer{}
	cfg := digestConfig(
		config.DigestRequest{Prompt: "drone photography"},
		config.DigestRequest{Prompt: "street food"},
		config.DigestRequest{Prompt: "cooking", ContentType: "reels"},
	)
	log := &eventLog{}

	require.NoError(t, newTestAgent(t, cfg, runner, mailer).RunOnce(context.Background(), log.events()))

	require.Len(t, mailer.sent, 1)
	entries := mailer.sent[0].Entries
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].Report)
	assert.Contains(t, entries[1].Error, "synthesis")
	assert.Contains(t, entries[2].Error, "invalid content type")
	assert.Len(t, log.partial, 2)
	assert.Equal(t, []string{"3 requests, 1 reports, 2 failed"}, log.success)
}

func TestDigestAllFailedIsCritical(t *testing.T) {
	runner := &stubRunner{fail: map[string]error{"drone photography": errors.New("down")}}
	mailer := &stubMailer{}
	log := &eventLog{}

	err := newTestAgent(t, digestConfig(config.DigestRequest{Prompt: "drone photography"}), runner, mailer).
		RunOnce(context.Background(), log.events())
	require.Error(t, err)
	assert.Empty(t, mailer.sent)
	require.Len(t, log.critical, 1)
	assert.True(t, strings.Contains(log.critical[0].Error(), "all 1 digest requests failed"))
}

func TestDigestMailFailureIsCritical(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp refused")}
	log := &eventLog{}

	err := newTestAgent(t, digestConfig(config.DigestRequest{Prompt: "drones"}), &stubRunner{}, mailer).
		RunOnce(context.Background(), log.events())
	assert.ErrorContains(t, err, "smtp refused")
	assert.Len(t, log.critical, 1)
	assert.Empty(t, log.success)
}

func TestDigestInitializeValidatesConfig(t *testing.T) {
	called := false
	agent := NewDigestAgent(&config.Config{}, func() (Runner, Mailer, error) {
		called = true
		return nil, nil, nil
	})
	assert.Error(t, agent.Initialize())
	assert.False(t, called)
}
