package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"video-strategist/internal/models"
	"video-strategist/shared/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SendReport mails a digest. A digest with no entries is not sent.
func (s *Sender) SendReport(report *models.DigestReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if len(report.Entries) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Video Strategy Digest - %d of %d Reports (%s)",
		report.Succeeded(), len(report.Entries), report.Date.Format("Jan 2, 2006"))

	body, err := generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 720px; margin: auto;">
<h1>Video Strategy Digest</h1>
<p>{{.Date.Format "Monday, Jan 2, 2006"}}</p>
{{range .Entries}}
<hr>
<h2>{{.Prompt}}</h2>
<p><em>{{.ContentType}}{{if .Region}} &middot; {{.Region}}{{end}}</em></p>
{{if .Error}}
<p style="color: #b00020;">Report failed: {{.Error}}</p>
{{else}}{{with .Report}}
<p><strong>Audience:</strong> {{.TargetAudience}}</p>
<p><strong>Goal:</strong> {{.OverallGoal}}</p>
{{if .ContentRecommendations.ContentTypes}}<p><strong>Create:</strong></p>
<ul>{{range .ContentRecommendations.ContentTypes}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .MarketingTactics.RecommendedTagsAndKeywords}}<p><strong>Keywords:</strong>
{{range $i, $k := .MarketingTactics.RecommendedTagsAndKeywords}}{{if $i}}, {{end}}{{$k.Keyword}} ({{$k.Count}}){{end}}</p>{{end}}
<p><strong>Trends:</strong> {{.TrendAnalysis.CurrentTrends}}</p>
{{if .Videos.AnalyzedVideos}}<h3>Analyzed videos</h3>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><th align="left">Video</th><th>Views</th><th>Likes</th><th>Views/day</th><th>Engagement</th></tr>
{{range .Videos.AnalyzedVideos}}<tr>
<td><a href="{{.VideoURL}}">{{.Title}}</a></td>
<td>{{.Statistics.Views}}</td><td>{{.Statistics.Likes}}</td>
<td>{{.Statistics.ViewsPerDay}}</td><td>{{.Statistics.EngagementRate}}%</td>
</tr>{{end}}
</table>{{end}}
{{end}}{{end}}
{{end}}
</body>
</html>
`))

func generateEmailBody(report *models.DigestReport) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
