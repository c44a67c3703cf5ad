package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when neither the config file nor the
// environment provides a required secret.
var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Email      EmailConfig      `yaml:"email"`
	Digest     DigestConfig     `yaml:"digest"`
}

type YouTubeConfig struct {
	APIKey         string        `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID       string        `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret   string        `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile      string        `yaml:"token_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// UsesOAuth reports whether the client should authenticate with the stored
// OAuth token instead of an API key.
func (y YouTubeConfig) UsesOAuth() bool {
	return y.APIKey == "" && y.ClientID != "" && y.ClientSecret != ""
}

type AIConfig struct {
	GeminiAPIKey         string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model                string        `yaml:"model"`
	AnalysisTemperature  float32       `yaml:"analysis_temperature"`
	ReasoningTemperature float32       `yaml:"reasoning_temperature"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
}

type PipelineConfig struct {
	DefaultRegion       string  `yaml:"default_region"`
	MaxResults          int64   `yaml:"max_results"`
	TrendingWindowDays  int     `yaml:"trending_window_days"`
	SearchWindowDays    int     `yaml:"search_window_days"`
	AnalysisConcurrency int     `yaml:"analysis_concurrency"`
	GenerationRate      float64 `yaml:"generation_rate"` // calls per second, 0 = unlimited
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// DigestConfig lists the requests the scheduled digest runs on every tick.
type DigestConfig struct {
	Schedule string          `yaml:"schedule"`
	Requests []DigestRequest `yaml:"requests"`
}

type DigestRequest struct {
	Prompt      string `yaml:"prompt"`
	ContentType string `yaml:"content_type"`
	RegionCode  string `yaml:"region_code"`
}

const (
	MaxSearchResults = 50

	defaultModel    = "gemini-2.5-flash"
	defaultSchedule = "0 0 9 * * *" // daily at 9 AM, with seconds
)

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML, fills secrets from the environment and applies defaults.
// It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	fill(&c.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	fill(&c.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	fill(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	fill(&c.Email.Username, "EMAIL_USERNAME")
	fill(&c.Email.Password, "EMAIL_PASSWORD")
}

func (c *Config) applyDefaults() {
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.RequestTimeout <= 0 {
		c.YouTube.RequestTimeout = 15 * time.Second
	}

	if c.AI.Model == "" {
		c.AI.Model = defaultModel
	}
	if c.AI.ReasoningTemperature == 0 {
		c.AI.ReasoningTemperature = 0.5
	}
	if c.AI.RequestTimeout <= 0 {
		c.AI.RequestTimeout = 90 * time.Second
	}

	if c.Pipeline.DefaultRegion == "" {
		c.Pipeline.DefaultRegion = "IN"
	}
	if c.Pipeline.MaxResults <= 0 {
		c.Pipeline.MaxResults = 15
	}
	if c.Pipeline.MaxResults > MaxSearchResults {
		c.Pipeline.MaxResults = MaxSearchResults
	}
	if c.Pipeline.TrendingWindowDays <= 0 {
		c.Pipeline.TrendingWindowDays = 30
	}
	if c.Pipeline.SearchWindowDays <= 0 {
		c.Pipeline.SearchWindowDays = 120
	}
	if c.Pipeline.AnalysisConcurrency <= 0 {
		c.Pipeline.AnalysisConcurrency = 4
	}

	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.PipelineTimeout <= 0 {
		c.Server.PipelineTimeout = 5 * time.Minute
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = defaultSchedule
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" && !c.YouTube.UsesOAuth() {
		return fmt.Errorf("%w: YouTube API key or OAuth client is required (set YOUTUBE_API_KEY or youtube.api_key, or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)", ErrMissingCredential)
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("%w: Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)", ErrMissingCredential)
	}
	if c.AI.AnalysisTemperature < 0 || c.AI.ReasoningTemperature < 0 {
		return fmt.Errorf("ai temperatures must not be negative")
	}
	if c.Pipeline.GenerationRate < 0 {
		return fmt.Errorf("pipeline.generation_rate must not be negative")
	}
	return nil
}

// ValidateDigest checks the settings only the scheduled digest needs.
func (c *Config) ValidateDigest() error {
	if c.Email.SMTPServer == "" {
		return fmt.Errorf("email.smtp_server is required for the digest")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("%w: email username is required (set EMAIL_USERNAME or email.username)", ErrMissingCredential)
	}
	if c.Email.Password == "" {
		return fmt.Errorf("%w: email password is required (set EMAIL_PASSWORD or email.password)", ErrMissingCredential)
	}
	if c.Email.ToEmail == "" || c.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email and email.to_email are required for the digest")
	}
	if _, err := cronParser.Parse(c.Digest.Schedule); err != nil {
		return fmt.Errorf("invalid digest.schedule %q: %w", c.Digest.Schedule, err)
	}
	if len(c.Digest.Requests) == 0 {
		return fmt.Errorf("digest.requests must list at least one request")
	}
	for i, r := range c.Digest.Requests {
		if r.Prompt == "" {
			return fmt.Errorf("digest.requests[%d].prompt is required", i)
		}
	}
	return nil
}
