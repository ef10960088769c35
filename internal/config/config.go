package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv    = "NEWSOLVR_CONFIG"
	databasePathEnv  = "NEWSOLVR_DB_PATH"
	newsAPIKeyEnv    = "NEWS_API_KEY"
	guardianKeyEnv   = "GUARDIAN_API_KEY"
	timesKeyEnv      = "TIMES_API_KEY"
	geminiKeyEnv     = "GEMINI_API_KEY"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Providers     ProviderConfig     `yaml:"providers"`
	Scrape        ScrapeConfig       `yaml:"scrape"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Web           WebConfig          `yaml:"web"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes where the embedded article store lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig drives extraction windows and dedup behavior.
type PipelineConfig struct {
	// Topic is the shared search query sent to every provider.
	Topic string `yaml:"topic"`
	// Iterations is how many consecutive windows each run walks backward in time.
	Iterations int `yaml:"iterations"`
	// LagMinutes is how far back from now the free-tier APIs allow fetching.
	LagMinutes int `yaml:"lagMinutes"`
	// WindowMinutes is the size of one extraction window.
	WindowMinutes   int `yaml:"windowMinutes"`
	DedupWindowDays int `yaml:"dedupWindowDays"`
}

// ProviderConfig groups upstream API credentials.
type ProviderConfig struct {
	NewsAPIKey  string `yaml:"newsApiKey"`
	GuardianKey string `yaml:"guardianKey"`
	TimesKey    string `yaml:"timesKey"`
}

// ScrapeConfig bounds the content enricher's HTML fetching.
type ScrapeConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	DelaySeconds   int    `yaml:"delaySeconds"`
	UserAgent      string `yaml:"userAgent"`
	// EnglishOnly drops scraped text the language detector does not classify as English.
	EnglishOnly bool `yaml:"englishOnly"`
}

// GeminiConfig defines how to contact the model-inference API.
type GeminiConfig struct {
	APIKey            string `yaml:"apiKey"`
	Model             string `yaml:"model"`
	PromptPath        string `yaml:"promptPath"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
	RequestsPerDay    int    `yaml:"requestsPerDay"`
}

// ScoringConfig carries the weight table and retention threshold.
// Weights and the sub-score maximum are configuration, not formula.
type ScoringConfig struct {
	Weights          map[string]int `yaml:"weights"`
	QualityThreshold int            `yaml:"qualityThreshold"`
}

// WebConfig describes the ranked-problems view.
type WebConfig struct {
	Addr  string `yaml:"addr"`
	Limit int    `yaml:"limit"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires the post-run digest target.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	TopN     int    `yaml:"topN"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Providers.NewsAPIKey = v
	}
	if v := os.Getenv(guardianKeyEnv); v != "" {
		c.Providers.GuardianKey = v
	}
	if v := os.Getenv(timesKeyEnv); v != "" {
		c.Providers.TimesKey = v
	}
	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.Pipeline.Topic != "" {
		base.Pipeline.Topic = override.Pipeline.Topic
	}
	if override.Pipeline.Iterations > 0 {
		base.Pipeline.Iterations = override.Pipeline.Iterations
	}
	if override.Pipeline.LagMinutes > 0 {
		base.Pipeline.LagMinutes = override.Pipeline.LagMinutes
	}
	if override.Pipeline.WindowMinutes > 0 {
		base.Pipeline.WindowMinutes = override.Pipeline.WindowMinutes
	}
	if override.Pipeline.DedupWindowDays > 0 {
		base.Pipeline.DedupWindowDays = override.Pipeline.DedupWindowDays
	}

	if override.Providers.NewsAPIKey != "" {
		base.Providers.NewsAPIKey = override.Providers.NewsAPIKey
	}
	if override.Providers.GuardianKey != "" {
		base.Providers.GuardianKey = override.Providers.GuardianKey
	}
	if override.Providers.TimesKey != "" {
		base.Providers.TimesKey = override.Providers.TimesKey
	}

	if override.Scrape.TimeoutSeconds > 0 {
		base.Scrape.TimeoutSeconds = override.Scrape.TimeoutSeconds
	}
	if override.Scrape.DelaySeconds > 0 {
		base.Scrape.DelaySeconds = override.Scrape.DelaySeconds
	}
	if override.Scrape.UserAgent != "" {
		base.Scrape.UserAgent = override.Scrape.UserAgent
	}
	if override.Scrape.EnglishOnly {
		base.Scrape.EnglishOnly = true
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.PromptPath != "" {
		base.Gemini.PromptPath = override.Gemini.PromptPath
	}
	if override.Gemini.RequestsPerMinute > 0 {
		base.Gemini.RequestsPerMinute = override.Gemini.RequestsPerMinute
	}
	if override.Gemini.RequestsPerDay > 0 {
		base.Gemini.RequestsPerDay = override.Gemini.RequestsPerDay
	}

	if len(override.Scoring.Weights) > 0 {
		base.Scoring.Weights = override.Scoring.Weights
	}
	if override.Scoring.QualityThreshold > 0 {
		base.Scoring.QualityThreshold = override.Scoring.QualityThreshold
	}

	if override.Web.Addr != "" {
		base.Web.Addr = override.Web.Addr
	}
	if override.Web.Limit > 0 {
		base.Web.Limit = override.Web.Limit
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.TopN > 0 {
		base.Notifications.Telegram.TopN = override.Notifications.Telegram.TopN
	}

	return base
}

// DefaultWeights is the weight table for the 13 sub-scores; the weights sum to 24.
func DefaultWeights() map[string]int {
	return map[string]int{
		"meaningful_problem":      5,
		"pain_intensity":          2,
		"frequency":               1,
		"market_growth":           3,
		"willingness_to_pay":      1,
		"target_customer_clarity": 1,
		"problem_awareness":       1,
		"competition":             1,
		"software_solution":       2,
		"ai_fit":                  2,
		"speed_to_mvp":            3,
		"business_potential":      1,
		"time_relevancy":          1,
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "newsolvr.db"},
		Pipeline: PipelineConfig{
			Topic:           "technology OR tech OR software OR automation OR artificial intelligence",
			Iterations:      1,
			LagMinutes:      30,
			WindowMinutes:   60,
			DedupWindowDays: 3,
		},
		Scrape: ScrapeConfig{
			TimeoutSeconds: 10,
			DelaySeconds:   1,
			UserAgent:      "newsolvr/1.0 (news aggregation; +https://github.com/newsolvr)",
		},
		Gemini: GeminiConfig{
			Model:             "gemini-2.5-flash-lite",
			RequestsPerMinute: 15,
			RequestsPerDay:    200,
		},
		Scoring: ScoringConfig{
			Weights:          DefaultWeights(),
			QualityThreshold: 85,
		},
		Web:       WebConfig{Addr: ":8080", Limit: 20},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{TopN: 5},
		},
	}
}
