// Package config loads, defaults and validates the bot configuration from
// YAML, .env files and environment variables.
package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrValidation marks configuration that loaded but failed validation.
var ErrValidation = errors.New("invalid configuration")

// Supported completion providers.
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// Config holds the complete application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Completion CompletionConfig `mapstructure:"completion"`
	Gate       GateConfig       `mapstructure:"gate"`
	Bot        BotConfig        `mapstructure:"bot"`
	Language   LanguageConfig   `mapstructure:"language"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Bot API credentials and per-call timeouts.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"           validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=2m"`
	TypingTimeout  time.Duration `mapstructure:"typing_timeout"  validate:"min=100ms,max=1m"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-" validate:"-"`
}

// CompletionConfig selects and tunes the completion provider.
type CompletionConfig struct {
	Provider          string        `mapstructure:"provider"            validate:"oneof=deepseek openai gemini"`
	DeepSeekAPIKey    string        `mapstructure:"deepseek_api_key"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	BaseURL           string        `mapstructure:"base_url"            validate:"omitempty,url"`
	Model             string        `mapstructure:"model"`
	MaxTokens         int           `mapstructure:"max_tokens"          validate:"min=1,max=8192"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"         validate:"min=0,max=1m"`
	AnnotateLanguage  bool          `mapstructure:"annotate_language"`
	RequestsPerSecond int           `mapstructure:"requests_per_second" validate:"min=0"`
}

// APIKey returns the credential of the selected provider.
func (c CompletionConfig) APIKey() string {
	switch c.Provider {
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

// GateConfig configures the channel subscription requirement.
type GateConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
	Link    string `mapstructure:"link" validate:"omitempty,url"`
}

// ChatID returns the channel as a Bot API chat identifier: a numeric ID when
// the channel parses as one, the @username otherwise.
func (g GateConfig) ChatID() any {
	if id, err := strconv.ParseInt(g.Channel, 10, 64); err == nil {
		return id
	}
	if g.Channel != "" && !strings.HasPrefix(g.Channel, "@") {
		return "@" + g.Channel
	}
	return g.Channel
}

// JoinLink returns the link shown to users who still have to subscribe.
// A numeric channel has no public link, so validation requires Link for it.
func (g GateConfig) JoinLink() string {
	if g.Link != "" {
		return g.Link
	}
	if g.numericChannel() {
		return g.Channel
	}
	return "https://t.me/" + strings.TrimPrefix(g.Channel, "@")
}

func (g GateConfig) numericChannel() bool {
	_, err := strconv.ParseInt(g.Channel, 10, 64)
	return err == nil
}

// BotConfig holds presentation settings for replies.
type BotConfig struct {
	AckSymbols      []string    `mapstructure:"ack_symbols"      validate:"min=1,dive,required"`
	CreatorName     string      `mapstructure:"creator_name"     validate:"required"`
	CreatorUsername string      `mapstructure:"creator_username" validate:"required"`
	Flood           FloodConfig `mapstructure:"flood"`
}

// FloodConfig limits how often one user may trigger a completion.
// A zero Rate disables the limit. Limiters unused for IdleTTL are dropped by
// the flood_prune task.
type FloodConfig struct {
	Rate    float64       `mapstructure:"rate"     validate:"min=0"`
	Burst   int           `mapstructure:"burst"    validate:"min=0"`
	IdleTTL time.Duration `mapstructure:"idle_ttl" validate:"min=0"`
}

// LanguageConfig lists the selectable reply languages.
type LanguageConfig struct {
	Default   string           `mapstructure:"default"   validate:"required"`
	Available []LanguageOption `mapstructure:"available" validate:"min=1,dive"`
}

// LanguageOption is one selectable language.
type LanguageOption struct {
	Code   string   `mapstructure:"code"   validate:"required"`
	Name   string   `mapstructure:"name"   validate:"required"`
	Labels []string `mapstructure:"labels" validate:"min=1,dive,required"`
}

// DatabaseConfig points at the SQLite session database. An empty path keeps
// sessions in memory only.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule (with seconds).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}
