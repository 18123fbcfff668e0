package config

import (
	"time"

	"github.com/spf13/viper"
)

// Provider endpoints and models used when base_url or model are left empty.
const (
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-2.0-flash"
)

var defaultLanguages = []map[string]any{
	{"code": "en", "name": "English", "labels": []string{"🇬🇧 English", "English"}},
	{"code": "hi", "name": "Hindi", "labels": []string{"🇮🇳 Hindi", "हिन्दी", "Hindi"}},
	{"code": "bn", "name": "Bengali", "labels": []string{"🇧🇩 Bangla", "বাংলা", "Bangla"}},
}

var defaults = map[string]any{
	"logger.level": "info",
	"logger.json":  false,

	"telegram.token":           "",
	"telegram.request_timeout": 15 * time.Second,
	"telegram.typing_timeout":  3 * time.Second,

	"completion.provider":            ProviderDeepSeek,
	"completion.base_url":            "",
	"completion.model":               "",
	"completion.max_tokens":          100,
	"completion.temperature":         0.7,
	"completion.timeout":             30 * time.Second,
	"completion.max_retries":         2,
	"completion.retry_delay":         time.Second,
	"completion.annotate_language":   true,
	"completion.requests_per_second": 0,

	"gate.enabled": false,
	"gate.channel": "",
	"gate.link":    "",

	"bot.ack_symbols":      []string{"🤖", "✨", "💡", "🤔", "😎", "🔥"},
	"bot.creator_name":     "Rajdev",
	"bot.creator_username": "raj_dev_01",
	"bot.flood.rate":       0.0,
	"bot.flood.burst":      3,
	"bot.flood.idle_ttl":   "30m",

	"language.default":   "en",
	"language.available": defaultLanguages,

	"database.path": "",

	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 0 4 * * *",
	"scheduler.tasks.session_stats.enabled":    true,
	"scheduler.tasks.session_stats.schedule":   "0 0 * * * *",
	"scheduler.tasks.flood_prune.enabled":      true,
	"scheduler.tasks.flood_prune.schedule":     "0 */10 * * * *",

	"sentry.dsn":         "",
	"sentry.environment": "production",
}

// envBindings maps config keys to the well-known variable names accepted in
// addition to the LINGOBOT_ prefixed ones.
var envBindings = map[string]string{
	"telegram.token":              "TELEGRAM_BOT_TOKEN",
	"completion.deepseek_api_key": "DEEPSEEK_API_KEY",
	"completion.openai_api_key":   "OPENAI_API_KEY",
	"completion.gemini_api_key":   "GEMINI_API_KEY",
	"sentry.dsn":                  "SENTRY_DSN",
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// applyProviderDefaults fills the endpoint and model of the selected provider.
func (c *Config) applyProviderDefaults() {
	switch c.Completion.Provider {
	case ProviderDeepSeek:
		if c.Completion.BaseURL == "" {
			c.Completion.BaseURL = DefaultDeepSeekBaseURL
		}
		if c.Completion.Model == "" {
			c.Completion.Model = DefaultDeepSeekModel
		}
	case ProviderOpenAI:
		if c.Completion.BaseURL == "" {
			c.Completion.BaseURL = DefaultOpenAIBaseURL
		}
		if c.Completion.Model == "" {
			c.Completion.Model = DefaultOpenAIModel
		}
	case ProviderGemini:
		if c.Completion.Model == "" {
			c.Completion.Model = DefaultGeminiModel
		}
	}
}
