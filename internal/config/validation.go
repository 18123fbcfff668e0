package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if c.Completion.APIKey() == "" {
		return fmt.Errorf("%w: completion.%s_api_key is required for provider %q",
			ErrValidation, c.Completion.Provider, c.Completion.Provider)
	}

	if c.Gate.Enabled && c.Gate.Channel == "" {
		return fmt.Errorf("%w: gate.channel is required when the gate is enabled", ErrValidation)
	}
	if c.Gate.Enabled && c.Gate.numericChannel() && c.Gate.Link == "" {
		return fmt.Errorf("%w: gate.link is required when gate.channel is a numeric chat ID", ErrValidation)
	}

	seenCodes := make(map[string]bool, len(c.Language.Available))
	seenLabels := make(map[string]string)
	for _, opt := range c.Language.Available {
		if _, err := language.Parse(opt.Code); err != nil {
			return fmt.Errorf("%w: language code %q: %v", ErrValidation, opt.Code, err)
		}
		if seenCodes[opt.Code] {
			return fmt.Errorf("%w: language %q listed twice", ErrValidation, opt.Code)
		}
		seenCodes[opt.Code] = true

		for _, label := range opt.Labels {
			label = strings.TrimSpace(label)
			if owner, ok := seenLabels[label]; ok {
				return fmt.Errorf("%w: label %q used by both %q and %q", ErrValidation, label, owner, opt.Code)
			}
			seenLabels[label] = opt.Code
		}
	}
	if !seenCodes[c.Language.Default] {
		return fmt.Errorf("%w: default language %q is not in language.available", ErrValidation, c.Language.Default)
	}

	return nil
}

// Redact shortens a secret for logs.
func Redact(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-2:]
}
