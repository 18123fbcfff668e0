// Package language holds the enumerated set of reply languages and maps
// keyboard labels to them.
package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"

	"github.com/edgard/lingobot/internal/config"
)

// Language is one selectable reply language.
type Language struct {
	Code   string
	Tag    textlang.Tag
	Name   string
	Labels []string
}

// Label is the text shown on the selection keyboard.
func (l Language) Label() string {
	return l.Labels[0]
}

// Registry is an immutable lookup over the configured languages.
type Registry struct {
	languages []Language
	byCode    map[string]int
	byLabel   map[string]int
	def       int
}

// NewRegistry builds a registry from configuration. defaultCode must be one
// of the configured codes.
func NewRegistry(options []config.LanguageOption, defaultCode string) (*Registry, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no languages configured")
	}

	r := &Registry{
		languages: make([]Language, 0, len(options)),
		byCode:    make(map[string]int, len(options)),
		byLabel:   make(map[string]int),
		def:       -1,
	}

	for i, opt := range options {
		tag, err := textlang.Parse(opt.Code)
		if err != nil {
			return nil, fmt.Errorf("invalid language code %q: %w", opt.Code, err)
		}
		if len(opt.Labels) == 0 {
			return nil, fmt.Errorf("language %q has no labels", opt.Code)
		}
		if _, dup := r.byCode[opt.Code]; dup {
			return nil, fmt.Errorf("language %q configured twice", opt.Code)
		}

		labels := make([]string, 0, len(opt.Labels))
		for _, label := range opt.Labels {
			label = strings.TrimSpace(label)
			if other, dup := r.byLabel[label]; dup {
				return nil, fmt.Errorf("label %q used by %q and %q", label, options[other].Code, opt.Code)
			}
			r.byLabel[label] = i
			labels = append(labels, label)
		}

		r.byCode[opt.Code] = i
		r.languages = append(r.languages, Language{Code: opt.Code, Tag: tag, Name: opt.Name, Labels: labels})
		if opt.Code == defaultCode {
			r.def = i
		}
	}

	if r.def < 0 {
		return nil, fmt.Errorf("default language %q is not configured", defaultCode)
	}
	return r, nil
}

// Match returns the language whose label equals the trimmed text.
func (r *Registry) Match(text string) (Language, bool) {
	i, ok := r.byLabel[strings.TrimSpace(text)]
	if !ok {
		return Language{}, false
	}
	return r.languages[i], true
}

// Lookup returns the language with the given code.
func (r *Registry) Lookup(code string) (Language, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return Language{}, false
	}
	return r.languages[i], true
}

// Resolve returns the language with the given code, or the default when the
// code is unknown.
func (r *Registry) Resolve(code string) Language {
	if l, ok := r.Lookup(code); ok {
		return l
	}
	return r.Default()
}

// Default returns the baseline language for users without a session.
func (r *Registry) Default() Language {
	return r.languages[r.def]
}

// All returns the languages in configuration order.
func (r *Registry) All() []Language {
	out := make([]Language, len(r.languages))
	copy(out, r.languages)
	return out
}
