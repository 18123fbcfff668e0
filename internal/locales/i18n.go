// Package locales holds the translated reply texts and renders them through
// a go-i18n bundle.
package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// Message IDs.
const (
	MsgGreeting             = "Greeting"
	MsgLanguageMenu         = "LanguageMenu"
	MsgLanguageSet          = "LanguageSet"
	MsgGateRequired         = "GateRequired"
	MsgRefreshVerified      = "RefreshVerified"
	MsgRefreshNotSubscribed = "RefreshNotSubscribed"
	MsgHelp                 = "Help"
	MsgAbout                = "About"
	MsgCreator              = "Creator"
	MsgCompletionFailed     = "CompletionFailed"
	MsgAttribution          = "Attribution"
	MsgWelcomeMember        = "WelcomeMember"
	MsgWelcomeMemberGate    = "WelcomeMemberGate"
	MsgSlowDown             = "SlowDown"

	MsgCommandStart    = "CommandStart"
	MsgCommandHelp     = "CommandHelp"
	MsgCommandAbout    = "CommandAbout"
	MsgCommandCreator  = "CommandCreator"
	MsgCommandLanguage = "CommandLanguage"
	MsgCommandRefresh  = "CommandRefresh"
)

// Catalog renders localized messages.
type Catalog struct {
	bundle *i18n.Bundle
	def    language.Tag
	log    *slog.Logger
}

// NewCatalog loads every embedded message file. defaultLang is used when a
// message is missing in the requested language.
func NewCatalog(defaultLang string, log *slog.Logger) (*Catalog, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}
	if log == nil {
		log = slog.Default()
	}

	bundle := i18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to load message file %s: %w", entry.Name(), err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no message files embedded")
	}

	log.Debug("Loaded locale catalog", "files", loaded, "default_language", def.String())
	return &Catalog{bundle: bundle, def: def, log: log.With("component", "locales")}, nil
}

// Languages returns the tags that have a message file.
func (c *Catalog) Languages() []language.Tag {
	return c.bundle.LanguageTags()
}

// Message renders msgID in lang. Missing translations fall back to the
// default language, and finally to the message ID itself.
func (c *Catalog) Message(lang, msgID string, data map[string]any) string {
	lc := &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data}

	msg, err := i18n.NewLocalizer(c.bundle, lang, c.def.String()).Localize(lc)
	if err == nil {
		return msg
	}

	c.log.Error("Failed to localize message", "message_id", msgID, "language", lang, "error", err)
	return msgID
}
