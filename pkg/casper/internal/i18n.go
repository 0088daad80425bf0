package internal

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFiles embed.FS

// DefaultLanguage is used when no language is configured or the configured
// one cannot be parsed.
var DefaultLanguage = language.Portuguese

// Messages localizes status message IDs for one language.
type Messages struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// NewMessages loads the embedded message files and returns a localizer for
// lang. Unknown or empty languages fall back to DefaultLanguage.
func NewMessages(lang string) (*Messages, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	paths, err := fs.Glob(localeFiles, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}
	for _, path := range paths {
		if _, err := bundle.LoadMessageFileFS(localeFiles, path); err != nil {
			return nil, fmt.Errorf("load locale file %s: %w", path, err)
		}
	}

	tag := DefaultLanguage
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			tag = parsed
		} else {
			GetInternalLogger().Warn("Invalid language; using default", "value", lang, "error", err)
		}
	}

	return &Messages{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String(), DefaultLanguage.String()),
	}, nil
}

// Language returns the requested language tag.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// Text returns the localized message for id. Missing messages render as the
// id itself so a status line is never blank because of a translation gap.
func (m *Messages) Text(id string, data map[string]any) string {
	text, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		GetInternalLogger().Debug("Missing translation", "id", id, "language", m.tag.String(), "error", err)
	}
	if text == "" {
		return id
	}
	return text
}
