// Package i18n localizes user-facing messages. Arabic is the default
// language; English is the only other bundled catalogue.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localesFS embed.FS

const (
	LangAR = "ar"
	LangEN = "en"
)

var supported = []language.Tag{language.Arabic, language.English}

// Translator resolves message ids against the embedded catalogues.
type Translator struct {
	bundle      *i18n.Bundle
	matcher     language.Matcher
	defaultLang string
}

// New loads the embedded catalogues. defaultLang is used when a request names
// no supported language; an empty or unsupported value falls back to Arabic.
func New(defaultLang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.Arabic)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".toml") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localesFS, path.Join("locales", f.Name())); err != nil {
			return nil, fmt.Errorf("load %s: %w", f.Name(), err)
		}
	}

	t := &Translator{bundle: bundle, matcher: language.NewMatcher(supported), defaultLang: LangAR}
	if lang := t.match(defaultLang); lang != "" {
		t.defaultLang = lang
	}
	return t, nil
}

// DefaultLang returns the language used when negotiation finds no match.
func (t *Translator) DefaultLang() string { return t.defaultLang }

// Translate returns the localized text for id. Unknown ids are returned as-is.
func (t *Translator) Translate(lang, id string, data map[string]any) string {
	loc := i18n.NewLocalizer(t.bundle, lang, t.defaultLang)
	lc := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		lc.TemplateData = data
	}
	msg, err := loc.Localize(lc)
	if err != nil {
		return id
	}
	return msg
}

// Negotiate picks the first supported language from the candidates, which may
// be plain codes ("en") or Accept-Language header values. Empty candidates are
// skipped; if none match, the default language is returned.
func (t *Translator) Negotiate(candidates ...string) string {
	for _, c := range candidates {
		if lang := t.match(c); lang != "" {
			return lang
		}
	}
	return t.defaultLang
}

func (t *Translator) match(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return ""
	}
	tag, _, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
