package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"golang.org/x/text/language"
)

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded active.<lang>.json file into a fresh bundle.
func (app *LifeWeeksApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		lang := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if lang == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, path.Join(localeDir, name)); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		langs = append(langs, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
		)
	}

	app.SupportedLanguages = langs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer follows the language preference.
func (app *LifeWeeksApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	if app.I18nBundle == nil {
		return
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg translates key, returning the key itself when no translation exists.
func (app *LifeWeeksApp) GetMsg(key string) string {
	msg, ok := app.localize(key, nil)
	if !ok {
		return key
	}
	return msg
}

// GetMsgf translates a templated key. When the translation is missing the
// fallback format is applied to args instead.
func (app *LifeWeeksApp) GetMsgf(key string, data map[string]any, fallback string, args ...any) string {
	msg, ok := app.localize(key, data)
	if !ok {
		return fmt.Sprintf(fallback, args...)
	}
	return msg
}

func (app *LifeWeeksApp) localize(key string, data map[string]any) (string, bool) {
	if app.Localizer == nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, config.ErrLocNotInit,
		)
		return "", false
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}

// formatDate renders a calendar day in the localized short format.
func (app *LifeWeeksApp) formatDate(d time.Time) string {
	format := app.GetMsg(config.TKeyFormatDate)
	if format == config.TKeyFormatDate {
		format = config.DateFormatDisplay
	}
	return d.Format(format)
}
