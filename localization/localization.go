package localization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/config"
)

const (
	mapKeyCulture   = "culture"
	mapKeyUICulture = "ui_culture"
)

// ToMap writes the culture pair of the execution context into m, typically message headers.
func ToMap(ctx context.Context, cultures *culture.Manager, m map[string]string) map[string]string {
	m[mapKeyCulture] = cultures.Current(ctx).Name()
	m[mapKeyUICulture] = cultures.CurrentUI(ctx).Name()
	return m
}

// FromMap starts a new execution context for work received with m. The context
// begins from the defaults and adopts whichever cultures m names.
func FromMap(ctx context.Context, cultures *culture.Manager, m map[string]string) (context.Context, error) {
	ctx = cultures.Defaults().Spawn(ctx)
	state := culture.FromContext(ctx)

	if name, ok := m[mapKeyCulture]; ok {
		c, err := cultures.Resolve(name)
		if err != nil {
			return ctx, err
		}
		state.SetCurrent(c)
	}

	if name, ok := m[mapKeyUICulture]; ok {
		c, err := cultures.Resolve(name)
		if err != nil {
			return ctx, err
		}
		state.SetCurrentUI(c)
	}

	return ctx, nil
}

type Manager interface {
	Bundle() *i18n.Bundle
	Translate(ctx context.Context, request any, messageID string) string
	TranslateWithMap(
		ctx context.Context,
		request any,
		messageID string,
		variables map[string]any,
	) string
	TranslateWithMapAndCount(
		ctx context.Context,
		request any,
		messageID string,
		variables map[string]any,
		count int,
	) string
}

type managerImpl struct {
	bundle *i18n.Bundle
}

// NewManager loads messages.<lang>.toml from translationsFolder for every language.
func NewManager(translationsFolder string, languages ...string) (Manager, error) {
	if translationsFolder == "" {
		translationsFolder = "localization"
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range languages {
		_, err := bundle.LoadMessageFile(fmt.Sprintf("%s/messages.%v.toml", translationsFolder, lang))
		if err != nil {
			return nil, fmt.Errorf("could not load translations for %s: %w", lang, err)
		}
	}

	return &managerImpl{bundle: bundle}, nil
}

// NewManagerFromConfig loads the translations folder and languages named in cfg.
func NewManagerFromConfig(cfg config.ConfigurationCulture) (Manager, error) {
	if cfg == nil {
		return nil, errors.New("translations configuration is missing")
	}
	return NewManager(cfg.GetTranslationsFolder(), cfg.GetTranslationLanguages()...)
}

// Bundle Access the translation bundle instantiated in the system.
func (s *managerImpl) Bundle() *i18n.Bundle {
	return s.bundle
}

// Translate performs a quick translation based on the supplied message id.
func (s *managerImpl) Translate(ctx context.Context, request any, messageID string) string {
	return s.TranslateWithMap(ctx, request, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the supplied message id.
func (s *managerImpl) TranslateWithMap(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
) string {
	return s.TranslateWithMapAndCount(ctx, request, messageID, variables, 1)
}

// TranslateWithMapAndCount translates messageID, pluralized by count, into the language
// request selects. A request carrying culture state is translated in its current UI culture.
func (s *managerImpl) TranslateWithMapAndCount(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
	count int,
) string {
	var languageSlice []string

	switch v := request.(type) {
	case *http.Request:
		languageSlice = append(LanguagesFromState(v.Context()), ExtractLanguageFromHTTPRequest(v)...)

	case context.Context:
		languageSlice = append(LanguagesFromState(v), ExtractLanguageFromGrpcRequest(v)...)

	case *culture.Culture:
		languageSlice = cultureLanguages(v)

	case string:
		languageSlice = []string{v}

	case []string:
		languageSlice = v

	default:
		logger := util.Log(ctx).WithField("messageID", messageID).WithField("variables", variables)
		logger.Warn("TranslateWithMapAndCount -- no valid request object found, use string, []string, culture, context or http.Request")
		return messageID
	}

	localizer := i18n.NewLocalizer(s.Bundle(), languageSlice...)

	transVersion, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID},
		TemplateData:   variables,
		PluralCount:    count,
	})

	if err != nil {
		logger := util.Log(ctx).WithError(err)
		logger.Error(" TranslateWithMapAndCount -- could not perform translation")
	}

	return transVersion
}

// LanguagesFromState returns the language of the current UI culture held by ctx, if any.
func LanguagesFromState(ctx context.Context) []string {
	state := culture.FromContext(ctx)
	if state == nil {
		return nil
	}
	return cultureLanguages(state.CurrentUI())
}

func cultureLanguages(c *culture.Culture) []string {
	if c == nil || c.IsInvariant() {
		return nil
	}
	return []string{c.Tag().String()}
}

// ParseAcceptLanguage returns the languages of an Accept-Language value, highest quality first.
// Values x/text cannot parse are split on commas as given.
func ParseAcceptLanguage(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil {
		var languages []string
		for _, part := range strings.Split(value, ",") {
			part, _, _ = strings.Cut(part, ";")
			if part = strings.TrimSpace(part); part != "" {
				languages = append(languages, part)
			}
		}
		return languages
	}

	languages := make([]string, 0, len(tags))
	for _, tag := range tags {
		languages = append(languages, tag.String())
	}
	return languages
}

func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	var languages []string
	if lang := strings.TrimSpace(req.URL.Query().Get("lang")); lang != "" {
		languages = append(languages, lang)
	}

	return append(languages, ExtractLanguageFromHTTPHeader(req.Header)...)
}

func ExtractLanguageFromHTTPHeader(header http.Header) []string {
	return ParseAcceptLanguage(header.Get("Accept-Language"))
}

func ExtractLanguageFromGrpcRequest(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	header := md.Get("accept-language")
	if len(header) == 0 {
		return nil
	}
	return ParseAcceptLanguage(header[0])
}
