package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type localizerKey struct{}

// Catalog 已加载的消息包和支持的语言
type Catalog struct {
	Bundle      *i18n.Bundle
	Languages   []string
	DefaultLang string
}

// InitI18n 加载 TOML 消息文件，文件名即语言标签（en.toml -> en）
func InitI18n(filePaths []string, defaultLang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	catalog := &Catalog{Bundle: bundle, DefaultLang: defaultLang}
	for _, filePath := range filePaths {
		file, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(file, filePath); err != nil {
			return nil, err
		}
		catalog.Languages = append(catalog.Languages, extractLanguageFromPath(filePath))
	}
	return catalog, nil
}

// Match 从 Accept-Language 中选出第一个支持的语言
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	for _, tag := range tags {
		base, _ := tag.Base()
		for _, lang := range c.Languages {
			if lang == tag.String() || lang == base.String() {
				return lang
			}
		}
	}
	return c.DefaultLang
}

// Localizer 生成指定语言的 localizer
func (c *Catalog) Localizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(c.Bundle, lang, c.DefaultLang)
}

func extractLanguageFromPath(filePath string) string {
	baseName := filepath.Base(filePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}

// WithLocalizer 把 localizer 放进 context
func WithLocalizer(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

// T 翻译消息 ID。没有 localizer 或找不到翻译时原样返回 key
func T(ctx context.Context, key string, data map[string]interface{}) string {
	localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	if !ok || localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return key
	}
	return msg
}
