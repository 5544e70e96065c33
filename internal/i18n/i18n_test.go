package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessages(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestTranslate(t *testing.T) {
	dir := t.TempDir()
	en := writeMessages(t, dir, "en.toml", `"error.link_not_found" = "Short link not found"`)
	zh := writeMessages(t, dir, "zh.toml", `"error.link_not_found" = "短链不存在"`)

	catalog, err := InitI18n([]string{en, zh}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "zh"}, catalog.Languages)

	assert.Equal(t, "zh", catalog.Match("zh-CN,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", catalog.Match("fr-FR"))
	assert.Equal(t, "en", catalog.Match(""))

	ctx := WithLocalizer(context.Background(), catalog.Localizer("zh"))
	assert.Equal(t, "短链不存在", T(ctx, "error.link_not_found", nil))
	assert.Equal(t, "error.unknown_key", T(ctx, "error.unknown_key", nil))

	// 没有 localizer 时返回 key
	assert.Equal(t, "error.link_not_found", T(context.Background(), "error.link_not_found", nil))
}

func TestShippedMessageFilesParse(t *testing.T) {
	catalog, err := InitI18n([]string{"../../i18n/en.toml", "../../i18n/zh.toml"}, "en")
	require.NoError(t, err)

	ctx := WithLocalizer(context.Background(), catalog.Localizer("en"))
	assert.Equal(t, "This short link has expired", T(ctx, "error.link_expired", nil))
}
