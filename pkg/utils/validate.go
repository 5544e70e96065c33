package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxShortCodeLength 与 links.short_code 列宽一致
const MaxShortCodeLength = 32

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateShortCode 校验 ShortCode 是否合法
func ValidateShortCode(shortCode string) error {
	if shortCode == "" {
		return fmt.Errorf("error.shortcode_required")
	}

	if ContainsWhitespace(shortCode) {
		return fmt.Errorf("error.shortcode_cannot_contain_spaces")
	}

	if len(shortCode) > MaxShortCodeLength {
		return fmt.Errorf("error.shortcode_too_long")
	}

	if !shortCodePattern.MatchString(shortCode) {
		return fmt.Errorf("error.shortcode_invalid")
	}

	return nil
}

// IsReserved 短码以任一保留前缀开头（忽略大小写）时返回 true
func IsReserved(shortCode string, reserved []string) bool {
	lower := strings.ToLower(shortCode)
	for _, r := range reserved {
		if r == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

// ValidateTargetURL 校验目标 URL 的合法性
func ValidateTargetURL(targetURL string) error {
	if targetURL == "" {
		return fmt.Errorf("error.target_url_required")
	}

	u, err := url.ParseRequestURI(targetURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("error.target_url_invalid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("error.target_url_invalid")
	}

	if len(targetURL) > 2048 {
		return fmt.Errorf("error.target_url_max_length")
	}
	return nil
}

// Truncate 按字节截断，保证不切断 UTF-8 字符
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// TruncateRunes 按字符截断
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
