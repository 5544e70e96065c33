package service

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	gen := NewCodeGenerator(nil)
	pattern := regexp.MustCompile(`^[A-Za-z0-9]+$`)

	for _, length := range []int{0, 1, 6, 12} {
		code, err := gen.Generate(length)
		require.NoError(t, err)
		want := length
		if want == 0 {
			want = DefaultCodeLength
		}
		assert.Len(t, code, want)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateSkipsReservedPrefixes(t *testing.T) {
	// 保留掉除 "z" 以外的全部首字符，生成结果只能以 z 开头
	var reserved []string
	for _, c := range base62Chars {
		if c != 'z' && c != 'Z' {
			reserved = append(reserved, string(c))
		}
	}
	gen := NewCodeGenerator(reserved)

	for i := 0; i < 50; i++ {
		code, err := gen.Generate(4)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.ToLower(code), "z"), code)
	}
}

func TestGenerateFailsWhenEverythingReserved(t *testing.T) {
	var reserved []string
	for _, c := range base62Chars {
		reserved = append(reserved, string(c))
	}
	_, err := NewCodeGenerator(reserved).Generate(3)
	assert.Error(t, err)
}

func TestGenerateSpreadsAcrossAlphabet(t *testing.T) {
	gen := NewCodeGenerator(nil)
	seen := map[rune]bool{}
	for i := 0; i < 500; i++ {
		code, err := gen.Generate(8)
		require.NoError(t, err)
		for _, c := range code {
			seen[c] = true
		}
	}
	// 4000 次抽样，62 个字符全部出现的概率极高
	assert.Greater(t, len(seen), 55)
}
