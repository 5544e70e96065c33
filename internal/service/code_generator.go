package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"shortlink-go/pkg/utils"
)

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultCodeLength 默认短码长度，62^6 ≈ 5.6e10
const DefaultCodeLength = 6

// maxReservedRedraws 连续命中保留前缀的上限，只有保留列表覆盖了几乎全部字符时才会触发
const maxReservedRedraws = 1000

// CodeGenerator 生成随机短码，不负责唯一性
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// RandomCodeGenerator 均匀分布的 base62 短码，跳过保留前缀
type RandomCodeGenerator struct {
	reserved []string
}

func NewCodeGenerator(reserved []string) *RandomCodeGenerator {
	return &RandomCodeGenerator{reserved: reserved}
}

// Generate 生成指定长度的随机短码，length <= 0 时使用默认长度
func (g *RandomCodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	for i := 0; i < maxReservedRedraws; i++ {
		code, err := randomCode(length)
		if err != nil {
			return "", err
		}
		if !utils.IsReserved(code, g.reserved) {
			return code, nil
		}
	}
	return "", fmt.Errorf("reserved prefixes cover the code space for length %d", length)
}

func randomCode(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[n.Int64()]
	}

	return string(result), nil
}
