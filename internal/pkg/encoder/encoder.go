package encoder

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultAlphabet 是生成短链接 ID 使用的默认字母表
// 不包含 01loIO（手动输入 URL 时容易混淆）
// 也不包含元音 aeiouAEIOU（避免拼出真实单词）
const DefaultAlphabet = "23456789bcdfghjkmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ"

// Encoder 在非负整数和指定字母表下的字符串表示之间进行双射转换
// 编码和解码必须使用同一个字母表，否则结果无意义
type Encoder struct {
	alphabet string
}

// New 创建一个使用指定字母表的 Encoder
func New(alphabet string) *Encoder {
	return &Encoder{alphabet: alphabet}
}

// Default 返回使用默认字母表的 Encoder
func Default() *Encoder {
	return New(DefaultAlphabet)
}

// Encode 把非负整数转换为字母表下的字符串表示
// Encode(0) 返回字母表的第一个字符，保证映射是双射而不是朴素的进制转换
func (e *Encoder) Encode(integer int64) (string, error) {
	if integer < 0 {
		return "", fmt.Errorf("无法编码负数 %d，仅支持非负整数", integer)
	}
	if integer == 0 {
		return string(e.alphabet[0]), nil
	}

	var sb []byte
	base := int64(len(e.alphabet))
	for integer > 0 {
		sb = append([]byte{e.alphabet[integer%base]}, sb...)
		integer /= base
	}
	return string(sb), nil
}

// Decode 把字母表下的字符串还原为整数，是 Encode 的精确逆运算
// 遇到字母表之外的字符时返回错误
func (e *Encoder) Decode(s string) (int64, error) {
	var integer int64
	base := int64(len(e.alphabet))

	for _, char := range []byte(s) {
		pos := strings.IndexByte(e.alphabet, char)
		if pos < 0 {
			return 0, fmt.Errorf("字符 %q 不在字母表中", string(char))
		}
		integer = integer*base + int64(pos)
	}
	return integer, nil
}

// RandomString 生成 n 个字符的随机字符串，字符均匀取自字母表
// 使用 crypto/rand 作为随机源
func (e *Encoder) RandomString(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("随机字符串长度 %d 无效，至少为 1", n)
	}

	max := big.NewInt(int64(len(e.alphabet)))
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("读取随机源失败: %w", err)
		}
		result[i] = e.alphabet[idx.Int64()]
	}
	return string(result), nil
}
