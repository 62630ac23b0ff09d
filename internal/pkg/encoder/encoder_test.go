package encoder

import (
	"strings"
	"testing"
)

func TestEncodeZero(t *testing.T) {
	e := Default()
	s, err := e.Encode(0)
	if err != nil {
		t.Fatalf("Encode(0) 返回错误: %v", err)
	}
	if s != string(DefaultAlphabet[0]) {
		t.Errorf("Encode(0) = %q, 期望字母表首字符 %q", s, string(DefaultAlphabet[0]))
	}
}

func TestEncodeNegative(t *testing.T) {
	e := Default()
	if _, err := e.Encode(-1); err == nil {
		t.Error("Encode(-1) 应当返回错误")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := Default()
	values := []int64{0, 1, 7, 48, 49, 50, 260829, 1234567890, 1<<40 + 3}
	for _, v := range values {
		s, err := e.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%d) 返回错误: %v", v, err)
		}
		got, err := e.Decode(s)
		if err != nil {
			t.Fatalf("Decode(%q) 返回错误: %v", s, err)
		}
		if got != v {
			t.Errorf("Decode(Encode(%d)) = %d, 期望 %d", v, got, v)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	// 任意由字母表字符组成的字符串，经 Decode 再 Encode 得到的整数必须一致
	e := Default()
	inputs := []string{"2", "xzx", "BCDF", "2345km"}
	for _, s := range inputs {
		v, err := e.Decode(s)
		if err != nil {
			t.Fatalf("Decode(%q) 返回错误: %v", s, err)
		}
		s2, err := e.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%d) 返回错误: %v", v, err)
		}
		v2, err := e.Decode(s2)
		if err != nil {
			t.Fatalf("Decode(%q) 返回错误: %v", s2, err)
		}
		if v2 != v {
			t.Errorf("二次解码 %q: 得到 %d, 期望 %d", s, v2, v)
		}
	}
}

func TestDecodeInvalidChar(t *testing.T) {
	e := Default()
	if _, err := e.Decode("ab0"); err == nil {
		t.Error("解码包含字母表外字符的字符串应当返回错误")
	}
}

func TestCustomAlphabet(t *testing.T) {
	e := New("abc")
	s, err := e.Encode(5)
	if err != nil {
		t.Fatalf("Encode(5) 返回错误: %v", err)
	}
	// 5 = 1*3 + 2 → "bc"
	if s != "bc" {
		t.Errorf("三字符字母表下 Encode(5) = %q, 期望 %q", s, "bc")
	}
	v, err := e.Decode(s)
	if err != nil || v != 5 {
		t.Errorf("Decode(%q) = %d, %v, 期望 5", s, v, err)
	}
}

func TestRandomString(t *testing.T) {
	e := Default()
	for _, n := range []int{1, 2, 16} {
		s, err := e.RandomString(n)
		if err != nil {
			t.Fatalf("RandomString(%d) 返回错误: %v", n, err)
		}
		if len(s) != n {
			t.Errorf("RandomString(%d) 长度为 %d", n, len(s))
		}
		for _, c := range []byte(s) {
			if !strings.ContainsRune(DefaultAlphabet, rune(c)) {
				t.Errorf("RandomString 产生了字母表外的字符 %q", string(c))
			}
		}
	}
}

func TestRandomStringInvalidLength(t *testing.T) {
	e := Default()
	for _, n := range []int{0, -1} {
		if _, err := e.RandomString(n); err == nil {
			t.Errorf("RandomString(%d) 应当返回错误", n)
		}
	}
}
