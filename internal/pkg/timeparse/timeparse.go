// Package timeparse 把发布表单里的时间表达式解析为 Unix 时间戳
// 支持三种形式：纯数字（原样使用）、相对表达式（"+1 day"、"-2 hours"）、
// 以及 dateparse 支持的各种绝对日期格式（"2018-01-01" 等）
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// 相对时间表达式，例如 "+1 day"、"-3 weeks"、"+30 seconds"
var relativePattern = regexp.MustCompile(`^([+-])\s*(\d+)\s*([a-zA-Z]+)$`)

// ParseTimestamp 把时间表达式解析为整秒 Unix 时间戳
// 纯数字按时间戳原样返回；相对表达式以 base 为基准计算；
// 其余输入按绝对日期解析（解析时区为 UTC）
// field 仅用于错误信息
func ParseTimestamp(field, value string, base time.Time) (int64, error) {
	value = strings.TrimSpace(value)

	// 纯数字原样使用
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}

	// 相对表达式基于 base 计算
	if m := relativePattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("字段 %q 的值 %q 无法转换为时间戳", field, value)
		}
		if m[1] == "-" {
			n = -n
		}

		t, err := addUnit(base, n, m[3])
		if err != nil {
			return 0, fmt.Errorf("字段 %q 的值 %q 无法转换为时间戳: %w", field, value, err)
		}
		return t.Unix(), nil
	}

	// 绝对日期
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("字段 %q 的值 %q 无法转换为时间戳", field, value)
	}
	return t.Unix(), nil
}

// ParseDuration 把超时表达式解析为秒数
// 纯数字直接作为秒数；自然语言形式先解析为绝对时间点，再减去 now 得到时长
func ParseDuration(field, value string, now time.Time) (int64, error) {
	value = strings.TrimSpace(value)

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}

	ts, err := ParseTimestamp(field, value, now)
	if err != nil {
		return 0, err
	}
	return ts - now.Unix(), nil
}

// addUnit 在 t 上叠加 n 个时间单位
// 月和年用日历运算，其余单位用固定时长
func addUnit(t time.Time, n int64, unit string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSuffix(unit, "s")) {
	case "sec", "second":
		return t.Add(time.Duration(n) * time.Second), nil
	case "min", "minute":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "hour":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "day":
		return t.AddDate(0, 0, int(n)), nil
	case "week":
		return t.AddDate(0, 0, int(n)*7), nil
	case "month":
		return t.AddDate(0, int(n), 0), nil
	case "year":
		return t.AddDate(int(n), 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("未知时间单位 %q", unit)
	}
}
