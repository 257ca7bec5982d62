package rss

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// pubDateLayout 是 RSS pubDate 的格式，日期允许一位或两位。
	pubDateLayout = "Mon, _2 Jan 2006 15:04:05 -0700"
	// CompactLayout 是缓存中的紧凑日期格式。
	CompactLayout = "20060102"
	// ReadableLayout 是展示用的日期格式，如 2020-June-29。
	ReadableLayout = "2006-January-02"
)

// ErrDateFormat 表示日期文本不符合预期格式。
var ErrDateFormat = errors.New("日期格式错误")

// ToCompactDate 将 "Wed, 02 Oct 2002 15:00:00 +0200" 转换为 "20021002"。
// 日期取原文中的日历日期，不按时区换算为 UTC。
func ToCompactDate(text string) (string, error) {
	t, err := time.Parse(pubDateLayout, strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrDateFormat, text, err)
	}
	return t.Format(CompactLayout), nil
}

// CompactToReadable 将 "20021002" 转换为 "2002-October-02"。
func CompactToReadable(compact string) (string, error) {
	t, err := time.Parse(CompactLayout, compact)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrDateFormat, compact, err)
	}
	return t.Format(ReadableLayout), nil
}
