package rss

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iabetor/rssreader/internal/config"
	"github.com/iabetor/rssreader/internal/logger"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxSnippetLen       = 256
)

// Fetcher 负责通过 HTTP 获取 feed 原文。
type Fetcher struct {
	client *resty.Client
}

// NewFetcher 创建抓取器。
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	timeout := defaultFetchTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := resty.New().SetTimeout(timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Fetcher{client: client}
}

// Fetch 发起一次 GET 请求并返回响应文本。
// 网络错误或非 2xx 状态返回空字符串，调用方应将空字符串视为失败。
func (f *Fetcher) Fetch(ctx context.Context, url string) string {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		logger.Warnf("[rss] 抓取 %s 失败: %v", url, err)
		return ""
	}
	if !resp.IsSuccess() {
		logger.Warnf("[rss] 抓取 %s 返回 HTTP %d: %s", url, resp.StatusCode(), responseSnippet(resp.Body()))
		return ""
	}

	logger.Debugf("[rss] 抓取 %s 完成，%d 字节", url, len(resp.Body()))
	return resp.String()
}

// responseSnippet 截取响应体用于日志。
func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
