package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iabetor/rssreader/internal/config"
)

const testRSSFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <link>https://example.com</link>
    <description>A test RSS feed</description>
    <item>
      <title>第一篇文章</title>
      <link>https://example.com/post/1</link>
      <description>&lt;p&gt;这是第一篇文章的内容，包含 &lt;b&gt;HTML 标签&lt;/b&gt;。&lt;/p&gt;</description>
      <pubDate>Thu, 19 Feb 2026 08:00:00 +0800</pubDate>
      <author>alice@example.com</author>
      <author>bob@example.com</author>
      <category>tech</category>
      <category>ai</category>
    </item>
    <item>
      <title>AI 技术前沿</title>
      <link>https://example.com/post/2</link>
      <description>人工智能最新进展</description>
      <pubDate>Thu, 19 Feb 2026 07:00:00 +0800</pubDate>
    </item>
    <item>
      <title>第三篇普通文章</title>
      <link>https://example.com/post/3</link>
      <description>普通内容</description>
      <pubDate>Wed, 18 Feb 2026 06:00:00 +0800</pubDate>
    </item>
  </channel>
</rss>`

func setupTestServer(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, content)
	}))
}

func TestFetch(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	defer srv.Close()

	fetcher := NewFetcher(config.FetchConfig{TimeoutSeconds: 5})
	body := fetcher.Fetch(context.Background(), srv.URL)
	if body != testRSSFeed {
		t.Errorf("响应内容不匹配, 长度 %d", len(body))
	}
}

func TestFetchUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<rss/>")
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.FetchConfig{UserAgent: "rssreader-test/1.0"})
	if body := fetcher.Fetch(context.Background(), srv.URL); body == "" {
		t.Fatal("期望返回非空内容")
	}
	if got != "rssreader-test/1.0" {
		t.Errorf("User-Agent 不匹配: %q", got)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			fmt.Fprint(w, "error page")
		}))

		fetcher := NewFetcher(config.FetchConfig{})
		if body := fetcher.Fetch(context.Background(), srv.URL); body != "" {
			t.Errorf("HTTP %d 应返回空字符串, 实际 %q", code, body)
		}
		srv.Close()
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	url := srv.URL
	srv.Close()

	fetcher := NewFetcher(config.FetchConfig{TimeoutSeconds: 2})
	if body := fetcher.Fetch(context.Background(), url); body != "" {
		t.Errorf("连接失败应返回空字符串, 实际 %q", body)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(config.FetchConfig{})
	if body := fetcher.Fetch(ctx, srv.URL); body != "" {
		t.Errorf("已取消的 context 应返回空字符串, 实际 %q", body)
	}
}

func TestResponseSnippet(t *testing.T) {
	if got := responseSnippet(nil); got != "<empty>" {
		t.Errorf("空响应体 = %q", got)
	}
	if got := responseSnippet([]byte("  short  ")); got != "short" {
		t.Errorf("短响应体 = %q", got)
	}
	long := strings.Repeat("x", maxSnippetLen+10)
	got := responseSnippet([]byte(long))
	if len(got) != maxSnippetLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("长响应体应被截断, 长度 %d", len(got))
	}
}
