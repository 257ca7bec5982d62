// Package cache 实现新闻条目的本地缓存：按 link 去重合并，按日期和来源查询。
package cache

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/iabetor/rssreader/internal/config"
	"github.com/iabetor/rssreader/internal/rss"
)

// Store 是缓存存储接口。
type Store interface {
	// Merge 将 items 标记上 sourceURL 后与已有缓存合并，link 相同时新条目覆盖旧条目。
	// 失败只记录日志并体现在返回值中，不会中断调用方。
	Merge(items []rss.Item, sourceURL string) MergeResult
	// Query 返回 pubDate 包含 date 的条目；sourceURL 非空时还要求来源完全一致。
	// 缓存不存在时返回空列表。
	Query(date, sourceURL string) ([]rss.Item, error)
	// Path 返回缓存文件路径。
	Path() string
	Close() error
}

// MergeResult 描述一次合并的结果。
type MergeResult struct {
	Existing int   // 合并前缓存中的条目数
	Incoming int   // 本次写入的条目数
	Replaced int   // 因 link 重复被覆盖的条目数
	Total    int   // 合并后的条目数
	Err      error // 读写失败时非空，此时缓存保持原样
}

// OK 报告合并是否成功。
func (r MergeResult) OK() bool {
	return r.Err == nil
}

func (r MergeResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("merge failed: %v", r.Err)
	}
	return fmt.Sprintf("existing=%d incoming=%d replaced=%d total=%d", r.Existing, r.Incoming, r.Replaced, r.Total)
}

// Open 按配置打开缓存。
func Open(cfg config.CacheConfig) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", config.BackendCSV:
		path := cfg.Path
		if path == "" {
			path = config.DefaultCachePath(config.BackendCSV)
		}
		return NewCSVStore(path), nil
	case config.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = config.DefaultCachePath(config.BackendSQLite)
		}
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("不支持的缓存后端: %s", cfg.Backend)
	}
}

// withSource 复制条目并设置来源，不修改调用方的切片。
func withSource(items []rss.Item, sourceURL string) []rss.Item {
	return lo.Map(items, func(item rss.Item, _ int) rss.Item {
		out := item.Clone()
		out.SourceURL = sourceURL
		return out
	})
}

// dedupByLink 按 link 去重，保留最后一次出现的条目并保持其位置。
// 没有 link 的条目不参与去重。返回去重结果和被丢弃的条目数。
func dedupByLink(items []rss.Item) ([]rss.Item, int) {
	last := make(map[string]int, len(items))
	for i, item := range items {
		if item.Link != "" {
			last[item.Link] = i
		}
	}

	out := make([]rss.Item, 0, len(items))
	for i, item := range items {
		if item.Link != "" && last[item.Link] != i {
			continue
		}
		out = append(out, item)
	}
	return out, len(items) - len(out)
}

// matches 判断条目是否满足查询条件，日期为子串匹配。
func matches(item rss.Item, date, sourceURL string) bool {
	if !strings.Contains(item.PubDate, date) {
		return false
	}
	return sourceURL == "" || item.SourceURL == sourceURL
}
