// Package reader 串联抓取、解析、缓存和输出，实现命令行的三种执行分支。
package reader

import (
	"context"
	"fmt"
	"io"

	"github.com/iabetor/rssreader/internal/cache"
	"github.com/iabetor/rssreader/internal/logger"
	"github.com/iabetor/rssreader/internal/present"
	"github.com/iabetor/rssreader/internal/rss"
)

// 面向用户的提示信息。
const (
	MsgNotFound    = "No news found for the specified date."
	MsgFetchFailed = "Failed to fetch news from the source."
	MsgUsage       = "Please provide an RSS source URL or a date to fetch news from cache."
	MsgFromCache   = "Fetching news from cache..."
	MsgFromSource  = "Fetching news from source: %s"
	MsgCached      = "News items cached successfully."
	MsgCacheFailed = "Error caching news items: %v"
)

// Fetcher 获取 feed 原文，失败时返回空字符串。
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// Options 是一次执行的参数。
type Options struct {
	Source  string // feed URL；与 Date 同时出现时作为来源过滤条件
	Date    string // 按日期查询缓存
	Limit   int    // 解析条目上限，<= 0 不限制
	JSON    bool
	Verbose bool
}

// Reader 是命令行的编排器。
type Reader struct {
	store   cache.Store
	fetcher Fetcher
	parser  *rss.Parser
	out     io.Writer
}

// New 创建 Reader，输出写入 out。
func New(store cache.Store, fetcher Fetcher, parser *rss.Parser, out io.Writer) *Reader {
	return &Reader{
		store:   store,
		fetcher: fetcher,
		parser:  parser,
		out:     out,
	}
}

// Run 按参数执行：有日期时查询缓存，否则有来源时抓取并缓存，都没有时输出用法提示。
// 只有解析错误和日期格式错误会返回 error，其余情况输出提示后正常返回。
func (r *Reader) Run(ctx context.Context, opts Options) error {
	switch {
	case opts.Date != "":
		return r.fromCache(opts)
	case opts.Source != "":
		return r.fromSource(ctx, opts)
	default:
		r.println(MsgUsage)
		return nil
	}
}

func (r *Reader) fromCache(opts Options) error {
	r.verbosef(opts, MsgFromCache)

	items, err := r.store.Query(opts.Date, opts.Source)
	if err != nil {
		return fmt.Errorf("查询缓存失败: %w", err)
	}
	if len(items) == 0 {
		r.println(MsgNotFound)
		return nil
	}
	logger.Debugf("[reader] 缓存命中 %d 条", len(items))
	return present.Render(r.out, items, opts.JSON, opts.Verbose)
}

func (r *Reader) fromSource(ctx context.Context, opts Options) error {
	r.verbosef(opts, MsgFromSource, opts.Source)

	raw := r.fetcher.Fetch(ctx, opts.Source)
	if raw == "" {
		r.println(MsgFetchFailed)
		return nil
	}

	items, err := r.parser.Parse(raw, opts.Limit)
	if err != nil {
		return fmt.Errorf("解析 %s 失败: %w", opts.Source, err)
	}
	logger.Debugf("[reader] 从 %s 解析到 %d 条", opts.Source, len(items))

	res := r.store.Merge(items, opts.Source)
	if !res.OK() {
		r.printf(MsgCacheFailed, res.Err)
	} else {
		r.verbosef(opts, MsgCached)
	}

	return present.Render(r.out, items, opts.JSON, opts.Verbose)
}

func (r *Reader) verbosef(opts Options, format string, args ...interface{}) {
	if opts.Verbose {
		r.printf(format, args...)
	}
}

func (r *Reader) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Reader) println(msg string) {
	fmt.Fprintln(r.out, msg)
}
