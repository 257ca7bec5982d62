// Package present 负责把条目渲染为文本或 JSON。
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iabetor/rssreader/internal/rss"
)

// labels 是文本输出中各字段的标签。
var labels = map[string]string{
	rss.KeyTitle:       "Title",
	rss.KeyAuthor:      "Authors",
	rss.KeyLink:        "Link",
	rss.KeyPubDate:     "Publish Date",
	rss.KeyDescription: "Description",
	rss.KeyCategory:    "Categories",
	rss.KeySourceURL:   "Source URL",
}

// Render 将条目写入 w。
// 非 verbose 模式只保留 title、link、pubDate；pubDate 转换为可读格式，格式错误时返回错误。
func Render(w io.Writer, items []rss.Item, asJSON, verbose bool) error {
	prepared, err := Prepare(items, verbose)
	if err != nil {
		return err
	}
	if asJSON {
		return renderJSON(w, prepared)
	}
	return renderText(w, prepared)
}

// Prepare 返回投影并转换日期后的副本，不修改 items。
func Prepare(items []rss.Item, verbose bool) ([]rss.Item, error) {
	out := make([]rss.Item, len(items))
	for i, item := range items {
		if verbose {
			item = item.Clone()
		} else {
			item = project(item)
		}
		if item.PubDate != "" {
			readable, err := rss.CompactToReadable(item.PubDate)
			if err != nil {
				return nil, err
			}
			item.PubDate = readable
		}
		out[i] = item
	}
	return out, nil
}

func project(item rss.Item) rss.Item {
	return rss.Item{
		Title:   item.Title,
		Link:    item.Link,
		PubDate: item.PubDate,
	}
}

func renderJSON(w io.Writer, items []rss.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("JSON 编码失败: %w", err)
	}
	return nil
}

func renderText(w io.Writer, items []rss.Item) error {
	var b strings.Builder
	for _, item := range items {
		for _, f := range item.Fields() {
			fmt.Fprintf(&b, "%s: %s\n", labels[f.Key], strings.Join(f.Values, ", "))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
