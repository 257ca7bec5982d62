package rss

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"

	"github.com/iabetor/rssreader/internal/logger"
)

// ErrMalformedFeed 表示内容无法作为 XML 解析。
var ErrMalformedFeed = errors.New("feed 格式错误")

const (
	rssEntryTag  = "item"
	atomEntryTag = "entry"
)

// extractRule 描述一个字段的提取方式。
// multi 为 true 时收集所有同名子元素，否则只取第一个。
type extractRule struct {
	key       string
	multi     bool
	transform func(string) (string, error)
}

// itemRules 是条目字段提取规则表，source_url 不来自 feed。
var itemRules = []extractRule{
	{key: KeyTitle},
	{key: KeyAuthor, multi: true},
	{key: KeyPubDate, transform: ToCompactDate},
	{key: KeyLink},
	{key: KeyCategory, multi: true},
	{key: KeyDescription},
}

// element 是条目内的一个后代元素及其全部后代文本。
type element struct {
	name string
	text strings.Builder
}

// Parser 将 feed 文本解析为条目列表。
type Parser struct {
	rules []extractRule
}

// NewParser 创建解析器。
func NewParser() *Parser {
	return &Parser{rules: itemRules}
}

// Parse 按文档顺序解析条目，limit <= 0 表示不限制数量。
// 无法解析的内容返回 ErrMalformedFeed；没有条目时返回空列表。
func (p *Parser) Parse(raw string, limit int) ([]Item, error) {
	entryTag := rssEntryTag
	feedType := gofeed.DetectFeedType(strings.NewReader(raw))
	if feedType == gofeed.FeedTypeAtom {
		entryTag = atomEntryTag
	}
	logger.Debugf("[rss] feed 类型: %v, 条目元素: <%s>", feedType, entryTag)

	pp := xpp.NewXMLPullParser(strings.NewReader(raw), false, charset.NewReaderLabel)

	items := make([]Item, 0)
	var (
		inEntry bool
		open    []*element // 条目内尚未闭合的元素
		seen    []*element // 条目内全部元素，文档顺序
	)

	for {
		event, err := pp.NextToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}
		if event == xpp.EndDocument {
			break
		}

		switch event {
		case xpp.StartTag:
			if !inEntry {
				if pp.Name == entryTag {
					inEntry = true
					open, seen = open[:0], seen[:0]
				}
				continue
			}
			el := &element{name: pp.Name}
			open = append(open, el)
			seen = append(seen, el)

		case xpp.Text, xpp.IgnorableWhitespace:
			for _, el := range open {
				el.text.WriteString(pp.Text)
			}

		case xpp.EndTag:
			if !inEntry {
				continue
			}
			if len(open) > 0 {
				open = open[:len(open)-1]
				continue
			}
			// 条目本身闭合
			inEntry = false
			item, err := p.buildItem(seen)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}

	return items, nil
}

// buildItem 按规则表从条目元素中提取字段。
func (p *Parser) buildItem(elements []*element) (Item, error) {
	var item Item
	for _, rule := range p.rules {
		values := collect(elements, rule)
		if len(values) == 0 {
			continue
		}
		if rule.transform != nil {
			for i, v := range values {
				converted, err := rule.transform(v)
				if err != nil {
					return Item{}, fmt.Errorf("解析 <%s> 失败: %w", rule.key, err)
				}
				values[i] = converted
			}
		}
		item.Set(rule.key, values)
	}
	return item, nil
}

// collect 返回规则对应的字段值；第一个匹配元素缺失或文本为空时返回 nil。
func collect(elements []*element, rule extractRule) []string {
	var values []string
	for _, el := range elements {
		if el.name != rule.key {
			continue
		}
		text := el.text.String()
		if values == nil && text == "" {
			return nil
		}
		values = append(values, text)
		if !rule.multi {
			break
		}
	}
	return values
}
