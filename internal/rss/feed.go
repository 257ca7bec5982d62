// Package rss 提供 RSS 条目模型、解析、日期转换和抓取功能。
package rss

// Item 是一条订阅内容。
// 字段为空即视为缺失，JSON 序列化时省略；字段顺序即缓存列顺序。
type Item struct {
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"author,omitempty"`
	PubDate     string   `json:"pubDate,omitempty"` // 紧凑日期 YYYYMMDD
	Link        string   `json:"link,omitempty"`
	Categories  []string `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"` // 写入缓存时附加
}

// 字段键名，与缓存表头一致。
const (
	KeyTitle       = "title"
	KeyAuthor      = "author"
	KeyPubDate     = "pubDate"
	KeyLink        = "link"
	KeyCategory    = "category"
	KeyDescription = "description"
	KeySourceURL   = "source_url"
)

// Field 是条目中一个已存在的字段。单值字段的 Values 只有一个元素。
type Field struct {
	Key    string
	Multi  bool
	Values []string
}

// column 描述一个字段如何从 Item 读写。
type column struct {
	key   string
	multi bool
	get   func(*Item) []string
	set   func(*Item, []string)
}

func single(get func(*Item) *string) (func(*Item) []string, func(*Item, []string)) {
	return func(it *Item) []string {
			if v := *get(it); v != "" {
				return []string{v}
			}
			return nil
		}, func(it *Item, vs []string) {
			if len(vs) > 0 {
				*get(it) = vs[0]
			} else {
				*get(it) = ""
			}
		}
}

func multi(get func(*Item) *[]string) (func(*Item) []string, func(*Item, []string)) {
	return func(it *Item) []string {
			return *get(it)
		}, func(it *Item, vs []string) {
			if len(vs) == 0 {
				*get(it) = nil
				return
			}
			*get(it) = append([]string(nil), vs...)
		}
}

var columns = buildColumns()

func buildColumns() []column {
	newSingle := func(key string, get func(*Item) *string) column {
		g, s := single(get)
		return column{key: key, get: g, set: s}
	}
	newMulti := func(key string, get func(*Item) *[]string) column {
		g, s := multi(get)
		return column{key: key, multi: true, get: g, set: s}
	}
	return []column{
		newSingle(KeyTitle, func(it *Item) *string { return &it.Title }),
		newMulti(KeyAuthor, func(it *Item) *[]string { return &it.Authors }),
		newSingle(KeyPubDate, func(it *Item) *string { return &it.PubDate }),
		newSingle(KeyLink, func(it *Item) *string { return &it.Link }),
		newMulti(KeyCategory, func(it *Item) *[]string { return &it.Categories }),
		newSingle(KeyDescription, func(it *Item) *string { return &it.Description }),
		newSingle(KeySourceURL, func(it *Item) *string { return &it.SourceURL }),
	}
}

func columnFor(key string) (column, bool) {
	for _, c := range columns {
		if c.key == key {
			return c, true
		}
	}
	return column{}, false
}

// Columns 返回全部字段键名，顺序固定。
func Columns() []string {
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.key
	}
	return keys
}

// IsMulti 报告字段是否为多值字段。
func IsMulti(key string) bool {
	c, ok := columnFor(key)
	return ok && c.multi
}

// Fields 按固定顺序返回已存在的字段。
func (it Item) Fields() []Field {
	out := make([]Field, 0, len(columns))
	for _, c := range columns {
		vs := c.get(&it)
		if len(vs) == 0 {
			continue
		}
		out = append(out, Field{Key: c.key, Multi: c.multi, Values: append([]string(nil), vs...)})
	}
	return out
}

// Values 返回指定字段的值，字段缺失或键名未知时返回 nil。
func (it Item) Values(key string) []string {
	c, ok := columnFor(key)
	if !ok {
		return nil
	}
	return c.get(&it)
}

// Set 按键名赋值，values 为空表示清除该字段。未知键名返回 false。
func (it *Item) Set(key string, values []string) bool {
	c, ok := columnFor(key)
	if !ok {
		return false
	}
	c.set(it, values)
	return true
}

// Clone 返回条目的深拷贝。
func (it Item) Clone() Item {
	out := it
	if it.Authors != nil {
		out.Authors = append([]string(nil), it.Authors...)
	}
	if it.Categories != nil {
		out.Categories = append([]string(nil), it.Categories...)
	}
	return out
}
