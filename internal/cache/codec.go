package cache

import (
	"encoding/json"
	"strings"

	"github.com/iabetor/rssreader/internal/rss"
)

// encodeCell 将字段值编码为单个单元格。
// 多值字段编码为 JSON 数组，单值字段直接取值，缺失字段为空串。
func encodeCell(key string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	if !rss.IsMulti(key) {
		return values[0]
	}
	data, err := json.Marshal(values)
	if err != nil {
		// []string 的编码不会失败
		return strings.Join(values, ", ")
	}
	return string(data)
}

// decodeCell 是 encodeCell 的逆操作。
// 多值字段不是 JSON 数组时按单个值处理，兼容手工编辑过的文件。
func decodeCell(key, cell string) []string {
	if cell == "" {
		return nil
	}
	if !rss.IsMulti(key) {
		return []string{cell}
	}
	if strings.HasPrefix(strings.TrimSpace(cell), "[") {
		var values []string
		if err := json.Unmarshal([]byte(cell), &values); err == nil {
			if len(values) == 0 {
				return nil
			}
			return values
		}
	}
	return []string{cell}
}

// encodeRow 按 rss.Columns() 的顺序编码一个条目。
func encodeRow(item rss.Item) []string {
	cols := rss.Columns()
	row := make([]string, len(cols))
	for i, key := range cols {
		row[i] = encodeCell(key, item.Values(key))
	}
	return row
}
