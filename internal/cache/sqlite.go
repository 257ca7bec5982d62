package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iabetor/rssreader/internal/database"
	"github.com/iabetor/rssreader/internal/logger"
	"github.com/iabetor/rssreader/internal/rss"
)

// SQLiteStore 把缓存保存在 SQLite 数据库中。
// seq 自增列记录写入顺序，覆盖条目时先删后插，因此 ORDER BY seq 与 CSV 后端的顺序一致。
type SQLiteStore struct {
	path string
	db   *database.DB
}

// NewSQLiteStore 创建 SQLite 缓存，数据库在第一次合并时创建。
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Path 返回数据库文件路径。
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close 关闭数据库连接。
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := database.Open(s.path)
	if err != nil {
		return err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

// Merge 在一个事务中合并条目。
func (s *SQLiteStore) Merge(items []rss.Item, sourceURL string) (res MergeResult) {
	incoming := withSource(items, sourceURL)
	res.Incoming = len(incoming)

	defer func() {
		if res.Err != nil {
			logger.Errorf("[cache] 合并缓存 %s 失败: %v", s.path, res.Err)
		}
	}()

	if err := s.open(); err != nil {
		res.Err = err
		return res
	}

	tx, err := s.db.Begin()
	if err != nil {
		res.Err = fmt.Errorf("开始事务失败: %w", err)
		return res
	}
	defer tx.Rollback()

	if err := tx.QueryRow(`SELECT COUNT(*) FROM news_items`).Scan(&res.Existing); err != nil {
		res.Err = fmt.Errorf("统计缓存条目失败: %w", err)
		return res
	}

	for _, item := range incoming {
		if item.Link != "" {
			r, err := tx.Exec(`DELETE FROM news_items WHERE link = ?`, item.Link)
			if err != nil {
				res.Err = fmt.Errorf("删除旧条目失败: %w", err)
				return res
			}
			if n, err := r.RowsAffected(); err == nil {
				res.Replaced += int(n)
			}
		}

		row := encodeRow(item)
		_, err := tx.Exec(`INSERT INTO news_items
			(title, author, pub_date, link, category, description, source_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nullable(row[0]), nullable(row[1]), nullable(row[2]), nullable(row[3]),
			nullable(row[4]), nullable(row[5]), nullable(row[6]))
		if err != nil {
			res.Err = fmt.Errorf("写入条目失败: %w", err)
			return res
		}
	}

	if err := tx.QueryRow(`SELECT COUNT(*) FROM news_items`).Scan(&res.Total); err != nil {
		res.Err = fmt.Errorf("统计缓存条目失败: %w", err)
		return res
	}
	if err := tx.Commit(); err != nil {
		res.Err = fmt.Errorf("提交事务失败: %w", err)
		return res
	}

	logger.Debugf("[cache] 已合并 %s: %s", s.path, res)
	return res
}

// Query 按日期子串和来源过滤，按写入顺序返回。
func (s *SQLiteStore) Query(date, sourceURL string) ([]rss.Item, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("[cache] 缓存数据库不存在: %s", s.path)
			return []rss.Item{}, nil
		}
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	query := `SELECT title, author, pub_date, link, category, description, source_url
		FROM news_items WHERE instr(coalesce(pub_date, ''), ?) > 0`
	args := []any{date}
	if sourceURL != "" {
		query += ` AND source_url = ?`
		args = append(args, sourceURL)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询缓存失败: %w", err)
	}
	defer rows.Close()

	keys := rss.Columns()
	out := make([]rss.Item, 0)
	for rows.Next() {
		cells := make([]sql.NullString, len(keys))
		dest := make([]any, len(keys))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("读取缓存行失败: %w", err)
		}

		var item rss.Item
		for i, key := range keys {
			item.Set(key, decodeCell(key, cells[i].String))
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取缓存行失败: %w", err)
	}

	logger.Debugf("[cache] 查询 date=%q source=%q: %d 条", date, sourceURL, len(out))
	return out, nil
}

// nullable 将空串映射为 NULL，使没有 link 的条目不触发唯一约束。
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
