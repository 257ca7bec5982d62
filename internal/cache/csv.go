package cache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/samber/lo"

	"github.com/iabetor/rssreader/internal/logger"
	"github.com/iabetor/rssreader/internal/rss"
)

// CSVStore 把缓存保存为带表头的 CSV 文件，每次合并整体重写。
type CSVStore struct {
	path string
}

// NewCSVStore 创建 CSV 缓存，文件在第一次合并时创建。
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path 返回缓存文件路径。
func (s *CSVStore) Path() string {
	return s.path
}

// Close 无需释放资源。
func (s *CSVStore) Close() error {
	return nil
}

// Merge 合并条目并重写缓存文件。
// 读-改-写期间持有 <path>.lock 上的文件锁，防止多个进程同时写入。
func (s *CSVStore) Merge(items []rss.Item, sourceURL string) (res MergeResult) {
	incoming := withSource(items, sourceURL)
	res.Incoming = len(incoming)

	defer func() {
		if res.Err != nil {
			logger.Errorf("[cache] 合并缓存 %s 失败: %v", s.path, res.Err)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		res.Err = fmt.Errorf("创建缓存目录失败: %w", err)
		return res
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		res.Err = fmt.Errorf("获取缓存锁失败: %w", err)
		return res
	}
	defer lock.Unlock()

	existing, err := s.load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		res.Err = err
		return res
	}
	res.Existing = len(existing)

	merged, dropped := dedupByLink(append(existing, incoming...))
	if err := s.write(merged); err != nil {
		res.Err = err
		return res
	}

	res.Replaced = dropped
	res.Total = len(merged)
	logger.Debugf("[cache] 已合并 %s: %s", s.path, res)
	return res
}

// Query 按日期子串和来源过滤缓存，保持存储顺序。
func (s *CSVStore) Query(date, sourceURL string) ([]rss.Item, error) {
	all, err := s.load()
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warnf("[cache] 缓存文件不存在: %s", s.path)
		return []rss.Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := lo.Filter(all, func(item rss.Item, _ int) bool {
		return matches(item, date, sourceURL)
	})
	logger.Debugf("[cache] 查询 date=%q source=%q: %d/%d 条", date, sourceURL, len(out), len(all))
	return out, nil
}

// load 读取全部缓存条目，文件不存在时返回的错误满足 errors.Is(err, fs.ErrNotExist)。
func (s *CSVStore) load() ([]rss.Item, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("读取缓存 %s 失败: %w", s.path, err)
	}
	return items, nil
}

// write 先写临时文件再重命名，避免写到一半时留下残缺的缓存。
func (s *CSVStore) write(items []rss.Item) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeCSV(tmp, items); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换缓存文件失败: %w", err)
	}
	return nil
}

// readCSV 解析带表头的缓存内容，按表头名定位列，未知列忽略，空文件视为空缓存。
func readCSV(r io.Reader) ([]rss.Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []rss.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	keys := make([]string, len(header))
	known := 0
	for i, name := range header {
		for _, key := range rss.Columns() {
			if name == key {
				keys[i] = key
				known++
				break
			}
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("表头中没有可识别的列: %v", header)
	}

	items := make([]rss.Item, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var item rss.Item
		for i, cell := range record {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			item.Set(keys[i], decodeCell(keys[i], cell))
		}
		items = append(items, item)
	}
	return items, nil
}

// writeCSV 写出表头和全部条目。
func writeCSV(w io.Writer, items []rss.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rss.Columns()); err != nil {
		return err
	}
	for _, item := range items {
		if err := cw.Write(encodeRow(item)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
