package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, 期望 %q", db.Path(), path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("目录应已创建: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("第 %d 次 Migrate 失败: %v", i+1, err)
		}
	}

	if _, err := db.Exec(`INSERT INTO news_items (title, link) VALUES ('a', 'https://example.com/1')`); err != nil {
		t.Fatalf("插入失败: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO news_items (title, link) VALUES ('b', 'https://example.com/1')`); err == nil {
		t.Error("重复 link 应违反唯一约束")
	}

	// NULL link 不受唯一约束限制
	for i := 0; i < 2; i++ {
		if _, err := db.Exec(`INSERT INTO news_items (title) VALUES ('no link')`); err != nil {
			t.Fatalf("插入无 link 条目失败: %v", err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM news_items`).Scan(&count); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if count != 3 {
		t.Errorf("期望 3 行, 实际 %d", count)
	}
}

func TestCloseNil(t *testing.T) {
	db := &DB{}
	if err := db.Close(); err != nil {
		t.Errorf("空连接 Close 不应报错: %v", err)
	}
}
