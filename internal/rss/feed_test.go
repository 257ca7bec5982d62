package rss

import (
	"reflect"
	"testing"
)

func TestColumnsOrder(t *testing.T) {
	want := []string{"title", "author", "pubDate", "link", "category", "description", "source_url"}
	if got := Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, 期望 %v", got, want)
	}
}

func TestFieldsSkipsAbsent(t *testing.T) {
	item := Item{
		Title:      "T",
		Link:       "L",
		Categories: []string{"a", "b"},
	}

	got := item.Fields()
	want := []Field{
		{Key: KeyTitle, Values: []string{"T"}},
		{Key: KeyLink, Values: []string{"L"}},
		{Key: KeyCategory, Multi: true, Values: []string{"a", "b"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %+v, 期望 %+v", got, want)
	}
}

func TestSetAndValues(t *testing.T) {
	var item Item
	for _, key := range Columns() {
		if !item.Set(key, []string{key + "-1", key + "-2"}) {
			t.Fatalf("Set(%q) 应成功", key)
		}
	}

	if item.Title != "title-1" {
		t.Errorf("单值字段应取第一个值: %q", item.Title)
	}
	if !reflect.DeepEqual(item.Authors, []string{"author-1", "author-2"}) {
		t.Errorf("多值字段应保留全部值: %v", item.Authors)
	}
	if got := item.Values(KeySourceURL); !reflect.DeepEqual(got, []string{"source_url-1"}) {
		t.Errorf("Values(source_url) = %v", got)
	}

	item.Set(KeyAuthor, nil)
	if item.Authors != nil {
		t.Errorf("空值应清除字段: %v", item.Authors)
	}
	if item.Set("guid", []string{"x"}) {
		t.Error("未知键名应返回 false")
	}
	if item.Values("guid") != nil {
		t.Error("未知键名应返回 nil")
	}
}

func TestIsMulti(t *testing.T) {
	for key, want := range map[string]bool{
		KeyAuthor:   true,
		KeyCategory: true,
		KeyTitle:    false,
		KeyPubDate:  false,
		"unknown":   false,
	} {
		if got := IsMulti(key); got != want {
			t.Errorf("IsMulti(%q) = %v, 期望 %v", key, got, want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Item{Authors: []string{"a"}, Categories: []string{"c"}}
	cp := orig.Clone()
	cp.Authors[0] = "changed"
	cp.Categories = append(cp.Categories, "d")

	if orig.Authors[0] != "a" {
		t.Error("修改副本不应影响原条目")
	}
	if len(orig.Categories) != 1 {
		t.Error("副本追加不应影响原条目")
	}
}
