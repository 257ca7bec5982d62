package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"

	defaultCacheDir     = "data"
	defaultTimeout      = 15
	defaultUserAgent    = "rssreader/1.0 (+https://github.com/iabetor/rssreader)"
	defaultLogLevel     = "warn"
	defaultLogMaxSizeMB = 16
)

// Config 是 rssreader 的顶层配置结构。
type Config struct {
	Cache   CacheConfig       `yaml:"cache"`
	Fetch   FetchConfig       `yaml:"fetch"`
	Log     LogConfig         `yaml:"log"`
	Sources map[string]string `yaml:"sources"` // 订阅源别名 -> URL
}

// CacheConfig 本地缓存配置。
type CacheConfig struct {
	// Backend 存储后端: csv（默认）或 sqlite。
	Backend string `yaml:"backend"`
	// Path 缓存文件路径，为空时按后端取 data/news_cache.csv 或 data/news_cache.db。
	Path string `yaml:"path"`
}

// FetchConfig HTTP 抓取配置。
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Default 返回只包含默认值的配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load 读取 YAML 配置文件并返回 Config。
// path 为空时直接返回默认配置；支持 ${VAR_NAME} 形式的环境变量展开，
// 展开前会尝试加载当前目录下的 .env 文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// .env 不存在是正常情况
	_ = godotenv.Load()

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// ResolveSource 将订阅源别名解析为 URL，不是别名时原样返回。
func (c *Config) ResolveSource(source string) string {
	if source == "" {
		return ""
	}
	if u, ok := c.Sources[source]; ok && u != "" {
		return u
	}
	return source
}

// DefaultCachePath 返回后端对应的默认缓存文件路径。
func DefaultCachePath(backend string) string {
	name := "news_cache.csv"
	if backend == BackendSQLite {
		name = "news_cache.db"
	}
	return filepath.Join(defaultCacheDir, name)
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case "", BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("不支持的缓存后端: %s", cfg.Cache.Backend)
	}
	if cfg.Fetch.TimeoutSeconds < 0 {
		return fmt.Errorf("fetch.timeout_seconds 不能为负数: %d", cfg.Fetch.TimeoutSeconds)
	}
	return nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = BackendCSV
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = DefaultCachePath(cfg.Cache.Backend)
	} else if strings.HasPrefix(cfg.Cache.Path, "~/") {
		// Go 不会自动展开 ~，需要手动替换为用户主目录
		if home, _ := os.UserHomeDir(); home != "" {
			cfg.Cache.Path = filepath.Join(home, cfg.Cache.Path[2:])
		}
	}

	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = defaultTimeout
	}
	cfg.Fetch.UserAgent = strings.TrimSpace(cfg.Fetch.UserAgent)
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = defaultUserAgent
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = defaultLogMaxSizeMB
	}

	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	for name, u := range cfg.Sources {
		cfg.Sources[name] = strings.TrimSpace(u)
	}
}
