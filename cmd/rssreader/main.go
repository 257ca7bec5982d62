package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/iabetor/rssreader/internal/cache"
	"github.com/iabetor/rssreader/internal/config"
	"github.com/iabetor/rssreader/internal/logger"
	"github.com/iabetor/rssreader/internal/reader"
	"github.com/iabetor/rssreader/internal/rss"
)

func main() {
	fs := pflag.NewFlagSet("rssreader", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "RSS Reader - Fetch and read RSS feeds.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: rssreader [flags]")
		fs.PrintDefaults()
	}

	source := fs.StringP("source", "s", "", "RSS 源 URL 或配置中的别名；与 --date 同用时作为来源过滤")
	date := fs.StringP("date", "d", "", "按日期 (YYYYMMDD) 从缓存读取新闻")
	limit := fs.IntP("limit", "l", 0, "最多解析的新闻条数，0 表示不限制")
	asJSON := fs.BoolP("json", "j", false, "以 JSON 格式输出")
	verbose := fs.BoolP("verbose", "v", false, "输出全部字段和进度信息")
	configPath := fs.StringP("config", "c", os.Getenv("RSSREADER_CONFIG"), "配置文件路径")
	cachePath := fs.String("cache", "", "缓存文件路径，覆盖配置")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *cachePath != "" {
		cfg.Cache.Path = *cachePath
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}
	if *verbose {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	opts := reader.Options{
		Source:  cfg.ResolveSource(*source),
		Date:    *date,
		Limit:   *limit,
		JSON:    *asJSON,
		Verbose: *verbose,
	}
	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "rssreader: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, opts reader.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 收到信号时取消正在进行的请求
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warnf("[main] 收到信号 %v，正在退出...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Debugf("[main] 缓存: %s (%s)", store.Path(), cfg.Cache.Backend)

	r := reader.New(store, rss.NewFetcher(cfg.Fetch), rss.NewParser(), os.Stdout)
	return r.Run(ctx, opts)
}
