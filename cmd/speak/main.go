// speak 命令行工具：解析并播放一个发音键，用于联调发音服务。
//
//	speak -key ma3
//	speak -key mā -server http://localhost:8090
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iabetor/pinyinpal/internal/client"
	"github.com/iabetor/pinyinpal/internal/config"
	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/player"
)

func main() {
	configPath := flag.String("config", "configs/pinyinpal.yaml", "配置文件路径")
	key := flag.String("key", "", "要播放的发音键，如 ma3 或 mā")
	serverURL := flag.String("server", "", "发音服务地址（覆盖配置文件）")
	flag.Parse()

	if *key == "" {
		fmt.Fprintln(os.Stderr, "用法: speak -key <发音键>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// 没有配置文件也可以工作，全部走默认值
		cfg = &config.Config{}
		cfg.Client.ServerURL = "http://localhost:8090"
		cfg.Client.MinPlayMs = 500
		cfg.Client.Playback = "auto"
	}
	if *serverURL != "" {
		cfg.Client.ServerURL = *serverURL
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	strategy, err := player.New(cfg.Client.Playback)
	if err != nil {
		logger.Errorf("[speak] %v", err)
		os.Exit(1)
	}
	defer strategy.Close()

	resolver := client.NewResolver(cfg.Client.ServerURL, client.NewLocalStore(cfg.Client.CacheDir))
	engine := client.NewEngine(resolver, strategy,
		time.Duration(cfg.Client.MinPlayMs)*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dur, err := engine.PlayPronunciation(ctx, *key)
	if err != nil {
		logger.Errorf("[speak] 播放失败: %v", err)
		os.Exit(1)
	}

	fmt.Printf("正在播放 %s (%.2fs)\n", *key, dur.Seconds())
	// 播放是异步的，等待播放结束再退出
	time.Sleep(dur + 200*time.Millisecond)
}
