package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iabetor/pinyinpal/internal/config"
	"github.com/iabetor/pinyinpal/internal/database"
	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/server"
	"github.com/iabetor/pinyinpal/internal/store"
	"github.com/iabetor/pinyinpal/internal/tts"
)

func main() {
	configPath := flag.String("config", "configs/pinyinpal.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] PinyinPal 发音服务启动中 (store=%s, source=%s)",
		cfg.Store.Backend, cfg.Source.Provider)

	// SQLite 后端才需要数据库连接
	var db *database.DB
	if cfg.Store.Backend == "sqlite" {
		db, err = database.Open(cfg.Store.DBPath)
		if err != nil {
			logger.Errorf("[main] 打开数据库失败: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			logger.Errorf("[main] 数据库迁移失败: %v", err)
			os.Exit(1)
		}
	}

	cache, err := store.New(cfg.Store, db)
	if err != nil {
		logger.Errorf("[main] 创建缓存后端失败: %v", err)
		os.Exit(1)
	}

	source, err := tts.New(cfg.Source)
	if err != nil {
		logger.Errorf("[main] 创建上游来源失败: %v", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, cache, source)

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warnf("[main] 关闭服务出错: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Errorf("[main] %v", err)
		os.Exit(1)
	}

	logger.Info("[main] PinyinPal 发音服务已停止")
}
