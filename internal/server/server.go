// Package server 提供发音服务的 HTTP API。
//
//	POST /api/tts     查缓存或生成发音音频，返回 base64
//	GET  /api/pinyin  查询汉字的发音键
//	GET  /healthz     存活探针
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iabetor/pinyinpal/internal/config"
	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/store"
	"github.com/iabetor/pinyinpal/internal/tts"
)

// Server 发音服务 HTTP 服务器。
type Server struct {
	cfg    config.Server
	cache  store.Store
	source tts.Source
	server *http.Server
}

// New 创建 HTTP 服务器。
func New(cfg config.Server, cache store.Store, source tts.Source) *Server {
	s := &Server{
		cfg:    cfg,
		cache:  cache,
		source: source,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/pinyin", s.handlePinyin)
	mux.HandleFunc("POST /api/tts", s.handleTTS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      withRequestID(withRecover(mux)),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler 返回完整的请求处理链，供测试直接挂载。
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start 开始监听 HTTP 请求，阻塞直到服务器关闭。
func (s *Server) Start() error {
	logger.Infof("[server] HTTP 服务启动: %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP 服务出错: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务器。
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("[server] HTTP 服务正在关闭")
	return s.server.Shutdown(ctx)
}
