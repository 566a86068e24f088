package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iabetor/pinyinpal/internal/logger"
)

// withRequestID 为每个请求分配请求 ID 并记录访问日志。
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debugf("[server] %s %s request_id=%s 耗时=%v", r.Method, r.URL.Path, id, time.Since(start))
	})
}

// withRecover 兜底捕获 handler 中的 panic，统一返回 500。
// 任何未处理的失败都不允许泄露半成品状态给客户端。
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorf("[server] handler panic: %v", rec)
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
