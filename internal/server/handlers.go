package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iabetor/pinyinpal/internal/audio"
	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/pinyin"
	"github.com/iabetor/pinyinpal/internal/store"
	"github.com/iabetor/pinyinpal/internal/tts"
)

// TTSRequest POST /api/tts 请求体。
type TTSRequest struct {
	Text string `json:"text"`
}

// TTSResponse POST /api/tts 成功响应体。
type TTSResponse struct {
	AudioData string `json:"audioData"`
}

// PinyinResponse GET /api/pinyin 响应体。
type PinyinResponse struct {
	Text string     `json:"text"`
	Keys [][]string `json:"keys"`
}

// ErrorResponse 错误响应体。
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse GET /healthz 响应体。
type HealthResponse struct {
	Status string `json:"status"`
}

// writeJSON 输出 JSON 响应。
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError 输出 JSON 错误响应。
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// handleHealthz 处理 GET /healthz。
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handlePinyin 处理 GET /api/pinyin?text=汉字。
func (s *Server) handlePinyin(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	writeJSON(w, http.StatusOK, PinyinResponse{Text: text, Keys: pinyin.Lookup(text)})
}

// handleTTS 处理 POST /api/tts。
// 逐步：校验 → 规范化 → 查缓存 → 上游获取 → 校验负载 → 持久化 → 返回。
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	// 规范化：缓存寻址与上游地址统一使用规范键
	key := req.Text
	normalized := pinyin.Normalize(key)

	// 缓存查询：优先规范键，原始键作为等价键兜底
	if data, err := s.lookupCache(ctx, key, normalized); err == nil {
		logger.Debugf("[server] 缓存命中: %s (%d 字节)", normalized, len(data))
		writeJSON(w, http.StatusOK, TTSResponse{AudioData: base64.StdEncoding.EncodeToString(data)})
		return
	}

	// 上游获取
	data, err := s.source.Fetch(ctx, normalized)
	if err != nil {
		switch {
		case errors.Is(err, tts.ErrNotFound):
			logger.Warnf("[server] 上游没有音频: %s", normalized)
			writeError(w, http.StatusNotFound, "Audio not found")
		case errors.Is(err, tts.ErrNotAudio):
			logger.Warnf("[server] 上游返回非音频内容: %s: %v", normalized, err)
			writeError(w, http.StatusNotFound, "Audio not found")
		default:
			logger.Errorf("[server] 上游获取失败: %s: %v", normalized, err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	// 负载校验：过小的响应视为损坏，不缓存也不返回成功
	if err := audio.ValidatePayload(data); err != nil {
		logger.Errorf("[server] 上游负载无效: %s: %v", normalized, err)
		writeError(w, http.StatusInternalServerError, "Audio file invalid or empty")
		return
	}

	// 持久化：规范键与原始键都写入，客户端的原样输入下次直接命中。
	// 写入失败只记日志，本次响应已有有效音频。
	if err := s.cache.Put(ctx, normalized, data); err != nil {
		logger.Warnf("[server] 缓存写入失败: %s: %v", normalized, err)
	}
	if key != normalized {
		if err := s.cache.Put(ctx, key, data); err != nil {
			logger.Warnf("[server] 缓存写入失败: %s: %v", key, err)
		}
	}

	logger.Infof("[server] 已生成并缓存: %s (%d 字节)", normalized, len(data))
	writeJSON(w, http.StatusOK, TTSResponse{AudioData: base64.StdEncoding.EncodeToString(data)})
}

// lookupCache 依次按规范键和原始键查缓存。
// 存储错误按未命中降级处理，不影响请求。
func (s *Server) lookupCache(ctx context.Context, key, normalized string) ([]byte, error) {
	data, err := s.cache.Get(ctx, normalized)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Warnf("[server] 缓存读取失败（按未命中处理）: %s: %v", normalized, err)
	}

	if key == normalized {
		return nil, store.ErrNotFound
	}

	data, err = s.cache.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Warnf("[server] 缓存读取失败（按未命中处理）: %s: %v", key, err)
	}
	return nil, store.ErrNotFound
}
