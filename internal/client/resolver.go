package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/iabetor/pinyinpal/internal/audio"
	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/pinyin"
)

// ErrNotFound 服务端没有该发音键对应的音频。
var ErrNotFound = errors.New("发音音频不存在")

// pendingFetch 一次在途请求。done 关闭后 buf/err 有效。
type pendingFetch struct {
	done chan struct{}
	buf  *audio.Buffer
	err  error
}

// Resolver 把发音键解析为可播放音频。
// 解析顺序：内存缓存 → 在途请求 → 本地持久缓存 → 网络请求。
// 同一个键的并发解析只发出一次网络请求，所有调用方共享结果。
type Resolver struct {
	serverURL string
	client    *http.Client
	local     *LocalStore // nil 表示禁用持久缓存
	mem       *MemoryCache

	// decode 把 MP3 字节解码为 Buffer，测试中可替换
	decode func([]byte) (*audio.Buffer, error)

	mu      sync.Mutex
	pending map[string]*pendingFetch
}

// NewResolver 创建解析器。local 可为 nil。
func NewResolver(serverURL string, local *LocalStore) *Resolver {
	return &Resolver{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		local:     local,
		mem:       NewMemoryCache(),
		decode: func(data []byte) (*audio.Buffer, error) {
			return audio.Decode(data, audio.FormatMP3, audio.PCMParams{})
		},
		pending: make(map[string]*pendingFetch),
	}
}

// Resolve 把发音键解析为解码后的音频。
func (r *Resolver) Resolve(ctx context.Context, key string) (*audio.Buffer, error) {
	key = pinyin.Normalize(key)

	// 查缓存、查在途、登记在途必须在一次持锁内完成，
	// 否则两个并发调用会同时漏过在途表、各发一次请求
	r.mu.Lock()
	if buf, ok := r.mem.Get(key); ok {
		r.mu.Unlock()
		return buf, nil
	}
	if p, ok := r.pending[key]; ok {
		r.mu.Unlock()
		select {
		case <-p.done:
			return p.buf, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pendingFetch{done: make(chan struct{})}
	r.pending[key] = p
	r.mu.Unlock()

	// 本请求是该键的唯一执行者，完成后无论成败都摘除在途条目
	buf, err := r.fetchAndDecode(ctx, key)

	r.mu.Lock()
	delete(r.pending, key)
	if err == nil {
		r.mem.Put(key, buf)
	}
	r.mu.Unlock()

	p.buf, p.err = buf, err
	close(p.done)
	return buf, err
}

// fetchAndDecode 先查本地持久缓存，未命中再请求服务端。
func (r *Resolver) fetchAndDecode(ctx context.Context, key string) (*audio.Buffer, error) {
	if encoded, ok := r.local.Get(key); ok {
		if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			if buf, err := r.decode(data); err == nil {
				logger.Debugf("[client] 本地持久缓存命中: %s", key)
				return buf, nil
			}
		}
		// 本地条目损坏，按未命中继续走网络
		logger.Warnf("[client] 本地持久缓存条目损坏，忽略: %s", key)
	}

	data, err := r.fetchRemote(ctx, key)
	if err != nil {
		return nil, err
	}

	buf, err := r.decode(data)
	if err != nil {
		return nil, err
	}

	// 持久缓存写入尽力而为，失败不影响本次解析
	r.local.Set(key, base64.StdEncoding.EncodeToString(data))
	return buf, nil
}

// fetchRemote 调用服务端 POST /api/tts 获取音频字节。
func (r *Resolver) fetchRemote(ctx context.Context, key string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": key})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.serverURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求发音服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("发音服务返回状态 %d", resp.StatusCode)
	}

	var payload struct {
		AudioData string `json:"audioData"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if payload.AudioData == "" {
		return nil, audio.ErrNoAudioData
	}

	data, err := base64.StdEncoding.DecodeString(payload.AudioData)
	if err != nil {
		return nil, fmt.Errorf("base64 解码失败: %w", err)
	}
	if err := audio.ValidatePayload(data); err != nil {
		return nil, err
	}

	logger.Debugf("[client] 已获取 %s (%d 字节)", key, len(data))
	return data, nil
}
