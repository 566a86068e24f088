package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iabetor/pinyinpal/internal/logger"
)

// ProxySource 从固定格式的外部音频源获取发音 MP3。
// 地址形如 {base}/{key}.mp3，key 为规范化后的发音键。
// 不带声调的键 404 时，追加默认的轻声标记 5 再试一次
// （部分音频源只按带声调的文件名存储）。
type ProxySource struct {
	baseURL string
	client  *http.Client
}

// NewProxySource 创建固定格式音频源。
func NewProxySource(baseURL string) *ProxySource {
	return &ProxySource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch 获取发音键对应的 MP3 音频。
func (s *ProxySource) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.fetchOne(ctx, key)
	if err == nil {
		return data, nil
	}

	// 回退寻址：键不带声调数字时追加轻声标记重试一次
	if errors.Is(err, ErrNotFound) && !hasToneDigit(key) {
		logger.Debugf("[tts] proxy: %s 未找到，尝试轻声回退 %s5", key, key)
		return s.fetchOne(ctx, key+"5")
	}
	return nil, err
}

// fetchOne 请求单个音频文件。
func (s *ProxySource) fetchOne(ctx context.Context, key string) ([]byte, error) {
	addr := fmt.Sprintf("%s/%s.mp3", s.baseURL, url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求上游音频失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("上游返回状态 %d", resp.StatusCode)
	}

	// 部分音频源对缺失文件返回 200 + HTML 错误页，按未找到处理
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("%w: Content-Type %s", ErrNotAudio, ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取上游响应失败: %w", err)
	}

	logger.Debugf("[tts] proxy: %s 获取 %d 字节", key, len(data))
	return data, nil
}

// hasToneDigit 判断键末尾是否已带声调数字。
func hasToneDigit(key string) bool {
	if key == "" {
		return false
	}
	last := key[len(key)-1]
	return last >= '1' && last <= '5'
}
