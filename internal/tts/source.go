// Package tts 提供发音音频的上游来源。
// 三种实现：固定格式音频源（按发音键直接取 MP3 文件）、
// Edge TTS 和腾讯云 TTS（按需合成）。所有实现返回 MP3 字节。
package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/iabetor/pinyinpal/internal/config"
)

// ErrNotFound 上游没有该发音键对应的音频。
var ErrNotFound = errors.New("上游没有对应的音频")

// ErrNotAudio 上游返回的内容不是音频（例如 HTML 错误页）。
var ErrNotAudio = errors.New("上游返回的内容不是音频")

// Source 发音音频上游的抽象。
type Source interface {
	// Fetch 获取发音键对应的 MP3 音频字节。
	// 上游没有该音频时返回 ErrNotFound。
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// New 根据配置创建上游来源。
func New(cfg config.Source) (Source, error) {
	switch cfg.Provider {
	case "proxy":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("proxy 上游需要 base_url")
		}
		return NewProxySource(cfg.BaseURL), nil
	case "edge":
		return NewEdgeSource(cfg.Edge.Voice), nil
	case "tencent":
		return NewTencentSource(TencentConfig{
			SecretID:  cfg.Tencent.SecretID,
			SecretKey: cfg.Tencent.SecretKey,
			VoiceType: cfg.Tencent.VoiceType,
			Region:    cfg.Tencent.Region,
		})
	default:
		return nil, fmt.Errorf("未知的上游类型: %s", cfg.Provider)
	}
}
