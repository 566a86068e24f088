package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/pinyin"
)

// EdgeSource 使用微软 Edge TTS 按需合成发音音频。
// 合成时把规范键还原为带声调符号的注音写法，让中文语音按拼音读出。
type EdgeSource struct {
	voice string
}

// NewEdgeSource 创建指定语音的 Edge TTS 来源。
func NewEdgeSource(voice string) *EdgeSource {
	return &EdgeSource{voice: voice}
}

// Fetch 合成发音键对应的 MP3 音频。
func (s *EdgeSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	text := pinyin.Display(key)
	logger.Debugf("[tts] edge-tts: 正在合成 %q (键=%s, 语音=%s)", text, key, s.voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(s.voice))
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有音频数据
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	if mp3Buf.Len() == 0 {
		return nil, fmt.Errorf("[tts] edge-tts: %w", ErrNotFound)
	}

	logger.Debugf("[tts] edge-tts: 收到 %d 字节 MP3 数据", mp3Buf.Len())
	return mp3Buf.Bytes(), nil
}
