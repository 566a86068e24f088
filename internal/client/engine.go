package client

import (
	"context"
	"sync"
	"time"

	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/player"
)

// Engine 发音播放引擎。
// PlayPronunciation 解析发音键并触发播放，立即返回音频时长，
// UI 用返回的时长驱动"播放中"指示。
type Engine struct {
	resolver *Resolver
	strategy player.Strategy
	minPlay  time.Duration

	primeOnce sync.Once
}

// NewEngine 创建播放引擎。
// minPlay 为返回时长的下限，保证极短音频的指示也能被看到。
func NewEngine(resolver *Resolver, strategy player.Strategy, minPlay time.Duration) *Engine {
	return &Engine{
		resolver: resolver,
		strategy: strategy,
		minPlay:  minPlay,
	}
}

// PlayPronunciation 播放发音键对应的音频，返回音频时长。
// 解析失败时返回错误且不播放任何声音；播放本身异步进行，
// 多次并发调用各自使用独立播放节点，允许声音重叠。
func (e *Engine) PlayPronunciation(ctx context.Context, key string) (time.Duration, error) {
	// 首次播放前预热音频子系统，失败无害、忽略
	e.primeOnce.Do(func() {
		if err := e.strategy.Prime(ctx); err != nil {
			logger.Debugf("[client] 音频预热失败（忽略）: %v", err)
		}
	})

	buf, err := e.resolver.Resolve(ctx, key)
	if err != nil {
		return 0, err
	}

	go func() {
		if err := e.strategy.Play(context.Background(), buf); err != nil {
			logger.Warnf("[client] 播放失败: %s: %v", key, err)
		}
	}()

	d := buf.Duration()
	if d < e.minPlay {
		d = e.minPlay
	}
	return d, nil
}
