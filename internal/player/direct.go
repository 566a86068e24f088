package player

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/iabetor/pinyinpal/internal/audio"
	"github.com/iabetor/pinyinpal/internal/logger"
)

// directSampleRate oto 上下文的固定输出速率，音频在软件侧重采样到该速率。
const directSampleRate = 48000

// DirectStrategy 使用 oto 把样本直接写入输出设备。
// oto 上下文进程内只能存在一个，惰性初始化后复用；
// 每次播放创建独立的一次性 player。
type DirectStrategy struct {
	mu  sync.Mutex
	ctx *oto.Context
}

// NewDirectStrategy 创建直接播放策略。
func NewDirectStrategy() *DirectStrategy {
	return &DirectStrategy{}
}

// ensureContext 惰性初始化 oto 上下文并等待其就绪。
func (d *DirectStrategy) ensureContext() (*oto.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx != nil {
		return d.ctx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   directSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("初始化 oto 上下文失败: %w", err)
	}
	<-ready

	d.ctx = ctx
	logger.Debugf("[player] direct: oto 上下文已就绪")
	return ctx, nil
}

// Prime 初始化上下文并播放 20ms 静音。
func (d *DirectStrategy) Prime(ctx context.Context) error {
	silence := &audio.Buffer{
		Samples:    make([]float32, directSampleRate/50),
		SampleRate: directSampleRate,
		Channels:   1,
	}
	return d.Play(ctx, silence)
}

// Play 通过一次性 player 播放音频，阻塞直到播放完成或 ctx 取消。
func (d *DirectStrategy) Play(ctx context.Context, buf *audio.Buffer) error {
	if buf == nil || len(buf.Samples) == 0 {
		return nil
	}

	octx, err := d.ensureContext()
	if err != nil {
		return err
	}

	mono := downmix(buf)
	resampled := resampleLinear(mono.Samples, mono.SampleRate, directSampleRate)
	pcm := audio.Float32ToPCM(resampled)

	p := octx.NewPlayer(bytes.NewReader(pcm))
	defer p.Close()
	p.Play()

	// oto 没有播放完成回调，按播放状态轮询
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			logger.Debugf("[player] direct: 播放被取消")
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close 直接策略没有可释放的资源，oto 上下文不支持销毁。
func (d *DirectStrategy) Close() {}

// downmix 把多声道音频混合为单声道。
func downmix(buf *audio.Buffer) *audio.Buffer {
	if buf.Channels <= 1 {
		return buf
	}
	frames := buf.Frames()
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < buf.Channels; c++ {
			sum += buf.Samples[i*buf.Channels+c]
		}
		mono[i] = sum / float32(buf.Channels)
	}
	return &audio.Buffer{Samples: mono, SampleRate: buf.SampleRate, Channels: 1}
}

// resampleLinear 线性插值重采样，src/dst 速率相同时原样返回。
func resampleLinear(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	n := int(float64(len(samples)) * float64(dstRate) / float64(srcRate))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		pos := float64(i) * float64(srcRate) / float64(dstRate)
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
