package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/iabetor/pinyinpal/internal/audio"
	"github.com/iabetor/pinyinpal/internal/logger"
)

// GraphStrategy 使用 malgo (miniaudio) 播放解码后的样本。
// 进程内共享一个惰性初始化的播放上下文，每次播放创建独立设备，
// 设备按音频自身的采样率配置，重采样交给 miniaudio。
type GraphStrategy struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	closed bool
}

// NewGraphStrategy 创建音频图播放策略。
func NewGraphStrategy() *GraphStrategy {
	return &GraphStrategy{}
}

// ensureContext 惰性初始化共享播放上下文。
func (g *GraphStrategy) ensureContext() (*malgo.AllocatedContext, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, fmt.Errorf("播放器已关闭")
	}
	if g.ctx != nil {
		return g.ctx, nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("初始化播放上下文失败: %w", err)
	}
	g.ctx = ctx
	logger.Debugf("[player] graph: 播放上下文已初始化")
	return ctx, nil
}

// Prime 初始化上下文并播放 20ms 静音，解除部分平台的音频子系统限制。
func (g *GraphStrategy) Prime(ctx context.Context) error {
	silence := &audio.Buffer{
		Samples:    make([]float32, 48000/50),
		SampleRate: 48000,
		Channels:   1,
	}
	return g.Play(ctx, silence)
}

// Play 通过独立设备播放音频，阻塞直到播放完成或 ctx 取消。
func (g *GraphStrategy) Play(ctx context.Context, buf *audio.Buffer) error {
	if buf == nil || len(buf.Samples) == 0 {
		return nil
	}

	mctx, err := g.ensureContext()
	if err != nil {
		return err
	}

	pcmBytes := audio.Float32ToPCM(buf.Samples)
	pos := 0
	done := make(chan struct{})

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(buf.Channels)
	// 按音频自身采样率播放，硬件速率匹配交给 miniaudio，
	// 强行改动设备原生速率在部分设备上会导致完全无声
	deviceConfig.SampleRate = uint32(buf.SampleRate)
	deviceConfig.PeriodSizeInFrames = 512
	deviceConfig.Periods = 2

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, frameCount uint32) {
			bytesNeeded := int(frameCount) * buf.Channels * 2
			if pos >= len(pcmBytes) {
				// 数据播完，填充静音
				for i := range outputSamples[:bytesNeeded] {
					outputSamples[i] = 0
				}
				select {
				case done <- struct{}{}:
				default:
				}
				return
			}

			end := pos + bytesNeeded
			if end > len(pcmBytes) {
				end = len(pcmBytes)
			}
			copy(outputSamples, pcmBytes[pos:end])
			// 如果数据不够，剩余部分填零
			if end-pos < bytesNeeded {
				for i := end - pos; i < bytesNeeded; i++ {
					outputSamples[i] = 0
				}
			}
			pos = end
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("初始化播放设备失败: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("启动播放设备失败: %w", err)
	}
	defer device.Stop()

	select {
	case <-ctx.Done():
		logger.Debugf("[player] graph: 播放被取消")
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close 释放共享播放上下文。
func (g *GraphStrategy) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true

	if g.ctx != nil {
		_ = g.ctx.Uninit()
		g.ctx.Free()
		g.ctx = nil
	}
}
