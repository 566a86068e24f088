package audio

import "time"

// Buffer 解码后的可播放音频。
// 样本为 [-1.0, 1.0] 范围的 float32，多声道时按帧交错存放。
// 解码完成后不再修改，可被缓存安全共享。
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames 返回音频帧数（每帧包含 Channels 个样本）。
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration 返回音频时长。
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}
