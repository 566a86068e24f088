package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/iabetor/pinyinpal/internal/logger"
)

// Format 音频负载的编码格式。
type Format int

const (
	// FormatMP3 MP3 容器。
	FormatMP3 Format = iota
	// FormatPCM 原始 signed 16-bit 小端 PCM。
	FormatPCM
)

// PCMParams 原始 PCM 负载的参数，FormatPCM 时必须提供。
type PCMParams struct {
	SampleRate int
	Channels   int
}

// ErrNoAudioData 负载缺失、为空或无法解码。
var ErrNoAudioData = errors.New("音频数据缺失或无法解码")

// Decode 将音频字节解码为可播放的 Buffer。
// 输入字节不会被修改：解码前先做一份拷贝，解码器可以随意消耗拷贝。
func Decode(data []byte, format Format, params PCMParams) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrNoAudioData
	}

	switch format {
	case FormatMP3:
		return decodeMP3(data)
	case FormatPCM:
		return decodePCM(data, params)
	default:
		return nil, fmt.Errorf("未知的音频格式: %d", format)
	}
}

// decodeMP3 解码 MP3 为单声道 float32 样本。
// go-mp3 固定输出双声道 16-bit 小端 PCM，左右声道取平均得到单声道。
func decodeMP3(data []byte) (*Buffer, error) {
	// 防御性拷贝：解码器从 reader 中消耗数据，不允许它触碰调用方的切片
	cp := make([]byte, len(data))
	copy(cp, data)

	decoder, err := mp3.NewDecoder(bytes.NewReader(cp))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioData, err)
	}

	sampleRate := decoder.SampleRate()

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("读取 PCM 数据失败: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudioData
	}

	// 每个双声道帧 4 字节，截掉不完整的尾部帧
	const bytesPerFrame = 4
	pcm = pcm[:len(pcm)/bytesPerFrame*bytesPerFrame]

	stereo := PCMToFloat32(pcm)
	mono := make([]float32, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[2*i] + stereo[2*i+1]) / 2.0
	}

	return &Buffer{Samples: mono, SampleRate: sampleRate, Channels: 1}, nil
}

// decodePCM 按声明的采样率和声道数解释原始 PCM 字节。
// 奇数长度补一个零字节后再解释，不因此报错。
func decodePCM(data []byte, params PCMParams) (*Buffer, error) {
	if params.SampleRate <= 0 || params.Channels <= 0 {
		return nil, fmt.Errorf("原始 PCM 需要声明采样率和声道数")
	}

	if len(data)%2 != 0 {
		logger.Warnf("[audio] PCM 负载长度为奇数 (%d 字节)，补零对齐", len(data))
		padded := make([]byte, len(data)+1)
		copy(padded, data)
		data = padded
	}

	samples := PCMToFloat32(data)
	return &Buffer{Samples: samples, SampleRate: params.SampleRate, Channels: params.Channels}, nil
}
