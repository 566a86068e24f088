package tts

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tencenttts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/iabetor/pinyinpal/internal/logger"
	"github.com/iabetor/pinyinpal/internal/pinyin"
)

// TencentSource 使用腾讯云 TTS 按需合成发音音频。
// 适用于中国大陆网络环境。
type TencentSource struct {
	client    *tencenttts.Client
	voiceType int64
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	VoiceType int64
	Region    string
}

// NewTencentSource 创建腾讯云 TTS 来源。
func NewTencentSource(cfg TencentConfig) (*TencentSource, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	if cfg.VoiceType == 0 {
		cfg.VoiceType = 1001 // 默认音色：智瑜（女声）
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tencenttts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[tts] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 来源已初始化 (voice=%d, region=%s)", cfg.VoiceType, cfg.Region)

	return &TencentSource{
		client:    client,
		voiceType: cfg.VoiceType,
	}, nil
}

// Fetch 合成发音键对应的 MP3 音频。
func (s *TencentSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	text := pinyin.Display(key)
	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %q (键=%s, 音色=%d)", text, key, s.voiceType)

	request := tencenttts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(text)
	request.VoiceType = common.Int64Ptr(s.voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(0.8) // 儿童跟读，语速放慢
	request.Volume = common.Float64Ptr(5.0)

	response, err := s.client.TextToVoice(request)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: %w", ErrNotFound)
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("[tts] Base64 解码失败: %w", err)
	}

	logger.Debugf("[tts] 腾讯云 TTS: 收到 %d 字节 MP3 数据", len(mp3Data))
	return mp3Data, nil
}
