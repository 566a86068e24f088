package audio

import (
	"errors"
	"fmt"
)

// MinPayloadSize 小于该字节数的音频负载视为损坏或占位响应，
// 不得缓存也不得作为成功结果返回。
const MinPayloadSize = 100

// ErrPayloadTooSmall 音频负载小于最小有效大小。
var ErrPayloadTooSmall = errors.New("音频负载过小")

// ValidatePayload 校验音频负载的最小有效大小。
func ValidatePayload(data []byte) error {
	if len(data) < MinPayloadSize {
		return fmt.Errorf("%w: %d 字节 (最小 %d)", ErrPayloadTooSmall, len(data), MinPayloadSize)
	}
	return nil
}
