// Package player 提供两种播放策略：
//   - graph:  解码后的样本经 malgo (miniaudio) 音频图播放
//   - direct: 样本流经 oto 直接写入输出设备
//
// 策略在启动时由平台检测选定一次，播放热路径内不做平台分支。
// 两种策略都满足同一契约：Prime 可重复调用且失败无害，
// Play 为每次调用创建独立的一次性播放节点，允许多路并发播放。
package player

import (
	"context"
	"fmt"
	"runtime"

	"github.com/iabetor/pinyinpal/internal/audio"
)

// Strategy 播放策略。
type Strategy interface {
	// Prime 预热音频子系统：初始化共享输出上下文并播放一小段静音。
	// 可重复调用，失败应被调用方忽略。
	Prime(ctx context.Context) error
	// Play 通过一次性播放节点播放音频，阻塞直到播放完成或 ctx 取消。
	Play(ctx context.Context, buf *audio.Buffer) error
	// Close 释放共享输出上下文。
	Close()
}

// Detect 返回当前平台的默认策略名。
// macOS 上 miniaudio 偶发启动静音，历史上改走 oto 直接播放绕开。
func Detect() string {
	if runtime.GOOS == "darwin" {
		return "direct"
	}
	return "graph"
}

// New 根据策略名创建播放策略，"auto" 表示按平台检测。
func New(kind string) (Strategy, error) {
	if kind == "" || kind == "auto" {
		kind = Detect()
	}
	switch kind {
	case "graph":
		return NewGraphStrategy(), nil
	case "direct":
		return NewDirectStrategy(), nil
	default:
		return nil, fmt.Errorf("未知的播放策略: %s", kind)
	}
}
