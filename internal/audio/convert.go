package audio

import (
	"encoding/binary"
	"math"
)

// PCMToFloat32 将小端 signed 16-bit PCM 字节转换为 [-1.0, 1.0] 的 float32 样本。
// 输入长度必须为偶数，调用方负责补齐。
func PCMToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(b[2*i:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToPCM 将 float32 样本转换为小端 signed 16-bit PCM 字节。
// 超出 [-1.0, 1.0] 的样本被钳位。
func Float32ToPCM(in []float32) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s*math.MaxInt16)))
	}
	return out
}
