package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestDecodePCM_Basic(t *testing.T) {
	// Four frames of mono 16-bit PCM at 16kHz
	buf := new(bytes.Buffer)
	for _, s := range []int16{0, 16384, -16384, 32767} {
		binary.Write(buf, binary.LittleEndian, s)
	}

	out, err := Decode(buf.Bytes(), FormatPCM, PCMParams{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SampleRate != 16000 || out.Channels != 1 {
		t.Fatalf("unexpected buffer params: %+v", out)
	}
	if len(out.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(out.Samples))
	}
	if out.Samples[0] != 0 {
		t.Errorf("expected 0.0, got %f", out.Samples[0])
	}
	if out.Samples[1] != 0.5 {
		t.Errorf("expected 0.5, got %f", out.Samples[1])
	}
	if out.Samples[2] != -0.5 {
		t.Errorf("expected -0.5, got %f", out.Samples[2])
	}
}

func TestDecodePCM_OddLengthPadded(t *testing.T) {
	// 2501 bytes (odd) must decode by padding to 2502, not fail
	data := make([]byte, 2501)
	out, err := Decode(data, FormatPCM, PCMParams{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("odd-length PCM should decode, got error: %v", err)
	}
	if len(out.Samples) != 1251 {
		t.Fatalf("expected 1251 samples after padding, got %d", len(out.Samples))
	}
}

func TestDecodePCM_InputNotMutated(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	orig := append([]byte(nil), data...)
	if _, err := Decode(data, FormatPCM, PCMParams{SampleRate: 8000, Channels: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Fatal("decode mutated the caller's input buffer")
	}
}

func TestDecodePCM_MissingParams(t *testing.T) {
	if _, err := Decode([]byte{0, 0}, FormatPCM, PCMParams{}); err == nil {
		t.Fatal("expected error for missing PCM params")
	}
}

func TestDecode_EmptyPayload(t *testing.T) {
	if _, err := Decode(nil, FormatMP3, PCMParams{}); !errors.Is(err, ErrNoAudioData) {
		t.Fatalf("expected ErrNoAudioData, got %v", err)
	}
}

func TestDecodeMP3_Garbage(t *testing.T) {
	if _, err := Decode(bytes.Repeat([]byte{0xAB}, 64), FormatMP3, PCMParams{}); err == nil {
		t.Fatal("expected error for malformed MP3")
	}
}

func TestBufferDuration(t *testing.T) {
	b := &Buffer{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1}
	if d := b.Duration(); d != time.Second {
		t.Fatalf("expected 1s, got %v", d)
	}
	stereo := &Buffer{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 2}
	if d := stereo.Duration(); d != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", d)
	}
}

func TestValidatePayload(t *testing.T) {
	if err := ValidatePayload(make([]byte, 50)); !errors.Is(err, ErrPayloadTooSmall) {
		t.Fatalf("expected ErrPayloadTooSmall for 50 bytes, got %v", err)
	}
	if err := ValidatePayload(make([]byte, 100)); err != nil {
		t.Fatalf("100 bytes should be valid, got %v", err)
	}
}

func TestPCMRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.99}
	out := PCMToFloat32(Float32ToPCM(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d != %d", len(out), len(in))
	}
	for i := range in {
		diff := out[i] - in[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/32768.0 {
			t.Errorf("sample %d: got %f, want ~%f", i, out[i], in[i])
		}
	}
}
