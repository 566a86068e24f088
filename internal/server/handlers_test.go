package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/iabetor/pinyinpal/internal/config"
	"github.com/iabetor/pinyinpal/internal/store"
	"github.com/iabetor/pinyinpal/internal/tts"
)

// fakeSource is a scripted upstream for handler tests.
type fakeSource struct {
	calls   atomic.Int32
	payload []byte
	err     error
}

func (f *fakeSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func newTestServer(t *testing.T, src tts.Source) (*Server, store.Store) {
	t.Helper()
	cache := store.NewBlobStore(t.TempDir())
	cfg := config.Server{Addr: ":0", ReadTimeoutSec: 5, WriteTimeoutSec: 5}
	return New(cfg, cache, src), cache
}

func postTTS(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	return w
}

func TestTTS_MissingText(t *testing.T) {
	src := &fakeSource{payload: bytes.Repeat([]byte{0x01}, 3000)}
	s, _ := newTestServer(t, src)

	for _, body := range []string{"{}", ""} {
		w := postTTS(t, s, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Error != "Text is required" {
			t.Fatalf("unexpected error message: %q", resp.Error)
		}
	}
	if src.calls.Load() != 0 {
		t.Fatalf("invalid request must not reach upstream, got %d calls", src.calls.Load())
	}
}

func TestTTS_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/api/tts", nil)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestTTS_GenerateAndCache(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 3000)
	src := &fakeSource{payload: payload}
	s, cache := newTestServer(t, src)

	w := postTTS(t, s, `{"text":"ma"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp TTSResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	got, err := base64.StdEncoding.DecodeString(resp.AudioData)
	if err != nil {
		t.Fatalf("audioData is not valid base64: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("returned payload differs from upstream payload")
	}

	// Persisted under the canonical key
	stored, err := cache.Get(context.Background(), "ma")
	if err != nil {
		t.Fatalf("payload was not persisted: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatal("persisted payload is not byte-identical")
	}

	// Second identical request is served from cache, no upstream call
	w = postTTS(t, s, `{"text":"ma"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on cached request, got %d", w.Code)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected exactly 1 upstream call, got %d", src.calls.Load())
	}
}

// Two spellings that normalize identically share one cached entry.
func TestTTS_NormalizationConsistency(t *testing.T) {
	src := &fakeSource{payload: bytes.Repeat([]byte{0x7F}, 2000)}
	s, _ := newTestServer(t, src)

	if w := postTTS(t, s, `{"text":"mǎ"}`); w.Code != http.StatusOK {
		t.Fatalf("diacritic spelling failed: %d", w.Code)
	}
	if w := postTTS(t, s, `{"text":"ma3"}`); w.Code != http.StatusOK {
		t.Fatalf("ASCII spelling failed: %d", w.Code)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call for equivalent spellings, got %d", src.calls.Load())
	}
}

// The original (pre-normalization) spelling round-trips to a hit as well.
func TestTTS_OriginalKeyPersisted(t *testing.T) {
	src := &fakeSource{payload: bytes.Repeat([]byte{0x55}, 2000)}
	s, cache := newTestServer(t, src)

	if w := postTTS(t, s, `{"text":"lǜ"}`); w.Code != http.StatusOK {
		t.Fatalf("request failed: %d", w.Code)
	}
	if _, err := cache.Get(context.Background(), "lǜ"); err != nil {
		t.Fatalf("original key was not persisted: %v", err)
	}
	if _, err := cache.Get(context.Background(), "lv4"); err != nil {
		t.Fatalf("canonical key was not persisted: %v", err)
	}
}

// A 50-byte upstream body is corrupt: 500 and nothing cached.
func TestTTS_CorruptionRejected(t *testing.T) {
	src := &fakeSource{payload: make([]byte, 50)}
	s, cache := newTestServer(t, src)

	w := postTTS(t, s, `{"text":"ma"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for undersized payload, got %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Audio file invalid or empty" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
	if _, err := cache.Get(context.Background(), "ma"); err == nil {
		t.Fatal("corrupt payload must not be cached")
	}
}

func TestTTS_UpstreamNotFound(t *testing.T) {
	src := &fakeSource{err: tts.ErrNotFound}
	s, cache := newTestServer(t, src)

	w := postTTS(t, s, `{"text":"xyz"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if _, err := cache.Get(context.Background(), "xyz"); err == nil {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestTTS_HTMLContentRejected(t *testing.T) {
	src := &fakeSource{err: tts.ErrNotAudio}
	s, _ := newTestServer(t, src)

	if w := postTTS(t, s, `{"text":"ma"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-audio content, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPinyinLookup(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/api/pinyin?text=%E5%A6%88", nil)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp PinyinResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if len(resp.Keys) != 1 || len(resp.Keys[0]) == 0 || resp.Keys[0][0] != "ma1" {
		t.Fatalf("unexpected lookup result: %v", resp.Keys)
	}
}

func TestPinyinLookup_MissingText(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/api/pinyin", nil)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
