package client

import (
	"sync"

	"github.com/iabetor/pinyinpal/internal/audio"
)

// MemoryCache 发音键 → 解码后音频的进程内缓存。
// 只存解码输出，从不持有可被解码器消耗的输入缓冲。
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*audio.Buffer
}

// NewMemoryCache 创建内存缓存。
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*audio.Buffer)}
}

// Get 返回键对应的解码音频。
func (c *MemoryCache) Get(key string) (*audio.Buffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, ok := c.entries[key]
	return buf, ok
}

// Put 写入解码音频。
func (c *MemoryCache) Put(key string, buf *audio.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = buf
}

// Len 返回缓存条目数。
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
