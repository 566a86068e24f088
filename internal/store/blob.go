package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/iabetor/pinyinpal/internal/logger"
)

// BlobStore 基于文件系统的持久音频缓存。
// 每个键对应目录下的一个 MP3 文件，键经 URL 转义后作为文件名。
type BlobStore struct {
	dir string
}

// NewBlobStore 创建文件缓存，dir 为音频文件目录。
func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{dir: dir}
}

// filePath 返回键对应的缓存文件路径。
func (s *BlobStore) filePath(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".mp3")
}

// Get 读取键对应的音频文件。
// 目录不存在时惰性创建并按未命中处理。
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err == nil {
		return data, nil
	}
	if os.IsNotExist(err) {
		if _, statErr := os.Stat(s.dir); os.IsNotExist(statErr) {
			logger.Warnf("[store] 缓存目录不存在，惰性创建: %s", s.dir)
			if initErr := s.Init(ctx); initErr != nil {
				return nil, fmt.Errorf("惰性创建缓存目录失败: %w", initErr)
			}
		}
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("读取缓存文件失败: %w", err)
}

// Put 写入音频文件，键已存在时忽略。
// 先写临时文件再原子重命名，避免读到写了一半的文件。
func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	path := s.filePath(key)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("创建缓存目录失败: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("重命名缓存文件失败: %w", err)
	}
	return nil
}

// Init 创建缓存目录。
func (s *BlobStore) Init(ctx context.Context) error {
	return os.MkdirAll(s.dir, 0755)
}
