package client

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/iabetor/pinyinpal/internal/logger"
)

// localPrefix 持久缓存条目的命名空间前缀，带版本号，
// 避免与目录下无关文件冲突，也便于将来换格式时整体作废。
const localPrefix = "pinyinpal.audio.v1."

// LocalStore 跨会话的本地持久缓存，按键存 base64 字符串。
// 所有写入都是尽力而为：容量或权限问题只记日志，从不向上传播。
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地持久缓存，dir 为空时返回 nil（禁用）。
func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		return nil
	}
	return &LocalStore{dir: dir}
}

// path 返回键对应的文件路径。
func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, localPrefix+url.PathEscape(key))
}

// Get 返回键对应的 base64 字符串。
func (s *LocalStore) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set 写入键对应的 base64 字符串，失败只记日志。
func (s *LocalStore) Set(key, value string) {
	if s == nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		logger.Warnf("[client] 本地缓存目录创建失败: %v", err)
		return
	}
	if err := os.WriteFile(s.path(key), []byte(value), 0644); err != nil {
		logger.Warnf("[client] 本地缓存写入失败: %s: %v", key, err)
	}
}
