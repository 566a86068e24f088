// Package store 提供服务端的持久音频缓存。
// 缓存按发音键寻址，一经写入永不过期；写入采用"存在则忽略"语义，
// 并发的相同请求不会互相覆盖。
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/iabetor/pinyinpal/internal/config"
	"github.com/iabetor/pinyinpal/internal/database"
)

// ErrNotFound 缓存中没有对应键的条目。
var ErrNotFound = errors.New("缓存未命中")

// Store 持久音频缓存的抽象。
// 实现必须区分"键不存在"（返回 ErrNotFound）和其他存储错误；
// 遇到容器缺失（表/目录不存在）时应自行惰性初始化并按未命中处理。
type Store interface {
	// Get 返回键对应的音频字节，未命中返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)
	// Put 写入音频字节；键已存在时静默忽略。
	Put(ctx context.Context, key string, data []byte) error
	// Init 初始化存储容器，可重复调用。
	Init(ctx context.Context) error
}

// New 根据配置创建缓存后端。
// db 仅在 backend=sqlite 时使用，可为 nil（backend=blob）。
func New(cfg config.Store, db *database.DB) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("sqlite 缓存后端需要数据库连接")
		}
		return NewSQLiteStore(db), nil
	case "blob":
		return NewBlobStore(cfg.BlobDir), nil
	default:
		return nil, fmt.Errorf("未知的缓存后端: %s", cfg.Backend)
	}
}
