package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iabetor/pinyinpal/internal/database"
	"github.com/iabetor/pinyinpal/internal/logger"
)

// SQLiteStore 基于 SQLite 的持久音频缓存。
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore 创建 SQLite 缓存。
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get 查询键对应的音频字节。
// 表不存在时惰性建表并按未命中处理。
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM audio_cache WHERE cache_key = ?`, key).Scan(&data)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isMissingTable(err) {
		logger.Warnf("[store] audio_cache 表不存在，惰性建表")
		if initErr := s.Init(ctx); initErr != nil {
			return nil, fmt.Errorf("惰性建表失败: %w", initErr)
		}
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("查询缓存失败: %w", err)
}

// Put 写入音频字节，键已存在时忽略。
func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO audio_cache (cache_key, data, size) VALUES (?, ?, ?)`,
		key, data, len(data))
	if err != nil {
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	return nil
}

// Init 创建缓存表。
func (s *SQLiteStore) Init(ctx context.Context) error {
	return s.db.Migrate()
}

// isMissingTable 判断错误是否表示表不存在（而非键不存在）。
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
