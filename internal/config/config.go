package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是 PinyinPal 的顶层配置结构。
type Config struct {
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
	Source Source `yaml:"source"`
	Client Client `yaml:"client"`
	Log    Log    `yaml:"log"`
}

// Server HTTP 服务配置。
type Server struct {
	// Addr 监听地址，如 ":8090"。
	Addr string `yaml:"addr"`
	// ReadTimeoutSec / WriteTimeoutSec HTTP 读写超时（秒）。
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
}

// Store 服务端音频缓存配置。
type Store struct {
	// Backend 缓存后端: sqlite 或 blob。
	Backend string `yaml:"backend"`
	// DBPath SQLite 数据库文件路径（backend=sqlite 时生效）。
	DBPath string `yaml:"db_path"`
	// BlobDir 音频文件目录（backend=blob 时生效）。
	BlobDir string `yaml:"blob_dir"`
}

// Source 上游音频来源配置。
type Source struct {
	// Provider 上游类型: proxy（固定格式音频源）、edge 或 tencent。
	Provider string `yaml:"provider"`
	// BaseURL 固定格式音频源的基础地址（provider=proxy 时生效）。
	BaseURL string `yaml:"base_url"`
	// Edge Edge TTS 配置。
	Edge Edge `yaml:"edge"`
	// Tencent 腾讯云 TTS 配置。
	Tencent Tencent `yaml:"tencent"`
}

// Edge Edge TTS 配置。
type Edge struct {
	Voice string `yaml:"voice"`
}

// Tencent 腾讯云 TTS 配置。
type Tencent struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	VoiceType int64  `yaml:"voice_type"`
	Region    string `yaml:"region"`
}

// Client 客户端（播放端）配置。
type Client struct {
	// ServerURL 发音服务地址，如 "http://localhost:8090"。
	ServerURL string `yaml:"server_url"`
	// CacheDir 本地持久缓存目录，为空则禁用持久缓存。
	CacheDir string `yaml:"cache_dir"`
	// MinPlayMs 播放指示的最短时长（毫秒），避免过短的音频一闪而过。
	MinPlayMs int `yaml:"min_play_ms"`
	// Playback 播放策略: auto、graph（解码后经音频图播放）或 direct（直接流式播放）。
	Playback string `yaml:"playback"`
}

// Log 日志配置。
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${PINYINPAL_TENCENT_SECRET_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults 为缺省字段填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8090"
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		cfg.Server.ReadTimeoutSec = 10
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		// 上游合成可能较慢，写超时放宽一些
		cfg.Server.WriteTimeoutSec = 30
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.BlobDir == "" {
		cfg.Store.BlobDir = "./data/audio"
	}

	if cfg.Source.Provider == "" {
		cfg.Source.Provider = "edge"
	}
	if cfg.Source.Edge.Voice == "" {
		// 儿童拼音教学，默认用大陆普通话女声
		cfg.Source.Edge.Voice = "zh-CN-XiaoxiaoNeural"
	}
	if cfg.Source.Tencent.Region == "" {
		cfg.Source.Tencent.Region = "ap-guangzhou"
	}

	if cfg.Client.ServerURL == "" {
		cfg.Client.ServerURL = "http://localhost:8090"
	}
	if cfg.Client.MinPlayMs <= 0 {
		cfg.Client.MinPlayMs = 500
	}
	if cfg.Client.Playback == "" {
		cfg.Client.Playback = "auto"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
