package storage

import (
	"time"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/storage/engine"
)

// Config 存储模块配置
//
// 持久化统一走 BadgerDB。测试用 t.TempDir() 建临时目录，
// 与生产共用同一条代码路径。
type Config struct {
	// Path BadgerDB 数据库目录，必填
	Path string

	// SyncWrites 每次写入都落盘
	SyncWrites bool

	// GCEnabled 开启值日志垃圾回收
	GCEnabled bool

	// GCInterval 相邻两轮 GC 的间隔
	GCInterval time.Duration

	// GCDiscardRatio 值日志文件可回收空间超过此比例才重写
	GCDiscardRatio float64

	// BlockCacheSize 块缓存字节数
	BlockCacheSize int64

	// Compression ZSTD 压缩级别，0 为禁用
	Compression int
}

// DefaultConfig 常规部署的默认值
func DefaultConfig() Config {
	return Config{
		Path:           "./data/overlay.db",
		GCEnabled:      true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
		BlockCacheSize: 256 << 20, // 256MB
		Compression:    1,
	}
}

// ConfigFromUnified 由统一配置推导 Storage 配置
//
// 数据库放在 Storage.DataDir 之下，cfg 为 nil 时取默认值。
func ConfigFromUnified(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}

	if cfg.Storage.DataDir != "" {
		out.Path = cfg.Storage.DBPath()
	}
	out.SyncWrites = cfg.Storage.SyncWrites
	return out
}

// ToEngineConfig 下沉为引擎层配置
func (c *Config) ToEngineConfig() *engine.Config {
	out := engine.DefaultConfig(c.Path)
	out.SyncWrites = c.SyncWrites
	out.Badger.GCDiscardRatio = c.GCDiscardRatio
	out.Badger.BlockCacheSize = c.BlockCacheSize
	out.Badger.ZSTDCompressionLevel = c.Compression

	// GCInterval 为零时引擎不启动 GC 任务
	out.Badger.GCInterval = 0
	if c.GCEnabled {
		out.Badger.GCInterval = c.GCInterval
	}
	return out
}

// Validate 校验配置，越界的 GC 参数就地修正
func (c *Config) Validate() error {
	if c.Path == "" {
		return engine.ErrInvalidConfig
	}
	if c.GCInterval < time.Minute {
		c.GCInterval = time.Minute
	}
	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio > 1 {
		c.GCDiscardRatio = 0.5
	}
	return nil
}

// WithPath 换存储路径
func (c Config) WithPath(path string) Config {
	c.Path = path
	return c
}

// WithSyncWrites 开关同步写
func (c Config) WithSyncWrites(sync bool) Config {
	c.SyncWrites = sync
	return c
}

// WithGC 调整垃圾回收开关与间隔
func (c Config) WithGC(enabled bool, interval time.Duration) Config {
	c.GCEnabled = enabled
	c.GCInterval = interval
	return c
}
