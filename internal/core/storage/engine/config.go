package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 引擎打开参数
//
// 引擎层只认实际打开的目录，数据目录到库路径的推导
// 在上层 storage.Config 完成。
type Config struct {
	// Path 数据库目录，必填
	Path string

	// SyncWrites 同步写模式
	// 开启后每次写入都等待落盘，安全但吞吐下降
	SyncWrites bool

	// ReadOnly 只读打开
	ReadOnly bool

	// Badger 引擎细节选项
	Badger BadgerOptions
}

// BadgerOptions 透传给 BadgerDB 的细节参数
type BadgerOptions struct {
	// MemTableSize 内存表大小（字节），默认 64MB
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节），默认 1GB
	ValueLogFileSize int64

	// NumMemtables 内存表数量，默认 5
	NumMemtables int

	// ValueThreshold 值大小阈值，大于此值的值存入值日志，默认 1KB
	ValueThreshold int64

	// BlockCacheSize 块缓存大小（字节），默认 256MB
	BlockCacheSize int64

	// IndexCacheSize 索引缓存大小（字节），默认 0（禁用）
	IndexCacheSize int64

	// NumCompactors 压缩器数量，默认 4
	NumCompactors int

	// CompactL0OnClose 关库前压缩 L0 表
	CompactL0OnClose bool

	// ZSTDCompressionLevel ZSTD 压缩级别，0 表示禁用压缩
	ZSTDCompressionLevel int

	// GCInterval 值日志垃圾回收间隔，0 表示禁用 GC
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例，默认 0.5
	GCDiscardRatio float64
}

// DefaultConfig 以 path 为数据目录的默认打开参数
func DefaultConfig(path string) *Config {
	return &Config{
		Path:       path,
		SyncWrites: false,
		ReadOnly:   false,
		Badger:     DefaultBadgerOptions(),
	}
}

// DefaultBadgerOptions BadgerDB 细节参数的默认值
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         64 << 20, // 64MB
		ValueLogFileSize:     1 << 30,  // 1GB
		NumMemtables:         5,
		ValueThreshold:       1 << 10,   // 1KB
		BlockCacheSize:       256 << 20, // 256MB
		IndexCacheSize:       0,
		NumCompactors:        4,
		CompactL0OnClose:     false,
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// Validate 拒绝缺路径或尺寸参数过小的配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidConfig
	}

	if c.Badger.MemTableSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}

	if c.Badger.ValueLogFileSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}

	return nil
}

// EnsureDir 归一化路径并建出数据目录
func (c *Config) EnsureDir() error {
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath

	return os.MkdirAll(c.Path, 0755)
}

// WithSyncWrites 开关同步写
func (c *Config) WithSyncWrites(sync bool) *Config {
	c.SyncWrites = sync
	return c
}

// WithReadOnly 开关只读模式
func (c *Config) WithReadOnly(readOnly bool) *Config {
	c.ReadOnly = readOnly
	return c
}

// WithGC 设置垃圾回收间隔（0 禁用）
func (c *Config) WithGC(interval time.Duration) *Config {
	c.Badger.GCInterval = interval
	return c
}
