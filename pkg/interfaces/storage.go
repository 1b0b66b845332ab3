// Package interfaces 定义 go-overlay 公共接口
//
// 本文件定义存储引擎接口，允许使用方换用自定义存储后端。
package interfaces

// Engine 存储引擎的公共契约
//
// 键值存储的基本操作。默认实现是 BadgerDB，
// 使用方可提供自己的实现替换。实现必须整体线程安全。
//
// 用法:
//
//	eng, err := badger.New(engine.DefaultConfig("/data/overlay.db"))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	if err := eng.Put([]byte("n/r/abc"), record); err != nil {
//	    return err
//	}
type Engine interface {
	// Get 读取键的值
	//
	// 返回值的副本；键不存在时返回 ErrNotFound。
	Get(key []byte) ([]byte, error)

	// Put 写入键值，键已存在时覆盖旧值
	Put(key, value []byte) error

	// Delete 删除键（键不存在时不报错，幂等）
	Delete(key []byte) error

	// Has 判断键是否存在
	Has(key []byte) (bool, error)

	// Close 关闭存储引擎，多次调用安全
	Close() error
}

// EngineStats 引擎运行统计
type EngineStats struct {
	// KeyCount 当前存储的键数量（估算值）
	KeyCount int64 `json:"key_count"`

	// DiskSize 磁盘占用字节数
	DiskSize int64 `json:"disk_size"`

	// CacheHits 读命中次数
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses 读未命中次数
	CacheMisses int64 `json:"cache_misses"`
}

// CacheHitRate 计算读命中率（0.0 - 1.0），无访问时返回 0
func (s *EngineStats) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
