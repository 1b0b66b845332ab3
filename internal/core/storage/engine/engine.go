// Package engine 定义存储引擎的内部接口
//
// pkg/interfaces 中的公共 Engine 只有基础读写；本包在其上
// 叠加批量写入、前缀迭代与事务能力，仅供 internal 各模块使用。
//
// # 分层
//
//	pkg/interfaces.Engine     - 公共基础读写（可由使用方自行实现）
//	    ↓
//	engine.InternalEngine     - 内部完整能力
//
// # 并发约束
//
// 实现必须整体线程安全；未提交的批量与事务互不可见，
// 也不干扰其他并发读写。
package engine

import (
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// InternalEngine 完整引擎能力
//
// 在公共 Engine 之上追加批量、迭代器与事务，不对包外暴露。
type InternalEngine interface {
	interfaces.Engine // 嵌入公共接口

	// NewBatch 开启一次批量写入
	//
	// 多个操作合并为一次原子落盘。
	// 用完必须调用 Write() 或 Close()。
	NewBatch() Batch

	// NewIterator 按选项创建迭代器
	//
	// 迭代器持有创建时刻的快照视图。用完必须 Close()。
	NewIterator(opts *IteratorOptions) Iterator

	// NewPrefixIterator 创建只走指定前缀的迭代器
	NewPrefixIterator(prefix []byte) Iterator

	// NewTransaction 开启事务
	//
	// writable 为 true 时可读写，否则只读。
	// 用完必须调用 Commit() 或 Discard()。
	NewTransaction(writable bool) Transaction

	// Start 启动后台任务（值日志 GC 等）
	Start() error

	// Sync 将已写数据强制落盘
	Sync() error

	// Stats 返回统计信息快照
	Stats() *Stats
}

// Batch 批量写入
//
// 操作先入队、Write 时一次性原子提交。
// 单个 Batch 不可跨 goroutine 使用。
type Batch interface {
	// Put 入队一个写操作
	Put(key, value []byte)

	// Delete 入队一个删除操作
	Delete(key []byte)

	// Write 原子落盘全部已入队操作，随后批量对象被重置
	Write() error

	// Reset 丢弃所有已入队操作
	Reset()

	// Size 已入队的操作数
	Size() int
}

// Iterator 快照迭代器
//
// 典型用法:
//
//	iter := eng.NewPrefixIterator([]byte("n/r/"))
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    // iter.Key() / iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 定位到首个键值对
	First() bool

	// Next 前进到下一个键值对
	Next() bool

	// Valid 当前位置是否有效
	Valid() bool

	// Key 当前键的副本，仅在 Valid() 为 true 时有意义
	Key() []byte

	// Value 当前值的副本，仅在 Valid() 为 true 时有意义
	Value() []byte

	// Close 释放迭代器资源
	Close()

	// Error 迭代期间的读取错误，遍历结束后应检查一次
	Error() error
}

// IteratorOptions 迭代器选项
type IteratorOptions struct {
	// Prefix 只迭代带此前缀的键
	Prefix []byte

	// Reverse 反向遍历
	Reverse bool

	// PrefetchSize 预取条数，0 走实现默认值
	PrefetchSize int

	// PrefetchValues 是否连值一起预取
	PrefetchValues bool
}

// DefaultIteratorOptions 常规遍历的默认选项
func DefaultIteratorOptions() *IteratorOptions {
	return &IteratorOptions{
		PrefetchSize:   100,
		PrefetchValues: true,
	}
}

// Transaction 引擎事务
//
// 只读事务开销更小；读写事务在提交时检测冲突。
//
// 典型用法:
//
//	txn := eng.NewTransaction(true)
//	defer txn.Discard()
//
//	if err := txn.Set(key, value); err != nil {
//	    return err
//	}
//
//	return txn.Commit()
type Transaction interface {
	// Get 事务内读取，键不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Set 事务内写入，只读事务返回 ErrReadOnly
	Set(key, value []byte) error

	// Delete 事务内删除，只读事务返回 ErrReadOnly
	Delete(key []byte) error

	// Commit 提交全部修改
	//
	// 写冲突时返回 ErrTransactionConflict，提交后事务作废。
	Commit() error

	// Discard 回滚未提交的修改，可重复调用
	Discard()
}

// Stats 引擎内部统计
//
// 在公共 EngineStats 基础上多出 LSM/值日志与操作计数。
type Stats struct {
	KeyCount    int64 `json:"key_count"`
	DiskSize    int64 `json:"disk_size"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	LSMSize    int64 `json:"lsm_size"`    // LSM 树大小
	VlogSize   int64 `json:"vlog_size"`   // 值日志大小
	NumWrites  int64 `json:"num_writes"`  // 写入次数
	NumReads   int64 `json:"num_reads"`   // 读取次数
	NumDeletes int64 `json:"num_deletes"` // 删除次数
}

// ToPublicStats 裁剪为公共统计信息
func (s *Stats) ToPublicStats() *interfaces.EngineStats {
	return &interfaces.EngineStats{
		KeyCount:    s.KeyCount,
		DiskSize:    s.DiskSize,
		CacheHits:   s.CacheHits,
		CacheMisses: s.CacheMisses,
	}
}
