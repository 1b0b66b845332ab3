// Package badger 基于 BadgerDB 实现存储引擎
//
// BadgerDB 是嵌入式 LSM 键值库，提供 ACID 事务、MVCC、
// ZSTD 压缩与值日志垃圾回收，适合单机持久化场景。
//
// # 用法
//
//	db, err := badger.New(engine.DefaultConfig("/data/overlay.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.Put([]byte("key"), []byte("value"))
package badger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dgraph-io/badger/v4"
)

var logger = log.Logger("storage/badger")

// keyCountSampleLimit 估算键数时的遍历上限
const keyCountSampleLimit = 10000

// Engine BadgerDB 后端
type Engine struct {
	db     *badger.DB
	config *engine.Config
	closed atomic.Bool

	// 读写计数，Stats 汇总时读取
	stats struct {
		numReads    atomic.Int64
		numWrites   atomic.Int64
		numDeletes  atomic.Int64
		cacheHits   atomic.Int64
		cacheMisses atomic.Int64
	}

	// 值日志 GC 后台任务
	gcCtx    context.Context
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// New 打开数据库并构建引擎，后台任务由 Start 启动
func New(cfg *engine.Config) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}

	db, err := badger.Open(buildBadgerOptions(cfg))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		db:       db,
		config:   cfg,
		gcCtx:    ctx,
		gcCancel: cancel,
	}, nil
}

// buildBadgerOptions 把引擎配置翻译成 BadgerDB 选项
func buildBadgerOptions(cfg *engine.Config) badger.Options {
	b := cfg.Badger
	return badger.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithReadOnly(cfg.ReadOnly).
		WithMemTableSize(b.MemTableSize).
		WithValueLogFileSize(b.ValueLogFileSize).
		WithNumMemtables(b.NumMemtables).
		WithValueThreshold(b.ValueThreshold).
		WithBlockCacheSize(b.BlockCacheSize).
		WithIndexCacheSize(b.IndexCacheSize).
		WithNumCompactors(b.NumCompactors).
		WithCompactL0OnClose(b.CompactL0OnClose).
		WithZSTDCompressionLevel(b.ZSTDCompressionLevel).
		WithLogger(nil) // BadgerDB 自带日志冗长，屏蔽掉
}

// Start 启动后台任务，GCInterval 为零时不开 GC
func (e *Engine) Start() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}

	if e.config.Badger.GCInterval > 0 {
		e.gcWg.Add(1)
		go e.gcLoop()
	}
	return nil
}

// gcLoop 周期触发值日志 GC，每次回收到没有可回收空间为止
func (e *Engine) gcLoop() {
	defer e.gcWg.Done()

	ticker := time.NewTicker(e.config.Badger.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.gcCtx.Done():
			return
		case <-ticker.C:
			if e.closed.Load() {
				return
			}
			for e.db.RunValueLogGC(e.config.Badger.GCDiscardRatio) == nil {
			}
		}
	}
}

// readGuard 读操作前置校验
func (e *Engine) readGuard(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return nil
}

// writeGuard 写操作前置校验
func (e *Engine) writeGuard(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.ReadOnly {
		return engine.ErrReadOnly
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return nil
}

// --- interfaces.Engine ---

// Get 读取键的值，不存在时返回 ErrNotFound
func (e *Engine) Get(key []byte) ([]byte, error) {
	if err := e.readGuard(key); err != nil {
		return nil, err
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			e.stats.cacheMisses.Add(1)
			return engine.ErrNotFound
		}
		if err != nil {
			return err
		}

		e.stats.cacheHits.Add(1)
		value, err = item.ValueCopy(nil)
		return err
	})

	e.stats.numReads.Add(1)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put 写入键值，已存在则覆盖
func (e *Engine) Put(key, value []byte) error {
	if err := e.writeGuard(key); err != nil {
		return err
	}

	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err == nil {
		e.stats.numWrites.Add(1)
	}
	return convertError(err)
}

// Delete 删除键，键不存在也算成功
func (e *Engine) Delete(key []byte) error {
	if err := e.writeGuard(key); err != nil {
		return err
	}

	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err == nil {
		e.stats.numDeletes.Add(1)
	}
	return convertError(err)
}

// Has 判断键是否存在，不取值
func (e *Engine) Has(key []byte) (bool, error) {
	if err := e.readGuard(key); err != nil {
		return false, err
	}

	var exists bool
	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch err {
		case nil:
			exists = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	return exists, err
}

// Close 关闭引擎，等待后台任务退出后关库
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	e.gcCancel()
	e.gcWg.Wait()
	return e.db.Close()
}

// --- engine.InternalEngine ---

// NewBatch 创建批量写入对象
func (e *Engine) NewBatch() engine.Batch {
	return &WriteBatch{
		db:    e,
		batch: e.db.NewWriteBatch(),
	}
}

// NewIterator 创建迭代器
func (e *Engine) NewIterator(opts *engine.IteratorOptions) engine.Iterator {
	if opts == nil {
		opts = engine.DefaultIteratorOptions()
	}

	badgerOpts := badger.DefaultIteratorOptions
	badgerOpts.Reverse = opts.Reverse
	badgerOpts.PrefetchSize = opts.PrefetchSize
	badgerOpts.PrefetchValues = opts.PrefetchValues
	if len(opts.Prefix) > 0 {
		badgerOpts.Prefix = opts.Prefix
	}

	txn := e.db.NewTransaction(false)
	return &Iterator{
		txn:    txn,
		iter:   txn.NewIterator(badgerOpts),
		prefix: opts.Prefix,
	}
}

// NewPrefixIterator 创建只走指定前缀的迭代器
func (e *Engine) NewPrefixIterator(prefix []byte) engine.Iterator {
	return e.NewIterator(&engine.IteratorOptions{
		Prefix:         prefix,
		PrefetchSize:   100,
		PrefetchValues: true,
	})
}

// NewTransaction 创建事务
func (e *Engine) NewTransaction(writable bool) engine.Transaction {
	return &Transaction{
		txn:      e.db.NewTransaction(writable),
		writable: writable,
	}
}

// Sync 将数据落盘
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	return e.db.Sync()
}

// Stats 汇总引擎统计
func (e *Engine) Stats() *engine.Stats {
	lsm, vlog := e.db.Size()
	return &engine.Stats{
		KeyCount:    e.estimateKeyCount(),
		DiskSize:    lsm + vlog,
		LSMSize:     lsm,
		VlogSize:    vlog,
		CacheHits:   e.stats.cacheHits.Load(),
		CacheMisses: e.stats.cacheMisses.Load(),
		NumWrites:   e.stats.numWrites.Load(),
		NumReads:    e.stats.numReads.Load(),
		NumDeletes:  e.stats.numDeletes.Load(),
	}
}

// estimateKeyCount 遍历估算键数，到采样上限即截断
func (e *Engine) estimateKeyCount() int64 {
	var count int64
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && count < keyCountSampleLimit; it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		logger.Debug("估算键数量失败", "error", err)
		return 0
	}
	return count
}

// convertError 将 BadgerDB 错误映射为引擎哨兵错误
func convertError(err error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return engine.ErrNotFound
	case badger.ErrEmptyKey:
		return engine.ErrEmptyKey
	case badger.ErrTxnTooBig:
		return engine.ErrTransactionTooLarge
	case badger.ErrConflict:
		return engine.ErrTransactionConflict
	case badger.ErrDiscardedTxn:
		return engine.ErrTransactionDiscarded
	case badger.ErrReadOnlyTxn:
		return engine.ErrReadOnly
	default:
		return err
	}
}

var _ engine.InternalEngine = (*Engine)(nil)
