package badger

import (
	"sync/atomic"

	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

// WriteBatch BadgerDB 批量写入
//
// Put/Delete 只入队不报错，错误统一在 Write (Flush) 时返回。
type WriteBatch struct {
	db     *Engine
	batch  *badger.WriteBatch
	count  atomic.Int32
	closed atomic.Bool
}

// Put 入队一个写入
func (b *WriteBatch) Put(key, value []byte) {
	if b.closed.Load() || len(key) == 0 {
		return
	}
	_ = b.batch.Set(key, value)
	b.count.Add(1)
}

// Delete 入队一个删除
func (b *WriteBatch) Delete(key []byte) {
	if b.closed.Load() || len(key) == 0 {
		return
	}
	_ = b.batch.Delete(key)
	b.count.Add(1)
}

// Write 落盘全部排队操作，成功后批量归零可继续复用
func (b *WriteBatch) Write() error {
	switch {
	case b.closed.Load():
		return engine.ErrBatchClosed
	case b.db.closed.Load():
		return engine.ErrClosed
	case b.db.config.ReadOnly:
		return engine.ErrReadOnly
	}

	if err := b.batch.Flush(); err != nil {
		return convertError(err)
	}

	b.db.stats.numWrites.Add(int64(b.count.Load()))
	b.Reset()
	return nil
}

// Reset 清空排队操作
//
// badger.WriteBatch 没有复位方法，直接换新实例。
func (b *WriteBatch) Reset() {
	if b.closed.Load() {
		return
	}
	b.count.Store(0)
	b.batch = b.db.db.NewWriteBatch()
}

// Size 返回排队操作数
func (b *WriteBatch) Size() int {
	return int(b.count.Load())
}

// Close 丢弃未写入的操作
func (b *WriteBatch) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.batch.Cancel()
	return nil
}

var _ engine.Batch = (*WriteBatch)(nil)
