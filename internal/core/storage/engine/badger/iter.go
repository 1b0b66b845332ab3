package badger

import (
	"bytes"
	"sync/atomic"

	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

// Iterator BadgerDB 迭代器
//
// 持有一个只读事务，Close 时一并释放。设置了前缀的迭代器
// 越出前缀范围即视为结束。
type Iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	prefix  []byte
	started bool
	closed  atomic.Bool
	err     error
}

// First 定位到第一个键值对
func (it *Iterator) First() bool {
	if it.closed.Load() {
		return false
	}

	it.started = true
	if len(it.prefix) > 0 {
		it.iter.Seek(it.prefix)
	} else {
		it.iter.Rewind()
	}
	return it.inRange()
}

// Next 前进到下一个键值对，未定位过时等价于 First
func (it *Iterator) Next() bool {
	if it.closed.Load() {
		return false
	}
	if !it.started {
		return it.First()
	}

	it.iter.Next()
	return it.inRange()
}

// Valid 报告当前位置是否有效
func (it *Iterator) Valid() bool {
	if it.closed.Load() {
		return false
	}
	return it.inRange()
}

// inRange 当前位置有效且未越出前缀范围
func (it *Iterator) inRange() bool {
	if !it.iter.Valid() {
		return false
	}
	if len(it.prefix) > 0 && !bytes.HasPrefix(it.iter.Item().Key(), it.prefix) {
		return false
	}
	return true
}

// Key 返回当前键的副本
func (it *Iterator) Key() []byte {
	if it.closed.Load() || !it.iter.Valid() {
		return nil
	}
	return bytes.Clone(it.iter.Item().Key())
}

// Value 返回当前值的副本，读取失败记入 Error
func (it *Iterator) Value() []byte {
	if it.closed.Load() || !it.iter.Valid() {
		return nil
	}

	value, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
		return nil
	}
	return value
}

// Close 释放迭代器与底层事务
func (it *Iterator) Close() {
	if it.closed.Swap(true) {
		return
	}
	it.iter.Close()
	it.txn.Discard()
}

// Error 返回迭代期间最近一次读取错误
func (it *Iterator) Error() error {
	return it.err
}

var _ engine.Iterator = (*Iterator)(nil)
