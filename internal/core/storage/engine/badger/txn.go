package badger

import (
	"sync/atomic"

	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

// Transaction 基于 badger.Txn 的事务
//
// committed/discarded 以原子标志记录终态: 重复 Commit、
// 提交后的 Discard 均为空操作。
type Transaction struct {
	txn       *badger.Txn
	writable  bool
	committed atomic.Bool
	discarded atomic.Bool
}

// Get 在事务中读取值
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if t.discarded.Load() {
		return nil, engine.ErrTransactionDiscarded
	}
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}

	item, err := t.txn.Get(key)
	if err != nil {
		return nil, convertError(err)
	}
	return item.ValueCopy(nil)
}

// Set 在事务中写入值
func (t *Transaction) Set(key, value []byte) error {
	if err := t.writeCheck(key); err != nil {
		return err
	}
	return convertError(t.txn.Set(key, value))
}

// Delete 在事务中删除键
func (t *Transaction) Delete(key []byte) error {
	if err := t.writeCheck(key); err != nil {
		return err
	}
	return convertError(t.txn.Delete(key))
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.discarded.Load() {
		return engine.ErrTransactionDiscarded
	}
	if t.committed.Swap(true) {
		return nil
	}
	return convertError(t.txn.Commit())
}

// Discard 丢弃事务
func (t *Transaction) Discard() {
	if t.discarded.Swap(true) || t.committed.Load() {
		return
	}
	t.txn.Discard()
}

// writeCheck 统一校验写操作的前置条件
func (t *Transaction) writeCheck(key []byte) error {
	switch {
	case t.discarded.Load():
		return engine.ErrTransactionDiscarded
	case !t.writable:
		return engine.ErrReadOnly
	case len(key) == 0:
		return engine.ErrEmptyKey
	}
	return nil
}

var _ engine.Transaction = (*Transaction)(nil)
