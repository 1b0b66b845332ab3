// Package kv 在存储引擎上圈出前缀隔离的键值视图
//
// 一个存储引擎常被多个组件共用，Store 给每个组件圈出自己的
// 键空间：写入时拼上前缀，读出与迭代时再剥掉，组件之间互不
// 可见。SubStore 在此之上继续细分。
//
// # 键空间
//
// go-overlay 当前的前缀约定：
//   - n/r/ - NodeDB 节点记录
//   - n/m/ - NodeDB 元数据（版本、本机地址）
//
// # 用法
//
//	eng, _ := badger.New(config)
//	nodes := kv.New(eng, []byte("n/"))
//
//	// 键自动落在 n/ 之下
//	nodes.Put([]byte("r/1a2b3c4d5e"), recordBytes) // 实际键: n/r/1a2b3c4d5e
package kv

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dep2p/go-overlay/internal/core/storage/engine"
)

// Store 前缀隔离的键值视图
type Store struct {
	engine engine.InternalEngine
	prefix []byte
}

// New 创建以 prefix 为键空间的 Store
func New(eng engine.InternalEngine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: prefix,
	}
}

// Prefix 返回本视图的前缀
func (s *Store) Prefix() []byte {
	return s.prefix
}

// Engine 暴露底层引擎，给需要原生能力的内部调用方
func (s *Store) Engine() engine.InternalEngine {
	return s.engine
}

// SubStore 在当前前缀下追加 subPrefix，得到更深一层的视图
func (s *Store) SubStore(subPrefix []byte) *Store {
	joined := make([]byte, 0, len(s.prefix)+len(subPrefix))
	joined = append(joined, s.prefix...)
	joined = append(joined, subPrefix...)
	return &Store{
		engine: s.engine,
		prefix: joined,
	}
}

// fullKey 拼出引擎层的完整键
func (s *Store) fullKey(key []byte) []byte {
	if len(s.prefix) == 0 {
		return key
	}
	full := make([]byte, 0, len(s.prefix)+len(key))
	full = append(full, s.prefix...)
	return append(full, key...)
}

// userKey 把引擎层键还原成视图内的键
func (s *Store) userKey(key []byte) []byte {
	if len(s.prefix) == 0 || len(key) < len(s.prefix) {
		return key
	}
	return key[len(s.prefix):]
}

// ============= 基础操作 =============

// Get 读取视图内键的值
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.engine.Get(s.fullKey(key))
}

// Put 写入视图内的键值
func (s *Store) Put(key, value []byte) error {
	return s.engine.Put(s.fullKey(key), value)
}

// Delete 删除视图内的键
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(s.fullKey(key))
}

// Has 判断视图内键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.engine.Has(s.fullKey(key))
}

// ============= 编码便捷方法 =============

// GetJSON 读取键值并按 JSON 解码到 v
func (s *Store) GetJSON(key []byte, v interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PutJSON 把 v 编码为 JSON 后写入
func (s *Store) PutJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// GetUint64 读取大端编码的 uint64
func (s *Store) GetUint64(key []byte) (uint64, error) {
	data, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, engine.ErrCorrupted
	}
	return binary.BigEndian.Uint64(data), nil
}

// PutUint64 以大端编码写入 uint64
func (s *Store) PutUint64(key []byte, value uint64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, value)
	return s.Put(key, data)
}

// GetString 读取字符串值
func (s *Store) GetString(key []byte) (string, error) {
	data, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PutString 写入字符串值
func (s *Store) PutString(key []byte, value string) error {
	return s.Put(key, []byte(value))
}

// ============= 前缀迭代 =============

// PrefixScan 遍历 subPrefix 下的全部键值对
//
// 回调返回 false 提前终止。回调拿到的键已剥掉 Store 前缀，
// 但保留 subPrefix 部分。
func (s *Store) PrefixScan(subPrefix []byte, fn func(key, value []byte) bool) error {
	iter := s.engine.NewPrefixIterator(s.fullKey(subPrefix))
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(s.userKey(iter.Key()), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Keys 返回 subPrefix 下的全部键
func (s *Store) Keys(subPrefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.PrefixScan(subPrefix, func(key, _ []byte) bool {
		cp := make([]byte, len(key))
		copy(cp, key)
		keys = append(keys, cp)
		return true
	})
	return keys, err
}

// Count 统计 subPrefix 下的键数量
func (s *Store) Count(subPrefix []byte) (int64, error) {
	var count int64
	err := s.PrefixScan(subPrefix, func(_, _ []byte) bool {
		count++
		return true
	})
	return count, err
}

// DeletePrefix 批量删除 subPrefix 下的全部键
func (s *Store) DeletePrefix(subPrefix []byte) error {
	keys, err := s.Keys(subPrefix)
	if err != nil {
		return err
	}

	batch := s.engine.NewBatch()
	for _, key := range keys {
		batch.Delete(s.fullKey(key))
	}
	return batch.Write()
}

// ============= 批量写 =============

// Batch 前缀视图上的批量写
type Batch struct {
	store *Store
	batch engine.Batch
}

// NewBatch 创建批量写
func (s *Store) NewBatch() *Batch {
	return &Batch{
		store: s,
		batch: s.engine.NewBatch(),
	}
}

// Put 追加写入操作
func (b *Batch) Put(key, value []byte) {
	b.batch.Put(b.store.fullKey(key), value)
}

// Delete 追加删除操作
func (b *Batch) Delete(key []byte) {
	b.batch.Delete(b.store.fullKey(key))
}

// PutJSON 追加 JSON 编码的写入操作
func (b *Batch) PutJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Put(key, data)
	return nil
}

// Write 提交积累的全部操作
func (b *Batch) Write() error {
	return b.batch.Write()
}

// Reset 清空积累的操作以便复用
func (b *Batch) Reset() {
	b.batch.Reset()
}

// Size 返回积累的操作数量
func (b *Batch) Size() int {
	return b.batch.Size()
}

// ============= 事务操作 =============

// Transaction 前缀视图上的事务
type Transaction struct {
	store *Store
	txn   engine.Transaction
}

// NewTransaction 开启事务
//
// writable 为 true 时可读写，否则只读。
func (s *Store) NewTransaction(writable bool) *Transaction {
	return &Transaction{
		store: s,
		txn:   s.engine.NewTransaction(writable),
	}
}

// Get 在事务内读取
func (t *Transaction) Get(key []byte) ([]byte, error) {
	return t.txn.Get(t.store.fullKey(key))
}

// Set 在事务内写入
func (t *Transaction) Set(key, value []byte) error {
	return t.txn.Set(t.store.fullKey(key), value)
}

// Delete 在事务内删除
func (t *Transaction) Delete(key []byte) error {
	return t.txn.Delete(t.store.fullKey(key))
}

// GetJSON 在事务内读取并按 JSON 解码
func (t *Transaction) GetJSON(key []byte, v interface{}) error {
	data, err := t.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SetJSON 在事务内按 JSON 编码写入
func (t *Transaction) SetJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return t.Set(key, data)
}

// Commit 提交事务内的全部修改
func (t *Transaction) Commit() error {
	return t.txn.Commit()
}

// Discard 回滚事务
func (t *Transaction) Discard() {
	t.txn.Discard()
}
