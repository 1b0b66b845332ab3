package nodedb

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dep2p/go-overlay/internal/core/storage/kv"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/nodedb")

// schemaVersion 当前记录格式版本
//
// 版本不匹配时记录整体作废重建：节点数据库只是观测缓存，
// 丢弃旧格式比带迁移逻辑更可靠。
const schemaVersion uint64 = 1

// 键空间布局（位于存储层 n/ 前缀之下）：
//   - r/<10 位十六进制地址> 节点记录（JSON）
//   - m/version             格式版本（uint64）
//   - m/self                最后写入方的本机地址
var (
	storePrefix    = []byte("n/")
	recordPrefix   = []byte("r/")
	metaVersionKey = []byte("m/version")
	metaSelfKey    = []byte("m/self")
)

// recordKey 构造记录键
func recordKey(addr types.Address) []byte {
	return append(append([]byte{}, recordPrefix...), addr.String()...)
}

// ============================================================================
//                              DB - 节点数据库
// ============================================================================

// DB 持久化节点数据库
//
// 记录写穿到底层存储，同时维护全量内存缓存（打开时载入），
// 读路径不触达磁盘。所有返回的记录都是副本，调用方可随意修改。
type DB struct {
	store *kv.Store
	clk   clock.Clock

	mu      sync.RWMutex
	records map[types.Address]*Record
	closed  bool
}

// Option DB 配置选项
type Option func(*DB)

// WithClock 注入时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(db *DB) {
		if clk != nil {
			db.clk = clk
		}
	}
}

// Open 打开节点数据库
//
// 校验格式版本后将全部记录载入内存缓存。
// 版本不匹配时清空记录并写入当前版本；无法解析的记录跳过。
func Open(store *kv.Store, cfg config.NodeDBConfig, opts ...Option) (*DB, error) {
	if store == nil {
		return nil, fmt.Errorf("nodedb: store is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &DB{
		store:   store,
		clk:     clock.New(),
		records: make(map[types.Address]*Record),
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.migrate(); err != nil {
		return nil, err
	}
	if err := db.load(); err != nil {
		return nil, err
	}

	logger.Info("节点数据库已打开", "records", len(db.records))
	return db, nil
}

// migrate 校验并写入格式版本
func (db *DB) migrate() error {
	version, err := db.store.GetUint64(metaVersionKey)
	switch {
	case engine.IsNotFound(err):
		// 全新数据库
		return db.store.PutUint64(metaVersionKey, schemaVersion)
	case err != nil:
		return fmt.Errorf("nodedb: read schema version: %w", err)
	case version != schemaVersion:
		logger.Warn("记录格式版本不匹配，重建节点数据库",
			"stored", version, "current", schemaVersion)
		if err := db.store.DeletePrefix(recordPrefix); err != nil {
			return fmt.Errorf("nodedb: reset records: %w", err)
		}
		return db.store.PutUint64(metaVersionKey, schemaVersion)
	}
	return nil
}

// load 将全部记录载入内存缓存
func (db *DB) load() error {
	var malformed int
	err := db.store.PrefixScan(recordPrefix, func(key, value []byte) bool {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			logger.Warn("跳过无法解析的节点记录", "key", string(key), "error", err)
			malformed++
			return true
		}
		if rec.Validate() != nil {
			logger.Warn("跳过非法节点记录", "key", string(key))
			malformed++
			return true
		}
		db.records[rec.Address] = &rec
		return true
	})
	if err != nil {
		return fmt.Errorf("nodedb: load records: %w", err)
	}
	if malformed > 0 {
		logger.Warn("载入时跳过异常记录", "count", malformed)
	}
	return nil
}

// Put 写入或更新节点记录
//
// 与已有记录合并：FirstSeen 取更早值、LastSeen 取更新值，
// 入参未提供 Endpoints 或 Latency 时保留旧值。
func (db *DB) Put(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}

	merged := rec.Clone()
	if existing := db.records[merged.Address]; existing != nil {
		if existing.FirstSeen != 0 && (merged.FirstSeen == 0 || existing.FirstSeen < merged.FirstSeen) {
			merged.FirstSeen = existing.FirstSeen
		}
		if existing.LastSeen > merged.LastSeen {
			merged.LastSeen = existing.LastSeen
		}
		if len(merged.Endpoints) == 0 && len(existing.Endpoints) > 0 {
			merged.Endpoints = make([]netip.AddrPort, len(existing.Endpoints))
			copy(merged.Endpoints, existing.Endpoints)
		}
		if merged.Latency == 0 {
			merged.Latency = existing.Latency
		}
	}
	if merged.FirstSeen == 0 {
		merged.FirstSeen = merged.LastSeen
	}

	if err := db.store.PutJSON(recordKey(merged.Address), merged); err != nil {
		return fmt.Errorf("nodedb: persist record %s: %w", merged.Address, err)
	}
	db.records[merged.Address] = merged
	return nil
}

// Get 获取节点记录
func (db *DB) Get(addr types.Address) (*Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, ErrClosed
	}
	rec := db.records[addr]
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Delete 删除节点记录
//
// 记录不存在时为空操作。
func (db *DB) Delete(addr types.Address) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	if _, ok := db.records[addr]; !ok {
		return nil
	}
	if err := db.store.Delete(recordKey(addr)); err != nil {
		return fmt.Errorf("nodedb: delete record %s: %w", addr, err)
	}
	delete(db.records, addr)
	return nil
}

// All 返回全部记录的副本（按地址升序）
func (db *DB) All() []*Record {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil
	}
	out := make([]*Record, 0, len(db.records))
	for _, rec := range db.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Uint64() < out[j].Address.Uint64()
	})
	return out
}

// Roots 返回全部根记录的副本（按地址升序）
func (db *DB) Roots() []*Record {
	all := db.All()
	roots := all[:0]
	for _, rec := range all {
		if rec.Root {
			roots = append(roots, rec)
		}
	}
	return roots
}

// Len 返回记录数量
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// QuerySeeds 选取回灌种子记录
//
// 过滤超龄记录后按根优先、最近活跃优先排序，最多返回 count 条。
func (db *DB) QuerySeeds(count int, maxAge time.Duration) []*Record {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed || count <= 0 {
		return nil
	}

	now := db.clk.Now().UnixMilli()
	cutoff := maxAge.Milliseconds()

	candidates := make([]*Record, 0, len(db.records))
	for _, rec := range db.records {
		if now-rec.LastSeen > cutoff {
			continue
		}
		candidates = append(candidates, rec.Clone())
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Root != candidates[j].Root {
			return candidates[i].Root
		}
		if candidates[i].LastSeen != candidates[j].LastSeen {
			return candidates[i].LastSeen > candidates[j].LastSeen
		}
		return candidates[i].Address.Uint64() < candidates[j].Address.Uint64()
	})

	if count < len(candidates) {
		candidates = candidates[:count]
	}
	return candidates
}

// SelfAddress 返回最后写入方的本机地址
func (db *DB) SelfAddress() (types.Address, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return types.EmptyAddress, false
	}
	s, err := db.store.GetString(metaSelfKey)
	if err != nil {
		return types.EmptyAddress, false
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		logger.Warn("本机地址元数据损坏", "value", s, "error", err)
		return types.EmptyAddress, false
	}
	return addr, true
}

// SetSelfAddress 记录本机地址元数据
func (db *DB) SetSelfAddress(addr types.Address) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	return db.store.PutString(metaSelfKey, addr.String())
}

// Close 关闭数据库
//
// 只失效内存缓存；底层存储引擎由存储模块统一关闭。幂等。
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	db.records = nil

	logger.Info("节点数据库已关闭")
	return nil
}

// isClosed 报告数据库是否已关闭
func (db *DB) isClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}
