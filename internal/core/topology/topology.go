package topology

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/topology")

// Manager 拓扑管理器
//
// 组合节点注册表、路径缓存、根集合与物理路径配置表，
// 持有它们的锁并对外提供唯一入口。
//
// 锁域划分（二者绝不嵌套）：
//   - peersMu 守护节点注册表、根成员集与延迟有序根列表
//   - pathsMu 只守护路径缓存
//
// 物理路径配置表另有独立的读多写少小锁，与上述两域无交互。
// Peer/Path 自身状态为原子量，不经注册表锁序列化。
type Manager struct {
	local *identity.Identity
	cfg   config.TopologyConfig
	clk   clock.Clock

	peersMu   sync.RWMutex
	peers     map[types.Address]*Peer
	roots     map[types.Address]*identity.Identity
	rootPeers []*Peer // 按延迟升序，重排时整体重建

	pathsMu sync.RWMutex
	paths   map[PathKey]*Path

	physicalMu       sync.RWMutex
	physicalPaths    [maxConfiguredPaths]physicalPathEntry
	numPhysicalPaths int

	limiter *pathLimiter
	events  *topologyEvents

	lastRank  atomic.Int64 // 最近一次显式重排的时间戳（毫秒）
	rankRuns  atomic.Uint64
	closeOnce sync.Once
}

var _ interfaces.Topology = (*Manager)(nil)

// options 管理器构造选项
type options struct {
	cfg config.TopologyConfig
	bus interfaces.EventBus
	clk clock.Clock
}

// Option 管理器选项函数
type Option func(*options)

// WithConfig 设置拓扑配置
func WithConfig(cfg config.TopologyConfig) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithEventBus 注入事件总线
//
// 缺省时不发射任何事件。
func WithEventBus(bus interfaces.EventBus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithClock 注入时钟
//
// 缺省使用真实时钟；测试注入 mock 后全部时间行为可确定重放。
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clk = clk
	}
}

// New 创建拓扑管理器
//
// local 为本地节点身份，不可为 nil。
func New(local *identity.Identity, opts ...Option) (*Manager, error) {
	if local == nil {
		return nil, fmt.Errorf("topology: nil local identity")
	}

	o := options{
		cfg: config.DefaultTopologyConfig(),
		clk: clock.New(),
	}
	for _, apply := range opts {
		apply(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	events, err := newTopologyEvents(o.bus)
	if err != nil {
		return nil, fmt.Errorf("topology: create emitters: %w", err)
	}

	m := &Manager{
		local:   local,
		cfg:     o.cfg,
		clk:     o.clk,
		peers:   make(map[types.Address]*Peer),
		roots:   make(map[types.Address]*identity.Identity),
		paths:   make(map[PathKey]*Path),
		limiter: newPathLimiter(o.cfg),
		events:  events,
	}

	logger.Info("拓扑管理器已创建",
		"local", local.Addr().String(),
		"max_paths", o.cfg.MaxPaths)
	return m, nil
}

// LocalIdentity 返回本地节点身份
func (m *Manager) LocalIdentity() *identity.Identity {
	return m.local
}

// LocalAddr 返回本地节点地址
func (m *Manager) LocalAddr() types.Address {
	return m.local.Addr()
}

// DoPeriodicTasks 执行一轮周期性维护
//
// 唯一的时间驱动入口：移除过期的非根节点（根节点无论活跃与否
// 都保留）、重建延迟有序根列表、清除陈旧路径。now 为毫秒时间戳；
// 全部时间相关判定只依赖传入的 now，便于用合成时间戳测试。
func (m *Manager) DoPeriodicTasks(now int64) {
	m.peersMu.Lock()
	droppedPeers := 0
	for addr, p := range m.peers {
		if p.Alive(now) {
			continue
		}
		if rid, ok := m.roots[addr]; ok && rid.Equal(p.Identity()) {
			continue
		}
		delete(m.peers, addr)
		droppedPeers++
	}
	m.rankRootsLocked()
	best, numRoots, numRanked := m.rankSnapshotLocked()
	m.peersMu.Unlock()
	m.lastRank.Store(now)

	m.pathsMu.Lock()
	droppedPaths := 0
	for key, p := range m.paths {
		if !p.Alive(now) {
			delete(m.paths, key)
			droppedPaths++
		}
	}
	m.pathsMu.Unlock()

	m.events.rootsRanked(best, numRoots, numRanked)
	if droppedPeers > 0 || droppedPaths > 0 {
		logger.Debug("维护周期完成",
			"dropped_peers", droppedPeers,
			"dropped_paths", droppedPaths)
	}
}

// RankRuns 返回根列表累计重建次数
func (m *Manager) RankRuns() uint64 {
	return m.rankRuns.Load()
}

// LastRankTime 返回最近一次显式重排的时间戳（毫秒，0 = 尚未重排）
func (m *Manager) LastRankTime() int64 {
	return m.lastRank.Load()
}

// Close 释放管理器持有的事件发射器
//
// 幂等。不清空注册表：持有句柄的调用方不受影响。
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.events.close()
		logger.Debug("拓扑管理器已关闭", "local", m.local.Addr().String())
	})
	return nil
}
