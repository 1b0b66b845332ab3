package topology

import (
	"math"
	"sort"
	"time"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/types"
)

// AddRoot 把身份登记为受信根
//
// 幂等：重复登记无额外效果。本地自身与 nil 身份被忽略。
// 在与节点注册表共享的独占区内登记并立即重建延迟有序根列表，
// 已注册的根节点无需等待下一个维护周期即可被选中。
func (m *Manager) AddRoot(id *identity.Identity) {
	if id == nil || id.Equal(m.local) || !id.Addr().IsValid() {
		return
	}
	addr := id.Addr()

	m.peersMu.Lock()
	if existing, ok := m.roots[addr]; ok && existing.Equal(id) {
		m.peersMu.Unlock()
		return
	}
	m.roots[addr] = id
	m.rankRootsLocked()
	best, numRoots, numRanked := m.rankSnapshotLocked()
	m.peersMu.Unlock()

	m.events.rootAdded(addr)
	m.events.rootsRanked(best, numRoots, numRanked)
	logger.Info("根节点已登记", "addr", addr.String(), "roots", numRoots)
}

// RemoveRoot 把身份从根成员集移除，报告其先前是否存在
//
// 幂等：移除不存在的身份返回 false 且不改动任何状态。
// 存在时在同一独占区内同时从延迟有序列表剔除对应条目，
// 保证成员集与有序列表不发散。
func (m *Manager) RemoveRoot(id *identity.Identity) bool {
	if id == nil {
		return false
	}
	addr := id.Addr()

	m.peersMu.Lock()
	existing, ok := m.roots[addr]
	if !ok || !existing.Equal(id) {
		m.peersMu.Unlock()
		return false
	}
	delete(m.roots, addr)
	kept := m.rootPeers[:0]
	for _, p := range m.rootPeers {
		if p.Addr() != addr {
			kept = append(kept, p)
		}
	}
	m.rootPeers = kept
	best, numRoots, numRanked := m.rankSnapshotLocked()
	m.peersMu.Unlock()

	m.events.rootRemoved(addr)
	m.events.rootsRanked(best, numRoots, numRanked)
	logger.Info("根节点已移除", "addr", addr.String(), "roots", numRoots)
	return true
}

// IsRoot 报告身份是否在根成员集中
func (m *Manager) IsRoot(id *identity.Identity) bool {
	if id == nil {
		return false
	}
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	existing, ok := m.roots[id.Addr()]
	return ok && existing.Equal(id)
}

// Root 返回当前最优根节点
//
// 即延迟有序列表的首项；没有任何根作为节点可达时返回 nil。
func (m *Manager) Root() *Peer {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	if len(m.rootPeers) == 0 {
		return nil
	}
	return m.rootPeers[0]
}

// FindRelayTo 为目标地址选择中继节点
//
// 基础设计中中继选择退化为"当前最优根"，返回值与 Root 相同、
// 与目标无关。按目标的地理/延迟感知选择是文档化的扩展点，
// 不属于本签名承诺的契约。
func (m *Manager) FindRelayTo(addr types.Address) *Peer {
	_ = addr
	return m.Root()
}

// RankRoots 重建延迟有序根列表
//
// 在与节点注册表共享的独占区内，把每个根身份解析到当前已注册
// 的对应节点并按延迟升序排序；没有已注册节点的根不进入列表，
// 但保留成员资格。now 为毫秒时间戳，记录为本次重排时刻。
func (m *Manager) RankRoots(now int64) {
	m.peersMu.Lock()
	m.rankRootsLocked()
	best, numRoots, numRanked := m.rankSnapshotLocked()
	m.peersMu.Unlock()
	m.lastRank.Store(now)

	m.events.rootsRanked(best, numRoots, numRanked)
}

// CountRoots 返回根成员集大小
func (m *Manager) CountRoots() int {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	return len(m.roots)
}

// RootIdentities 返回根成员集中全部身份的快照
//
// 包含当前没有已注册节点的根；用于持久化根指定。
func (m *Manager) RootIdentities() []*identity.Identity {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	ids := make([]*identity.Identity, 0, len(m.roots))
	for _, id := range m.roots {
		ids = append(ids, id)
	}
	return ids
}

// BestRoot 返回当前最优根的地址与延迟估计
//
// 无可达根时 ok 为 false；延迟未测得时为 0。
func (m *Manager) BestRoot() (addr types.Address, latency time.Duration, ok bool) {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	if len(m.rootPeers) == 0 {
		return types.EmptyAddress, 0, false
	}
	best := m.rootPeers[0]
	return best.Addr(), best.Latency(), true
}

// rankRootsLocked 重建延迟有序根列表（须持有 peersMu 写锁）
//
// O(R log R)，R 为根成员数。延迟未测得的节点排在已测得节点
// 之后；同延迟按地址定序，保证重排结果确定。
func (m *Manager) rankRootsLocked() {
	ranked := make([]*Peer, 0, len(m.roots))
	for addr, rid := range m.roots {
		if p := m.peers[addr]; p != nil && p.Identity().Equal(rid) {
			ranked = append(ranked, p)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		li, lj := rankLatency(ranked[i]), rankLatency(ranked[j])
		if li != lj {
			return li < lj
		}
		return ranked[i].Addr().Uint64() < ranked[j].Addr().Uint64()
	})
	m.rootPeers = ranked
	m.rankRuns.Add(1)
}

// rankSnapshotLocked 摘取当前排名概要（须持有 peersMu 锁）
func (m *Manager) rankSnapshotLocked() (best types.Address, numRoots, numRanked int) {
	if len(m.rootPeers) > 0 {
		best = m.rootPeers[0].Addr()
	}
	return best, len(m.roots), len(m.rootPeers)
}

// rankLatency 返回用于排序的延迟值，未测得排最后
func rankLatency(p *Peer) time.Duration {
	if !p.HasLatency() {
		return time.Duration(math.MaxInt64)
	}
	return p.Latency()
}
