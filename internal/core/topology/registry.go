package topology

import (
	"sort"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/types"
)

// AddPeer 注册节点，返回该地址的规范实例
//
// 地址已存在时返回既有实例并丢弃参数——"返回既有"是成功路径，
// 不是错误。每个地址在注册表生命周期内至多构造一个规范 Peer
// 由此保证。nil 与本地自身的注册被忽略并返回 nil。
func (m *Manager) AddPeer(p *Peer) *Peer {
	if p == nil {
		return nil
	}
	addr := p.Addr()
	if !addr.IsValid() || addr == m.local.Addr() {
		return nil
	}

	m.peersMu.Lock()
	if existing := m.peers[addr]; existing != nil {
		m.peersMu.Unlock()
		return existing
	}
	m.peers[addr] = p
	numPeers := len(m.peers)
	m.peersMu.Unlock()

	m.events.peerRegistered(addr, numPeers)
	logger.Debug("节点已注册", "addr", addr.String(), "peers", numPeers)
	return p
}

// GetPeer 按地址查询节点
//
// 不存在时返回 nil，绝不隐式创建。
func (m *Manager) GetPeer(addr types.Address) *Peer {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	return m.peers[addr]
}

// GetIdentity 按地址查询节点身份
//
// addr 为本地地址时直接返回本地身份，不查注册表——本地身份
// 无需注册即可解析。其余地址返回已注册节点的身份，未注册时
// 返回 nil。
func (m *Manager) GetIdentity(addr types.Address) *identity.Identity {
	if addr == m.local.Addr() {
		return m.local
	}
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	if p := m.peers[addr]; p != nil {
		return p.Identity()
	}
	return nil
}

// EachPeer 遍历全部已注册节点
//
// 整个遍历过程持有读锁，访问者看到一致的时点快照；
// 返回 false 提前终止。访问者不得调用任何注册表或根集合的
// 变更操作，否则死锁。
func (m *Manager) EachPeer(visit func(p *Peer) bool) {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	for _, p := range m.peers {
		if !visit(p) {
			return
		}
	}
}

// EachPeerWithRoot 遍历全部已注册节点并报告根身份
//
// 与 EachPeer 同样的持锁快照语义。根身份取自当前延迟有序根列表：
// 进入遍历时一次性摘取列表中各节点地址并排序，随后每个被访问
// 节点用二分查找判定，遍历过程不再加锁。访问者约束同 EachPeer。
func (m *Manager) EachPeerWithRoot(visit func(p *Peer, isRoot bool) bool) {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()

	rootAddrs := make([]uint64, 0, len(m.rootPeers))
	for _, rp := range m.rootPeers {
		rootAddrs = append(rootAddrs, rp.Addr().Uint64())
	}
	sort.Slice(rootAddrs, func(i, j int) bool { return rootAddrs[i] < rootAddrs[j] })

	for _, p := range m.peers {
		a := p.Addr().Uint64()
		i := sort.Search(len(rootAddrs), func(k int) bool { return rootAddrs[k] >= a })
		isRoot := i < len(rootAddrs) && rootAddrs[i] == a
		if !visit(p, isRoot) {
			return
		}
	}
}

// AllPeers 返回全部已注册节点的时点快照
//
// 返回的切片为新分配，不与内部存储共享。
func (m *Manager) AllPeers() []*Peer {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	peers := make([]*Peer, 0, len(m.peers))
	for _, p := range m.peers {
		peers = append(peers, p)
	}
	return peers
}

// CountPeers 返回已注册节点数
func (m *Manager) CountPeers() int {
	m.peersMu.RLock()
	defer m.peersMu.RUnlock()
	return len(m.peers)
}
