package overlay

import (
	"crypto/ed25519"
	"net/netip"
	"sort"
	"time"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/types"
)

// 拓扑转发表面
//
// 拓扑核心位于 internal 包，本文件以公共类型（types.Address、
// ed25519 公钥、netip 前缀）转发其查询与变更操作。变更操作
// 要求节点处于运行状态；查询操作在任何状态下可用。

// PeerInfo 已注册节点的公开快照
type PeerInfo struct {
	// Address 节点地址
	Address types.Address

	// PublicKey 身份公钥
	PublicKey ed25519.PublicKey

	// LastReceive 最近收包时间（Unix 毫秒，0 = 从未）
	LastReceive int64

	// LastSend 最近发包时间（Unix 毫秒，0 = 从未）
	LastSend int64

	// Latency 平滑延迟估计（未测得为 0）
	Latency time.Duration

	// HasLatency 是否已有延迟测量
	HasLatency bool

	// Root 是否为受信根
	Root bool
}

// ============================================================================
//                              节点注册与活动
// ============================================================================

// RegisterPeer 把对端身份注册进拓扑
//
// 公钥经地址派生校验后插入注册表；同地址的并发注册收敛到
// 同一实例，返回规范地址。注册时刻记为该节点的活跃起点。
// 注册本地自身返回 ErrLocalIdentity。
func (n *Node) RegisterPeer(pub ed25519.PublicKey) (types.Address, error) {
	if err := n.ensureRunning(); err != nil {
		return types.EmptyAddress, err
	}
	id, err := identity.FromPublicKey(pub)
	if err != nil {
		return types.EmptyAddress, err
	}

	p := topology.NewPeer(id)
	p.Refresh(n.clk.Now().UnixMilli())
	canonical := n.mgr.AddPeer(p)
	if canonical == nil {
		return types.EmptyAddress, ErrLocalIdentity
	}
	return canonical.Addr(), nil
}

// MarkPeerReceived 记录从该节点收到业务包
//
// 返回节点是否存在。刷新其活跃窗口，使维护周期不将其清除。
func (n *Node) MarkPeerReceived(addr types.Address) bool {
	if err := n.ensureRunning(); err != nil {
		return false
	}
	p := n.mgr.GetPeer(addr)
	if p == nil {
		return false
	}
	p.Received(n.clk.Now().UnixMilli())
	return true
}

// MarkPeerSent 记录向该节点发出业务包
//
// 返回节点是否存在。只更新发送侧统计，不影响活跃判定。
func (n *Node) MarkPeerSent(addr types.Address) bool {
	if err := n.ensureRunning(); err != nil {
		return false
	}
	p := n.mgr.GetPeer(addr)
	if p == nil {
		return false
	}
	p.Sent(n.clk.Now().UnixMilli())
	return true
}

// RecordPeerLatency 记录到该节点的往返延迟样本
//
// 返回节点是否存在。样本并入平滑估计，驱动根排序。
func (n *Node) RecordPeerLatency(addr types.Address, rtt time.Duration) bool {
	if err := n.ensureRunning(); err != nil {
		return false
	}
	p := n.mgr.GetPeer(addr)
	if p == nil {
		return false
	}
	p.RecordLatency(rtt)
	return true
}

// ============================================================================
//                              节点查询
// ============================================================================

// Peer 返回指定地址节点的快照
func (n *Node) Peer(addr types.Address) (PeerInfo, bool) {
	p := n.mgr.GetPeer(addr)
	if p == nil {
		return PeerInfo{}, false
	}
	return peerInfo(p, n.mgr.IsRoot(p.Identity())), true
}

// Peers 返回全部已注册节点的快照
//
// 快照在单次遍历内一致，按地址升序排列。
func (n *Node) Peers() []PeerInfo {
	var infos []PeerInfo
	n.mgr.EachPeerWithRoot(func(p *topology.Peer, isRoot bool) bool {
		infos = append(infos, peerInfo(p, isRoot))
		return true
	})
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Address.Uint64() < infos[j].Address.Uint64()
	})
	return infos
}

// peerInfo 构造节点快照
func peerInfo(p *topology.Peer, isRoot bool) PeerInfo {
	return PeerInfo{
		Address:     p.Addr(),
		PublicKey:   p.Identity().PublicKey(),
		LastReceive: p.LastReceive(),
		LastSend:    p.LastSend(),
		Latency:     p.Latency(),
		HasLatency:  p.HasLatency(),
		Root:        isRoot,
	}
}

// ============================================================================
//                              路径学习
// ============================================================================

// LearnPath 把物理端点收敛进路径缓存
//
// 同一 (本地套接字, 远端端点) 键的重复学习收敛到同一规范
// 路径并刷新其活跃时间。路径预算耗尽返回
// ErrPathLimitExceeded，创建速率超限返回 ErrPathRateLimited
// （均定义于拓扑核心，经 errors.Is 判别）。
func (n *Node) LearnPath(localSocket int64, remote netip.AddrPort) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	_, err := n.mgr.GetPath(localSocket, remote)
	return err
}

// ============================================================================
//                              根管理
// ============================================================================

// AddRoot 把身份指定为受信根
//
// 幂等。指定立即生效：若对应节点已注册，无需等待维护周期
// 即可被选为最优根。指定本地自身返回 ErrLocalIdentity。
func (n *Node) AddRoot(pub ed25519.PublicKey) (types.Address, error) {
	if err := n.ensureRunning(); err != nil {
		return types.EmptyAddress, err
	}
	id, err := identity.FromPublicKey(pub)
	if err != nil {
		return types.EmptyAddress, err
	}
	if id.Equal(n.identity) {
		return types.EmptyAddress, ErrLocalIdentity
	}
	n.mgr.AddRoot(id)
	return id.Addr(), nil
}

// RemoveRoot 撤销根指定，报告其先前是否存在
//
// 幂等。撤销不移除节点本身，只取消其根身份。
func (n *Node) RemoveRoot(pub ed25519.PublicKey) (bool, error) {
	if err := n.ensureRunning(); err != nil {
		return false, err
	}
	id, err := identity.FromPublicKey(pub)
	if err != nil {
		return false, err
	}
	return n.mgr.RemoveRoot(id), nil
}

// RankRoots 立即重建延迟有序根列表
//
// 维护周期会定期重排；延迟样本批量更新后可调用本方法
// 即刻生效。
func (n *Node) RankRoots() error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	n.mgr.RankRoots(n.clk.Now().UnixMilli())
	return nil
}

// IsRoot 报告地址是否在根成员集中
//
// 包含当前没有已注册节点的根指定。
func (n *Node) IsRoot(addr types.Address) bool {
	for _, id := range n.mgr.RootIdentities() {
		if id.Addr() == addr {
			return true
		}
	}
	return false
}

// Roots 返回根成员集中的全部地址，按地址升序
func (n *Node) Roots() []types.Address {
	ids := n.mgr.RootIdentities()
	addrs := make([]types.Address, 0, len(ids))
	for _, id := range ids {
		addrs = append(addrs, id.Addr())
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Uint64() < addrs[j].Uint64()
	})
	return addrs
}

// RelayTo 返回通往目标地址的中继节点
//
// 当前实现恒为最优根；无可达根时 ok 为 false。
func (n *Node) RelayTo(target types.Address) (types.Address, bool) {
	relay := n.mgr.FindRelayTo(target)
	if relay == nil {
		return types.EmptyAddress, false
	}
	return relay.Addr(), true
}

// ============================================================================
//                              物理路径配置
// ============================================================================

// SetPhysicalPath 设置子网的物理路径配置
//
// trustedPathID 非零时，来自该子网且携带相同标识的入向包
// 跳过逐包认证；0 表示只覆盖 MTU。配置表容量固定，超出
// 返回 ErrTooManyPhysicalPaths 且不改动现有配置。
func (n *Node) SetPhysicalPath(subnet netip.Prefix, trustedPathID uint64, mtu int) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	cfg := topology.PhysicalPathConfig{TrustedPathID: trustedPathID, MTU: mtu}
	return n.mgr.SetPhysicalPathConfiguration(&subnet, &cfg)
}

// RemovePhysicalPath 移除子网的物理路径配置
func (n *Node) RemovePhysicalPath(subnet netip.Prefix) error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.mgr.SetPhysicalPathConfiguration(&subnet, nil)
}

// ClearPhysicalPaths 清空整张物理路径配置表
func (n *Node) ClearPhysicalPaths() error {
	if err := n.ensureRunning(); err != nil {
		return err
	}
	return n.mgr.SetPhysicalPathConfiguration(nil, nil)
}

// OutboundPathInfo 返回发往该物理地址时生效的路径配置
//
// ok 为 false 表示无配置覆盖，此时 mtu 为默认物理 MTU。
func (n *Node) OutboundPathInfo(addr netip.Addr) (mtu int, trustedPathID uint64, ok bool) {
	return n.mgr.GetOutboundPathInfo(addr)
}

// OutboundPathMTU 返回发往该物理地址的 MTU
func (n *Node) OutboundPathMTU(addr netip.Addr) int {
	return n.mgr.GetOutboundPathMTU(addr)
}

// OutboundPathTrust 返回发往该物理地址的受信路径标识
func (n *Node) OutboundPathTrust(addr netip.Addr) uint64 {
	return n.mgr.GetOutboundPathTrust(addr)
}

// IsInboundPathTrusted 判定入向包是否可跳过逐包认证
//
// 源地址所属子网配置了非零受信标识、且与包携带的标识一致时
// 才为 true。
func (n *Node) IsInboundPathTrusted(addr netip.Addr, claimedID uint64) bool {
	return n.mgr.IsInboundPathTrusted(addr, claimedID)
}
