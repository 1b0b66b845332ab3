package overlay

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/types"
)

// newPeerKey 生成一个对端公钥
func newPeerKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

// TestNode_RegisterPeer 测试对端注册
func TestNode_RegisterPeer(t *testing.T) {
	node := startTestNode(t)
	pub := newPeerKey(t)

	addr, err := node.RegisterPeer(pub)
	require.NoError(t, err)
	assert.True(t, addr.IsValid())

	info, ok := node.Peer(addr)
	require.True(t, ok)
	assert.Equal(t, addr, info.Address)
	assert.True(t, pub.Equal(info.PublicKey))
	assert.False(t, info.Root)
	assert.False(t, info.HasLatency)

	// 重复注册收敛到同一地址
	again, err := node.RegisterPeer(pub)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
	assert.Equal(t, 1, node.Topology().CountPeers())
}

// TestNode_RegisterPeerSelf 测试注册本地自身
func TestNode_RegisterPeerSelf(t *testing.T) {
	node := startTestNode(t)

	_, err := node.RegisterPeer(node.Identity())
	assert.ErrorIs(t, err, ErrLocalIdentity)
	assert.Equal(t, 0, node.Topology().CountPeers())
}

// TestNode_RegisterPeerInvalidKey 测试非法公钥
func TestNode_RegisterPeerInvalidKey(t *testing.T) {
	node := startTestNode(t)

	_, err := node.RegisterPeer(ed25519.PublicKey{1, 2, 3})
	assert.Error(t, err)
}

// TestNode_PeerActivity 测试活动戳与延迟记录
func TestNode_PeerActivity(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(1_000_000_000))
	node := startTestNode(t, WithClock(mock))

	addr, err := node.RegisterPeer(newPeerKey(t))
	require.NoError(t, err)

	// 注册时刻即活跃起点
	info, _ := node.Peer(addr)
	assert.Equal(t, int64(1_000_000_000), info.LastReceive)
	assert.Equal(t, int64(0), info.LastSend)

	mock.Set(time.UnixMilli(1_000_005_000))
	assert.True(t, node.MarkPeerReceived(addr))
	assert.True(t, node.MarkPeerSent(addr))
	assert.True(t, node.RecordPeerLatency(addr, 40*time.Millisecond))

	info, _ = node.Peer(addr)
	assert.Equal(t, int64(1_000_005_000), info.LastReceive)
	assert.Equal(t, int64(1_000_005_000), info.LastSend)
	assert.True(t, info.HasLatency)
	assert.Equal(t, 40*time.Millisecond, info.Latency)

	// 未注册地址
	unknown := node.LocalAddr()
	assert.False(t, node.MarkPeerReceived(unknown))
	assert.False(t, node.MarkPeerSent(unknown))
	assert.False(t, node.RecordPeerLatency(unknown, time.Millisecond))
}

// TestNode_Peers 测试节点列表快照
func TestNode_Peers(t *testing.T) {
	node := startTestNode(t)

	rootPub := newPeerKey(t)
	rootAddr, err := node.RegisterPeer(rootPub)
	require.NoError(t, err)
	_, err = node.AddRoot(rootPub)
	require.NoError(t, err)

	plainAddr, err := node.RegisterPeer(newPeerKey(t))
	require.NoError(t, err)

	peers := node.Peers()
	require.Len(t, peers, 2)
	for i := 1; i < len(peers); i++ {
		assert.Less(t, peers[i-1].Address.Uint64(), peers[i].Address.Uint64())
	}
	for _, p := range peers {
		switch p.Address {
		case rootAddr:
			assert.True(t, p.Root)
		case plainAddr:
			assert.False(t, p.Root)
		default:
			t.Errorf("unexpected peer %s", p.Address)
		}
	}
}

// TestNode_RootManagement 测试根指定与撤销
func TestNode_RootManagement(t *testing.T) {
	node := startTestNode(t)
	pub := newPeerKey(t)

	addr, err := node.AddRoot(pub)
	require.NoError(t, err)
	assert.True(t, node.IsRoot(addr))
	assert.Equal(t, []types.Address{addr}, node.Roots())

	// 指定本地自身
	_, err = node.AddRoot(node.Identity())
	assert.ErrorIs(t, err, ErrLocalIdentity)

	removed, err := node.RemoveRoot(pub)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, node.IsRoot(addr))
	assert.Empty(t, node.Roots())

	// 幂等撤销
	removed, err = node.RemoveRoot(pub)
	require.NoError(t, err)
	assert.False(t, removed)
}

// TestNode_RelayTo 测试中继选择
func TestNode_RelayTo(t *testing.T) {
	node := startTestNode(t)
	target := node.LocalAddr()

	// 无根
	_, ok := node.RelayTo(target)
	assert.False(t, ok)

	// 根已指定但无注册节点
	ghost := newPeerKey(t)
	_, err := node.AddRoot(ghost)
	require.NoError(t, err)
	_, ok = node.RelayTo(target)
	assert.False(t, ok)

	// 注册后指定即刻生效
	rootPub := newPeerKey(t)
	rootAddr, err := node.RegisterPeer(rootPub)
	require.NoError(t, err)
	_, err = node.AddRoot(rootPub)
	require.NoError(t, err)

	relay, ok := node.RelayTo(target)
	require.True(t, ok)
	assert.Equal(t, rootAddr, relay)
}

// TestNode_RankRoots 测试延迟样本后的立即重排
func TestNode_RankRoots(t *testing.T) {
	node := startTestNode(t)

	slowPub, fastPub := newPeerKey(t), newPeerKey(t)
	slowAddr, err := node.RegisterPeer(slowPub)
	require.NoError(t, err)
	fastAddr, err := node.RegisterPeer(fastPub)
	require.NoError(t, err)
	_, err = node.AddRoot(slowPub)
	require.NoError(t, err)
	_, err = node.AddRoot(fastPub)
	require.NoError(t, err)

	// 排名建立在延迟样本之前，批量记录后手动重排
	require.True(t, node.RecordPeerLatency(slowAddr, 80*time.Millisecond))
	require.True(t, node.RecordPeerLatency(fastAddr, 5*time.Millisecond))
	require.NoError(t, node.RankRoots())

	best, latency, ok := node.Topology().BestRoot()
	require.True(t, ok)
	assert.Equal(t, fastAddr, best)
	assert.Equal(t, 5*time.Millisecond, latency)
}

// TestNode_LearnPath 测试路径学习
func TestNode_LearnPath(t *testing.T) {
	node := startTestNode(t)
	remote := netip.MustParseAddrPort("192.0.2.1:9993")

	require.NoError(t, node.LearnPath(-1, remote))
	assert.Equal(t, 1, node.Topology().CountPaths())

	// 同键重复学习收敛到同一规范路径
	require.NoError(t, node.LearnPath(-1, remote))
	assert.Equal(t, 1, node.Topology().CountPaths())

	require.NoError(t, node.LearnPath(-1, netip.MustParseAddrPort("192.0.2.2:9993")))
	assert.Equal(t, 2, node.Topology().CountPaths())
}

// TestNode_PhysicalPaths 测试物理路径配置表面
func TestNode_PhysicalPaths(t *testing.T) {
	node := startTestNode(t)
	subnet := netip.MustParsePrefix("192.0.2.0/24")
	inside := netip.MustParseAddr("192.0.2.50")
	outside := netip.MustParseAddr("198.51.100.1")

	require.NoError(t, node.SetPhysicalPath(subnet, 7, 9000))

	mtu, trust, ok := node.OutboundPathInfo(inside)
	require.True(t, ok)
	assert.Equal(t, 9000, mtu)
	assert.Equal(t, uint64(7), trust)
	assert.Equal(t, 9000, node.OutboundPathMTU(inside))
	assert.Equal(t, uint64(7), node.OutboundPathTrust(inside))

	// 覆盖范围外回落默认
	assert.Equal(t, topology.DefaultPhysicalMTU, node.OutboundPathMTU(outside))
	assert.Equal(t, uint64(0), node.OutboundPathTrust(outside))

	// 入向信任判定须标识一致
	assert.True(t, node.IsInboundPathTrusted(inside, 7))
	assert.False(t, node.IsInboundPathTrusted(inside, 8))
	assert.False(t, node.IsInboundPathTrusted(outside, 7))

	require.NoError(t, node.RemovePhysicalPath(subnet))
	_, _, ok = node.OutboundPathInfo(inside)
	assert.False(t, ok)

	// 整表清空
	require.NoError(t, node.SetPhysicalPath(subnet, 0, 1500))
	require.NoError(t, node.SetPhysicalPath(netip.MustParsePrefix("203.0.113.0/24"), 9, 0))
	require.NoError(t, node.ClearPhysicalPaths())
	_, _, ok = node.OutboundPathInfo(inside)
	assert.False(t, ok)
	_, _, ok = node.OutboundPathInfo(netip.MustParseAddr("203.0.113.9"))
	assert.False(t, ok)
}
