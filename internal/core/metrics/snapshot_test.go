package metrics

import (
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/types"
)

// 测试固定采集时刻（Unix 毫秒）
const testNow = int64(1_000_000_000)

// newTestTopology 创建用于采集的拓扑管理器
func newTestTopology(t *testing.T, opts ...topology.Option) *topology.Manager {
	t.Helper()
	local, err := identity.Generate()
	require.NoError(t, err)
	mgr, err := topology.New(local, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

// registerPeer 注册一个活跃节点并返回其身份
func registerPeer(t *testing.T, mgr *topology.Manager, latency time.Duration) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	p := topology.NewPeer(id)
	p.Refresh(testNow)
	if latency > 0 {
		p.RecordLatency(latency)
	}
	require.NotNil(t, mgr.AddPeer(p))
	return id
}

// TestTopologyCollector_Snapshot 测试完整快照采集
func TestTopologyCollector_Snapshot(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(testNow))
	mgr := newTestTopology(t, topology.WithClock(mock))

	registerPeer(t, mgr, 0)
	rootID := registerPeer(t, mgr, 30*time.Millisecond)
	mgr.AddRoot(rootID)

	_, err := mgr.GetPath(-1, netip.MustParseAddrPort("192.0.2.1:9993"))
	require.NoError(t, err)

	c := NewTopologyCollector(mgr, "test-1", mock)
	s := c.Snapshot()

	assert.Equal(t, testNow, s.Timestamp)
	assert.Equal(t, "test-1", s.InstanceID)
	assert.Equal(t, mgr.LocalAddr().String(), s.LocalAddr)
	assert.Equal(t, 2, s.PeerCount)
	assert.Equal(t, 1, s.PathCount)
	assert.Equal(t, 1, s.RootCount)
	assert.True(t, s.HasRoot)
	assert.Equal(t, rootID.Addr().String(), s.BestRoot)
	assert.Equal(t, 30*time.Millisecond, s.BestRootLatency)
}

// TestTopologyCollector_Snapshot_Empty 测试空拓扑快照
func TestTopologyCollector_Snapshot_Empty(t *testing.T) {
	mgr := newTestTopology(t)
	c := NewTopologyCollector(mgr, "test-1", nil)

	s := c.Snapshot()
	assert.Zero(t, s.PeerCount)
	assert.Zero(t, s.PathCount)
	assert.Zero(t, s.RootCount)
	assert.False(t, s.HasRoot)
	assert.Empty(t, s.BestRoot)
	assert.Zero(t, s.BestRootLatency)
	assert.Zero(t, s.RankRuns)
	assert.Zero(t, s.LastRankTime)
}

// TestTopologyCollector_Snapshot_BareRoot 测试无对应节点的根指定
//
// 仅登记身份、没有已注册节点的根计入成员集，但不可达。
func TestTopologyCollector_Snapshot_BareRoot(t *testing.T) {
	mgr := newTestTopology(t)

	bare, err := identity.Generate()
	require.NoError(t, err)
	mgr.AddRoot(bare)

	s := NewTopologyCollector(mgr, "test-1", nil).Snapshot()
	assert.Equal(t, 1, s.RootCount)
	assert.False(t, s.HasRoot)
	assert.Empty(t, s.BestRoot)
}

// TestTopologyCollector_Snapshot_RankStats 测试根排序统计提取
func TestTopologyCollector_Snapshot_RankStats(t *testing.T) {
	mgr := newTestTopology(t)
	c := NewTopologyCollector(mgr, "test-1", nil)

	rootID := registerPeer(t, mgr, 10*time.Millisecond)
	mgr.AddRoot(rootID) // 登记即重排一次

	before := c.Snapshot()
	require.NotZero(t, before.RankRuns)

	mgr.RankRoots(testNow)
	after := c.Snapshot()
	assert.Equal(t, before.RankRuns+1, after.RankRuns)
	assert.Equal(t, testNow, after.LastRankTime)
}

// staticView 不带排序统计的最小拓扑视图
type staticView struct {
	addr  types.Address
	peers int
}

func (v staticView) LocalAddr() types.Address { return v.addr }
func (v staticView) CountPeers() int          { return v.peers }
func (v staticView) CountPaths() int          { return 0 }
func (v staticView) CountRoots() int          { return 0 }
func (v staticView) BestRoot() (types.Address, time.Duration, bool) {
	return types.EmptyAddress, 0, false
}

// TestTopologyCollector_Snapshot_WithoutRankStats 测试统计表面缺失
//
// 视图未实现排序统计时相关字段保持零值，不恐慌。
func TestTopologyCollector_Snapshot_WithoutRankStats(t *testing.T) {
	view := staticView{addr: types.Address{0x11, 0x22, 0x33, 0x44, 0x55}, peers: 7}
	s := NewTopologyCollector(view, "test-1", nil).Snapshot()

	assert.Equal(t, 7, s.PeerCount)
	assert.Equal(t, view.addr.String(), s.LocalAddr)
	assert.Zero(t, s.RankRuns)
	assert.Zero(t, s.LastRankTime)
}
