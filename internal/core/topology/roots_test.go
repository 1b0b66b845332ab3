package topology

import (
	"testing"
	"time"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
// 成员管理
// ============================================================================

// TestManager_AddRoot 测试根登记
func TestManager_AddRoot(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)

	mgr.AddRoot(id)

	if !mgr.IsRoot(id) {
		t.Error("IsRoot() should be true after AddRoot()")
	}
	if n := mgr.CountRoots(); n != 1 {
		t.Errorf("CountRoots() = %d, want 1", n)
	}
	assertRootInvariant(t, mgr, true)
}

// TestManager_AddRootIdempotent 测试重复登记无额外效果
func TestManager_AddRootIdempotent(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)

	mgr.AddRoot(id)
	runs := mgr.RankRuns()
	mgr.AddRoot(id)

	if n := mgr.CountRoots(); n != 1 {
		t.Errorf("CountRoots() = %d after duplicate add, want 1", n)
	}
	if got := mgr.RankRuns(); got != runs {
		t.Errorf("duplicate AddRoot() re-ranked: runs %d -> %d", runs, got)
	}
}

// TestManager_AddRootSelf 测试本地自身被忽略
func TestManager_AddRootSelf(t *testing.T) {
	mgr := newTestManager(t)

	mgr.AddRoot(mgr.LocalIdentity())

	if mgr.IsRoot(mgr.LocalIdentity()) {
		t.Error("the local identity must never become a root")
	}
	if n := mgr.CountRoots(); n != 0 {
		t.Errorf("CountRoots() = %d, want 0", n)
	}
}

// TestManager_AddRootNil 测试 nil 身份被忽略
func TestManager_AddRootNil(t *testing.T) {
	mgr := newTestManager(t)

	mgr.AddRoot(nil)

	if n := mgr.CountRoots(); n != 0 {
		t.Errorf("CountRoots() = %d, want 0", n)
	}
}

// TestManager_AddRootRanksImmediately 测试登记即重排
//
// 已注册的根节点在 AddRoot 返回后立即可被选中，无需等待
// 下一个维护周期。
func TestManager_AddRootRanksImmediately(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)
	p := registerPeer(t, mgr, id)

	mgr.AddRoot(id)

	if got := mgr.Root(); got != p {
		t.Error("Root() should return the registered root right after AddRoot()")
	}
	assertRootInvariant(t, mgr, true)
}

// TestManager_RemoveRoot 测试移除
func TestManager_RemoveRoot(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)
	registerPeer(t, mgr, id)
	mgr.AddRoot(id)

	if !mgr.RemoveRoot(id) {
		t.Fatal("RemoveRoot() should report presence")
	}
	if mgr.IsRoot(id) {
		t.Error("IsRoot() should be false after removal")
	}
	if n := mgr.CountRoots(); n != 0 {
		t.Errorf("CountRoots() = %d, want 0", n)
	}
	if got := mgr.Root(); got != nil {
		t.Error("Root() should be nil after removing the only root")
	}
	// 节点本身保留在注册表
	if got := mgr.GetPeer(id.Addr()); got == nil {
		t.Error("removing a root must not unregister its peer")
	}
	assertRootInvariant(t, mgr, true)
}

// TestManager_RemoveRootIdempotent 测试幂等移除
//
// 移除不存在的身份返回 false 且不改动任何状态。
func TestManager_RemoveRootIdempotent(t *testing.T) {
	mgr := newTestManager(t)
	a, b := newTestIdentity(t), newTestIdentity(t)
	registerPeer(t, mgr, a)
	mgr.AddRoot(a)

	if mgr.RemoveRoot(b) {
		t.Error("RemoveRoot() of an unknown identity should return false")
	}
	if mgr.RemoveRoot(nil) {
		t.Error("RemoveRoot(nil) should return false")
	}
	if n := mgr.CountRoots(); n != 1 {
		t.Errorf("CountRoots() = %d after no-op removals, want 1", n)
	}
	if got := mgr.Root(); got == nil || got.Addr() != a.Addr() {
		t.Error("no-op removals must not disturb the ranked list")
	}

	if !mgr.RemoveRoot(a) {
		t.Fatal("RemoveRoot() should report presence")
	}
	if mgr.RemoveRoot(a) {
		t.Error("second RemoveRoot() should return false")
	}
}

// ============================================================================
// 排名
// ============================================================================

// TestManager_RankRoots 测试延迟排序
//
// 排名按延迟升序；未测得延迟的排最后；没有已注册节点的根
// 不进入列表但保留成员资格。
func TestManager_RankRoots(t *testing.T) {
	mgr := newTestManager(t)

	slow := newTestIdentity(t)
	fast := newTestIdentity(t)
	silent := newTestIdentity(t)
	offline := newTestIdentity(t)

	registerPeer(t, mgr, slow).RecordLatency(50 * time.Millisecond)
	registerPeer(t, mgr, fast).RecordLatency(10 * time.Millisecond)
	registerPeer(t, mgr, silent) // 无延迟测量
	// offline 不注册

	mgr.AddRoot(slow)
	mgr.AddRoot(fast)
	mgr.AddRoot(silent)
	mgr.AddRoot(offline)

	mgr.RankRoots(5000)

	if n := mgr.CountRoots(); n != 4 {
		t.Fatalf("CountRoots() = %d, want 4", n)
	}
	assertRootInvariant(t, mgr, true)

	order := make([]types.Address, 0, 4)
	mgr.peersMu.RLock()
	for _, p := range mgr.rootPeers {
		order = append(order, p.Addr())
	}
	mgr.peersMu.RUnlock()

	want := []types.Address{fast.Addr(), slow.Addr(), silent.Addr()}
	if len(order) != len(want) {
		t.Fatalf("ranked list has %d entries, want %d (offline root must be absent)", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("ranked[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	if got := mgr.Root(); got == nil || got.Addr() != fast.Addr() {
		t.Error("Root() should be the lowest-latency root")
	}
	if ts := mgr.LastRankTime(); ts != 5000 {
		t.Errorf("LastRankTime() = %d, want 5000", ts)
	}
}

// TestManager_RankRootsNonDecreasing 测试排序单调性
func TestManager_RankRootsNonDecreasing(t *testing.T) {
	mgr := newTestManager(t)

	latencies := []time.Duration{
		80 * time.Millisecond,
		5 * time.Millisecond,
		200 * time.Millisecond,
		5 * time.Millisecond, // 与上面并列
		33 * time.Millisecond,
	}
	for _, l := range latencies {
		id := newTestIdentity(t)
		registerPeer(t, mgr, id).RecordLatency(l)
		mgr.AddRoot(id)
	}

	mgr.RankRoots(1000)

	mgr.peersMu.RLock()
	defer mgr.peersMu.RUnlock()
	if len(mgr.rootPeers) != len(latencies) {
		t.Fatalf("ranked list has %d entries, want %d", len(mgr.rootPeers), len(latencies))
	}
	for i := 1; i < len(mgr.rootPeers); i++ {
		if mgr.rootPeers[i-1].Latency() > mgr.rootPeers[i].Latency() {
			t.Errorf("ranked latencies not non-decreasing at %d: %v > %v",
				i, mgr.rootPeers[i-1].Latency(), mgr.rootPeers[i].Latency())
		}
	}
}

// TestManager_RankRootsLatePeer 测试先登记后注册
//
// 根身份先于其节点登记时，列表在下一次重排时补上该节点。
func TestManager_RankRootsLatePeer(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)

	mgr.AddRoot(id)
	if got := mgr.Root(); got != nil {
		t.Fatal("Root() should be nil while the root peer is unregistered")
	}

	p := registerPeer(t, mgr, id)
	// 注册本身不触发重排
	if got := mgr.Root(); got != nil {
		t.Error("AddPeer() must not rank by itself")
	}

	mgr.RankRoots(1000)
	if got := mgr.Root(); got != p {
		t.Error("Root() should surface the late-registered root after RankRoots()")
	}
	assertRootInvariant(t, mgr, true)
}

// TestManager_RootScripted 测试加删排序列后的不变量
func TestManager_RootScripted(t *testing.T) {
	mgr := newTestManager(t)

	type step struct {
		name string
		run  func()
	}
	a, b, c := newTestIdentity(t), newTestIdentity(t), newTestIdentity(t)

	steps := []step{
		{"add a", func() { mgr.AddRoot(a) }},
		{"register a", func() { registerPeer(t, mgr, a).RecordLatency(30 * time.Millisecond) }},
		{"rank", func() { mgr.RankRoots(1) }},
		{"add b", func() { mgr.AddRoot(b) }},
		{"register b", func() { registerPeer(t, mgr, b).RecordLatency(10 * time.Millisecond) }},
		{"remove a", func() { mgr.RemoveRoot(a) }},
		{"rank again", func() { mgr.RankRoots(2) }},
		{"add c unregistered", func() { mgr.AddRoot(c) }},
		{"re-add a", func() { mgr.AddRoot(a) }},
		{"remove b", func() { mgr.RemoveRoot(b) }},
		{"final rank", func() { mgr.RankRoots(3) }},
	}
	for _, s := range steps {
		s.run()
		assertRootInvariant(t, mgr, false)
		if t.Failed() {
			t.Fatalf("root invariant broken after step %q", s.name)
		}
	}
	assertRootInvariant(t, mgr, true)

	// 终态：a（已注册）与 c（未注册）为成员，b 已移除
	if !mgr.IsRoot(a) || !mgr.IsRoot(c) || mgr.IsRoot(b) {
		t.Error("final membership mismatch")
	}
	if got := mgr.Root(); got == nil || got.Addr() != a.Addr() {
		t.Error("Root() should be the only registered member")
	}
}

// ============================================================================
// 查询
// ============================================================================

// TestManager_RootEmpty 测试空集合查询
func TestManager_RootEmpty(t *testing.T) {
	mgr := newTestManager(t)

	if got := mgr.Root(); got != nil {
		t.Error("Root() on an empty set should be nil")
	}
	if got := mgr.FindRelayTo(types.AddressFromUint64(0x0102030405)); got != nil {
		t.Error("FindRelayTo() on an empty set should be nil")
	}
	if _, _, ok := mgr.BestRoot(); ok {
		t.Error("BestRoot() on an empty set should report ok=false")
	}
}

// TestManager_FindRelayTo 测试中继选择退化为最优根
func TestManager_FindRelayTo(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)
	p := registerPeer(t, mgr, id)
	mgr.AddRoot(id)

	// 与目标地址无关，恒返回当前最优根
	for _, dest := range []uint64{0x0102030405, 0xa1b2c3d4e5, 0x0000000001} {
		if got := mgr.FindRelayTo(types.AddressFromUint64(dest)); got != p {
			t.Errorf("FindRelayTo(%010x) != Root()", dest)
		}
	}
}

// TestManager_BestRoot 测试最优根视图
func TestManager_BestRoot(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)
	registerPeer(t, mgr, id).RecordLatency(40 * time.Millisecond)
	mgr.AddRoot(id)

	addr, latency, ok := mgr.BestRoot()
	if !ok {
		t.Fatal("BestRoot() should report ok=true")
	}
	if addr != id.Addr() {
		t.Errorf("BestRoot() addr = %s, want %s", addr, id.Addr())
	}
	if latency != 40*time.Millisecond {
		t.Errorf("BestRoot() latency = %v, want 40ms", latency)
	}
}

// TestManager_IsRootUnknown 测试未知身份
func TestManager_IsRootUnknown(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.IsRoot(newTestIdentity(t)) {
		t.Error("IsRoot() for an unknown identity should be false")
	}
	if mgr.IsRoot(nil) {
		t.Error("IsRoot(nil) should be false")
	}
}

// TestManager_RootIdentities 测试成员快照
func TestManager_RootIdentities(t *testing.T) {
	mgr := newTestManager(t)
	a, b := newTestIdentity(t), newTestIdentity(t)
	registerPeer(t, mgr, a)
	mgr.AddRoot(a)
	mgr.AddRoot(b) // 未注册的成员同样包含

	ids := mgr.RootIdentities()
	if len(ids) != 2 {
		t.Fatalf("RootIdentities() returned %d, want 2", len(ids))
	}
	found := map[types.Address]bool{}
	for _, id := range ids {
		found[id.Addr()] = true
	}
	if !found[a.Addr()] || !found[b.Addr()] {
		t.Error("RootIdentities() should include members with and without peers")
	}
}
