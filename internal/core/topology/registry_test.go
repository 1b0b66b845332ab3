package topology

import (
	"sync"
	"testing"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
// 注册与查询
// ============================================================================

// TestManager_AddPeer 测试节点注册
func TestManager_AddPeer(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)

	first := NewPeer(id)
	if got := mgr.AddPeer(first); got != first {
		t.Error("AddPeer() should return the inserted instance")
	}
	if n := mgr.CountPeers(); n != 1 {
		t.Errorf("CountPeers() = %d, want 1", n)
	}

	// 同地址再注册：返回既有实例，参数被丢弃
	second := NewPeer(id)
	if got := mgr.AddPeer(second); got != first {
		t.Error("AddPeer() with an existing address should return the canonical instance")
	}
	if n := mgr.CountPeers(); n != 1 {
		t.Errorf("CountPeers() = %d after duplicate add, want 1", n)
	}
}

// TestManager_AddPeerNil 测试 nil 注册
func TestManager_AddPeerNil(t *testing.T) {
	mgr := newTestManager(t)

	if got := mgr.AddPeer(nil); got != nil {
		t.Error("AddPeer(nil) should return nil")
	}
}

// TestManager_AddPeerSelf 测试本地自身注册被忽略
func TestManager_AddPeerSelf(t *testing.T) {
	mgr := newTestManager(t)

	if got := mgr.AddPeer(NewPeer(mgr.LocalIdentity())); got != nil {
		t.Error("registering the local identity should be ignored")
	}
	if n := mgr.CountPeers(); n != 0 {
		t.Errorf("CountPeers() = %d, want 0", n)
	}
}

// TestManager_AddPeerConcurrent 测试并发规范化
//
// 同一地址的并发注册必须全部拿到同一规范实例。
func TestManager_AddPeerConcurrent(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)

	const goroutines = 100
	results := make([]*Peer, goroutines)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = mgr.AddPeer(NewPeer(id))
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d got a different peer instance", i)
		}
	}
	if n := mgr.CountPeers(); n != 1 {
		t.Errorf("CountPeers() = %d, want 1", n)
	}
}

// TestManager_GetPeer 测试按地址查询
func TestManager_GetPeer(t *testing.T) {
	mgr := newTestManager(t)
	id := newTestIdentity(t)
	p := registerPeer(t, mgr, id)

	if got := mgr.GetPeer(id.Addr()); got != p {
		t.Error("GetPeer() should return the canonical instance")
	}
	if got := mgr.GetPeer(types.AddressFromUint64(0x0102030405)); got != nil {
		t.Error("GetPeer() for an unknown address should return nil")
	}
}

// TestManager_GetIdentity 测试身份解析
func TestManager_GetIdentity(t *testing.T) {
	mgr := newTestManager(t)

	// 本地地址短路，无需注册
	if got := mgr.GetIdentity(mgr.LocalAddr()); got != mgr.LocalIdentity() {
		t.Error("GetIdentity(local) should return the local identity without registration")
	}

	id := newTestIdentity(t)
	if got := mgr.GetIdentity(id.Addr()); got != nil {
		t.Error("GetIdentity() for an unregistered address should return nil")
	}

	registerPeer(t, mgr, id)
	if got := mgr.GetIdentity(id.Addr()); got != id {
		t.Error("GetIdentity() should return the registered identity")
	}
}

// ============================================================================
// 遍历与快照
// ============================================================================

// TestManager_EachPeer 测试遍历
func TestManager_EachPeer(t *testing.T) {
	mgr := newTestManager(t)

	want := make(map[types.Address]bool)
	for i := 0; i < 5; i++ {
		id := newTestIdentity(t)
		registerPeer(t, mgr, id)
		want[id.Addr()] = true
	}

	visited := make(map[types.Address]int)
	mgr.EachPeer(func(p *Peer) bool {
		visited[p.Addr()]++
		return true
	})

	if len(visited) != len(want) {
		t.Errorf("visited %d peers, want %d", len(visited), len(want))
	}
	for addr, n := range visited {
		if !want[addr] {
			t.Errorf("visited unexpected peer %s", addr)
		}
		if n != 1 {
			t.Errorf("peer %s visited %d times, want 1", addr, n)
		}
	}
}

// TestManager_EachPeerEarlyStop 测试访问者提前终止
func TestManager_EachPeerEarlyStop(t *testing.T) {
	mgr := newTestManager(t)
	for i := 0; i < 5; i++ {
		registerPeer(t, mgr, newTestIdentity(t))
	}

	visited := 0
	mgr.EachPeer(func(p *Peer) bool {
		visited++
		return visited < 2
	})

	if visited != 2 {
		t.Errorf("visited = %d, want 2 after early stop", visited)
	}
}

// TestManager_EachPeerSnapshot 测试遍历快照一致性
//
// 遍历全程持有读锁：进入遍历时已注册的节点恰好各出现一次，
// 并发注册不会出现在进行中的遍历里。
func TestManager_EachPeerSnapshot(t *testing.T) {
	mgr := newTestManager(t)

	initial := make(map[types.Address]bool)
	for i := 0; i < 8; i++ {
		id := newTestIdentity(t)
		registerPeer(t, mgr, id)
		initial[id.Addr()] = true
	}

	// 预先生成身份，后台并发注册
	extra := make([]*Peer, 8)
	for i := range extra {
		extra[i] = NewPeer(newTestIdentity(t))
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, p := range extra {
			mgr.AddPeer(p)
		}
	}()

	for round := 0; round < 10; round++ {
		visited := make(map[types.Address]int)
		mgr.EachPeer(func(p *Peer) bool {
			visited[p.Addr()]++
			return true
		})
		for addr, n := range visited {
			if n != 1 {
				t.Fatalf("round %d: peer %s visited %d times", round, addr, n)
			}
		}
		for addr := range initial {
			if visited[addr] != 1 {
				t.Fatalf("round %d: initial peer %s missing from traversal", round, addr)
			}
		}
	}
	<-done

	if n := mgr.CountPeers(); n != len(initial)+len(extra) {
		t.Errorf("CountPeers() = %d, want %d", n, len(initial)+len(extra))
	}
}

// TestManager_EachPeerWithRoot 测试带根身份的遍历
func TestManager_EachPeerWithRoot(t *testing.T) {
	mgr := newTestManager(t)

	rootID := newTestIdentity(t)
	registerPeer(t, mgr, rootID)
	mgr.AddRoot(rootID)

	plainID := newTestIdentity(t)
	registerPeer(t, mgr, plainID)

	flags := make(map[types.Address]bool)
	mgr.EachPeerWithRoot(func(p *Peer, isRoot bool) bool {
		flags[p.Addr()] = isRoot
		return true
	})

	if len(flags) != 2 {
		t.Fatalf("visited %d peers, want 2", len(flags))
	}
	if !flags[rootID.Addr()] {
		t.Error("root peer should be flagged as root")
	}
	if flags[plainID.Addr()] {
		t.Error("plain peer should not be flagged as root")
	}
}

// TestManager_AllPeers 测试快照不共享内部存储
func TestManager_AllPeers(t *testing.T) {
	mgr := newTestManager(t)
	for i := 0; i < 3; i++ {
		registerPeer(t, mgr, newTestIdentity(t))
	}

	snapshot := mgr.AllPeers()
	if len(snapshot) != 3 {
		t.Fatalf("AllPeers() returned %d peers, want 3", len(snapshot))
	}

	// 改写快照不影响注册表
	snapshot[0] = nil
	snapshot = snapshot[:1]
	if n := mgr.CountPeers(); n != 3 {
		t.Errorf("CountPeers() = %d after mutating snapshot, want 3", n)
	}
	if again := mgr.AllPeers(); len(again) != 3 {
		t.Errorf("AllPeers() returned %d peers after snapshot mutation, want 3", len(again))
	}
}
