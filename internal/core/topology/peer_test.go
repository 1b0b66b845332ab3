package topology

import (
	"sync"
	"testing"
	"time"
)

// TestNewPeer 测试创建节点
func TestNewPeer(t *testing.T) {
	id := newTestIdentity(t)
	p := NewPeer(id)

	if p == nil {
		t.Fatal("NewPeer() returned nil")
	}
	if p.Identity() != id {
		t.Error("Identity() did not return the supplied identity")
	}
	if p.Addr() != id.Addr() {
		t.Errorf("Addr() = %s, want %s", p.Addr(), id.Addr())
	}
	if p.String() != id.Addr().String() {
		t.Errorf("String() = %q, want %q", p.String(), id.Addr().String())
	}
}

// TestNewPeer_NilIdentity 测试 nil 身份
func TestNewPeer_NilIdentity(t *testing.T) {
	if p := NewPeer(nil); p != nil {
		t.Error("NewPeer(nil) should return nil")
	}
}

// TestPeer_Activity 测试收发记录
func TestPeer_Activity(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	if p.LastReceive() != 0 || p.LastSend() != 0 {
		t.Error("new peer should have zero activity timestamps")
	}

	p.Received(1000)
	p.Received(2000)
	p.Sent(1500)

	if got := p.LastReceive(); got != 2000 {
		t.Errorf("LastReceive() = %d, want 2000", got)
	}
	if got := p.LastSend(); got != 1500 {
		t.Errorf("LastSend() = %d, want 1500", got)
	}
	if got := p.ReceiveCount(); got != 2 {
		t.Errorf("ReceiveCount() = %d, want 2", got)
	}
	if got := p.SendCount(); got != 1 {
		t.Errorf("SendCount() = %d, want 1", got)
	}
}

// TestPeer_Refresh 测试保活刷新不计入统计
func TestPeer_Refresh(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	p.Refresh(3000)

	if got := p.LastReceive(); got != 3000 {
		t.Errorf("LastReceive() = %d, want 3000", got)
	}
	if got := p.ReceiveCount(); got != 0 {
		t.Errorf("ReceiveCount() = %d, want 0 after Refresh", got)
	}
}

// TestPeer_Alive 测试存活判定
func TestPeer_Alive(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	// 从未有接收记录的节点不存活
	if p.Alive(1) {
		t.Error("peer without activity should not be alive")
	}

	p.Refresh(1000)
	expireMs := peerExpiration.Milliseconds()

	if !p.Alive(1000) {
		t.Error("peer should be alive right after refresh")
	}
	if !p.Alive(1000 + expireMs - 1) {
		t.Error("peer should be alive just inside the expiration window")
	}
	if p.Alive(1000 + expireMs) {
		t.Error("peer should have expired at the window boundary")
	}
}

// TestPeer_RecordLatency 测试延迟 EWMA
func TestPeer_RecordLatency(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	if p.HasLatency() {
		t.Error("new peer should have no latency measurement")
	}
	if got := p.Latency(); got != 0 {
		t.Errorf("Latency() = %v, want 0 when unmeasured", got)
	}

	// 首个样本直接作为估计值
	p.RecordLatency(100 * time.Millisecond)
	if !p.HasLatency() {
		t.Error("HasLatency() should be true after first sample")
	}
	if got := p.Latency(); got != 100*time.Millisecond {
		t.Errorf("Latency() = %v, want 100ms", got)
	}

	// 其后按 alpha=0.2 平滑: 0.8*100 + 0.2*50 = 90ms
	p.RecordLatency(50 * time.Millisecond)
	if got := p.Latency(); got != 90*time.Millisecond {
		t.Errorf("Latency() = %v, want 90ms", got)
	}
}

// TestPeer_RecordLatencyNegative 测试负样本忽略
func TestPeer_RecordLatencyNegative(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	p.RecordLatency(-time.Millisecond)
	if p.HasLatency() {
		t.Error("negative sample should be ignored")
	}

	p.RecordLatency(10 * time.Millisecond)
	p.RecordLatency(-time.Second)
	if got := p.Latency(); got != 10*time.Millisecond {
		t.Errorf("Latency() = %v, want 10ms after ignoring negative sample", got)
	}
}

// TestPeer_RecordLatencyConcurrent 测试并发延迟记录
func TestPeer_RecordLatencyConcurrent(t *testing.T) {
	p := NewPeer(newTestIdentity(t))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.RecordLatency(20 * time.Millisecond)
				p.Received(int64(j))
			}
		}()
	}
	wg.Wait()

	// 所有样本相同，EWMA 必须收敛到该值
	if got := p.Latency(); got != 20*time.Millisecond {
		t.Errorf("Latency() = %v, want 20ms", got)
	}
	if got := p.ReceiveCount(); got != 1000 {
		t.Errorf("ReceiveCount() = %d, want 1000", got)
	}
}
