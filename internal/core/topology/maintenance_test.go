package topology

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-overlay/config"
)

// waitFor 轮询等待条件成立
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// TestMaintenance_TicksWithMockClock 测试 mock 时钟驱动维护
func TestMaintenance_TicksWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	cfg := config.DefaultTopologyConfig()
	cfg.MaintenanceInterval = config.Duration(time.Second)
	mgr := newTestManager(t, WithClock(mock), WithConfig(cfg))

	mt := NewMaintenance(mgr)
	mt.Start()
	defer mt.Stop()

	// 等循环注册到 mock 时钟后推进时间
	time.Sleep(10 * time.Millisecond)
	before := mgr.RankRuns()
	waitFor(t, func() bool {
		mock.Add(time.Second)
		return mgr.RankRuns() > before
	}, "maintenance tick never ran")
}

// TestMaintenance_SweepsThroughTicks 测试跨周期清理陈旧路径
func TestMaintenance_SweepsThroughTicks(t *testing.T) {
	mock := clock.NewMock() // 时间原点 0
	mgr := newTestManager(t, WithClock(mock))

	if _, err := mgr.GetPath(-1, mustAddrPort(t, "192.0.2.1:9993")); err != nil {
		t.Fatalf("GetPath() failed: %v", err)
	}
	if n := mgr.CountPaths(); n != 1 {
		t.Fatalf("CountPaths() = %d, want 1", n)
	}

	mt := NewMaintenance(mgr)
	mt.Start()
	defer mt.Stop()
	time.Sleep(10 * time.Millisecond)

	// 默认维护间隔 60s；第二个周期时路径创建已超过 120s 窗口
	waitFor(t, func() bool {
		mock.Add(time.Minute)
		return mgr.CountPaths() == 0
	}, "stale path never swept by the maintenance loop")
}

// TestMaintenance_StopIdempotent 测试重复停止
func TestMaintenance_StopIdempotent(t *testing.T) {
	mgr := newTestManager(t)

	mt := NewMaintenance(mgr)
	mt.Start()
	mt.Stop()
	mt.Stop()
}

// TestMaintenance_StopWithoutStart 测试未启动即停止
func TestMaintenance_StopWithoutStart(t *testing.T) {
	mgr := newTestManager(t)

	mt := NewMaintenance(mgr)
	mt.Stop() // 不得阻塞
}
