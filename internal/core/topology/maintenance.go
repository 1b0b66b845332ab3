package topology

import (
	"sync"
	"sync/atomic"
	"time"
)

// Maintenance 周期性维护执行器
//
// 整个核心中唯一的调度者：按配置的间隔从管理器的时钟取当前
// 时间戳并调用 DoPeriodicTasks。核心其余部分不自行调度、
// 不读时钟，注入 mock 时钟即可确定性地驱动全部时间行为。
type Maintenance struct {
	mgr      *Manager
	interval time.Duration

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewMaintenance 创建维护执行器
//
// 时钟与间隔取自管理器自身的配置，与核心共用同一时间源。
func NewMaintenance(mgr *Manager) *Maintenance {
	return &Maintenance{
		mgr:      mgr,
		interval: mgr.cfg.MaintenanceInterval.Duration(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 启动维护循环
//
// 幂等；循环在独立 goroutine 中运行，由 Stop 终止。
func (mt *Maintenance) Start() {
	mt.startOnce.Do(func() {
		mt.started.Store(true)
		go mt.loop()
		logger.Info("维护循环已启动", "interval", mt.interval.String())
	})
}

// Stop 终止维护循环并等待其退出
//
// 幂等；从未启动时直接返回。
func (mt *Maintenance) Stop() {
	mt.stopOnce.Do(func() {
		close(mt.stop)
		if mt.started.Load() {
			<-mt.done
		}
		logger.Info("维护循环已停止")
	})
}

func (mt *Maintenance) loop() {
	defer close(mt.done)

	ticker := mt.mgr.clk.Ticker(mt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-mt.stop:
			return
		case <-ticker.C:
			mt.mgr.DoPeriodicTasks(mt.mgr.clk.Now().UnixMilli())
		}
	}
}
