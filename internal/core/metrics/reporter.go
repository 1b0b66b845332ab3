package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Reporter 周期性快照上报器
//
// 按配置的间隔采集一次拓扑快照，写入结构化日志并缓存最近
// 一次结果供 Last 查询。循环结构与拓扑维护执行器一致：
// 注入 mock 时钟即可确定性地驱动上报节奏。
type Reporter struct {
	collector *TopologyCollector
	interval  time.Duration
	clk       clock.Clock

	mu   sync.RWMutex
	last *TopologySnapshot

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewReporter 创建上报器
//
// interval 必须为正；时钟为 nil 时使用系统时钟。
func NewReporter(collector *TopologyCollector, interval time.Duration, clk clock.Clock) *Reporter {
	if clk == nil {
		clk = clock.New()
	}
	return &Reporter{
		collector: collector,
		interval:  interval,
		clk:       clk,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start 启动上报循环
//
// 幂等；循环在独立 goroutine 中运行，由 Stop 终止。
func (r *Reporter) Start() {
	r.startOnce.Do(func() {
		r.started.Store(true)
		go r.loop()
		logger.Info("指标上报已启动", "interval", r.interval.String())
	})
}

// Stop 终止上报循环并等待其退出
//
// 幂等；从未启动时直接返回。
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		if r.started.Load() {
			<-r.done
		}
		logger.Info("指标上报已停止")
	})
}

// Last 返回最近一次采集的快照
//
// 尚未完成任何采集周期时 ok 为 false。
func (r *Reporter) Last() (TopologySnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return TopologySnapshot{}, false
	}
	return *r.last, true
}

func (r *Reporter) loop() {
	defer close(r.done)

	ticker := r.clk.Ticker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.report()
		}
	}
}

// report 采集并记录一次快照
func (r *Reporter) report() {
	s := r.collector.Snapshot()

	r.mu.Lock()
	r.last = &s
	r.mu.Unlock()

	logger.Info("拓扑指标快照",
		"peers", s.PeerCount,
		"paths", s.PathCount,
		"roots", s.RootCount,
		"hasRoot", s.HasRoot,
		"bestRoot", s.BestRoot,
		"bestRootLatency", s.BestRootLatency.String(),
		"rankRuns", s.RankRuns,
	)
}
