package metrics

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// TopologySnapshot 单次拓扑指标快照
//
// 快照是采集时刻的一致性读数，字段间不保证跨快照可比：
// 计数来自各自的锁区，BestRoot 来自当前延迟排名。
type TopologySnapshot struct {
	// Timestamp 采集时刻（Unix 毫秒）
	Timestamp int64 `json:"timestamp"`

	// InstanceID 进程实例标识
	InstanceID string `json:"instance_id"`

	// LocalAddr 本地节点地址（十六进制）
	LocalAddr string `json:"local_addr"`

	// PeerCount 已注册节点数
	PeerCount int `json:"peer_count"`

	// PathCount 路径缓存中的规范路径数
	PathCount int `json:"path_count"`

	// RootCount 根成员集大小
	RootCount int `json:"root_count"`

	// HasRoot 是否存在可达根
	HasRoot bool `json:"has_root"`

	// BestRoot 最优根地址（无可达根时为空）
	BestRoot string `json:"best_root,omitempty"`

	// BestRootLatency 最优根的测得延迟（未测得为 0）
	BestRootLatency time.Duration `json:"best_root_latency_ns,omitempty"`

	// RankRuns 根列表累计重建次数
	RankRuns uint64 `json:"rank_runs"`

	// LastRankTime 最近一次显式重排时间（Unix 毫秒，0 = 尚未重排）
	LastRankTime int64 `json:"last_rank_time"`
}

// rankStats 根排序统计表面
//
// 拓扑管理器在只读视图之外额外暴露的统计方法；
// 实现缺失时相关快照字段保持零值。
type rankStats interface {
	RankRuns() uint64
	LastRankTime() int64
}

// TopologyCollector 拓扑快照采集器
//
// 无状态：每次 Snapshot 直接读取拓扑当前计数。
// 周期性日志由 Reporter 驱动，Prometheus 抓取经
// 注册表在抓取时即时采集。
type TopologyCollector struct {
	topo       interfaces.Topology
	instanceID string
	clk        clock.Clock
}

// NewTopologyCollector 创建拓扑快照采集器
func NewTopologyCollector(topo interfaces.Topology, instanceID string, clk clock.Clock) *TopologyCollector {
	if clk == nil {
		clk = clock.New()
	}
	return &TopologyCollector{
		topo:       topo,
		instanceID: instanceID,
		clk:        clk,
	}
}

// InstanceID 返回进程实例标识
func (c *TopologyCollector) InstanceID() string {
	return c.instanceID
}

// Snapshot 采集一次当前拓扑读数
func (c *TopologyCollector) Snapshot() TopologySnapshot {
	s := TopologySnapshot{
		Timestamp:  c.clk.Now().UnixMilli(),
		InstanceID: c.instanceID,
		LocalAddr:  c.topo.LocalAddr().String(),
		PeerCount:  c.topo.CountPeers(),
		PathCount:  c.topo.CountPaths(),
		RootCount:  c.topo.CountRoots(),
	}

	if addr, latency, ok := c.topo.BestRoot(); ok {
		s.HasRoot = true
		s.BestRoot = addr.String()
		s.BestRootLatency = latency
	}

	if rs, ok := c.topo.(rankStats); ok {
		s.RankRuns = rs.RankRuns()
		s.LastRankTime = rs.LastRankTime()
	}

	return s
}
