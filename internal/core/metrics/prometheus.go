package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// promCollector 把拓扑读数暴露为 Prometheus 指标
//
// 自定义 Collector 而非预注册的 Gauge 向量：每次抓取即时
// 读取拓扑当前计数，序列随数据源出现与消失，无需手工维护。
type promCollector struct {
	collector *TopologyCollector

	peersDesc           *prometheus.Desc
	pathsDesc           *prometheus.Desc
	rootsDesc           *prometheus.Desc
	hasRootDesc         *prometheus.Desc
	bestRootLatencyDesc *prometheus.Desc
	rankRunsDesc        *prometheus.Desc
}

var _ prometheus.Collector = (*promCollector)(nil)

// newPromCollector 创建拓扑指标 Collector
//
// 全部序列携带 node 常量标签（本地地址），同一抓取端点
// 聚合多个实例时可据此区分。
func newPromCollector(collector *TopologyCollector, namespace string) *promCollector {
	constLabels := prometheus.Labels{
		"node": collector.topo.LocalAddr().String(),
	}
	return &promCollector{
		collector: collector,
		peersDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "peers"),
			"Number of registered peers.",
			nil,
			constLabels),
		pathsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "paths"),
			"Number of canonical paths in the path cache.",
			nil,
			constLabels),
		rootsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "roots"),
			"Number of designated roots.",
			nil,
			constLabels),
		hasRootDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "has_root"),
			"Whether a reachable root is currently known (0 or 1).",
			nil,
			constLabels),
		bestRootLatencyDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "best_root_latency_seconds"),
			"Measured latency to the best root in seconds.",
			nil,
			constLabels),
		rankRunsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "topology", "root_rank_runs_total"),
			"Total number of root ranking passes.",
			nil,
			constLabels),
	}
}

// Describe 实现 prometheus.Collector
func (c *promCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.peersDesc
	ch <- c.pathsDesc
	ch <- c.rootsDesc
	ch <- c.hasRootDesc
	ch <- c.bestRootLatencyDesc
	ch <- c.rankRunsDesc
}

// Collect 实现 prometheus.Collector
func (c *promCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.collector.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.peersDesc, prometheus.GaugeValue, float64(s.PeerCount))
	ch <- prometheus.MustNewConstMetric(c.pathsDesc, prometheus.GaugeValue, float64(s.PathCount))
	ch <- prometheus.MustNewConstMetric(c.rootsDesc, prometheus.GaugeValue, float64(s.RootCount))

	hasRoot := 0.0
	if s.HasRoot {
		hasRoot = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.hasRootDesc, prometheus.GaugeValue, hasRoot)
	ch <- prometheus.MustNewConstMetric(c.bestRootLatencyDesc, prometheus.GaugeValue, s.BestRootLatency.Seconds())
	ch <- prometheus.MustNewConstMetric(c.rankRunsDesc, prometheus.CounterValue, float64(s.RankRuns))
}

// NewRegistry 创建拓扑指标注册表
//
// 注册拓扑 Collector 以及 Go 运行时与进程采集器；
// 返回的注册表可直接交给 promhttp 暴露抓取端点。
func NewRegistry(collector *TopologyCollector, namespace string) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(newPromCollector(collector, namespace)); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return reg, nil
}
