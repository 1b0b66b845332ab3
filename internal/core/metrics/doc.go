// Package metrics 提供拓扑指标采集与暴露
//
// metrics 模块从拓扑只读视图提取运行读数，提供三种消费方式：
// - 按需快照（TopologyCollector.Snapshot）
// - 周期性结构化日志（Reporter）
// - Prometheus 抓取端点（NewRegistry + promhttp）
//
// # 快速开始
//
//	collector := metrics.NewTopologyCollector(topo, "node-1", nil)
//	snap := collector.Snapshot()
//	fmt.Printf("peers=%d roots=%d\n", snap.PeerCount, snap.RootCount)
//
//	reporter := metrics.NewReporter(collector, time.Minute, nil)
//	reporter.Start()
//	defer reporter.Stop()
//
//	registry, _ := metrics.NewRegistry(collector, "overlay")
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// # 实现
//
// Prometheus 指标走自定义 Collector：抓取时即时读取拓扑计数，
// 不维护预注册的 Gauge 状态。上报循环与拓扑维护执行器同构，
// 注入 mock 时钟可确定性驱动。
//
// # 架构归属
//
// 本模块属于 Core Layer，仅依赖拓扑只读视图（interfaces.Topology）。
package metrics
