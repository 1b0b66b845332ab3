package metrics

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// InstanceID 进程实例标识
//
// 未提供时模块生成随机 UUID。多实例进程（测试、嵌入场景）
// 通过 fx.Supply 注入固定值以便区分日志来源。
type InstanceID string

// Params Metrics 模块依赖参数
type Params struct {
	fx.In

	Topology   interfaces.Topology
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
	InstanceID InstanceID     `optional:"true"`
}

// Result Metrics 模块提供的结果
type Result struct {
	fx.Out

	Collector *TopologyCollector
	Reporter  *Reporter
	Registry  *prometheus.Registry
}

// Module 返回 Metrics Fx 模块
//
// 提供:
//   - *TopologyCollector: 按需采集拓扑快照
//   - *Reporter: 周期性日志上报
//   - *prometheus.Registry: 拓扑与进程指标注册表
//
// 生命周期: OnStart 启动上报循环，OnStop 停止循环。
// 指标采集禁用（Metrics.Enabled = false）时不应装配本模块。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideMetrics 提供指标组件
func ProvideMetrics(p Params) (Result, error) {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	id := string(p.InstanceID)
	if id == "" {
		id = uuid.NewString()
	}

	collector := NewTopologyCollector(p.Topology, id, p.Clock)

	registry, err := NewRegistry(collector, cfg.Namespace)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Collector: collector,
		Reporter:  NewReporter(collector, cfg.ReportInterval.Duration(), p.Clock),
		Registry:  registry,
	}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, reporter *Reporter) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reporter.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			reporter.Stop()
			return nil
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"

	// Name 模块名称
	Name = "metrics"

	// Description 模块描述
	Description = "拓扑指标采集、周期上报与 Prometheus 暴露"
)
