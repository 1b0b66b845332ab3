package config

import (
	"fmt"
	"time"
)

// MetricsConfig 指标采集配置
type MetricsConfig struct {
	// Enabled 是否启用指标采集
	// 默认值: true
	Enabled bool `json:"enabled"`

	// ReportInterval 快照上报间隔
	// 每个周期采集一次拓扑快照并写入日志/Prometheus 指标
	// 默认值: 60s
	ReportInterval Duration `json:"report_interval"`

	// Namespace Prometheus 指标命名空间
	// 默认值: "overlay"
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:        true,
		ReportInterval: Duration(60 * time.Second),
		Namespace:      "overlay",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ReportInterval.Duration() <= 0 {
		return fmt.Errorf("metrics: report_interval must be positive, got %s", c.ReportInterval)
	}
	if c.Namespace == "" {
		return fmt.Errorf("metrics: namespace cannot be empty")
	}
	return nil
}
