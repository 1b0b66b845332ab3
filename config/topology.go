package config

import (
	"fmt"
	"time"
)

// TopologyConfig 拓扑核心配置
//
// 控制拓扑维护节奏与路径缓存的资源预算。物理路径配置表的容量
// 是编译期常量，不在此配置。
type TopologyConfig struct {
	// MaintenanceInterval 周期性维护间隔
	// 每个周期执行一次根节点重排与陈旧路径清理
	// 默认值: 60s
	MaintenanceInterval Duration `json:"maintenance_interval"`

	// MaxPaths 路径缓存的最大规范路径数
	// 超出后新路径创建返回资源耗尽错误
	// 默认值: 16384
	MaxPaths int `json:"max_paths"`

	// PathCreateRate 每秒允许创建的新路径数（0 = 不限制）
	//
	// 防御路径缓存泛洪：未知来源的每个新端点都会触发一次
	// 路径构造，限速保证单个泛洪源无法挤占缓存。
	// 默认值: 512
	PathCreateRate float64 `json:"path_create_rate"`

	// PathCreateBurst 路径创建突发容量
	// 默认值: 1024
	PathCreateBurst int `json:"path_create_burst"`

	// EmitEvents 是否发射拓扑事件
	// 默认值: true
	EmitEvents bool `json:"emit_events"`
}

// DefaultTopologyConfig 返回默认拓扑配置
func DefaultTopologyConfig() TopologyConfig {
	return TopologyConfig{
		MaintenanceInterval: Duration(60 * time.Second),
		MaxPaths:            16384,
		PathCreateRate:      512,
		PathCreateBurst:     1024,
		EmitEvents:          true,
	}
}

// Validate 验证拓扑配置
func (c TopologyConfig) Validate() error {
	if c.MaintenanceInterval.Duration() <= 0 {
		return fmt.Errorf("topology: maintenance_interval must be positive, got %s", c.MaintenanceInterval)
	}
	if c.MaxPaths <= 0 {
		return fmt.Errorf("topology: max_paths must be positive, got %d", c.MaxPaths)
	}
	if c.PathCreateRate < 0 {
		return fmt.Errorf("topology: path_create_rate cannot be negative, got %g", c.PathCreateRate)
	}
	if c.PathCreateRate > 0 && c.PathCreateBurst < 1 {
		return fmt.Errorf("topology: path_create_burst must be at least 1 when rate limiting is on, got %d", c.PathCreateBurst)
	}
	return nil
}
