package config

import (
	"fmt"
	"time"
)

// NodeDBConfig 节点持久化配置
//
// 拓扑核心本身只存内存；NodeDB 负责把已知节点与根指定落盘，
// 并在启动时通过公开的注册接口回灌拓扑。
type NodeDBConfig struct {
	// Enabled 是否启用节点持久化
	// 默认值: true
	Enabled bool `json:"enabled"`

	// SeedCount 启动回灌时最多取用的节点记录数
	// 默认值: 256
	SeedCount int `json:"seed_count"`

	// MaxRecordAge 记录最大年龄，超龄记录不参与回灌并在落盘时剔除
	// 默认值: 120h（5 天）
	MaxRecordAge Duration `json:"max_record_age"`
}

// DefaultNodeDBConfig 返回默认节点持久化配置
func DefaultNodeDBConfig() NodeDBConfig {
	return NodeDBConfig{
		Enabled:      true,
		SeedCount:    256,
		MaxRecordAge: Duration(120 * time.Hour),
	}
}

// Validate 验证节点持久化配置
func (c NodeDBConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SeedCount <= 0 {
		return fmt.Errorf("nodedb: seed_count must be positive, got %d", c.SeedCount)
	}
	if c.MaxRecordAge.Duration() <= 0 {
		return fmt.Errorf("nodedb: max_record_age must be positive, got %s", c.MaxRecordAge)
	}
	return nil
}
