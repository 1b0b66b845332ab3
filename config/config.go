// Package config 聚合 go-overlay 各组件的配置
//
// 顶层 Config 按组件拆成子配置，子配置各占一个文件，
// 整体可与 JSON 互转。
//
// 用法：
//
//	cfg := config.NewConfig()
//	cfg.Topology.MaxPaths = 8192
//
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"
	"fmt"
)

// Config go-overlay 完整配置
//
// 按组件划分：Identity 身份与密钥，Topology 拓扑核心
// （维护周期、路径预算），Storage 数据目录，NodeDB 节点
// 持久化，Metrics 指标采集。
type Config struct {
	// Identity 身份与密钥
	Identity IdentityConfig `json:"identity"`

	// Topology 拓扑核心配置
	Topology TopologyConfig `json:"topology"`

	// Storage 数据目录与引擎
	Storage StorageConfig `json:"storage"`

	// NodeDB 节点持久化配置
	NodeDB NodeDBConfig `json:"nodedb"`

	// Metrics 指标采集配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 返回各组件默认值组成的配置
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Topology: DefaultTopologyConfig(),
		Storage:  DefaultStorageConfig(),
		NodeDB:   DefaultNodeDBConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 逐一校验子配置，命中第一个错误即返回
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Topology.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.NodeDB.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现在 JSON 中的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 序列化配置为 JSON
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
