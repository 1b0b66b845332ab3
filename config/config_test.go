package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig_DefaultsValidate 测试默认配置通过校验
func TestNewConfig_DefaultsValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.NodeDB.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 60*time.Second, cfg.Topology.MaintenanceInterval.Duration())
}

// TestTopologyConfig_Validate 测试拓扑配置校验
func TestTopologyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TopologyConfig)
		wantErr bool
	}{
		{"默认值有效", func(c *TopologyConfig) {}, false},
		{"维护间隔为零", func(c *TopologyConfig) { c.MaintenanceInterval = 0 }, true},
		{"维护间隔为负", func(c *TopologyConfig) { c.MaintenanceInterval = Duration(-time.Second) }, true},
		{"路径上限为零", func(c *TopologyConfig) { c.MaxPaths = 0 }, true},
		{"创建速率为负", func(c *TopologyConfig) { c.PathCreateRate = -1 }, true},
		{"限速开启但突发为零", func(c *TopologyConfig) { c.PathCreateBurst = 0 }, true},
		{"不限速时突发可为零", func(c *TopologyConfig) { c.PathCreateRate = 0; c.PathCreateBurst = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTopologyConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNodeDBConfig_Validate 测试节点持久化配置校验
func TestNodeDBConfig_Validate(t *testing.T) {
	cfg := DefaultNodeDBConfig()
	require.NoError(t, cfg.Validate())

	cfg.SeedCount = 0
	assert.Error(t, cfg.Validate())

	// 禁用后不再校验其余字段
	cfg.Enabled = false
	assert.NoError(t, cfg.Validate())
}

// TestMetricsConfig_Validate 测试指标配置校验
func TestMetricsConfig_Validate(t *testing.T) {
	cfg := DefaultMetricsConfig()
	require.NoError(t, cfg.Validate())

	cfg.Namespace = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultMetricsConfig()
	cfg.ReportInterval = 0
	assert.Error(t, cfg.Validate())
}

// TestIdentityConfig_Validate 测试身份配置校验
func TestIdentityConfig_Validate(t *testing.T) {
	cfg := DefaultIdentityConfig()
	require.NoError(t, cfg.Validate())

	// 关闭自动生成且未指定密钥文件应报错
	cfg.AutoGenerate = false
	assert.Error(t, cfg.Validate())

	cfg.KeyFile = "/tmp/identity.key"
	assert.NoError(t, cfg.Validate())
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"topology": {
			"maintenance_interval": "30s",
			"max_paths": 1024,
			"path_create_rate": 100,
			"path_create_burst": 200,
			"emit_events": false
		},
		"storage": {"data_dir": "/var/lib/overlay"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.Topology.MaintenanceInterval.Duration())
	assert.Equal(t, 1024, cfg.Topology.MaxPaths)
	assert.False(t, cfg.Topology.EmitEvents)
	assert.Equal(t, "/var/lib/overlay", cfg.Storage.DataDir)
	// 未出现的字段保持默认值
	assert.True(t, cfg.NodeDB.Enabled)

	// 非法 JSON
	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

// TestDuration_JSON 测试 Duration 的 JSON 往返
func TestDuration_JSON(t *testing.T) {
	type wrapper struct {
		D Duration `json:"d"`
	}

	// 字符串格式
	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"1h30m"}`), &w))
	assert.Equal(t, 90*time.Minute, w.D.Duration())

	// 数字格式（纳秒）
	require.NoError(t, json.Unmarshal([]byte(`{"d":1000000000}`), &w))
	assert.Equal(t, time.Second, w.D.Duration())

	// 序列化输出字符串
	out, err := json.Marshal(wrapper{D: Duration(30 * time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"30s"}`, string(out))

	// 非法字符串
	assert.Error(t, json.Unmarshal([]byte(`{"d":"abc"}`), &w))
}

// TestConfig_ToJSONRoundTrip 测试配置序列化往返
func TestConfig_ToJSONRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.DataDir = "/srv/overlay"
	cfg.Topology.MaxPaths = 2048

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
