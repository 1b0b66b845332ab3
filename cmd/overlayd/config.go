package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/dep2p/go-overlay/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名（均使用 OVERLAY_ 前缀）
const (
	envPrefix = "OVERLAY_"

	envDataDir         = "DATA_DIR"
	envIdentityKeyFile = "IDENTITY_KEY_FILE"
	envMetricsAddr     = "METRICS_ADDR"
	envLogFile         = "LOG_FILE"
	envNodeDBEnabled   = "NODEDB_ENABLED"
	envMetricsEnabled  = "METRICS_ENABLED"
)

// loadConfigFile 从 JSON 文件加载配置
//
// 文件内容覆盖在默认配置之上，未出现的字段保持默认值。
func loadConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
func applyEnvOverrides(cfg *config.Config, runtime *runtimeConfig) {
	// OVERLAY_DATA_DIR
	if v := os.Getenv(envPrefix + envDataDir); v != "" {
		cfg.Storage.DataDir = v
	}

	// OVERLAY_IDENTITY_KEY_FILE
	if v := os.Getenv(envPrefix + envIdentityKeyFile); v != "" {
		cfg.Identity.KeyFile = v
	}

	// OVERLAY_NODEDB_ENABLED
	if v := os.Getenv(envPrefix + envNodeDBEnabled); v != "" {
		cfg.NodeDB.Enabled = parseBool(v)
	}

	// OVERLAY_METRICS_ENABLED
	if v := os.Getenv(envPrefix + envMetricsEnabled); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	// OVERLAY_METRICS_ADDR
	if v := os.Getenv(envPrefix + envMetricsAddr); v != "" {
		runtime.metricsAddr = v
	}

	// OVERLAY_LOG_FILE
	if v := os.Getenv(envPrefix + envLogFile); v != "" {
		runtime.logFile = v
	}
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
