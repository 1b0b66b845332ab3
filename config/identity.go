package config

import (
	"errors"
)

// IdentityConfig 身份配置
//
// 管理节点的身份标识和密钥。go-overlay 统一使用 Ed25519 密钥，
// 节点地址由公钥经记忆硬化函数派生。
type IdentityConfig struct {
	// KeyFile 身份密钥文件路径
	// 留空时落在 "${DataDir}/identity.key"
	KeyFile string `json:"key_file"`

	// AutoGenerate 密钥文件缺失时自动生成新身份
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyFile:      "", // 默认空：由数据目录推导
		AutoGenerate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.KeyFile == "" && !c.AutoGenerate {
		return errors.New("identity: key_file is required when auto_generate is disabled")
	}
	return nil
}
