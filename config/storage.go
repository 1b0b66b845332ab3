package config

import (
	"fmt"
	"path/filepath"
)

// StorageConfig 数据目录配置
//
// 节点的所有持久化内容集中在 DataDir 之下，BadgerDB 库与
// 身份密钥各占一席：
//
//	${DataDir}/
//	├── overlay.db/     BadgerDB 数据库
//	└── identity.key    节点身份密钥（PEM）
type StorageConfig struct {
	// DataDir 数据目录，默认 "./data"
	DataDir string `json:"data_dir"`

	// SyncWrites 每次写入同步落盘，安全性换吞吐
	SyncWrites bool `json:"sync_writes"`
}

// DefaultStorageConfig 返回默认存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:    "./data",
		SyncWrites: false,
	}
}

// Validate 校验存储配置
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("storage: data_dir cannot be empty")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库目录
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "overlay.db")
}

// IdentityKeyPath 返回默认身份密钥路径
func (c *StorageConfig) IdentityKeyPath() string {
	return filepath.Join(c.DataDir, "identity.key")
}
