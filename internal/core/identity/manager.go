package identity

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/identity")

// ============================================================================
//                              Manager 实现
// ============================================================================

// Manager 身份管理器
//
// 负责本地身份的加载与生成：密钥文件存在则加载，
// 不存在且允许自动生成时生成并落盘。
type Manager struct {
	config config.IdentityConfig
}

// NewManager 创建身份管理器
func NewManager(cfg config.IdentityConfig) *Manager {
	return &Manager{config: cfg}
}

// LoadOrCreate 加载或创建本地身份
//
// 参数:
//   - keyFile: 密钥文件路径（空则使用配置中的路径）
func (m *Manager) LoadOrCreate(keyFile string) (*Identity, error) {
	if keyFile == "" {
		keyFile = m.config.KeyFile
	}

	// 无持久化路径：内存临时身份
	if keyFile == "" {
		logger.Warn("未配置密钥文件，使用内存临时身份")
		return Generate()
	}

	id, err := LoadPrivateKeyPEM(keyFile)
	if err == nil {
		logger.Info("已加载节点身份", "addr", id.Addr(), "keyFile", keyFile)
		return id, nil
	}
	if err != ErrKeyNotFound {
		return nil, fmt.Errorf("加载身份失败: %w", err)
	}

	if !m.config.AutoGenerate {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyFile)
	}

	// 生成新身份并落盘
	id, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return nil, fmt.Errorf("创建密钥目录失败: %w", err)
	}
	if err := SavePrivateKeyPEM(id, keyFile); err != nil {
		return nil, fmt.Errorf("保存身份失败: %w", err)
	}

	logger.Info("已生成节点身份", "addr", id.Addr(), "keyFile", keyFile)
	return id, nil
}
