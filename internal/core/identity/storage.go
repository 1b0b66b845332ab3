package identity

import (
	"crypto/ed25519"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// pemTypePrivate 私钥 PEM 块类型
const pemTypePrivate = "ED25519 PRIVATE KEY"

// ============================================================================
//                              私钥持久化
// ============================================================================

// SavePrivateKeyPEM 保存身份私钥到 PEM 文件
//
// 经临时文件 + rename 原子落盘，中途失败不会留下半截文件。
// 权限 0600，仅所有者可读写。
func SavePrivateKeyPEM(id *Identity, path string) error {
	if id.priv == nil {
		return ErrNoPrivateKey
	}

	data := pem.EncodeToMemory(&pem.Block{
		Type:  pemTypePrivate,
		Bytes: id.priv,
	})
	return atomicWriteFile(path, data, 0600)
}

// LoadPrivateKeyPEM 从 PEM 文件加载身份
func LoadPrivateKeyPEM(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypePrivate {
		return nil, ErrInvalidPEM
	}
	if len(block.Bytes) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}

	return FromPrivateKey(block.Bytes)
}

// atomicWriteFile 原子写文件
//
// 先写同目录临时文件并 fsync，再 rename 到目标路径；
// 任一步失败即删除临时文件，目标文件保持原样。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}

	werr := func() error {
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("写入临时文件失败: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			return fmt.Errorf("同步临时文件失败: %w", err)
		}
		if err := tmp.Chmod(perm); err != nil {
			return fmt.Errorf("设置文件权限失败: %w", err)
		}
		return nil
	}()

	if cerr := tmp.Close(); werr == nil && cerr != nil {
		werr = fmt.Errorf("关闭临时文件失败: %w", cerr)
	}
	if werr == nil {
		if err := os.Rename(tmp.Name(), path); err != nil {
			werr = fmt.Errorf("替换目标文件失败: %w", err)
		}
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
	}
	return werr
}
