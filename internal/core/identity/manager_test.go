package identity

import (
	"path/filepath"
	"testing"

	"github.com/dep2p/go-overlay/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManager_LoadOrCreate 测试生成后再次加载得到同一身份
func TestManager_LoadOrCreate(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "identity.key")
	m := NewManager(config.IdentityConfig{AutoGenerate: true})

	created, err := m.LoadOrCreate(keyFile)
	require.NoError(t, err)
	assert.True(t, created.Addr().IsValid())

	loaded, err := m.LoadOrCreate(keyFile)
	require.NoError(t, err)
	assert.True(t, created.Equal(loaded))
}

// TestManager_NoAutoGenerate 测试禁用自动生成时缺失密钥报错
func TestManager_NoAutoGenerate(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "identity.key")
	m := NewManager(config.IdentityConfig{AutoGenerate: false, KeyFile: keyFile})

	_, err := m.LoadOrCreate("")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// TestManager_EphemeralIdentity 测试无密钥文件路径时的内存身份
func TestManager_EphemeralIdentity(t *testing.T) {
	m := NewManager(config.IdentityConfig{AutoGenerate: true})

	a, err := m.LoadOrCreate("")
	require.NoError(t, err)
	b, err := m.LoadOrCreate("")
	require.NoError(t, err)

	// 每次调用都生成新身份
	assert.False(t, a.Equal(b))
}
