package identity

import (
	"path/filepath"
	"testing"

	"github.com/dep2p/go-overlay/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// TestModule 测试模块构造
func TestModule(t *testing.T) {
	assert.NotNil(t, Module())
}

// TestModule_ProvideEphemeral 测试无配置时提供内存身份
func TestModule_ProvideEphemeral(t *testing.T) {
	var id *Identity

	app := fxtest.New(t,
		Module(),
		fx.Populate(&id),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, id)
	assert.True(t, id.Addr().IsValid())
}

// TestModule_ProvideWithConfig 测试从统一配置提供持久化身份
func TestModule_ProvideWithConfig(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Storage.DataDir = dataDir

	var id *Identity
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&id),
	)
	app.RequireStart()
	app.RequireStop()

	require.NotNil(t, id)

	// 密钥应落盘到数据目录
	loaded, err := LoadPrivateKeyPEM(filepath.Join(dataDir, "identity.key"))
	require.NoError(t, err)
	assert.True(t, id.Equal(loaded))
}
