package identity

import (
	"github.com/dep2p/go-overlay/config"
	"go.uber.org/fx"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params Identity 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Identity 模块输出结果
type Result struct {
	fx.Out

	Identity *Identity
}

// Module 返回 Identity Fx 模块
//
// 提供:
//   - *Identity: 本地节点身份（加载或生成）
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}

// ProvideIdentity 提供本地身份实例
func ProvideIdentity(p Params) (Result, error) {
	cfg := config.DefaultIdentityConfig()
	keyFile := ""
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Identity
		keyFile = cfg.KeyFile
		if keyFile == "" {
			// 未显式指定时落到数据目录
			keyFile = p.UnifiedCfg.Storage.IdentityKeyPath()
		}
	}

	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	id, err := NewManager(cfg).LoadOrCreate(keyFile)
	if err != nil {
		return Result{}, err
	}

	return Result{Identity: id}, nil
}
