package topology

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params Topology 模块依赖参数
type Params struct {
	fx.In

	Identity   *identity.Identity
	UnifiedCfg *config.Config      `optional:"true"`
	EventBus   interfaces.EventBus `optional:"true"`
	Clock      clock.Clock         `optional:"true"`
}

// Result Topology 模块输出结果
type Result struct {
	fx.Out

	Manager  *Manager
	Topology interfaces.Topology
}

// Module 返回 Topology Fx 模块
//
// 提供:
//   - *Manager: 完整查询与变更表面
//   - interfaces.Topology: 只读视图（计数与最优根）
//
// 生命周期: OnStart 启动维护循环，OnStop 停止循环并关闭管理器。
func Module() fx.Option {
	return fx.Module("topology",
		fx.Provide(ProvideTopology),
		fx.Provide(NewMaintenance),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideTopology 提供拓扑管理器实例
func ProvideTopology(p Params) (Result, error) {
	opts := make([]Option, 0, 3)
	if p.UnifiedCfg != nil {
		opts = append(opts, WithConfig(p.UnifiedCfg.Topology))
	}
	if p.EventBus != nil {
		opts = append(opts, WithEventBus(p.EventBus))
	}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	mgr, err := New(p.Identity, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Manager: mgr, Topology: mgr}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, mgr *Manager, mt *Maintenance) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			mt.Start()
			logger.Info("拓扑模块已启动", "local", mgr.LocalAddr().String())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			mt.Stop()
			if err := mgr.Close(); err != nil {
				return err
			}
			logger.Info("拓扑模块已停止")
			return nil
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "topology"
	// Description 模块描述
	Description = "拓扑核心模块，维护节点注册表、规范路径缓存、根集合与物理路径信任配置"
)
