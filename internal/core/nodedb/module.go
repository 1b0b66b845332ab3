package nodedb

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dep2p/go-overlay/internal/core/storage/kv"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"go.uber.org/fx"
)

// Params NodeDB 模块依赖参数
type Params struct {
	fx.In

	Engine     engine.InternalEngine
	Topology   *topology.Manager
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Result NodeDB 模块提供的结果
type Result struct {
	fx.Out

	DB     *DB
	Seeder *Seeder
}

// Module 返回 NodeDB Fx 模块
//
// 提供:
//   - *DB: 持久化节点数据库
//   - *Seeder: 拓扑回灌器
//
// 生命周期:
//   - OnStart: 从数据库回灌拓扑
//   - OnStop: 快照拓扑落盘并关闭数据库
func Module() fx.Option {
	return fx.Module("nodedb",
		fx.Provide(ProvideNodeDB),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideNodeDB 提供节点数据库与回灌器
func ProvideNodeDB(p Params) (Result, error) {
	cfg := config.DefaultNodeDBConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.NodeDB
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	var opts []Option
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	db, err := Open(kv.New(p.Engine, storePrefix), cfg, opts...)
	if err != nil {
		return Result{}, err
	}

	return Result{
		DB:     db,
		Seeder: NewSeeder(db, p.Topology, cfg, p.Clock),
	}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, db *DB, seeder *Seeder) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_, err := seeder.Seed()
			return err
		},
		OnStop: func(_ context.Context) error {
			if _, err := seeder.Snapshot(); err != nil {
				logger.Warn("停机快照失败", "error", err)
			}
			return db.Close()
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
	Name = "nodedb"

	// Description 模块描述
	Description = "节点记录持久化与拓扑回灌"
)
