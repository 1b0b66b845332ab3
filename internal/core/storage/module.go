package storage

import (
	"context"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/storage/engine"
	"github.com/dep2p/go-overlay/internal/core/storage/engine/badger"
	"github.com/dep2p/go-overlay/internal/core/storage/kv"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"go.uber.org/fx"
)

var logger = log.Logger("core/storage")

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Engine engine.InternalEngine
	Config Config
}

// Module 返回 Storage Fx 模块
//
// 提供:
//   - engine.InternalEngine: 已打开的存储引擎
//   - Config: 生效的存储配置
//
// 生命周期: OnStart 启动引擎后台任务，OnStop 关闭引擎。
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 构建存储引擎和配置
func ProvideStorage(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	eng, err := NewEngine(cfg)
	if err != nil {
		return Result{}, err
	}

	return Result{Engine: eng, Config: cfg}, nil
}

// registerLifecycle 挂接引擎的启停钩子
func registerLifecycle(lc fx.Lifecycle, eng engine.InternalEngine) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("启动存储引擎")
			if err := eng.Start(); err != nil {
				logger.Error("存储引擎启动失败", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("关闭存储引擎")
			if err := eng.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			return nil
		},
	})
}

// NewEngine 按配置创建 BadgerDB 存储引擎
func NewEngine(cfg Config) (engine.InternalEngine, error) {
	logger.Debug("打开存储引擎", "path", cfg.Path)
	eng, err := badger.New(cfg.ToEngineConfig())
	if err != nil {
		logger.Error("打开存储引擎失败", "error", err)
		return nil, err
	}
	return eng, nil
}

// NewKVStore 在引擎上创建带前缀的 KV 存储
func NewKVStore(eng engine.InternalEngine, prefix []byte) *kv.Store {
	return kv.New(eng, prefix)
}

// New 以默认配置在 path 打开存储引擎，便于脱离 Fx 使用
func New(path string) (engine.InternalEngine, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	return NewEngine(cfg)
}
