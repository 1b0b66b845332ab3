package eventbus

import (
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"go.uber.org/fx"
)

// Result Fx 模块输出
type Result struct {
	fx.Out

	EventBus interfaces.EventBus
}

// Module 返回 EventBus Fx 模块
//
// 总线无生命周期钩子: 没有后台任务，订阅随使用方退出而关闭。
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 构建 EventBus 实例
func ProvideEventBus() Result {
	return Result{EventBus: NewBus()}
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "进程内事件总线，按类型分发拓扑状态变化"
)
