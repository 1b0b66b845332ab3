package overlay

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/eventbus"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/nodedb"
	"github.com/dep2p/go-overlay/internal/core/storage"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// buildApp 构建 Fx 应用
//
// 组装内部模块，采用条件加载策略：
//   - 核心模块：必须加载（EventBus → Identity → Topology）
//   - 条件模块：根据配置加载（Storage+NodeDB, Metrics）
//
// 加载顺序即停机的反向顺序：NodeDB 的停机快照先于拓扑关闭、
// 先于存储引擎关闭执行。
func buildApp(cfg *config.Config, o *nodeOptions, node *Node) *fx.App {
	modules := []fx.Option{
		// 配置进图
		fx.Supply(cfg),

		// 统一时钟：全部组件共用同一时间源
		fx.Provide(func() clock.Clock {
			if o.clk != nil {
				return o.clk
			}
			return clock.New()
		}),

		// 总线最先装配，后续模块的可选事件依赖都指向它
		eventbus.Module(),
	}

	// 身份：直接注入或从密钥文件加载
	if o.key != nil {
		key := o.key
		modules = append(modules, fx.Provide(func() (*identity.Identity, error) {
			return identity.FromPrivateKey(key)
		}))
	} else {
		modules = append(modules, identity.Module())
	}

	// 拓扑核心（必须）
	modules = append(modules, topology.Module())

	// 持久化（条件加载）：节点数据库及其存储引擎
	if cfg.NodeDB.Enabled {
		modules = append(modules,
			storage.Module(),
			nodedb.Module(),
		)
	}

	// 指标采集（条件加载）
	if cfg.Metrics.Enabled {
		modules = append(modules,
			fx.Supply(metrics.InstanceID(node.instanceID)),
			metrics.Module(),
		)
	}

	// Node 组件注入
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// Fx 自身的日志静音，不混入使用方日志
	modules = append(modules,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...)
}

// nodeInjectParams 回填到 Node 上的组件集合
type nodeInjectParams struct {
	fx.In

	// 必备组件
	Identity *identity.Identity
	Manager  *topology.Manager
	Topology interfaces.Topology
	EventBus interfaces.EventBus
	Clock    clock.Clock

	// 模块未装配时为 nil
	Registry *prometheus.Registry `optional:"true"`
}

// injectNodeComponents 生成把组件回填到 Node 的 Invoke 函数
func injectNodeComponents(node *Node) interface{} {
	return func(p nodeInjectParams) {
		node.identity = p.Identity
		node.mgr = p.Manager
		node.topo = p.Topology
		node.bus = p.EventBus
		node.clk = p.Clock
		node.registry = p.Registry
	}
}
