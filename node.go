package overlay

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("overlay")

// ============================================================================
//                              生命周期
// ============================================================================

// NodeState 节点所处的生命周期阶段
type NodeState int

const (
	// NodeStateInit 已创建，未启动
	NodeStateInit NodeState = iota

	// NodeStateStarting 启动中
	NodeStateStarting

	// NodeStateRunning 运行中
	NodeStateRunning

	// NodeStateStopping 关闭中
	NodeStateStopping

	// NodeStateStopped 已关闭
	NodeStateStopped
)

// String 返回阶段名称
func (s NodeState) String() string {
	switch s {
	case NodeStateInit:
		return "init"
	case NodeStateStarting:
		return "starting"
	case NodeStateRunning:
		return "running"
	case NodeStateStopping:
		return "stopping"
	case NodeStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// 生命周期超时
const (
	// startTimeout 启动超时（Fx App Start）
	startTimeout = 30 * time.Second

	// shutdownTimeout 关闭超时（Fx App Stop）
	shutdownTimeout = 30 * time.Second
)

// ============================================================================
//                              Node 门面
// ============================================================================

// Node 覆盖网节点
//
// Node 是使用 go-overlay 的主入口：一个门面，聚合拓扑核心、
// 节点数据库与指标采集，并以公共类型转发拓扑的查询与变更表面。
//
// 分层（自上而下）：
//   - API Layer: Node（本层）
//   - Core Layer: Topology, NodeDB, Metrics
//   - Infra Layer: Identity, EventBus, Storage
//
// 用法：
//
//	node, err := overlay.New(
//	    overlay.WithDataDir("/var/lib/overlay"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	// 注册已握手的对端并指定根
//	addr, _ := node.RegisterPeer(peerPub)
//	node.AddRoot(rootPub)
//
//	// 读取拓扑读数
//	view := node.Topology()
//	fmt.Println(view.CountPeers(), view.CountRoots())
type Node struct {
	// instanceID 进程实例标识
	instanceID string

	// app 持有全部组件的 Fx 应用
	app *fx.App

	// Fx 装配期注入的组件
	identity *identity.Identity
	mgr      *topology.Manager
	topo     interfaces.Topology
	bus      interfaces.EventBus
	clk      clock.Clock
	registry *prometheus.Registry

	// 状态机，mu 保护
	mu      sync.RWMutex
	state   NodeState
	started bool
	closed  bool
}

// New 组装一个新节点
//
// 装配在此完成（身份加载、数据库打开），后台循环尚未运行；
// 调用 Start 进入运行状态。
func New(opts ...Option) (*Node, error) {
	o := newNodeOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.resolveConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	node := &Node{
		instanceID: uuid.NewString(),
		state:      NodeStateInit,
	}
	node.app = buildApp(cfg, o, node)
	if err := node.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	return node, nil
}

// Start 将节点投入运行
//
// 拉起全部后台循环：存储引擎 GC、拓扑维护、数据库回灌、
// 指标上报。只能成功启动一次。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	n.state = NodeStateStarting
	logger.Info("正在启动节点", "addr", n.identity.Addr().String())

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		n.state = NodeStateInit
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("start: %w", err)
	}

	n.state = NodeStateRunning
	n.started = true
	logger.Info("节点已启动",
		"addr", n.identity.Addr().String(),
		"instance", n.instanceID)
	return nil
}

// Close 停机并释放全部资源
//
// 停机顺序为启动的反向：指标上报停止、拓扑快照落盘并关闭
// 数据库、维护循环停止、存储引擎关闭。幂等；关闭后节点
// 不可重新启动。
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.state = NodeStateStopping
	n.closed = true
	logger.Info("正在关闭节点")

	var err error
	if n.started {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = n.app.Stop(ctx)
		n.started = false
	}

	n.state = NodeStateStopped
	if err != nil {
		logger.Error("关闭节点失败", "error", err)
		return fmt.Errorf("stop: %w", err)
	}
	logger.Info("节点已关闭")
	return nil
}

// ensureRunning 校验节点处于运行状态
func (n *Node) ensureRunning() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}
	return nil
}

// ============================================================================
//                              信息读取
// ============================================================================

// State 返回当前生命周期阶段
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// InstanceID 返回进程实例标识
func (n *Node) InstanceID() string {
	return n.instanceID
}

// LocalAddr 返回本地节点地址
func (n *Node) LocalAddr() types.Address {
	return n.identity.Addr()
}

// Identity 返回本地身份公钥
func (n *Node) Identity() ed25519.PublicKey {
	return n.identity.PublicKey()
}

// Topology 返回拓扑只读视图
func (n *Node) Topology() interfaces.Topology {
	return n.topo
}

// EventBus 返回事件总线
//
// 订阅 types.Evt* 事件可观察节点注册、根变更与路径学习。
func (n *Node) EventBus() interfaces.EventBus {
	return n.bus
}

// MetricsRegistry 返回 Prometheus 指标注册表
//
// 指标采集禁用时为 nil。注册表可直接交给 promhttp 暴露。
func (n *Node) MetricsRegistry() *prometheus.Registry {
	return n.registry
}
