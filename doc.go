// Package overlay 提供覆盖网节点的拓扑核心
//
// go-overlay 维护一个 P2P 覆盖网节点的本地世界观：哪些对端
// 存在、到达它们的物理路径、哪些节点是受信根，以及跨重启的
// 节点记录持久化。它不做网络 I/O——收发包的传输层把观测喂给
// 本库，从这里读回规范实例与路由判定。
//
// # 核心概念
//
// go-overlay 围绕三个核心概念构建：
//
//   - Node: 覆盖网节点，用户交互的主入口
//   - Topology: 规范化核心——节点注册表、路径缓存、根集合
//   - NodeDB: 节点记录持久化，重启后回灌拓扑
//
// # 快速开始
//
//	import "github.com/dep2p/go-overlay"
//
//	// 1. 建节点并启动
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
//	// 2. 把握手成功的对端注册进拓扑
//	addr, err := node.RegisterPeer(peerPub)
//	node.RecordPeerLatency(addr, rtt)
//
//	// 3. 指定受信根并读取路由判定
//	node.AddRoot(rootPub)
//	relay, ok := node.RelayTo(addr)
//
// # 文件布局
//
// 根包文件按职责划分：
//
//	overlay/
//	├── doc.go                # 包文档
//	├── version.go            # 版本常量
//	├── node.go               # Node 结构、New、Start/Close、信息读取
//	├── node_topology.go      # 拓扑转发表面（注册、根管理、物理路径）
//	├── options.go            # WithXxx 选项
//	├── fx.go                 # Fx 应用装配
//	└── errors.go             # 错误定义
//
// # 软件架构
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  1. API Layer                                               │
//	│     overlay.New(), Node 门面                                │
//	├─────────────────────────────────────────────────────────────┤
//	│  2. Core Layer                                              │
//	│     Topology, NodeDB, Metrics                               │
//	│     规范化核心、持久化、指标采集                              │
//	├─────────────────────────────────────────────────────────────┤
//	│  3. Infra Layer                                             │
//	│     Identity, EventBus, Storage                             │
//	│     身份派生、事件总线、存储引擎                              │
//	└─────────────────────────────────────────────────────────────┘
//
// # 版本
//
// 当前版本: v0.1.0
//
// 更多信息请访问: https://github.com/dep2p/go-overlay
package overlay
