// Package topology 实现覆盖网络拓扑核心
//
// topology 是 go-overlay 的核心组件，追踪所有已知远端节点、
// 规范化到达它们的物理路径、维护受信根集合并应用操作员配置的
// 物理子网信任/MTU 覆盖。
//
// # 核心结构
//
// 节点注册表（PeerRegistry）：
//   - 地址 → 规范 Peer 实例，每地址全程至多一个
//   - AddPeer 插入即规范化：已存在时返回既有实例、丢弃参数
//   - GetIdentity 对本地地址短路，无需注册即可解析
//
// 路径缓存（PathCache）：
//   - (本地套接字, 远端端点) → 规范 Path 实例
//   - GetPath 双重检查锁：读锁探测、写锁复查后构造，
//     并发查询同一键恰好构造一次
//   - 创建受总数上限与令牌桶限速双重约束
//
// 根集合（RootSet）：
//   - 无序成员集（按身份）+ 延迟升序有序列表（供中继选择）
//   - 二者只在与节点注册表相同的独占区内一起变更，绝不发散
//   - 没有已注册节点的根不进入有序列表，但保留成员资格
//
// 物理路径配置表（PhysicalPathConfigTable）：
//   - 固定容量 16 条，子网前缀 → {受信路径标识, MTU}
//   - 重配置整表重建，绝不原位修改；超容报错且不应用
//   - 入向信任判定要求标识与来源子网同时匹配
//
// # 锁域
//
// peersMu 守护节点注册表、根成员集与有序根列表；pathsMu 只守护
// 路径缓存。两域绝不嵌套。Peer/Path 自身状态为原子量，不经
// 注册表锁序列化。
//
// # 时间模型
//
// 所有时间相关操作接受显式的毫秒时间戳 now；核心自身不读墙钟。
// Maintenance 是唯一的调度者，从注入的 clock.Clock 取时间并按
// 配置间隔调用 DoPeriodicTasks。测试注入 mock 时钟即可确定性
// 重放全部时间行为。
//
// # 快速开始
//
//	local, _ := identity.Generate()
//	mgr, _ := topology.New(local)
//
//	// 注册节点
//	remote, _ := identity.Generate()
//	peer := mgr.AddPeer(topology.NewPeer(remote))
//
//	// 规范路径
//	path, _ := mgr.GetPath(-1, netip.MustParseAddrPort("192.0.2.1:9993"))
//	path.Received(now)
//
//	// 根集合
//	mgr.AddRoot(remote)
//	best := mgr.Root()
//
// # 架构定位
//
// 依赖关系：
//   - 依赖：identity, config, pkg/interfaces, pkg/types
//   - 被依赖：nodedb, metrics, node
package topology
