// Package eventbus 提供进程内的类型化事件总线
//
// 拓扑层的状态变化（节点注册、根列表重排、路径学习等）都经由
// 本总线广播，订阅方按事件类型收听，彼此不感知。
//
// 特性：
//   - 以事件类型为键的类型安全分发
//   - 每个订阅独立缓冲，慢消费者只丢自己的事件
//   - 发射器引用计数，类型节点自动回收
//   - Stateful 发射器向晚到的订阅者补发最后一个事件
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//
//	sub, _ := bus.Subscribe(new(types.EvtPeerRegistered))
//	defer sub.Close()
//
//	go func() {
//	    for evt := range sub.Out() {
//	        e := evt.(types.EvtPeerRegistered)
//	        // 处理事件
//	    }
//	}()
//
//	em, _ := bus.Emitter(new(types.EvtPeerRegistered))
//	defer em.Close()
//	em.Emit(types.EvtPeerRegistered{...})
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(bus interfaces.EventBus) {
//	        sub, _ := bus.Subscribe(new(types.EvtRootAdded))
//	        // ...
//	    }),
//	)
//
// # 架构定位
//
// Core Layer 最底层，不依赖其他核心模块；topology、metrics
// 与根包 node 都通过它解耦。
//
// # 并发模型
//
// 总线级 RWMutex 管类型节点表，节点级 Mutex 管订阅列表，
// 发射器引用计数走 atomic。订阅与发射器的 Close 均幂等。
//
// 接口定义见 pkg/interfaces/eventbus.go，事件类型见
// pkg/types/events.go。
package eventbus
