// Package interfaces 定义 go-overlay 公共接口
//
// 本文件定义 EventBus 接口。拓扑核心通过事件总线对外广播
// 节点注册、根集合变更与路径学习等状态变化，订阅方以事件
// 类型的指针订阅，例如 new(types.EvtPeerRegistered)。
package interfaces

// EventBus 事件总线接口
//
// 按事件类型路由的进程内发布/订阅。同一类型可以有多个
// 订阅者与多个发射器；分发不阻塞发射方。
type EventBus interface {
	// Subscribe 按类型订阅事件
	//
	// eventType 为事件类型的指针；返回的订阅经 Out 接收事件，
	// 不再使用时必须 Close。
	Subscribe(eventType interface{}, opts ...SubscriptionOpt) (Subscription, error)

	// Emitter 取指定类型的发射器
	//
	// 不再使用时必须 Close，以便总线回收类型节点。
	Emitter(eventType interface{}, opts ...EmitterOpt) (Emitter, error)

	// GetAllEventTypes 返回所有已注册事件类型的零值实例
	GetAllEventTypes() []interface{}
}

// Subscription 事件订阅
type Subscription interface {
	// Out 返回接收事件的通道，订阅关闭后通道关闭
	Out() <-chan interface{}

	// Close 退订并排空积压事件
	Close() error
}

// Emitter 事件发射器
type Emitter interface {
	// Emit 发射事件，事件类型须与创建时指定的一致
	Emit(event interface{}) error

	// Close 归还发射器，引用计数归零后类型节点被回收
	Close() error
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings)

// EmitterOpt 发射器选项
type EmitterOpt func(*EmitterSettings)

// SubscriptionSettings 订阅设置，由总线实现读取
type SubscriptionSettings struct {
	// Buffer 订阅通道缓冲区大小
	Buffer int
}

// EmitterSettings 发射器设置，由总线实现读取
type EmitterSettings struct {
	// Stateful 保留最后一个事件并补发给后续订阅者
	Stateful bool
}

// BufSize 指定订阅通道容量
//
// 缓冲区满时后续事件对该订阅者丢弃；突发事件多的订阅方
// 应配置更大的缓冲。
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Buffer = size
	}
}

// Stateful 让发射器保留最后一条事件
//
// 有状态类型的新订阅者立即收到该类型最近一次发射的事件，
// 用于"当前最优根"这类订阅时即需要现值的状态量。
func Stateful() EmitterOpt {
	return func(s *EmitterSettings) {
		s.Stateful = true
	}
}
