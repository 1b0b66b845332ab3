package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// defaultSubscriptionBuffer 订阅通道默认缓冲区大小
const defaultSubscriptionBuffer = 16

// ============================================================================
// 总线
// ============================================================================

// Bus 进程内事件总线
//
// 按事件类型维护节点，订阅者和发射器挂在各自类型的节点上。
type Bus struct {
	mu sync.RWMutex

	// nodes 按事件类型索引的分发节点
	nodes map[reflect.Type]*node
}

// node 单个事件类型的分发节点
type node struct {
	lk        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription // 订阅者列表
	nEmitters atomic.Int32    // 发射器引用计数
	keepLast  bool            // 有状态模式下保留最后一个事件
	last      interface{}
	dropCount atomic.Int64 // 丢弃事件计数（慢消费者警告）
}

// NewBus 建一个空总线
func NewBus() *Bus {
	return &Bus{
		nodes: make(map[reflect.Type]*node),
	}
}

var _ interfaces.EventBus = (*Bus)(nil)

// ============================================================================
// 接口实现
// ============================================================================

// Subscribe 订阅某一类型的事件
//
// eventType 必须是事件类型的指针，例如 new(types.EvtPeerRegistered)。
func (b *Bus) Subscribe(eventType interface{}, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error) {
	elemType, err := eventElemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &interfaces.SubscriptionSettings{
		Buffer: defaultSubscriptionBuffer,
	}
	for _, opt := range opts {
		opt(settings)
	}

	sub := &Subscription{
		bus: b,
		typ: elemType,
		out: make(chan interface{}, settings.Buffer),
	}

	b.withNode(elemType, func(n *node) {
		n.sinks = append(n.sinks, sub)

		// 有状态节点补发最后一个事件
		if n.keepLast && n.last != nil {
			select {
			case sub.out <- n.last:
			default:
			}
		}
	})

	return sub, nil
}

// Emitter 取某一类型事件的发射器
//
// eventType 必须是事件类型的指针，例如 new(types.EvtRootAdded)。
func (b *Bus) Emitter(eventType interface{}, opts ...interfaces.EmitterOpt) (interfaces.Emitter, error) {
	elemType, err := eventElemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &interfaces.EmitterSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	var n *node
	b.withNode(elemType, func(nd *node) {
		n = nd
		n.nEmitters.Add(1)

		if settings.Stateful {
			n.keepLast = true
		}
	})

	return &Emitter{
		bus:  b,
		node: n,
		typ:  elemType,
	}, nil
}

// GetAllEventTypes 返回所有已注册的事件类型（零值实例）
func (b *Bus) GetAllEventTypes() []interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	types := make([]interface{}, 0, len(b.nodes))
	for typ := range b.nodes {
		types = append(types, reflect.Zero(typ).Interface())
	}

	return types
}

// ============================================================================
// 节点表维护
// ============================================================================

// eventElemType 校验并解引用事件类型指针
func eventElemType(eventType interface{}) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}

	typ := reflect.TypeOf(eventType)
	if typ == nil {
		return nil, ErrInvalidEventType
	}
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}

	return typ.Elem(), nil
}

// withNode 取到（必要时创建）类型节点并在其锁内执行 cb
//
// 节点锁在总线锁释放前获取，保证节点不会在操作间隙被删除。
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) {
	b.mu.Lock()

	n, ok := b.nodes[typ]
	if !ok {
		n = &node{
			typ:   typ,
			sinks: make([]*Subscription, 0),
		}
		b.nodes[typ] = n
	}

	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
}

// tryDropNode 在没有订阅者和发射器时删除节点
func (b *Bus) tryDropNode(typ reflect.Type) {
	b.mu.Lock()
	n, ok := b.nodes[typ]
	if !ok {
		b.mu.Unlock()
		return
	}

	n.lk.Lock()
	if len(n.sinks) > 0 || n.nEmitters.Load() > 0 {
		n.lk.Unlock()
		b.mu.Unlock()
		return
	}
	n.lk.Unlock()

	delete(b.nodes, typ)
	b.mu.Unlock()
}

// removeSub 把订阅从类型节点上摘除
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	n, ok := b.nodes[sub.typ]
	if !ok {
		b.mu.Unlock()
		return
	}

	n.lk.Lock()
	b.mu.Unlock()

	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}

	shouldDrop := len(n.sinks) == 0 && n.nEmitters.Load() == 0
	n.lk.Unlock()

	if shouldDrop {
		b.tryDropNode(sub.typ)
	}
}

// emit 把事件分发给该类型的所有订阅者
//
// 订阅者缓冲区满时事件被丢弃，不会阻塞发射方。
func (n *node) emit(event interface{}) {
	n.lk.Lock()
	defer n.lk.Unlock()

	if n.keepLast {
		n.last = event
	}

	for _, sub := range n.sinks {
		select {
		case sub.out <- event:
		default:
			dropped := n.dropCount.Add(1)

			// 丢弃计数每满 100 告警一次
			if dropped%100 == 1 {
				logger.Warn("订阅者消费过慢，事件被丢弃",
					"type", n.typ.String(),
					"dropped", dropped)
			}
		}
	}
}
