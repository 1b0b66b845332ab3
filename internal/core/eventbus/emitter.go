package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// ============================================================================
// Emitter 实现
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	node      *node
	typ       reflect.Type
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ interfaces.Emitter = (*Emitter)(nil)

// Emit 向所有订阅者发射事件
func (e *Emitter) Emit(event interface{}) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}

	e.node.emit(event)

	return nil
}

// Close 关闭发射器
//
// 引用计数归零后节点随之回收。
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)

		if e.node.nEmitters.Add(-1) == 0 {
			e.bus.tryDropNode(e.typ)
		}
	})

	return nil
}
