package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// Subscription 某一事件类型的订阅端
//
// 事件经 Out 通道交付。通道满时发射方直接丢弃该订阅者的
// 这条事件，消费慢只会丢事件，不会拖住发射方。
type Subscription struct {
	bus       *Bus
	typ       reflect.Type
	out       chan interface{}
	closeOnce sync.Once
	closed    atomic.Bool
}

var _ interfaces.Subscription = (*Subscription)(nil)

// Out 返回事件通道
func (s *Subscription) Out() <-chan interface{} {
	return s.out
}

// Close 退订并关闭通道，可多次调用
//
// 先从总线摘除，再起 goroutine 排空积压事件，避免
// 仍持有通道的发射方卡在半路。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.bus.removeSub(s)

		go func() {
			for range s.out {
			}
		}()
		close(s.out)
	})
	return nil
}
