package eventbus

import (
	"errors"
	"testing"
	"time"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// rootEvent 构造一个根节点加入事件
func rootEvent(addr uint64) types.EvtRootAdded {
	return types.EvtRootAdded{
		BaseEvent: types.NewBaseEvent(types.EventTypeRootAdded),
		Addr:      types.AddressFromUint64(addr),
	}
}

// TestEmitter_Delivery 测试发射的事件到达订阅者
func TestEmitter_Delivery(t *testing.T) {
	bus := NewBus()

	sub, _ := bus.Subscribe(new(types.EvtRootAdded))
	defer sub.Close()

	em, err := bus.Emitter(new(types.EvtRootAdded))
	if err != nil {
		t.Fatalf("Emitter() failed: %v", err)
	}
	defer em.Close()

	var _ interfaces.Emitter = em

	if err := em.Emit(rootEvent(0xdeadbeef01)); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	select {
	case evt := <-sub.Out():
		got := evt.(types.EvtRootAdded)
		if got.Addr != types.AddressFromUint64(0xdeadbeef01) {
			t.Errorf("Addr = %s, want %s", got.Addr, types.AddressFromUint64(0xdeadbeef01))
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for root event")
	}
}

// TestEmitter_CloseIdempotent 测试重复关闭发射器
func TestEmitter_CloseIdempotent(t *testing.T) {
	bus := NewBus()

	em, _ := bus.Emitter(new(types.EvtRootAdded))
	for i := 0; i < 3; i++ {
		if err := em.Close(); err != nil {
			t.Errorf("Close() #%d failed: %v", i+1, err)
		}
	}
}

// TestEmitter_EmitAfterClose 测试关闭后发射返回错误
func TestEmitter_EmitAfterClose(t *testing.T) {
	bus := NewBus()

	em, _ := bus.Emitter(new(types.EvtRootAdded))
	em.Close()

	if err := em.Emit(rootEvent(1)); !errors.Is(err, ErrEmitterClosed) {
		t.Errorf("Emit() after Close() = %v, want ErrEmitterClosed", err)
	}
}

// TestEmitter_SharedType 测试同一事件类型的多个发射器汇入同一订阅
func TestEmitter_SharedType(t *testing.T) {
	bus := NewBus()

	sub, _ := bus.Subscribe(new(types.EvtRootAdded), interfaces.BufSize(4))
	defer sub.Close()

	em1, _ := bus.Emitter(new(types.EvtRootAdded))
	defer em1.Close()
	em2, _ := bus.Emitter(new(types.EvtRootAdded))
	defer em2.Close()

	em1.Emit(rootEvent(0x01))
	em2.Emit(rootEvent(0x02))

	seen := map[uint64]bool{}
	deadline := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case evt := <-sub.Out():
			seen[evt.(types.EvtRootAdded).Addr.Uint64()] = true
		case <-deadline:
			t.Fatalf("received %d distinct events, want 2", len(seen))
		}
	}

	if !seen[0x01] || !seen[0x02] {
		t.Errorf("seen = %v, want events from both emitters", seen)
	}
}

// TestEmitter_TypeCleanup 测试最后一个发射器关闭后类型节点回收
func TestEmitter_TypeCleanup(t *testing.T) {
	bus := NewBus()

	em, _ := bus.Emitter(new(types.EvtRootAdded))
	if got := len(bus.GetAllEventTypes()); got != 1 {
		t.Fatalf("GetAllEventTypes() = %d types, want 1", got)
	}

	em.Close()
	if got := len(bus.GetAllEventTypes()); got != 0 {
		t.Errorf("GetAllEventTypes() after close = %d types, want 0", got)
	}
}
