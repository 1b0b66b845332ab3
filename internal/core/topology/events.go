package topology

import (
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// topologyEvents 拓扑事件发射集
//
// 未注入总线时全部发射器为 nil，发射调用安全空转。
// 所有发射都在注册表锁释放之后进行。
type topologyEvents struct {
	peerRegisteredE interfaces.Emitter
	rootAddedE      interfaces.Emitter
	rootRemovedE    interfaces.Emitter
	rootsRankedE    interfaces.Emitter
	pathLearnedE    interfaces.Emitter
	physConfiguredE interfaces.Emitter
}

// newTopologyEvents 创建发射集
//
// bus 为 nil 时返回全空发射集。任一发射器创建失败时
// 关闭已创建的部分并返回错误。
func newTopologyEvents(bus interfaces.EventBus) (*topologyEvents, error) {
	ev := &topologyEvents{}
	if bus == nil {
		return ev, nil
	}

	var err error
	if ev.peerRegisteredE, err = bus.Emitter(new(types.EvtPeerRegistered)); err != nil {
		return nil, err
	}
	if ev.rootAddedE, err = bus.Emitter(new(types.EvtRootAdded)); err != nil {
		ev.close()
		return nil, err
	}
	if ev.rootRemovedE, err = bus.Emitter(new(types.EvtRootRemoved)); err != nil {
		ev.close()
		return nil, err
	}
	// 有状态发射：迟到的订阅者立即获得最近一次重排结果
	if ev.rootsRankedE, err = bus.Emitter(new(types.EvtRootsRanked), interfaces.Stateful()); err != nil {
		ev.close()
		return nil, err
	}
	if ev.pathLearnedE, err = bus.Emitter(new(types.EvtPathLearned)); err != nil {
		ev.close()
		return nil, err
	}
	if ev.physConfiguredE, err = bus.Emitter(new(types.EvtPhysicalPathsConfigured)); err != nil {
		ev.close()
		return nil, err
	}
	return ev, nil
}

func (e *topologyEvents) peerRegistered(addr types.Address, numPeers int) {
	if e.peerRegisteredE == nil {
		return
	}
	_ = e.peerRegisteredE.Emit(types.EvtPeerRegistered{
		BaseEvent: types.NewBaseEvent(types.EventTypePeerRegistered),
		Addr:      addr,
		NumPeers:  numPeers,
	})
}

func (e *topologyEvents) rootAdded(addr types.Address) {
	if e.rootAddedE == nil {
		return
	}
	_ = e.rootAddedE.Emit(types.EvtRootAdded{
		BaseEvent: types.NewBaseEvent(types.EventTypeRootAdded),
		Addr:      addr,
	})
}

func (e *topologyEvents) rootRemoved(addr types.Address) {
	if e.rootRemovedE == nil {
		return
	}
	_ = e.rootRemovedE.Emit(types.EvtRootRemoved{
		BaseEvent: types.NewBaseEvent(types.EventTypeRootRemoved),
		Addr:      addr,
	})
}

func (e *topologyEvents) rootsRanked(best types.Address, numRoots, numRanked int) {
	if e.rootsRankedE == nil {
		return
	}
	_ = e.rootsRankedE.Emit(types.EvtRootsRanked{
		BaseEvent: types.NewBaseEvent(types.EventTypeRootsRanked),
		Best:      best,
		NumRoots:  numRoots,
		NumRanked: numRanked,
	})
}

func (e *topologyEvents) pathLearned(localSocket int64, remote string, numPaths int) {
	if e.pathLearnedE == nil {
		return
	}
	_ = e.pathLearnedE.Emit(types.EvtPathLearned{
		BaseEvent:   types.NewBaseEvent(types.EventTypePathLearned),
		LocalSocket: localSocket,
		Remote:      remote,
		NumPaths:    numPaths,
	})
}

func (e *topologyEvents) physicalPathsConfigured(numConfigured int) {
	if e.physConfiguredE == nil {
		return
	}
	_ = e.physConfiguredE.Emit(types.EvtPhysicalPathsConfigured{
		BaseEvent:     types.NewBaseEvent(types.EventTypePhysicalPathsConfigured),
		NumConfigured: numConfigured,
	})
}

// close 关闭全部发射器，nil 成员跳过
func (e *topologyEvents) close() {
	for _, em := range []interfaces.Emitter{
		e.peerRegisteredE,
		e.rootAddedE,
		e.rootRemovedE,
		e.rootsRankedE,
		e.pathLearnedE,
		e.physConfiguredE,
	} {
		if em != nil {
			_ = em.Close()
		}
	}
}
