// Package types 定义 go-overlay 的基础类型
//
// 本文件定义事件总线上流转的事件类型。
package types

import (
	"time"
)

// ============================================================================
//                              事件骨架
// ============================================================================

// Event 所有事件的公共视图
type Event interface {
	// Type 事件类型字符串
	Type() string

	// Timestamp 事件发生时间
	Timestamp() time.Time
}

// BaseEvent 嵌入各具体事件，提供类型与时间戳
type BaseEvent struct {
	EventType string
	Time      time.Time
}

// Type 事件类型字符串
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp 事件发生时间
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// NewBaseEvent 以当前时间构造事件骨架
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
	}
}

// ============================================================================
//                              拓扑事件
// ============================================================================

// EvtPeerRegistered 节点注册事件
//
// 首次注册某地址的规范 Peer 实例时发射；重复注册（返回既有实例）不发射。
type EvtPeerRegistered struct {
	BaseEvent
	Addr     Address
	NumPeers int
}

// EvtRootAdded 根节点加入事件
type EvtRootAdded struct {
	BaseEvent
	Addr Address
}

// EvtRootRemoved 根节点移除事件
type EvtRootRemoved struct {
	BaseEvent
	Addr Address
}

// EvtRootsRanked 根节点重排事件
//
// 每次重建延迟有序根列表后发射。Best 为当前最优根地址，
// 无可达根时为空地址。
type EvtRootsRanked struct {
	BaseEvent
	Best      Address
	NumRoots  int
	NumRanked int
}

// EvtPathLearned 新路径学习事件
//
// 路径缓存首次为某 (本地套接字, 远端端点) 键构造 Path 时发射。
type EvtPathLearned struct {
	BaseEvent
	LocalSocket int64
	Remote      string
	NumPaths    int
}

// EvtPhysicalPathsConfigured 物理路径配置变更事件
type EvtPhysicalPathsConfigured struct {
	BaseEvent
	NumConfigured int
}

// ============================================================================
//                              事件类型标识
// ============================================================================

// 各事件的 Type() 取值
const (
	EventTypePeerRegistered          = "peer_registered"
	EventTypeRootAdded               = "root_added"
	EventTypeRootRemoved             = "root_removed"
	EventTypeRootsRanked             = "roots_ranked"
	EventTypePathLearned             = "path_learned"
	EventTypePhysicalPathsConfigured = "physical_paths_configured"
)
