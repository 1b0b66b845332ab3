package eventbus

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("invalid event type")

	// ErrNonPointerType 订阅/发射必须传入指针类型（如 new(types.EvtRootAdded)）
	ErrNonPointerType = errors.New("event type must be a pointer")

	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("emitter closed")
)
