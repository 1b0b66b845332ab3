package engine

import "errors"

// 引擎错误
//
// 所有实现对同类故障返回同一组哨兵，使用方经 errors.Is 判别，
// 不依赖具体引擎的错误类型。
var (
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("storage: key not found")

	// ErrEmptyKey 空键
	ErrEmptyKey = errors.New("storage: empty key")

	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("storage: engine closed")

	// ErrReadOnly 只读模式下的写操作
	ErrReadOnly = errors.New("storage: read-only mode")

	// ErrTransactionConflict 事务提交冲突，可重试
	ErrTransactionConflict = errors.New("storage: transaction conflict")

	// ErrTransactionTooLarge 事务超出引擎限制
	ErrTransactionTooLarge = errors.New("storage: transaction too large")

	// ErrTransactionDiscarded 事务已丢弃
	ErrTransactionDiscarded = errors.New("storage: transaction discarded")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrCorrupted 数据损坏或编码不符预期
	ErrCorrupted = errors.New("storage: data corrupted")

	// ErrBatchClosed 批量操作已提交或丢弃
	ErrBatchClosed = errors.New("storage: batch closed")
)

// IsNotFound 报告 err 是否为键不存在
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorrupted 报告 err 是否为数据损坏
func IsCorrupted(err error) bool {
	return errors.Is(err, ErrCorrupted)
}
