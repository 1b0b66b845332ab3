package overlay

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrLocalIdentity 操作对象是本地身份
	//
	// 本地节点不注册进自己的拓扑，也不能指定自己为根。
	ErrLocalIdentity = errors.New("operation targets the local identity")
)
