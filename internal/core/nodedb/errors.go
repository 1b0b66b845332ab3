package nodedb

import "errors"

var (
	// ErrClosed 数据库已关闭
	ErrClosed = errors.New("nodedb: database closed")

	// ErrInvalidRecord 记录不完整或字段非法
	ErrInvalidRecord = errors.New("nodedb: invalid record")

	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("nodedb: record not found")

	// ErrAddressMismatch 记录地址与公钥派生地址不一致
	//
	// 出现此错误说明记录被篡改或损坏，不可用于回灌。
	ErrAddressMismatch = errors.New("nodedb: address does not match public key")
)
