package identity

import "errors"

var (
	// ErrInvalidKeySize 密钥长度错误
	ErrInvalidKeySize = errors.New("invalid key size")
	// ErrNoPrivateKey 身份不持有私钥
	ErrNoPrivateKey = errors.New("identity has no private key")
	// ErrInvalidIdentity 身份字符串格式错误
	ErrInvalidIdentity = errors.New("invalid identity string")
	// ErrAddressMismatch 地址与公钥派生结果不符
	ErrAddressMismatch = errors.New("address does not match public key")
	// ErrInvalidPEM 无效的 PEM 数据
	ErrInvalidPEM = errors.New("invalid PEM data")
	// ErrKeyNotFound 密钥文件不存在
	ErrKeyNotFound = errors.New("key not found")
)
