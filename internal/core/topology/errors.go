package topology

import "errors"

// 拓扑核心错误定义
var (
	// ErrPathLimitExceeded 路径缓存已达到配置的规范路径数上限
	ErrPathLimitExceeded = errors.New("topology: path limit exceeded")

	// ErrPathRateLimited 路径创建触发速率限制
	ErrPathRateLimited = errors.New("topology: path creation rate limited")

	// ErrTooManyPhysicalPaths 物理路径配置条目超出固定容量
	ErrTooManyPhysicalPaths = errors.New("topology: too many physical path configurations")

	// ErrInvalidSubnet 无效的物理子网前缀
	ErrInvalidSubnet = errors.New("topology: invalid subnet")
)
