package topology

import (
	"golang.org/x/time/rate"

	"github.com/dep2p/go-overlay/config"
)

// pathLimiter 路径创建限制器
//
// 两道闸门：规范路径总数硬上限，以及新路径创建的令牌桶限速。
// 未知来源的每个新端点都会触发一次路径构造，限速保证单个
// 泛洪源无法挤占缓存。
type pathLimiter struct {
	maxPaths int
	create   *rate.Limiter // 创建限速（nil = 不限制）
}

// newPathLimiter 创建路径限制器
func newPathLimiter(cfg config.TopologyConfig) *pathLimiter {
	l := &pathLimiter{maxPaths: cfg.MaxPaths}
	if cfg.PathCreateRate > 0 {
		l.create = rate.NewLimiter(rate.Limit(cfg.PathCreateRate), cfg.PathCreateBurst)
	}
	return l
}

// allowCreate 检查是否允许创建一条新路径
//
// current 为当前缓存大小。先查硬上限再消耗令牌，
// 被上限拒绝的请求不占用速率预算。
func (l *pathLimiter) allowCreate(current int) error {
	if l.maxPaths > 0 && current >= l.maxPaths {
		return ErrPathLimitExceeded
	}
	if l.create != nil && !l.create.Allow() {
		return ErrPathRateLimited
	}
	return nil
}
