// Package interfaces 定义 go-overlay 公共接口
//
// 本文件定义拓扑只读视图接口，供指标、诊断等外围组件消费。
// 完整的查询与变更表面在 internal/core/topology.Manager 上，
// 由 Node 门面按公共类型转发。
package interfaces

import (
	"time"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Topology 拓扑只读视图
type Topology interface {
	// LocalAddr 返回本地节点地址
	LocalAddr() types.Address

	// CountPeers 返回已注册的节点数
	CountPeers() int

	// CountPaths 返回路径缓存中的规范路径数
	CountPaths() int

	// CountRoots 返回根成员集大小
	CountRoots() int

	// BestRoot 返回当前最优根的地址与测得延迟
	//
	// 无可达根时 ok 为 false。延迟未测得时为 0。
	BestRoot() (addr types.Address, latency time.Duration, ok bool)
}
