package topology

import (
	"fmt"
	"net/netip"
	"sync/atomic"
	"time"
)

// pathExpiration 路径过期阈值
//
// 超过该时长未收到来自远端的流量（且创建时间也早于该窗口）的路径
// 在维护周期中被视为陈旧并从缓存移除。远大于协作层的探活周期，
// 正常通信中的路径不会被误回收。
const pathExpiration = 120 * time.Second

// PathKey 路径缓存主键
//
// (本地套接字, 远端端点) 二元组唯一确定一条物理路径。
// 可比较结构体，直接用作 map 键。LocalSocket 为 -1 表示未指定套接字。
type PathKey struct {
	LocalSocket int64
	Remote      netip.AddrPort
}

// String 返回键的可读表示
func (k PathKey) String() string {
	return fmt.Sprintf("%d@%s", k.LocalSocket, k.Remote)
}

// Path 规范物理路径
//
// 表示经由一个本地套接字到达一个远端端点的唯一物理路由。
// 由路径缓存在首次查询时惰性创建，此后同一键的所有查询
// 返回同一实例；所有经由该路由通信的 Peer 共享它。
//
// 收发时间戳由 I/O 协作层通过 Sent/Received 更新，内部为原子量，
// 不受任何注册表锁保护。
type Path struct {
	key     PathKey
	created int64 // 创建时间戳（毫秒），不可变

	lastSend    atomic.Int64 // 最近发出时间戳（毫秒）
	lastReceive atomic.Int64 // 最近收到时间戳（毫秒）
}

// newPath 创建路径
//
// 仅由路径缓存在独占区内调用；now 为创建时刻的毫秒时间戳。
func newPath(localSocket int64, remote netip.AddrPort, now int64) *Path {
	return &Path{
		key:     PathKey{LocalSocket: localSocket, Remote: remote},
		created: now,
	}
}

// Key 返回路径键
func (p *Path) Key() PathKey {
	return p.key
}

// LocalSocket 返回本地套接字标识（-1 = 未指定）
func (p *Path) LocalSocket() int64 {
	return p.key.LocalSocket
}

// Remote 返回远端端点
func (p *Path) Remote() netip.AddrPort {
	return p.key.Remote
}

// Sent 记录一次经由该路径的发送
func (p *Path) Sent(now int64) {
	p.lastSend.Store(now)
}

// Received 记录一次经由该路径的接收
func (p *Path) Received(now int64) {
	p.lastReceive.Store(now)
}

// LastSend 返回最近发送时间戳（毫秒，0 = 从未发送）
func (p *Path) LastSend() int64 {
	return p.lastSend.Load()
}

// LastReceive 返回最近接收时间戳（毫秒，0 = 从未接收）
func (p *Path) LastReceive() int64 {
	return p.lastReceive.Load()
}

// Alive 报告路径在 now 时刻是否存活
//
// 最近一次接收（或创建，以较晚者为准）距 now 不足 pathExpiration
// 即视为存活。只看入向流量：一条持续外发却始终无回应的路径
// 同样会过期，由下一次查询重新创建。
func (p *Path) Alive(now int64) bool {
	last := p.lastReceive.Load()
	if p.created > last {
		last = p.created
	}
	return now-last < pathExpiration.Milliseconds()
}

// String 返回路径的可读表示
func (p *Path) String() string {
	return p.key.String()
}
