package topology

import (
	"sync/atomic"
	"time"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/types"
)

const (
	// peerExpiration 节点过期阈值
	//
	// 超过该时长无任何接收活动的非根节点在维护周期中被移除。
	// 根节点无论活跃与否都保留在注册表中。
	peerExpiration = 500 * time.Second

	// latencyAlpha 延迟 EWMA 平滑系数
	latencyAlpha = 0.2

	// latencyUnmeasured 延迟未测得哨兵值
	latencyUnmeasured = -1
)

// Peer 远端节点通信状态
//
// 每个地址在注册表生命周期内至多一个规范实例，由握手层或
// 种子导入层构造后经 AddPeer 注册。身份不可变；活跃时间戳、
// 收发计数与延迟估计为原子量，由协作层并发更新，
// 不受注册表锁序列化。
type Peer struct {
	id *identity.Identity

	lastReceive atomic.Int64 // 最近接收时间戳（毫秒）
	lastSend    atomic.Int64 // 最近发送时间戳（毫秒）
	sendCount   atomic.Uint64
	recvCount   atomic.Uint64

	// 延迟 EWMA（纳秒）。latencyUnmeasured 表示尚无测量值；
	// 首个样本直接赋值，其后按 latencyAlpha 平滑。
	latency atomic.Int64
}

// NewPeer 创建节点
//
// 新建实例没有活跃时间戳：注册后需由协作层（收包路径或种子
// 导入）调用 Received/Refresh，否则将在下一次维护周期被视为
// 过期。身份为 nil 时返回 nil。
func NewPeer(id *identity.Identity) *Peer {
	if id == nil {
		return nil
	}
	p := &Peer{id: id}
	p.latency.Store(latencyUnmeasured)
	return p
}

// Identity 返回节点身份
func (p *Peer) Identity() *identity.Identity {
	return p.id
}

// Addr 返回节点地址
func (p *Peer) Addr() types.Address {
	return p.id.Addr()
}

// Received 记录一次来自该节点的接收
func (p *Peer) Received(now int64) {
	p.lastReceive.Store(now)
	p.recvCount.Add(1)
}

// Sent 记录一次发往该节点的发送
func (p *Peer) Sent(now int64) {
	p.lastSend.Store(now)
	p.sendCount.Add(1)
}

// Refresh 刷新活跃时间戳而不计入收包统计
//
// 用于种子导入与外部保活信号。
func (p *Peer) Refresh(now int64) {
	p.lastReceive.Store(now)
}

// LastReceive 返回最近接收时间戳（毫秒，0 = 从未接收）
func (p *Peer) LastReceive() int64 {
	return p.lastReceive.Load()
}

// LastSend 返回最近发送时间戳（毫秒，0 = 从未发送）
func (p *Peer) LastSend() int64 {
	return p.lastSend.Load()
}

// SendCount 返回累计发送次数
func (p *Peer) SendCount() uint64 {
	return p.sendCount.Load()
}

// ReceiveCount 返回累计接收次数
func (p *Peer) ReceiveCount() uint64 {
	return p.recvCount.Load()
}

// RecordLatency 记录一次往返时延样本
//
// 首个样本直接作为估计值，其后按 EWMA 平滑。负样本忽略。
func (p *Peer) RecordLatency(rtt time.Duration) {
	if rtt < 0 {
		return
	}
	for {
		old := p.latency.Load()
		var next int64
		if old == latencyUnmeasured {
			next = int64(rtt)
		} else {
			next = int64(float64(old)*(1-latencyAlpha) + float64(rtt)*latencyAlpha)
		}
		if p.latency.CompareAndSwap(old, next) {
			return
		}
	}
}

// Latency 返回当前延迟估计
//
// 尚无测量值时返回 0；用 HasLatency 区分"未测得"与"恰为零"。
func (p *Peer) Latency() time.Duration {
	l := p.latency.Load()
	if l == latencyUnmeasured {
		return 0
	}
	return time.Duration(l)
}

// HasLatency 报告是否已有延迟测量值
func (p *Peer) HasLatency() bool {
	return p.latency.Load() != latencyUnmeasured
}

// Alive 报告节点在 now 时刻是否存活
//
// 最近一次接收距 now 不足 peerExpiration 即视为存活；
// 从未有接收记录的节点不存活。
func (p *Peer) Alive(now int64) bool {
	last := p.lastReceive.Load()
	return last > 0 && now-last < peerExpiration.Milliseconds()
}

// String 返回节点的可读表示
func (p *Peer) String() string {
	return p.id.Addr().String()
}
