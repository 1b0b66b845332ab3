package nodedb

import (
	"crypto/ed25519"
	"net/netip"
	"time"

	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Record 节点记录
//
// 记录一个已知节点的身份与最近观测信息，JSON 序列化后落盘。
// 地址冗余存储（可由公钥派生），载入时通过 Identity 校验一致性。
type Record struct {
	// Address 节点地址
	Address types.Address `json:"address"`

	// PublicKey ed25519 公钥
	PublicKey []byte `json:"public_key"`

	// Endpoints 已知物理端点列表
	//
	// 拓扑核心不产出端点；此字段由外部写入方维护，
	// 更新记录时若未提供则保留原值。
	Endpoints []netip.AddrPort `json:"endpoints,omitempty"`

	// Latency 最近一次平滑延迟估计（纳秒），0 表示未测量
	Latency time.Duration `json:"latency_ns,omitempty"`

	// LastSeen 最后收到该节点数据的时间（Unix 毫秒）
	LastSeen int64 `json:"last_seen"`

	// FirstSeen 首次记录该节点的时间（Unix 毫秒）
	FirstSeen int64 `json:"first_seen"`

	// Root 该节点是否被指定为根
	Root bool `json:"root,omitempty"`
}

// Clone 克隆记录（深拷贝切片字段）
func (r *Record) Clone() *Record {
	clone := &Record{
		Address:   r.Address,
		Latency:   r.Latency,
		LastSeen:  r.LastSeen,
		FirstSeen: r.FirstSeen,
		Root:      r.Root,
	}
	if len(r.PublicKey) > 0 {
		clone.PublicKey = make([]byte, len(r.PublicKey))
		copy(clone.PublicKey, r.PublicKey)
	}
	if len(r.Endpoints) > 0 {
		clone.Endpoints = make([]netip.AddrPort, len(r.Endpoints))
		copy(clone.Endpoints, r.Endpoints)
	}
	return clone
}

// Validate 校验记录的基本完整性
func (r *Record) Validate() error {
	if r == nil {
		return ErrInvalidRecord
	}
	if !r.Address.IsValid() {
		return ErrInvalidRecord
	}
	if len(r.PublicKey) != ed25519.PublicKeySize {
		return ErrInvalidRecord
	}
	return nil
}

// Identity 由记录公钥重建节点身份
//
// 地址从公钥重新派生；若与记录中的地址不一致，
// 返回 ErrAddressMismatch，记录视为不可信。
func (r *Record) Identity() (*identity.Identity, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	id, err := identity.FromPublicKey(r.PublicKey)
	if err != nil {
		return nil, err
	}
	if id.Addr() != r.Address {
		return nil, ErrAddressMismatch
	}
	return id, nil
}
