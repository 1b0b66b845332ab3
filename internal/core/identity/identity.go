// Package identity 提供节点身份管理
//
// 节点身份 = Ed25519 密钥对 + 由公钥派生的 40 位节点地址。
// 地址派生使用记忆硬化函数（见 address.go），使伪造指定地址的
// 身份需要付出可观算力。
package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Identity 节点身份
//
// 不可变：构造后地址与密钥不再变化。本地身份持有私钥，
// 远端身份只有公钥。
type Identity struct {
	addr types.Address
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey // 远端身份为 nil
}

// Generate 生成新的本地身份
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成密钥对失败: %w", err)
	}
	return &Identity{
		addr: DeriveAddress(pub),
		pub:  pub,
		priv: priv,
	}, nil
}

// FromPublicKey 从公钥构造身份（远端身份）
//
// 地址在此处派生，调用方无法指定。
func FromPublicKey(pub ed25519.PublicKey) (*Identity, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, ErrInvalidKeySize
	}
	p := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(p, pub)
	return &Identity{
		addr: DeriveAddress(p),
		pub:  p,
	}, nil
}

// FromPrivateKey 从私钥构造身份（本地身份）
func FromPrivateKey(priv ed25519.PrivateKey) (*Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	k := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(k, priv)
	pub := k.Public().(ed25519.PublicKey)
	return &Identity{
		addr: DeriveAddress(pub),
		pub:  pub,
		priv: k,
	}, nil
}

// Addr 返回节点地址
func (id *Identity) Addr() types.Address {
	return id.addr
}

// PublicKey 返回公钥
func (id *Identity) PublicKey() ed25519.PublicKey {
	return id.pub
}

// HasPrivate 报告身份是否持有私钥
func (id *Identity) HasPrivate() bool {
	return id.priv != nil
}

// Sign 使用私钥签名
func (id *Identity) Sign(msg []byte) ([]byte, error) {
	if id.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return ed25519.Sign(id.priv, msg), nil
}

// Verify 使用公钥验证签名
func (id *Identity) Verify(msg, sig []byte) bool {
	return ed25519.Verify(id.pub, msg, sig)
}

// Equal 报告两个身份是否相同（地址与公钥都相等）
func (id *Identity) Equal(other *Identity) bool {
	if id == nil || other == nil {
		return id == other
	}
	return id.addr == other.addr && bytes.Equal(id.pub, other.pub)
}

// String 返回身份的字符串表示
//
// 格式: "<地址>:<公钥十六进制>"，可由 ParseIdentity 还原。
func (id *Identity) String() string {
	return id.addr.String() + ":" + hex.EncodeToString(id.pub)
}

// ParseIdentity 解析身份字符串并验证地址绑定
//
// 重新执行地址派生，派生结果与声称地址不符时返回
// ErrAddressMismatch。来自不可信来源的身份必须经此入口。
func ParseIdentity(s string) (*Identity, error) {
	addrPart, keyPart, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}

	claimed, err := types.ParseAddress(addrPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	keyBytes, err := hex.DecodeString(keyPart)
	if err != nil || len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: 公钥格式错误", ErrInvalidIdentity)
	}

	id, err := FromPublicKey(keyBytes)
	if err != nil {
		return nil, err
	}
	if id.addr != claimed {
		return nil, fmt.Errorf("%w: 声称 %s 实际 %s", ErrAddressMismatch, claimed, id.addr)
	}
	return id, nil
}
