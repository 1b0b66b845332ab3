// Package types 定义 go-overlay 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
package types

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ============================================================================
//                              Address - 节点地址
// ============================================================================

// AddressLength 节点地址字节长度（40 位）
const AddressLength = 5

// AddressReservedPrefix 保留地址前缀
//
// 首字节为 0xff 的地址保留给内部寻址，派生过程永不产出。
const AddressReservedPrefix = 0xff

// Address 节点唯一地址
//
// 由节点公钥身份派生的 40 位紧凑标识，是 PeerRegistry 与根集合
// 成员判定的主键。零值与 0xff 前缀均为保留值，视为无效地址。
//
// 外部表示格式：
//   - String(): 10 位小写十六进制（用户可读、配置文件）
type Address [AddressLength]byte

// EmptyAddress 空地址（无效）
var EmptyAddress Address

// ErrInvalidAddress 无效的节点地址
var ErrInvalidAddress = errors.New("invalid node address")

// String 返回地址的十六进制字符串表示
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText 实现 encoding.TextMarshaler
//
// JSON 与配置文件中地址以 10 位十六进制字符串表示。
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsValid 报告地址是否有效
//
// 零值与保留前缀（0xff）均无效。
func (a Address) IsValid() bool {
	return a != EmptyAddress && a[0] != AddressReservedPrefix
}

// Uint64 返回地址的整数表示（低 40 位）
func (a Address) Uint64() uint64 {
	var b [8]byte
	copy(b[3:], a[:])
	return binary.BigEndian.Uint64(b[:])
}

// Bytes 返回地址字节副本
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// AddressFromUint64 从整数构造地址（取低 40 位）
func AddressFromUint64(v uint64) Address {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	var a Address
	copy(a[:], b[3:])
	return a
}

// AddressFromBytes 从字节构造地址
//
// 参数:
//   - b: 必须恰好为 AddressLength 字节
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return EmptyAddress, fmt.Errorf("%w: 长度 %d", ErrInvalidAddress, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseAddress 解析十六进制地址字符串
//
// 接受恰好 10 位十六进制字符（不带 0x 前缀）。
func ParseAddress(s string) (Address, error) {
	if len(s) != AddressLength*2 {
		return EmptyAddress, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return AddressFromBytes(b)
}
