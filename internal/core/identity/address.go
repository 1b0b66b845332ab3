package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"

	"github.com/dep2p/go-overlay/pkg/types"
	"golang.org/x/crypto/argon2"
)

// 地址派生参数
//
// 记忆硬化参数是协议常量：改动会改变所有节点的地址。
// 1 MB 工作内存让单次派生保持毫秒级，同时让大规模地址
// 碰撞搜索的代价不可忽略。
const (
	deriveTime    = 1
	deriveMemory  = 1024 // KiB
	deriveThreads = 1
	deriveKeyLen  = 32
)

// deriveSalt 地址派生盐值（协议常量）
var deriveSalt = []byte("overlay-address-v1")

// DeriveAddress 从公钥派生节点地址
//
// Argon2id(pub || counter) 经 SHA256 折叠后取前 5 字节。
// 落入保留地址空间（零值、0xff 前缀）时递增 counter 重试，
// 对同一公钥结果确定。
func DeriveAddress(pub ed25519.PublicKey) types.Address {
	buf := make([]byte, len(pub)+4)
	copy(buf, pub)

	for ctr := uint32(0); ; ctr++ {
		binary.BigEndian.PutUint32(buf[len(pub):], ctr)
		key := argon2.IDKey(buf, deriveSalt, deriveTime, deriveMemory, deriveThreads, deriveKeyLen)
		sum := sha256.Sum256(key)

		var addr types.Address
		copy(addr[:], sum[:types.AddressLength])
		if addr.IsValid() {
			return addr
		}
	}
}
