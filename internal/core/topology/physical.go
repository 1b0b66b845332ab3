package topology

import (
	"fmt"
	"net/netip"
	"sort"
)

const (
	// maxConfiguredPaths 物理路径配置表固定容量
	//
	// 操作员配置的子网覆盖项数量有上界，查询用线性扫描即可。
	maxConfiguredPaths = 16

	// DefaultPhysicalMTU 无配置覆盖时的默认物理 MTU
	DefaultPhysicalMTU = 1432

	// minPhysicalMTU 物理 MTU 下限（IPv6 最小链路 MTU）
	minPhysicalMTU = 1280

	// maxPhysicalMTU 物理 MTU 上限
	maxPhysicalMTU = 10000
)

// PhysicalPathConfig 单个物理子网的路径配置
type PhysicalPathConfig struct {
	// TrustedPathID 受信路径标识
	//
	// 0 为保留的"无信任覆盖"哨兵：来自该子网的包仍走逐包认证。
	// 非零时，携带相同标识且源于该子网的入向包跳过逐包认证。
	TrustedPathID uint64 `json:"trusted_path_id"`

	// MTU 该子网的物理 MTU 覆盖
	//
	// 非正值按 DefaultPhysicalMTU 处理，越界值收敛到上下限。
	MTU int `json:"mtu"`
}

// physicalPathEntry 配置表条目
type physicalPathEntry struct {
	subnet netip.Prefix
	cfg    PhysicalPathConfig
}

// SetPhysicalPathConfiguration 设置物理路径配置
//
// 三种形态：
//   - subnet 为 nil：清空整张表
//   - cfg 为 nil：移除该子网的条目
//   - 二者皆非 nil：插入或替换该子网的条目
//
// 实现将现有表读入有序 map、应用变更后整表重建，绝不原位修改。
// 重建结果超出固定容量时返回 ErrTooManyPhysicalPaths 且不改动
// 现有配置。子网前缀无效时返回 ErrInvalidSubnet。
func (m *Manager) SetPhysicalPathConfiguration(subnet *netip.Prefix, cfg *PhysicalPathConfig) error {
	m.physicalMu.Lock()

	if subnet == nil {
		m.numPhysicalPaths = 0
		m.physicalMu.Unlock()
		m.events.physicalPathsConfigured(0)
		logger.Info("物理路径配置已清空")
		return nil
	}

	if !subnet.IsValid() {
		m.physicalMu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidSubnet, subnet)
	}
	key := subnet.Masked()

	// 现有条目读入 map，在 map 上应用变更
	entries := make(map[netip.Prefix]PhysicalPathConfig, m.numPhysicalPaths+1)
	for i := 0; i < m.numPhysicalPaths; i++ {
		entries[m.physicalPaths[i].subnet] = m.physicalPaths[i].cfg
	}
	if cfg == nil {
		delete(entries, key)
	} else {
		c := *cfg
		if c.MTU <= 0 {
			c.MTU = DefaultPhysicalMTU
		} else if c.MTU < minPhysicalMTU {
			c.MTU = minPhysicalMTU
		} else if c.MTU > maxPhysicalMTU {
			c.MTU = maxPhysicalMTU
		}
		entries[key] = c
	}

	if len(entries) > maxConfiguredPaths {
		m.physicalMu.Unlock()
		return fmt.Errorf("%w: %d > %d", ErrTooManyPhysicalPaths, len(entries), maxConfiguredPaths)
	}

	// 按前缀有序整表重建，保证扫描顺序确定
	keys := make([]netip.Prefix, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := keys[i].Addr().Compare(keys[j].Addr()); c != 0 {
			return c < 0
		}
		return keys[i].Bits() < keys[j].Bits()
	})
	for i, k := range keys {
		m.physicalPaths[i] = physicalPathEntry{subnet: k, cfg: entries[k]}
	}
	m.numPhysicalPaths = len(keys)
	n := m.numPhysicalPaths
	m.physicalMu.Unlock()

	m.events.physicalPathsConfigured(n)
	logger.Debug("物理路径配置已更新", "subnet", key.String(), "entries", n)
	return nil
}

// GetOutboundPathInfo 查询地址的出向路径配置
//
// 线性扫描配置表，首个包含该地址的子网生效（配置预期互不重叠）。
// 无匹配时 ok 为 false，调用方保留自身默认值。
func (m *Manager) GetOutboundPathInfo(addr netip.Addr) (mtu int, trustedPathID uint64, ok bool) {
	addr = addr.Unmap()
	m.physicalMu.RLock()
	defer m.physicalMu.RUnlock()
	for i := 0; i < m.numPhysicalPaths; i++ {
		if m.physicalPaths[i].subnet.Contains(addr) {
			return m.physicalPaths[i].cfg.MTU, m.physicalPaths[i].cfg.TrustedPathID, true
		}
	}
	return 0, 0, false
}

// GetOutboundPathMTU 查询地址的出向 MTU
//
// 无配置覆盖时返回 DefaultPhysicalMTU。
func (m *Manager) GetOutboundPathMTU(addr netip.Addr) int {
	if mtu, _, ok := m.GetOutboundPathInfo(addr); ok {
		return mtu
	}
	return DefaultPhysicalMTU
}

// GetOutboundPathTrust 查询地址的出向受信路径标识
//
// 无配置覆盖时返回 0（无信任覆盖）。
func (m *Manager) GetOutboundPathTrust(addr netip.Addr) uint64 {
	_, id, ok := m.GetOutboundPathInfo(addr)
	if !ok {
		return 0
	}
	return id
}

// IsInboundPathTrusted 判定入向路径是否受信
//
// 仅当存在一条配置同时满足"受信标识等于 claimedID"且"子网包含
// addr"时返回 true。二者缺一不可：合法标识配上非白名单来源、
// 或白名单来源配上错误标识，都不通过。claimedID 为 0（哨兵）
// 时恒为 false。
func (m *Manager) IsInboundPathTrusted(addr netip.Addr, claimedID uint64) bool {
	if claimedID == 0 {
		return false
	}
	addr = addr.Unmap()
	m.physicalMu.RLock()
	defer m.physicalMu.RUnlock()
	for i := 0; i < m.numPhysicalPaths; i++ {
		if m.physicalPaths[i].cfg.TrustedPathID == claimedID && m.physicalPaths[i].subnet.Contains(addr) {
			return true
		}
	}
	return false
}

// CountPhysicalPaths 返回当前配置的物理路径条目数
func (m *Manager) CountPhysicalPaths() int {
	m.physicalMu.RLock()
	defer m.physicalMu.RUnlock()
	return m.numPhysicalPaths
}
