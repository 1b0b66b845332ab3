package topology

import (
	"fmt"
	"net/netip"
)

// GetPath 查询或创建 (本地套接字, 远端端点) 的规范路径
//
// 双重检查的规范化查询：
//  1. 读锁探测，命中立即返回——重复流量的常态路径，不付独占锁成本
//  2. 未命中则升级写锁并复查（间隙内可能已被并发插入），仍缺席
//     才构造并插入
//  3. 仅在资源耗尽时失败：路径总数达到上限返回 ErrPathLimitExceeded，
//     创建限速拒绝返回 ErrPathRateLimited；每个返回分支都先释放锁
//
// 同一键的并发调用恰好构造一个 Path，所有调用方拿到同一实例。
// 远端地址做 Unmap 规范化，4-in-6 映射与原生 IPv4 共享同一路径。
// localSocket 取 -1 表示未指定套接字。
func (m *Manager) GetPath(localSocket int64, remote netip.AddrPort) (*Path, error) {
	remote = netip.AddrPortFrom(remote.Addr().Unmap(), remote.Port())
	key := PathKey{LocalSocket: localSocket, Remote: remote}

	m.pathsMu.RLock()
	p := m.paths[key]
	m.pathsMu.RUnlock()
	if p != nil {
		return p, nil
	}

	m.pathsMu.Lock()
	if p = m.paths[key]; p != nil {
		m.pathsMu.Unlock()
		return p, nil
	}
	if err := m.limiter.allowCreate(len(m.paths)); err != nil {
		m.pathsMu.Unlock()
		return nil, fmt.Errorf("create path %s: %w", key, err)
	}
	p = newPath(localSocket, remote, m.clk.Now().UnixMilli())
	m.paths[key] = p
	numPaths := len(m.paths)
	m.pathsMu.Unlock()

	m.events.pathLearned(localSocket, remote.String(), numPaths)
	logger.Debug("学习到新路径", "path", key.String(), "paths", numPaths)
	return p, nil
}

// CountPaths 返回路径缓存中的规范路径数
func (m *Manager) CountPaths() int {
	m.pathsMu.RLock()
	defer m.pathsMu.RUnlock()
	return len(m.paths)
}
