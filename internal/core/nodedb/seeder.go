package nodedb

import (
	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/topology"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Seeder 拓扑回灌器
//
// 拓扑核心只存内存，节点重启后注册表为空。Seeder 在启动时
// 从节点数据库选取种子记录重建对等节点与根指定，在停止时
// 把存活拓扑快照写回数据库。
type Seeder struct {
	db  *DB
	mgr *topology.Manager
	cfg config.NodeDBConfig
	clk clock.Clock
}

// NewSeeder 创建拓扑回灌器
func NewSeeder(db *DB, mgr *topology.Manager, cfg config.NodeDBConfig, clk clock.Clock) *Seeder {
	if clk == nil {
		clk = clock.New()
	}
	return &Seeder{
		db:  db,
		mgr: mgr,
		cfg: cfg,
		clk: clk,
	}
}

// Seed 从数据库回灌拓扑
//
// 选取最多 SeedCount 条未超龄记录，逐条重建身份并注册；
// 身份校验失败的记录跳过。回灌出的对等节点以当前时间刷新
// 活跃戳（获得一个完整的存活窗口），已有延迟估计一并恢复。
// 返回成功注册的节点数。
func (s *Seeder) Seed() (int, error) {
	if s.db.isClosed() {
		return 0, ErrClosed
	}

	now := s.clk.Now().UnixMilli()
	local := s.mgr.LocalAddr()

	if stored, ok := s.db.SelfAddress(); ok && stored != local {
		logger.Warn("节点数据库由其他身份写入", "stored", stored, "local", local)
	}
	if err := s.db.SetSelfAddress(local); err != nil {
		logger.Warn("写入本机地址元数据失败", "error", err)
	}

	seeds := s.db.QuerySeeds(s.cfg.SeedCount, s.cfg.MaxRecordAge.Duration())

	var seeded, roots, skipped int
	for _, rec := range seeds {
		id, err := rec.Identity()
		if err != nil {
			logger.Warn("跳过身份校验失败的种子记录",
				"address", rec.Address, "error", err)
			skipped++
			continue
		}

		p := topology.NewPeer(id)
		p.Refresh(now)
		if rec.Latency > 0 {
			p.RecordLatency(rec.Latency)
		}

		if s.mgr.AddPeer(p) == nil {
			// 本机身份或非法地址
			skipped++
			continue
		}
		seeded++

		if rec.Root {
			s.mgr.AddRoot(id)
			roots++
		}
	}

	s.mgr.RankRoots(now)

	logger.Info("拓扑回灌完成",
		"seeded", seeded, "roots", roots, "skipped", skipped)
	return seeded, nil
}

// Snapshot 把存活拓扑快照写回数据库
//
// 已注册的对等节点逐个落盘（根标记以当前根集合为准），
// 无注册节点的根指定同样保留。未出现在本次快照中的记录：
// 超龄的删除，仍带根标记的清除标记。返回落盘的记录数。
func (s *Seeder) Snapshot() (int, error) {
	if s.db.isClosed() {
		return 0, ErrClosed
	}

	now := s.clk.Now().UnixMilli()
	maxAge := s.cfg.MaxRecordAge.Duration().Milliseconds()

	visited := make(map[types.Address]*Record)
	s.mgr.EachPeerWithRoot(func(p *topology.Peer, isRoot bool) bool {
		rec := &Record{
			Address:   p.Addr(),
			PublicKey: p.Identity().PublicKey(),
			LastSeen:  p.LastReceive(),
			Root:      isRoot,
		}
		if rec.LastSeen == 0 {
			rec.LastSeen = now
		}
		if p.HasLatency() {
			rec.Latency = p.Latency()
		}
		visited[rec.Address] = rec
		return true
	})

	// 根指定不依赖注册节点存在，补齐缺失的根记录
	for _, rid := range s.mgr.RootIdentities() {
		if _, ok := visited[rid.Addr()]; ok {
			continue
		}
		visited[rid.Addr()] = &Record{
			Address:   rid.Addr(),
			PublicKey: rid.PublicKey(),
			LastSeen:  now,
			Root:      true,
		}
	}

	var persisted int
	for _, rec := range visited {
		if err := s.db.Put(rec); err != nil {
			logger.Warn("落盘节点记录失败", "address", rec.Address, "error", err)
			continue
		}
		persisted++
	}

	// 清理：本次未观测到的记录按年龄剔除。当前全部根指定都在
	// visited 中，未观测到却仍带根标记的记录说明指定已撤销。
	var pruned int
	for _, rec := range s.db.All() {
		if _, ok := visited[rec.Address]; ok {
			continue
		}
		if now-rec.LastSeen > maxAge {
			if err := s.db.Delete(rec.Address); err == nil {
				pruned++
			}
			continue
		}
		if rec.Root {
			rec.Root = false
			if err := s.db.Put(rec); err != nil {
				logger.Warn("清除根标记失败", "address", rec.Address, "error", err)
			}
		}
	}

	logger.Info("拓扑快照已落盘", "persisted", persisted, "pruned", pruned)
	return persisted, nil
}
