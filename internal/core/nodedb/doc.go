// Package nodedb 提供节点记录持久化与拓扑回灌
//
// 节点数据库模块负责：
// - 持久化已知节点（身份公钥、端点、延迟估计、根标记）
// - 查询种子记录（根优先、最近活跃优先）
// - 启动时回灌拓扑注册表，停机时快照落盘
//
// # 使用示例
//
//	store := kv.New(eng, []byte("n/"))
//	db, err := nodedb.Open(store, config.DefaultNodeDBConfig())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	seeder := nodedb.NewSeeder(db, mgr, cfg, nil)
//	seeder.Seed()       // 启动：数据库 → 拓扑
//	defer seeder.Snapshot() // 停机：拓扑 → 数据库
//
// # 实现
//
// 记录以 JSON 写穿到 Storage 模块的 BadgerDB 引擎（n/ 前缀），
// 打开时全量载入内存缓存，读路径不触达磁盘。记录中的地址
// 冗余存储，回灌前通过公钥重新派生校验，篡改记录无法进入拓扑。
//
// # 架构归属
//
// 本模块属于 Core Layer，依赖 Storage 与 Topology 模块。
//
// # 参考
//
// 设计参考 go-ethereum p2p/enode.DB
package nodedb
