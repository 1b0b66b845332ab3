// Package storage 提供 go-overlay 的持久化层
//
// 底层是 BadgerDB，上层以带前缀隔离的 kv.Store 供各模块使用。
//
// # 架构
//
// 位于 Core Layer，目前唯一的使用方是节点数据库：
//
//	┌──────────────────────────────────────┐
//	│              使用方模块               │
//	│               NodeDB                 │
//	└──────────────────────────────────────┘
//	                   │
//	                   ▼
//	┌──────────────────────────────────────┐
//	│            storage (本包)             │
//	│  ┌────────────────────────────────┐  │
//	│  │            kv.Store            │  │
//	│  │      带前缀隔离的 KV 抽象        │  │
//	│  └────────────────────────────────┘  │
//	│                   │                  │
//	│  ┌────────────────────────────────┐  │
//	│  │         engine/badger          │  │
//	│  │         BadgerDB 实现           │  │
//	│  └────────────────────────────────┘  │
//	└──────────────────────────────────────┘
//
// # 键空间
//
// 前缀划分出各模块互不相扰的键区间：
//
//	前缀     | 模块     | 说明
//	---------|----------|------------------
//	n/r/     | NodeDB   | 节点记录（JSON）
//	n/m/     | NodeDB   | 元数据（版本、本机地址）
//
// # 用法
//
// 经 Fx 装配（常规路径）：
//
//	app := fx.New(
//	    storage.Module(),
//	    // ... 其他模块
//	)
//
// 或直接打开：
//
//	eng, err := storage.New("/data/overlay.db")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	nodes := storage.NewKVStore(eng, []byte("n/"))
//
// # 并发
//
// 所有公开的类型和方法都是线程安全的（kv.Batch 和事务除外，
// 它们在提交前不应跨 goroutine 共享）。
package storage
