// Package lib 收纳与业务无关的基础工具库
//
// 目前只有一个子包：
//
//   - log: 组件化日志封装（slog + 延迟初始化）
//
// pkg/ 下的分工: interfaces/ 放组件间的公共接口，types/ 放
// 公共类型，lib/ 放纯工具。工具库不反向依赖任何核心模块。
//
//	import "github.com/dep2p/go-overlay/pkg/lib/log"
package lib
