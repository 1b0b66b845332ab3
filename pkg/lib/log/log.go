// Package log 提供 go-overlay 统一日志接口
//
// 对标准库 log/slog 的薄封装：不定义抽象接口，
// 各包直接用组件化的 LazyLogger 打日志。
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 级别常量，免去使用方再导入 slog
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var defaultLogger = slog.Default()

// SetDefault 替换进程默认 logger
func SetDefault(l *slog.Logger) {
	defaultLogger = l
	slog.SetDefault(l)
}

// Default 取进程默认 logger
func Default() *slog.Logger {
	return slog.Default()
}

// New 在指定 Writer 上建一个文本格式 logger
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetOutput 把日志输出切到指定 Writer，级别保持 Info
//
// 典型场景是守护进程把日志写进文件。
func SetOutput(w io.Writer) {
	SetOutputWithLevel(w, slog.LevelInfo)
}

// SetOutputWithLevel 同时切换日志输出目标和级别
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	defaultLogger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(defaultLogger)
}

// SetLevel 调整默认 logger 的级别，输出仍走 stderr
func SetLevel(level slog.Level) {
	SetOutputWithLevel(os.Stderr, level)
}

// ParseLevel 解析日志级别字符串
//
// 支持 debug/info/warn/error（不区分大小写）。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("未知日志级别: %q", s)
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 按组件命名的延迟 logger
//
// 不缓存 handler: 每条日志落笔时才取 slog.Default()，因此
// 包级 var logger 可以先于 SetOutput 初始化，运行期切换
// 输出目标对已有 logger 立即生效。
//
// 典型用法：
//
//	var logger = log.Logger("core/topology")
//	logger.Info("根节点已登记", "addr", addr)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Debug 打 Debug 级日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	slog.Default().With("component", l.component).Debug(msg, args...)
}

// Info 打 Info 级日志
func (l *LazyLogger) Info(msg string, args ...any) {
	slog.Default().With("component", l.component).Info(msg, args...)
}

// Warn 打 Warn 级日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	slog.Default().With("component", l.component).Warn(msg, args...)
}

// Error 打 Error 级日志
func (l *LazyLogger) Error(msg string, args ...any) {
	slog.Default().With("component", l.component).Error(msg, args...)
}

// With 附加属性后退化为普通 slog.Logger
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return slog.Default().With("component", l.component).With(args...)
}

// ============================================================================
//                              包级快捷函数
// ============================================================================

// Debug 不带组件名直接打 Debug 级日志
func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

// Info 不带组件名直接打 Info 级日志
func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

// Warn 不带组件名直接打 Warn 级日志
func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

// Error 不带组件名直接打 Error 级日志
func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

func init() {
	// 进程启动即有可用输出：stderr 文本格式，Info 级
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
}
