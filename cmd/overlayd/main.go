// Package main 提供 overlayd 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-overlay"
	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("overlay/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 配置边界：
//
//	命令行参数：运行时覆盖 / 快速测试（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置 / 长期运行（「这个节点」的固定配置）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数（快速指定）
	// ─────────────────────────────────────────────────────────────────────
	configFile   = flag.String("config", "", "配置文件路径")
	dataDir      = flag.String("data-dir", "", "数据目录（默认: ./data）")
	identityFile = flag.String("identity", "", "身份密钥文件路径")
	metricsAddr  = flag.String("metrics-addr", "", "Prometheus 指标监听地址（如 :9100，留空不开 HTTP）")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logFile  = flag.String("log", "", "日志文件路径（留空输出到 stderr）")
	logLevel = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

// runtimeConfig 运行时配置（不属于 config.Config）
type runtimeConfig struct {
	metricsAddr string // 指标 HTTP 监听地址
	logFile     string // 日志文件路径
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	// 构建配置（配置文件 < 环境变量 < 命令行参数）
	cfg, runtime, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// 设置日志
	logPath, logHandle, err := setupLogging(runtime)
	if err != nil {
		return fmt.Errorf("日志设置失败: %w", err)
	}
	if logHandle != nil {
		defer func() { _ = logHandle.Close() }()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 打印版本信息（部署验证）
	fmt.Printf("%s\n", overlay.VersionInfo())
	logger.Info("启动 overlay 节点",
		"version", overlay.Version,
		"commit", overlay.GitCommit,
		"buildDate", overlay.BuildDate)

	// 创建并启动节点
	fmt.Println("正在启动 overlay 节点...")
	node, err := overlay.New(overlay.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("创建节点失败: %w", err)
	}
	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	// 指标 HTTP 服务
	var metricsSrv *http.Server
	if runtime.metricsAddr != "" {
		metricsSrv, err = serveMetrics(runtime.metricsAddr, node.MetricsRegistry())
		if err != nil {
			return err
		}
	}

	printNodeInfo(node, runtime, logPath)

	// 等待退出信号
	fmt.Println("节点已启动，按 Ctrl+C 退出")
	waitForSignal()

	fmt.Println("\n正在关闭节点...")
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("关闭指标服务失败", "error", err)
		}
	}
	return nil
}

// buildConfig 构建节点配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数（运行时覆盖）
//  2. 环境变量（OVERLAY_* 前缀）
//  3. 配置文件（持久化配置）
//  4. 默认值
func buildConfig() (*config.Config, *runtimeConfig, error) {
	var cfg *config.Config
	runtime := &runtimeConfig{}

	// 1. 加载配置文件（持久化配置）
	if *configFile != "" {
		var err error
		cfg, err = loadConfigFile(*configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	} else {
		cfg = config.NewConfig()
	}

	// 2. 应用环境变量覆盖
	applyEnvOverrides(cfg, runtime)

	// 3. 应用命令行参数覆盖（最高优先级）
	if isFlagSet("data-dir") && *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if isFlagSet("identity") && *identityFile != "" {
		cfg.Identity.KeyFile = *identityFile
	}
	if isFlagSet("metrics-addr") {
		runtime.metricsAddr = *metricsAddr
	}
	if isFlagSet("log") {
		runtime.logFile = *logFile
	}

	// 指标 HTTP 开启但采集被禁用时无指标可供暴露
	if runtime.metricsAddr != "" && !cfg.Metrics.Enabled {
		return nil, nil, errors.New("metrics-addr 需要 metrics.enabled = true")
	}

	return cfg, runtime, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// setupLogging 设置日志输出
//
// 指定日志文件时写入文件，否则输出到 stderr；两种情况都应用
// -log-level 指定的级别。返回实际使用的日志路径与文件句柄。
func setupLogging(runtime *runtimeConfig) (string, *os.File, error) {
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		return "", nil, err
	}

	if runtime.logFile == "" {
		log.SetOutputWithLevel(os.Stderr, level)
		return "", nil, nil
	}

	file, err := os.OpenFile(runtime.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return "", nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutputWithLevel(file, level)
	return runtime.logFile, file, nil
}

// serveMetrics 启动 Prometheus 指标 HTTP 服务
func serveMetrics(addr string, registry *prometheus.Registry) (*http.Server, error) {
	if registry == nil {
		return nil, errors.New("指标注册表未装配")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("指标服务已启动", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务退出", "error", err)
		}
	}()
	return srv, nil
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

// printNodeInfo 打印节点信息
func printNodeInfo(node *overlay.Node, runtime *runtimeConfig, logPath string) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Printf("║          Overlay Node Started (%s)\n", overlay.Version)
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Printf("║ 节点地址: %s\n", node.LocalAddr())
	fmt.Printf("║ 实例 ID:  %s\n", node.InstanceID())
	if runtime.metricsAddr != "" {
		fmt.Printf("║ 指标端点: http://%s/metrics\n", runtime.metricsAddr)
	}
	if logPath != "" {
		fmt.Printf("║ 日志文件: %s\n", logPath)
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println()
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("overlayd %s\n", overlay.Version)
	if overlay.GitCommit != "" {
		fmt.Printf("  commit: %s\n", overlay.GitCommit)
	}
	if overlay.BuildDate != "" {
		fmt.Printf("  built:  %s\n", overlay.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("overlayd - 覆盖网拓扑节点守护进程")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  overlayd [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  OVERLAY_DATA_DIR           数据目录（隔离多节点数据库）")
	fmt.Println("  OVERLAY_IDENTITY_KEY_FILE  身份密钥文件")
	fmt.Println("  OVERLAY_METRICS_ADDR       指标监听地址")
	fmt.Println("  OVERLAY_NODEDB_ENABLED     启用节点持久化 (true/false)")
	fmt.Println("  OVERLAY_METRICS_ENABLED    启用指标采集 (true/false)")
	fmt.Println("  OVERLAY_LOG_FILE           日志文件路径")
	fmt.Println()
	fmt.Println("使用示例:")
	fmt.Println()
	fmt.Println("  # 使用默认配置启动")
	fmt.Println("  overlayd")
	fmt.Println()
	fmt.Println("  # 使用配置文件（推荐用于生产环境）")
	fmt.Println("  overlayd -config config.json")
	fmt.Println()
	fmt.Println("  # 指定数据目录并暴露指标")
	fmt.Println("  overlayd -data-dir /var/lib/overlay -metrics-addr :9100")
	fmt.Println()
	fmt.Println("  # 同机多节点部署（需使用不同数据目录）")
	fmt.Println("  overlayd -data-dir ./data/node1 -metrics-addr :9101")
	fmt.Println("  overlayd -data-dir ./data/node2 -metrics-addr :9102")
	fmt.Println()
	fmt.Println("配置文件示例 (config.json):")
	fmt.Println()
	fmt.Println(`  {`)
	fmt.Println(`    "identity": {`)
	fmt.Println(`      "key_file": "/var/lib/overlay/identity.key"`)
	fmt.Println(`    },`)
	fmt.Println(`    "storage": {`)
	fmt.Println(`      "data_dir": "/var/lib/overlay"`)
	fmt.Println(`    },`)
	fmt.Println(`    "nodedb": {`)
	fmt.Println(`      "enabled": true,`)
	fmt.Println(`      "seed_count": 32`)
	fmt.Println(`    },`)
	fmt.Println(`    "metrics": {`)
	fmt.Println(`      "enabled": true,`)
	fmt.Println(`      "report_interval": "60s"`)
	fmt.Println(`    }`)
	fmt.Println(`  }`)
}
