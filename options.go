package overlay

import (
	"crypto/ed25519"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-overlay/config"
)

// Option 用户配置选项函数
type Option func(*nodeOptions) error

// nodeOptions 内部选项结构
type nodeOptions struct {
	// 完整配置（未提供时使用默认配置）
	cfg *config.Config

	// 数据目录覆盖
	dataDir string

	// 直接注入的身份私钥（跳过密钥文件加载）
	key ed25519.PrivateKey

	// 时钟注入（测试用）
	clk clock.Clock
}

// newNodeOptions 创建默认选项
func newNodeOptions() *nodeOptions {
	return &nodeOptions{}
}

// resolveConfig 解析最终配置
//
// 基于提供的配置（或默认配置）的副本应用覆盖项，
// 不改动调用方持有的配置对象。
func (o *nodeOptions) resolveConfig() *config.Config {
	cfg := config.NewConfig()
	if o.cfg != nil {
		c := *o.cfg
		cfg = &c
	}
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
	}
	return cfg
}

// WithConfig 使用完整配置
//
// 配置在 New 中按值复制，之后对原对象的修改不影响节点。
func WithConfig(cfg *config.Config) Option {
	return func(o *nodeOptions) error {
		if cfg == nil {
			return fmt.Errorf("with config: nil config")
		}
		o.cfg = cfg
		return nil
	}
}

// WithDataDir 设置数据目录
//
// 覆盖配置中的 Storage.DataDir；身份密钥与节点数据库
// 均落在该目录下。
func WithDataDir(dir string) Option {
	return func(o *nodeOptions) error {
		if dir == "" {
			return fmt.Errorf("with data dir: empty path")
		}
		o.dataDir = dir
		return nil
	}
}

// WithIdentity 直接注入身份私钥
//
// 跳过密钥文件的加载与生成，适用于密钥由外部系统托管的场景。
func WithIdentity(key ed25519.PrivateKey) Option {
	return func(o *nodeOptions) error {
		if len(key) != ed25519.PrivateKeySize {
			return fmt.Errorf("with identity: invalid private key size %d", len(key))
		}
		o.key = key
		return nil
	}
}

// WithClock 注入时钟
//
// 全部组件共用注入的时钟；配合 mock 时钟可确定性地驱动
// 维护周期与指标上报。
func WithClock(clk clock.Clock) Option {
	return func(o *nodeOptions) error {
		if clk == nil {
			return fmt.Errorf("with clock: nil clock")
		}
		o.clk = clk
		return nil
	}
}
