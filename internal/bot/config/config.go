package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/briannichols0702/moneybuybot/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Tokens   TokensConfig   `mapstructure:"tokens"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ChainConfig 链节点配置
type ChainConfig struct {
	RpcURL              string `mapstructure:"rpc_url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
}

// PoolConfig 被监控的交易对与路由合约
type PoolConfig struct {
	PairAddress   string `mapstructure:"pair_address"`
	RouterAddress string `mapstructure:"router_address"`
}

// TokenConfig 单个代币地址、精度与展示符号
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Decimals uint8  `mapstructure:"decimals"`
	Symbol   string `mapstructure:"symbol"`
}

// TokensConfig 定价路径上的四种代币
// target 为被追踪代币，base 为池内桥接资产，
// intermediate/stable 为两跳报价路径的后两站
type TokensConfig struct {
	Target       TokenConfig `mapstructure:"target"`
	Base         TokenConfig `mapstructure:"base"`
	Intermediate TokenConfig `mapstructure:"intermediate"`
	Stable       TokenConfig `mapstructure:"stable"`
}

// TelegramConfig Telegram bot 配置
type TelegramConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Token     string `mapstructure:"token"`
	ChatID    int64  `mapstructure:"chat_id"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

// RetryConfig RPC 重试配置
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	DelayMs     int `mapstructure:"delay_ms"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

func (c *ChainConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c *RetryConfig) Delay() time.Duration {
	if c.DelayMs <= 0 {
		return time.Second
	}
	return time.Duration(c.DelayMs) * time.Millisecond
}

func (c *RetryConfig) Attempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

func InitConfig() Config {
	var config Config

	viper.SetConfigName("config.bot")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config/")

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	if err := mapstructure.Decode(viper.AllSettings(), &config); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	return config
}

// Validate 缺少任一必填项视为启动失败
func (c *Config) Validate() error {
	var missing []string

	required := map[string]string{
		"chain.rpc_url":               c.Chain.RpcURL,
		"pool.pair_address":           c.Pool.PairAddress,
		"pool.router_address":         c.Pool.RouterAddress,
		"tokens.target.address":       c.Tokens.Target.Address,
		"tokens.base.address":         c.Tokens.Base.Address,
		"tokens.intermediate.address": c.Tokens.Intermediate.Address,
		"tokens.stable.address":       c.Tokens.Stable.Address,
		"telegram.token":              c.Telegram.Token,
	}
	for key, val := range required {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if c.Telegram.ChatID == 0 {
		missing = append(missing, "telegram.chat_id")
	}
	// 所有精度必须显式配置，不允许隐式为0
	for key, dec := range map[string]uint8{
		"tokens.target.decimals":       c.Tokens.Target.Decimals,
		"tokens.base.decimals":         c.Tokens.Base.Decimals,
		"tokens.intermediate.decimals": c.Tokens.Intermediate.Decimals,
		"tokens.stable.decimals":       c.Tokens.Stable.Decimals,
	} {
		if dec == 0 {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config keys: %s", strings.Join(missing, ", "))
	}

	return nil
}

func WatchConfig(config *Config) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := InitConfig()
		// 运行期仅热更新日志级别，地址类配置重启生效
		config.Log = newConfig.Log
		logger.SetLogLevel(config.Log.Level)
	})
}
