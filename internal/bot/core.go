package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/briannichols0702/moneybuybot/internal/bot/alert"
	"github.com/briannichols0702/moneybuybot/internal/bot/chain"
	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/job"
	"github.com/briannichols0702/moneybuybot/internal/bot/monitor"
	"github.com/briannichols0702/moneybuybot/internal/bot/oracle"
	"github.com/briannichols0702/moneybuybot/internal/bot/poller"
	"github.com/briannichols0702/moneybuybot/internal/bot/stats"
	"github.com/briannichols0702/moneybuybot/pkg/evm_client"
	"github.com/briannichols0702/moneybuybot/pkg/telegram"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const startupTimeout = 30 * time.Second

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	eth       *ethclient.Client
	session   *poller.Session
	scheduler *job.Scheduler
	metrics   *monitor.MetricsServer
}

func New(ctx context.Context, cfg config.Config, tl *zap.Logger) (*Core, error) {
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// 初始化链上客户端
	eth, err := evm_client.Dial(startupCtx, cfg.Chain.RpcURL)
	if err != nil {
		return nil, err
	}
	chainClient := chain.NewClient(eth, cfg.Pool, tl)

	// 配置精度与链上精度必须一致
	if err := chainClient.VerifyTokenDecimals(startupCtx, cfg.Tokens); err != nil {
		return nil, err
	}

	// 校验bot凭证，拿不到身份视为启动失败
	tg := telegram.NewClient(telegram.Config{
		BaseURL:   cfg.Telegram.BaseURL,
		Token:     cfg.Telegram.Token,
		RateLimit: cfg.Telegram.RateLimit,
		Timeout:   cfg.Telegram.Timeout,
	}, tl)
	me, err := tg.GetMe(startupCtx)
	if err != nil {
		return nil, fmt.Errorf("telegram credential check failed: %w", err)
	}
	tl.Info("Telegram bot identified", zap.String("username", me.Username))

	// 组装价格与快照管道
	priceOracle := oracle.New(chainClient, cfg.Tokens, cfg.Retry, tl)
	aggregator := stats.New(chainClient, chainClient, priceOracle, cfg.Tokens, cfg.Retry, tl)
	formatter := alert.NewFormatter(cfg.Tokens)
	session := poller.NewSession(chainClient, chainClient, aggregator, formatter, tg, cfg.Telegram.ChatID, cfg.Retry, tl)

	// 注册轮询作业
	scheduler := job.NewScheduler(tl)
	scheduler.RegisterJob("poll_swaps", cfg.Chain.PollInterval(), session.Tick)

	return &Core{
		cfg:       cfg,
		tl:        tl,
		eth:       eth,
		session:   session,
		scheduler: scheduler,
		metrics:   monitor.NewMetricsServer(cfg.Monitor),
	}, nil
}

// Start 锚定游标并启动轮询，阻塞到ctx取消
func (c *Core) Start(ctx context.Context) error {
	c.tl.Info("Starting bot core...")

	if c.metrics != nil {
		c.metrics.Run()
	}

	// 游标锚定失败无法安全轮询，视为致命
	if err := c.session.Start(ctx); err != nil {
		return fmt.Errorf("establish scan cursor: %w", err)
	}

	c.scheduler.Start(ctx)
	c.tl.Info("Bot started successfully")

	<-ctx.Done()
	c.tl.Info("Shutting down bot due to context cancellation...")
	return nil
}

// Stop 优雅关闭 Core 的所有资源
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping bot core...")

	if c.scheduler != nil {
		c.scheduler.Stop(ctx)
	}

	if c.metrics != nil {
		_ = c.metrics.Stop(ctx)
	}

	if c.eth != nil {
		c.eth.Close()
	}

	c.tl.Info("Bot core stopped.")
}
