package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/briannichols0702/moneybuybot/internal/bot"
	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	logger.InitTrace("moneybuybot", "bot")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("bot")
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	// 启动配置热加载监听
	go config.WatchConfig(&cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	core, err := bot.New(ctx, cfg, tl)
	if err != nil {
		tl.Fatal("Failed to initialize bot", zap.Error(err))
	}

	// 启动 bot
	go func() {
		tl.Info("Starting moneybuybot...")
		if err := core.Start(ctx); err != nil {
			tl.Fatal("Bot exited with error", zap.Error(err))
		}
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")

	cancel()
	core.Stop(context.Background())

	tl.Info("Shutdown complete")
}
