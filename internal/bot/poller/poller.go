package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/briannichols0702/moneybuybot/internal/bot/alert"
	"github.com/briannichols0702/moneybuybot/internal/bot/chain"
	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/monitor"
	"github.com/briannichols0702/moneybuybot/internal/bot/retry"
	"github.com/briannichols0702/moneybuybot/internal/bot/stats"
	"github.com/briannichols0702/moneybuybot/internal/bot/swap"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ErrNotStarted Tick在Start之前被调用
var ErrNotStarted = errors.New("poller session not started")

// Notifier 告警推送能力
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// SnapshotFetcher 池子快照能力
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (*stats.Snapshot, error)
}

// Session 轮询会话，游标与收件chat由它独占
// 游标只在整批日志处理完后前进，不回退，进程重启后重新锚定当前高度
type Session struct {
	head      chain.HeadReader
	logs      chain.LogReader
	snapshots SnapshotFetcher
	formatter *alert.Formatter
	notifier  Notifier
	chatID    int64
	retryCfg  config.RetryConfig
	tl        *zap.Logger

	mu     sync.Mutex // tick互斥，到期时上一tick未结束则跳过
	cursor uint64
	active bool
}

func NewSession(
	head chain.HeadReader,
	logs chain.LogReader,
	snapshots SnapshotFetcher,
	formatter *alert.Formatter,
	notifier Notifier,
	chatID int64,
	retryCfg config.RetryConfig,
	tl *zap.Logger,
) *Session {
	return &Session{
		head:      head,
		logs:      logs,
		snapshots: snapshots,
		formatter: formatter,
		notifier:  notifier,
		chatID:    chatID,
		retryCfg:  retryCfg,
		tl:        tl,
	}
}

// Start 锚定游标到当前链高度，启动前的历史事件不再回放
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}

	height, err := retry.Do(ctx, s.tl, "block_number", s.retryCfg.Attempts(), s.retryCfg.Delay(), s.head.BlockNumber)
	if err != nil {
		return err
	}

	s.cursor = height
	s.active = true
	s.tl.Info("Poller session started", zap.Uint64("cursor", height))
	return nil
}

// Cursor 当前已扫完的区块高度
func (s *Session) Cursor() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Tick 扫描一轮新增区块
func (s *Session) Tick(ctx context.Context) error {
	if !s.mu.TryLock() {
		monitor.PollTicksSkipped.Inc()
		s.tl.Debug("Previous tick still running, skipping")
		return nil
	}
	defer s.mu.Unlock()

	if !s.active {
		return ErrNotStarted
	}

	start := time.Now()
	monitor.PollTicks.Inc()
	defer func() {
		monitor.TickDuration.Observe(time.Since(start).Seconds())
	}()

	attempts, delay := s.retryCfg.Attempts(), s.retryCfg.Delay()

	current, err := retry.Do(ctx, s.tl, "block_number", attempts, delay, s.head.BlockNumber)
	if err != nil {
		return err
	}
	if current <= s.cursor {
		return nil
	}

	fromBlock, toBlock := s.cursor+1, current
	logs, err := retry.Do(ctx, s.tl, "filter_swap_logs", attempts, delay,
		func(ctx context.Context) ([]ethtypes.Log, error) {
			return s.logs.FilterSwapLogs(ctx, fromBlock, toBlock)
		})
	if err != nil {
		// 游标不动，下个tick重扫同一区间
		monitor.PollRangeFailures.Inc()
		return err
	}

	// 日志按返回顺序串行处理，单条失败不影响后续
	for _, lg := range logs {
		monitor.SwapLogsScanned.Inc()
		s.processLog(ctx, lg)
	}

	s.cursor = current
	s.tl.Debug("Tick complete",
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", toBlock),
		zap.Int("logs", len(logs)))
	return nil
}

func (s *Session) processLog(ctx context.Context, lg ethtypes.Log) {
	raw, err := swap.ParseLog(lg)
	if err != nil {
		s.tl.Warn("Failed to decode swap log",
			zap.String("tx", lg.TxHash.Hex()),
			zap.Error(err))
		return
	}

	ev, ok := swap.Classify(raw)
	if !ok {
		return
	}
	monitor.BuysDetected.Inc()

	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		// 半成品快照直接压制告警
		s.tl.Warn("Snapshot unavailable, suppressing alert",
			zap.String("tx", ev.TxHash.Hex()),
			zap.Error(err))
		return
	}

	text := s.formatter.FormatBuy(ev, snapshot)
	if err := s.notifier.SendMessage(ctx, s.chatID, text); err != nil {
		// 告警尽力而为，失败只记日志
		monitor.AlertsSent.WithLabelValues("failure").Inc()
		s.tl.Error("Failed to send buy alert",
			zap.String("tx", ev.TxHash.Hex()),
			zap.Error(err))
		return
	}
	monitor.AlertsSent.WithLabelValues("success").Inc()
	s.tl.Info("Buy alert sent",
		zap.String("tx", ev.TxHash.Hex()),
		zap.Uint64("block", ev.BlockNumber))
}
