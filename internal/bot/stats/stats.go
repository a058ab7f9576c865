package stats

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/briannichols0702/moneybuybot/internal/bot/chain"
	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/monitor"
	"github.com/briannichols0702/moneybuybot/internal/bot/retry"
	"github.com/briannichols0702/moneybuybot/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	// ErrZeroReserve target侧储备为零，无法计算价格
	ErrZeroReserve = errors.New("target token reserve is zero")
	// ErrOracleUnavailable 无USD锚定价，整个快照作废
	ErrOracleUnavailable = errors.New("oracle price unavailable")
	// ErrTokenNotInPool 池子两侧都不是target代币
	ErrTokenNotInPool = errors.New("target token not found in pool")
)

// Snapshot 每次买入告警时新鲜计算的汇总，不持久化
type Snapshot struct {
	PriceUsd     decimal.Decimal
	MarketCapUsd decimal.Decimal
	LiquidityUsd decimal.Decimal
	Supply       decimal.Decimal
}

// UsdPricer base资产USD定价能力
type UsdPricer interface {
	BaseUsdPrice(ctx context.Context) (decimal.Decimal, error)
}

// Aggregator 汇聚池子储备、代币供给与oracle价格
type Aggregator struct {
	pair     chain.PairReader
	token    chain.TokenReader
	pricer   UsdPricer
	tokens   config.TokensConfig
	retryCfg config.RetryConfig
	tl       *zap.Logger
}

func New(pair chain.PairReader, token chain.TokenReader, pricer UsdPricer, tokens config.TokensConfig, retryCfg config.RetryConfig, tl *zap.Logger) *Aggregator {
	return &Aggregator{
		pair:     pair,
		token:    token,
		pricer:   pricer,
		tokens:   tokens,
		retryCfg: retryCfg,
		tl:       tl,
	}
}

// Fetch 计算一份完整快照，任一步失败则整体失败，绝不返回半成品
func (a *Aggregator) Fetch(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snapshot, err := a.fetch(ctx)
	monitor.SnapshotDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitor.SnapshotFailures.Inc()
		return nil, err
	}
	return snapshot, nil
}

func (a *Aggregator) fetch(ctx context.Context) (*Snapshot, error) {
	attempts, delay := a.retryCfg.Attempts(), a.retryCfg.Delay()

	// 并发拉取储备与两侧代币地址
	var (
		reserve0, reserve1 *big.Int
		token0, token1     common.Address
	)
	worker := pool.New().WithContext(ctx).WithCancelOnError()
	worker.Go(func(ctx context.Context) error {
		var err error
		reserve0, reserve1, err = retry.Do2(ctx, a.tl, "pair_reserves", attempts, delay, a.pair.GetReserves)
		return err
	})
	worker.Go(func(ctx context.Context) error {
		var err error
		token0, err = retry.Do(ctx, a.tl, "pair_token0", attempts, delay, a.pair.Token0)
		return err
	})
	worker.Go(func(ctx context.Context) error {
		var err error
		token1, err = retry.Do(ctx, a.tl, "pair_token1", attempts, delay, a.pair.Token1)
		return err
	})
	if err := worker.Wait(); err != nil {
		return nil, fmt.Errorf("fetch pool state: %w", err)
	}

	// 每次读取都重新判定槽位，池子两侧顺序不固定
	var rawTarget, rawBase *big.Int
	switch {
	case utils.SameAddress(token0.Hex(), a.tokens.Target.Address):
		rawTarget, rawBase = reserve0, reserve1
	case utils.SameAddress(token1.Hex(), a.tokens.Target.Address):
		rawTarget, rawBase = reserve1, reserve0
	default:
		return nil, fmt.Errorf("%w: pool is %s/%s", ErrTokenNotInPool, token0.Hex(), token1.Hex())
	}

	reserveTarget := utils.AdjustDecimals(rawTarget, a.tokens.Target.Decimals)
	reserveBase := utils.AdjustDecimals(rawBase, a.tokens.Base.Decimals)

	if reserveTarget.IsZero() {
		return nil, ErrZeroReserve
	}
	priceInBase := reserveBase.Div(reserveTarget)

	baseUsd, err := a.pricer.BaseUsdPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	priceUsd := priceInBase.Mul(baseUsd)

	// 供给精度按链上实时读数归一化
	targetAddr := common.HexToAddress(a.tokens.Target.Address)
	targetDecimals, err := retry.Do(ctx, a.tl, "token_decimals", attempts, delay,
		func(ctx context.Context) (uint8, error) {
			return a.token.Decimals(ctx, targetAddr)
		})
	if err != nil {
		return nil, fmt.Errorf("fetch target decimals: %w", err)
	}
	rawSupply, err := retry.Do(ctx, a.tl, "token_total_supply", attempts, delay,
		func(ctx context.Context) (*big.Int, error) {
			return a.token.TotalSupply(ctx, targetAddr)
		})
	if err != nil {
		return nil, fmt.Errorf("fetch total supply: %w", err)
	}
	supply := utils.AdjustDecimals(rawSupply, targetDecimals)

	return &Snapshot{
		PriceUsd:     priceUsd,
		MarketCapUsd: priceUsd.Mul(supply),
		// 池子两侧价值近似相等，流动性按base侧两倍计
		LiquidityUsd: reserveBase.Mul(baseUsd).Mul(decimal.NewFromInt(2)),
		Supply:       supply,
	}, nil
}
