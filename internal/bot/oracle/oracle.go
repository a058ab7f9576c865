package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/briannichols0702/moneybuybot/internal/bot/chain"
	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/retry"
	"github.com/briannichols0702/moneybuybot/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidQuote router返回的报价缺失或无效
var ErrInvalidQuote = errors.New("invalid router quote response")

// Oracle 两跳USD定价：base→intermediate→stable
// 不做缓存，每次调用都取最新报价
type Oracle struct {
	quoter   chain.RouterQuoter
	tokens   config.TokensConfig
	retryCfg config.RetryConfig
	tl       *zap.Logger
}

func New(quoter chain.RouterQuoter, tokens config.TokensConfig, retryCfg config.RetryConfig, tl *zap.Logger) *Oracle {
	return &Oracle{
		quoter:   quoter,
		tokens:   tokens,
		retryCfg: retryCfg,
		tl:       tl,
	}
}

// BaseUsdPrice 返回1单位base资产的USD价格
func (o *Oracle) BaseUsdPrice(ctx context.Context) (decimal.Decimal, error) {
	rateBaseToIntermediate, err := o.quoteUnit(ctx, o.tokens.Base, o.tokens.Intermediate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("base->intermediate hop: %w", err)
	}

	rateIntermediateToStable, err := o.quoteUnit(ctx, o.tokens.Intermediate, o.tokens.Stable)
	if err != nil {
		return decimal.Zero, fmt.Errorf("intermediate->stable hop: %w", err)
	}

	return rateBaseToIntermediate.Mul(rateIntermediateToStable), nil
}

// quoteUnit 报价1单位from代币沿[from, to]路径的产出，并按to精度归一化
func (o *Oracle) quoteUnit(ctx context.Context, from, to config.TokenConfig) (decimal.Decimal, error) {
	amountIn := utils.OneUnit(from.Decimals)
	path := []common.Address{
		common.HexToAddress(from.Address),
		common.HexToAddress(to.Address),
	}

	amounts, err := retry.Do(ctx, o.tl, "router_quote", o.retryCfg.Attempts(), o.retryCfg.Delay(),
		func(ctx context.Context) ([]*big.Int, error) {
			return o.quoter.GetAmountsOut(ctx, amountIn, path)
		})
	if err != nil {
		return decimal.Zero, err
	}

	if len(amounts) < 2 || amounts[len(amounts)-1] == nil || amounts[len(amounts)-1].Sign() == 0 {
		return decimal.Zero, fmt.Errorf("%w: path %s->%s returned %d amounts",
			ErrInvalidQuote, from.Address, to.Address, len(amounts))
	}

	return utils.AdjustDecimals(amounts[len(amounts)-1], to.Decimals), nil
}
