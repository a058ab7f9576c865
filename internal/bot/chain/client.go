package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/briannichols0702/moneybuybot/internal/bot/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// HeadReader 读取当前链高度
type HeadReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// LogReader 按区间拉取交易对的Swap日志
type LogReader interface {
	FilterSwapLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
}

// PairReader 读取交易对储备与两侧代币
type PairReader interface {
	GetReserves(ctx context.Context) (reserve0, reserve1 *big.Int, err error)
	Token0(ctx context.Context) (common.Address, error)
	Token1(ctx context.Context) (common.Address, error)
}

// RouterQuoter router报价
type RouterQuoter interface {
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
}

// TokenReader 读取ERC20元数据
type TokenReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
}

// Client 所有链上只读访问的具体实现
type Client struct {
	eth    *ethclient.Client
	pair   common.Address
	router common.Address
	tl     *zap.Logger

	// decimals链上不可变，首读后缓存
	metaCache *cache.Cache
}

func NewClient(eth *ethclient.Client, cfg config.PoolConfig, tl *zap.Logger) *Client {
	return &Client{
		eth:       eth,
		pair:      common.HexToAddress(cfg.PairAddress),
		router:    common.HexToAddress(cfg.RouterAddress),
		tl:        tl,
		metaCache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

func (c *Client) FilterSwapLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.pair},
		Topics:    [][]common.Hash{{SwapEventTopic}},
	}
	return c.eth.FilterLogs(ctx, query)
}

func (c *Client) GetReserves(ctx context.Context) (*big.Int, *big.Int, error) {
	data, err := c.call(ctx, c.pair, selGetReserves)
	if err != nil {
		return nil, nil, fmt.Errorf("getReserves call failed: %w", err)
	}

	// 返回 (reserve0, reserve1, blockTimestampLast)
	reserve0, err := ParseUint256(data, 0)
	if err != nil {
		return nil, nil, err
	}
	reserve1, err := ParseUint256(data, 1)
	if err != nil {
		return nil, nil, err
	}
	return reserve0, reserve1, nil
}

func (c *Client) Token0(ctx context.Context) (common.Address, error) {
	data, err := c.call(ctx, c.pair, selToken0)
	if err != nil {
		return common.Address{}, fmt.Errorf("token0 call failed: %w", err)
	}
	return ParseAddress(data, 0)
}

func (c *Client) Token1(ctx context.Context) (common.Address, error) {
	data, err := c.call(ctx, c.pair, selToken1)
	if err != nil {
		return common.Address{}, fmt.Errorf("token1 call failed: %w", err)
	}
	return ParseAddress(data, 0)
}

func (c *Client) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	data, err := c.call(ctx, c.router, GetAmountsOutCallData(amountIn, path))
	if err != nil {
		return nil, fmt.Errorf("getAmountsOut call failed: %w", err)
	}
	return ParseUint256Array(data)
}

func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	key := "decimals:" + token.Hex()
	if v, found := c.metaCache.Get(key); found {
		return v.(uint8), nil
	}

	data, err := c.call(ctx, token, selDecimals)
	if err != nil {
		return 0, fmt.Errorf("decimals call failed for %s: %w", token.Hex(), err)
	}
	v, err := ParseUint256(data, 0)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > 77 {
		return 0, fmt.Errorf("implausible decimals for %s: %s", token.Hex(), v)
	}

	dec := uint8(v.Uint64())
	c.metaCache.Set(key, dec, cache.NoExpiration)
	return dec, nil
}

func (c *Client) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := c.call(ctx, token, selTotalSupply)
	if err != nil {
		return nil, fmt.Errorf("totalSupply call failed for %s: %w", token.Hex(), err)
	}
	return ParseUint256(data, 0)
}

// VerifyTokenDecimals 启动时核对配置精度与链上精度
func (c *Client) VerifyTokenDecimals(ctx context.Context, tokens config.TokensConfig) error {
	checks := []struct {
		name string
		cfg  config.TokenConfig
	}{
		{"target", tokens.Target},
		{"base", tokens.Base},
		{"intermediate", tokens.Intermediate},
		{"stable", tokens.Stable},
	}

	for _, check := range checks {
		onchain, err := c.Decimals(ctx, common.HexToAddress(check.cfg.Address))
		if err != nil {
			return fmt.Errorf("verify %s token decimals: %w", check.name, err)
		}
		if onchain != check.cfg.Decimals {
			return fmt.Errorf("%s token decimals mismatch: config %d, onchain %d (%s)",
				check.name, check.cfg.Decimals, onchain, check.cfg.Address)
		}
		c.tl.Debug("Token decimals verified",
			zap.String("token", check.name),
			zap.Uint8("decimals", onchain))
	}
	return nil
}

func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
}
