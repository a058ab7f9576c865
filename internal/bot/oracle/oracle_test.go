package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testTokens = config.TokensConfig{
	Base:         config.TokenConfig{Address: "0x000000000000000000000000000000000000b00b", Decimals: 18},
	Intermediate: config.TokenConfig{Address: "0x000000000000000000000000000000000000beef", Decimals: 18},
	Stable:       config.TokenConfig{Address: "0x000000000000000000000000000000000000cafe", Decimals: 6},
}

var testRetry = config.RetryConfig{MaxAttempts: 2, DelayMs: 1}

// fakeQuoter 按路径首地址返回预设报价
type fakeQuoter struct {
	quotes    map[common.Address][]*big.Int
	errs      map[common.Address]error
	amountIns map[common.Address]*big.Int
	calls     int
}

func (f *fakeQuoter) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	f.calls++
	if f.amountIns == nil {
		f.amountIns = make(map[common.Address]*big.Int)
	}
	f.amountIns[path[0]] = amountIn
	if err := f.errs[path[0]]; err != nil {
		return nil, err
	}
	return f.quotes[path[0]], nil
}

func TestBaseUsdPriceComposition(t *testing.T) {
	baseAddr := common.HexToAddress(testTokens.Base.Address)
	intermediateAddr := common.HexToAddress(testTokens.Intermediate.Address)

	quoter := &fakeQuoter{quotes: map[common.Address][]*big.Int{
		// 1 base (1e18) -> 0.3 intermediate (3e17 @18)
		baseAddr: {utils.OneUnit(18), big.NewInt(3e17)},
		// 1 intermediate (1e18) -> 2.0 stable (2e6 @6)
		intermediateAddr: {utils.OneUnit(18), big.NewInt(2_000_000)},
	}}

	o := New(quoter, testTokens, testRetry, zap.NewNop())
	got, err := o.BaseUsdPrice(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := decimal.RequireFromString("0.6")
	if !got.Equal(want) {
		t.Errorf("BaseUsdPrice = %s, want %s", got, want)
	}

	// 每跳输入恒为1单位源代币
	if quoter.amountIns[baseAddr].Cmp(utils.OneUnit(18)) != 0 {
		t.Errorf("base hop amountIn = %s", quoter.amountIns[baseAddr])
	}
	if quoter.amountIns[intermediateAddr].Cmp(utils.OneUnit(18)) != 0 {
		t.Errorf("intermediate hop amountIn = %s", quoter.amountIns[intermediateAddr])
	}
}

func TestBaseUsdPriceEmptyQuote(t *testing.T) {
	baseAddr := common.HexToAddress(testTokens.Base.Address)
	intermediateAddr := common.HexToAddress(testTokens.Intermediate.Address)

	quoter := &fakeQuoter{quotes: map[common.Address][]*big.Int{
		baseAddr:         {},
		intermediateAddr: {utils.OneUnit(18), big.NewInt(2_000_000)},
	}}

	o := New(quoter, testTokens, testRetry, zap.NewNop())
	if _, err := o.BaseUsdPrice(context.Background()); !errors.Is(err, ErrInvalidQuote) {
		t.Errorf("expected ErrInvalidQuote, got %v", err)
	}
}

func TestBaseUsdPriceZeroQuote(t *testing.T) {
	baseAddr := common.HexToAddress(testTokens.Base.Address)
	intermediateAddr := common.HexToAddress(testTokens.Intermediate.Address)

	quoter := &fakeQuoter{quotes: map[common.Address][]*big.Int{
		baseAddr:         {utils.OneUnit(18), big.NewInt(3e17)},
		intermediateAddr: {utils.OneUnit(18), big.NewInt(0)},
	}}

	o := New(quoter, testTokens, testRetry, zap.NewNop())
	if _, err := o.BaseUsdPrice(context.Background()); !errors.Is(err, ErrInvalidQuote) {
		t.Errorf("expected ErrInvalidQuote, got %v", err)
	}
}

func TestBaseUsdPriceQuoterFailureExhaustsRetries(t *testing.T) {
	baseAddr := common.HexToAddress(testTokens.Base.Address)

	quoter := &fakeQuoter{errs: map[common.Address]error{
		baseAddr: errors.New("rpc down"),
	}}

	o := New(quoter, testTokens, testRetry, zap.NewNop())
	if _, err := o.BaseUsdPrice(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if quoter.calls != testRetry.MaxAttempts {
		t.Errorf("quoter called %d times, want %d", quoter.calls, testRetry.MaxAttempts)
	}
}
