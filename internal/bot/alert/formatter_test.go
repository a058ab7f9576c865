package alert

import (
	"math/big"
	"strings"
	"testing"

	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/stats"
	"github.com/briannichols0702/moneybuybot/internal/bot/swap"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

func TestFormatBuy(t *testing.T) {
	f := NewFormatter(config.TokensConfig{
		Target: config.TokenConfig{Decimals: 9, Symbol: "MONEY"},
		Base:   config.TokenConfig{Decimals: 18, Symbol: "WBNB"},
	})

	ev := &swap.BuyEvent{
		AmountIn:  big.NewInt(1_500_000_000_000_000_000), // 1.5 WBNB
		AmountOut: big.NewInt(5_000_000_000),             // 5 MONEY
		Recipient: common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"),
	}
	snap := &stats.Snapshot{
		PriceUsd:     decimal.RequireFromString("0.000012"),
		MarketCapUsd: decimal.NewFromInt(10000),
		LiquidityUsd: decimal.NewFromInt(2000),
		Supply:       decimal.NewFromInt(10000),
	}

	text := f.FormatBuy(ev, snap)

	for _, want := range []string{
		"*New Buy!*",
		"`1.5 WBNB`",
		"`5 MONEY`",
		"`0xbb4C...095c`",
		"`$0.000012`",
		"`$10000`",
		"`$2000`",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted alert missing %q:\n%s", want, text)
		}
	}
}

func TestFormatBuySymbolFallback(t *testing.T) {
	f := NewFormatter(config.TokensConfig{
		Target: config.TokenConfig{Decimals: 9},
		Base:   config.TokenConfig{Decimals: 18},
	})

	ev := &swap.BuyEvent{
		AmountIn:  big.NewInt(1),
		AmountOut: big.NewInt(1),
		Recipient: common.HexToAddress("0x01"),
	}
	snap := &stats.Snapshot{}

	text := f.FormatBuy(ev, snap)
	if !strings.Contains(text, "BASE") || !strings.Contains(text, "TOKEN") {
		t.Errorf("fallback symbols missing:\n%s", text)
	}
}
