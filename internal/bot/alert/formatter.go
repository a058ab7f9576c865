package alert

import (
	"fmt"
	"strings"

	"github.com/briannichols0702/moneybuybot/internal/bot/config"
	"github.com/briannichols0702/moneybuybot/internal/bot/stats"
	"github.com/briannichols0702/moneybuybot/internal/bot/swap"
	"github.com/briannichols0702/moneybuybot/pkg/utils"

	"github.com/shopspring/decimal"
)

// Formatter 渲染Telegram买入告警文本（Markdown）
type Formatter struct {
	tokens config.TokensConfig
}

func NewFormatter(tokens config.TokensConfig) *Formatter {
	return &Formatter{tokens: tokens}
}

// FormatBuy 买入腿固定为base资产付款、target代币收款
func (f *Formatter) FormatBuy(ev *swap.BuyEvent, snap *stats.Snapshot) string {
	baseSymbol := symbolOr(f.tokens.Base.Symbol, "BASE")
	targetSymbol := symbolOr(f.tokens.Target.Symbol, "TOKEN")

	spent := utils.AdjustDecimals(ev.AmountIn, f.tokens.Base.Decimals)
	received := utils.AdjustDecimals(ev.AmountOut, f.tokens.Target.Decimals)

	var b strings.Builder
	b.WriteString("🚨 *New Buy!*\n\n")
	fmt.Fprintf(&b, "💰 Spent: `%s %s`\n", formatAmount(spent), baseSymbol)
	fmt.Fprintf(&b, "🪙 Received: `%s %s`\n", formatAmount(received), targetSymbol)
	fmt.Fprintf(&b, "👤 Buyer: `%s`\n\n", utils.ShortAddress(ev.Recipient.Hex()))
	fmt.Fprintf(&b, "📈 Price: `$%s`\n", formatPrice(snap.PriceUsd))
	fmt.Fprintf(&b, "🏦 Market Cap: `$%s`\n", formatAmount(snap.MarketCapUsd))
	fmt.Fprintf(&b, "💧 Liquidity: `$%s`\n", formatAmount(snap.LiquidityUsd))
	fmt.Fprintf(&b, "🔢 Supply: `%s`", formatAmount(snap.Supply))

	return b.String()
}

func symbolOr(symbol, fallback string) string {
	if symbol == "" {
		return fallback
	}
	return symbol
}

// formatAmount 常规数量展示，最多保留4位小数
func formatAmount(v decimal.Decimal) string {
	return v.Round(4).String()
}

// formatPrice 低价代币价格需要更多小数位
func formatPrice(v decimal.Decimal) string {
	if v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return v.Round(4).String()
	}
	return v.Round(12).String()
}
