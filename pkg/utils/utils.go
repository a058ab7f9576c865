package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ChecksumAddress 将 EVM 地址转换为 EIP-55 Checksum 格式
func ChecksumAddress(addr string) string {
	if addr == "" {
		return ""
	}

	addr = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(addr)), "0x")
	return common.HexToAddress("0x" + addr).Hex()
}

// SameAddress 地址比较，忽略大小写
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// AdjustDecimals 调整精度显示
func AdjustDecimals(value *big.Int, decimals uint8) decimal.Decimal {
	decimalValue := decimal.NewFromBigInt(value, 0)
	divisor := decimal.New(1, int32(decimals))
	return decimalValue.Div(divisor)
}

// ToRawUnits 还原为链上原始整数
func ToRawUnits(value decimal.Decimal, decimals uint8) *big.Int {
	return value.Mul(decimal.New(1, int32(decimals))).BigInt()
}

// OneUnit 1个代币单位对应的原始整数，10^decimals
func OneUnit(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// FormatUnits 格式化单位转换
func FormatUnits(amount *big.Int, decimals uint8) string {
	return AdjustDecimals(amount, decimals).StringFixed(int32(min(decimals, 6)))
}

// ShortAddress 缩短地址显示 0x1234...abcd
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
