package swap

import (
	"fmt"
	"math/big"

	"github.com/briannichols0702/moneybuybot/internal/bot/chain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RawSwap 解码后的UniswapV2 Swap日志
type RawSwap struct {
	Amount0In   *big.Int
	Amount1In   *big.Int
	Amount0Out  *big.Int
	Amount1Out  *big.Int
	Recipient   common.Address
	TxHash      common.Hash
	BlockNumber uint64
}

// BuyEvent 被判定为买入的swap，金额为链上原始整数
type BuyEvent struct {
	AmountIn    *big.Int
	AmountOut   *big.Int
	InIsToken0  bool
	Recipient   common.Address
	TxHash      common.Hash
	BlockNumber uint64
}

// ParseLog 解码Swap日志
// data为4个uint256金额，topics[1]/topics[2]为sender/to
func ParseLog(lg types.Log) (*RawSwap, error) {
	if len(lg.Topics) < 3 || lg.Topics[0] != chain.SwapEventTopic {
		return nil, fmt.Errorf("not a swap log: topics=%d", len(lg.Topics))
	}
	if len(lg.Data) < 4*32 {
		return nil, fmt.Errorf("swap log data too short: %d bytes", len(lg.Data))
	}

	amount0In, err := chain.ParseUint256(lg.Data, 0)
	if err != nil {
		return nil, err
	}
	amount1In, err := chain.ParseUint256(lg.Data, 1)
	if err != nil {
		return nil, err
	}
	amount0Out, err := chain.ParseUint256(lg.Data, 2)
	if err != nil {
		return nil, err
	}
	amount1Out, err := chain.ParseUint256(lg.Data, 3)
	if err != nil {
		return nil, err
	}

	return &RawSwap{
		Amount0In:   amount0In,
		Amount1In:   amount1In,
		Amount0Out:  amount0Out,
		Amount1Out:  amount1Out,
		Recipient:   common.BytesToAddress(lg.Topics[2].Bytes()[12:]),
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
	}, nil
}

// Classify 判定是否为买入
// 买入形态：一条in腿为正且结构对侧的out腿为正
func Classify(raw *RawSwap) (*BuyEvent, bool) {
	switch {
	case raw.Amount0In.Sign() > 0 && raw.Amount1Out.Sign() > 0:
		return &BuyEvent{
			AmountIn:    raw.Amount0In,
			AmountOut:   raw.Amount1Out,
			InIsToken0:  true,
			Recipient:   raw.Recipient,
			TxHash:      raw.TxHash,
			BlockNumber: raw.BlockNumber,
		}, true
	case raw.Amount1In.Sign() > 0 && raw.Amount0Out.Sign() > 0:
		return &BuyEvent{
			AmountIn:    raw.Amount1In,
			AmountOut:   raw.Amount0Out,
			InIsToken0:  false,
			Recipient:   raw.Recipient,
			TxHash:      raw.TxHash,
			BlockNumber: raw.BlockNumber,
		}, true
	default:
		// 纯卖出、全零等无买入腿的形态直接跳过
		return nil, false
	}
}
