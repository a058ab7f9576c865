package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// 合约调用选择子，来自函数签名keccak前4字节
var (
	selGetReserves   = []byte{0x09, 0x02, 0xf1, 0xac} // getReserves()
	selToken0        = []byte{0x0d, 0xfe, 0x16, 0x81} // token0()
	selToken1        = []byte{0xd2, 0x12, 0x20, 0xa7} // token1()
	selDecimals      = []byte{0x31, 0x3c, 0xe5, 0x67} // decimals()
	selTotalSupply   = []byte{0x18, 0x16, 0x0d, 0xdd} // totalSupply()
	selGetAmountsOut = []byte{0xd0, 0x6c, 0xa6, 0x1f} // getAmountsOut(uint256,address[])
)

// SwapEventTopic UniswapV2 Swap(address,uint256,uint256,uint256,uint256,address)
var SwapEventTopic = crypto.Keccak256Hash([]byte("Swap(address,uint256,uint256,uint256,uint256,address)"))

const wordSize = 32

// GetAmountsOutCallData 编码router报价调用，path为动态数组
func GetAmountsOutCallData(amountIn *big.Int, path []common.Address) []byte {
	data := make([]byte, 0, 4+wordSize*(3+len(path)))
	data = append(data, selGetAmountsOut...)
	data = append(data, common.LeftPadBytes(amountIn.Bytes(), wordSize)...)
	// 动态参数偏移：跳过amountIn和offset两个字
	data = append(data, common.LeftPadBytes(big.NewInt(2*wordSize).Bytes(), wordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(path))).Bytes(), wordSize)...)
	for _, addr := range path {
		data = append(data, common.LeftPadBytes(addr.Bytes(), wordSize)...)
	}
	return data
}

// word 取返回数据中的第i个32字节字
func word(data []byte, i int) ([]byte, error) {
	start := i * wordSize
	if len(data) < start+wordSize {
		return nil, fmt.Errorf("return data too short: want word %d, have %d bytes", i, len(data))
	}
	return data[start : start+wordSize], nil
}

// ParseUint256 解析单字返回值
func ParseUint256(data []byte, i int) (*big.Int, error) {
	w, err := word(data, i)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// ParseAddress 解析地址返回值
func ParseAddress(data []byte, i int) (common.Address, error) {
	w, err := word(data, i)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(w[wordSize-common.AddressLength:]), nil
}

// ParseUint256Array 解析uint256[]返回值（offset+len+items布局）
func ParseUint256Array(data []byte) ([]*big.Int, error) {
	offset, err := ParseUint256(data, 0)
	if err != nil {
		return nil, err
	}
	if !offset.IsInt64() || offset.Int64()%wordSize != 0 {
		return nil, fmt.Errorf("malformed array offset: %s", offset)
	}
	base := int(offset.Int64()) / wordSize

	length, err := ParseUint256(data, base)
	if err != nil {
		return nil, err
	}
	if !length.IsInt64() || length.Int64() < 0 || length.Int64() > 1024 {
		return nil, fmt.Errorf("malformed array length: %s", length)
	}

	out := make([]*big.Int, 0, length.Int64())
	for i := 0; i < int(length.Int64()); i++ {
		v, err := ParseUint256(data, base+1+i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
