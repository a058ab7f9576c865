package chain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestSelectorsMatchSignatures(t *testing.T) {
	cases := []struct {
		sig string
		sel []byte
	}{
		{"getReserves()", selGetReserves},
		{"token0()", selToken0},
		{"token1()", selToken1},
		{"decimals()", selDecimals},
		{"totalSupply()", selTotalSupply},
		{"getAmountsOut(uint256,address[])", selGetAmountsOut},
	}

	for _, c := range cases {
		want := crypto.Keccak256([]byte(c.sig))[:4]
		if !bytes.Equal(c.sel, want) {
			t.Errorf("selector for %s = %x, want %x", c.sig, c.sel, want)
		}
	}
}

func TestSwapEventTopic(t *testing.T) {
	want := common.HexToHash("0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822")
	if SwapEventTopic != want {
		t.Errorf("SwapEventTopic = %s, want %s", SwapEventTopic.Hex(), want.Hex())
	}
}

func TestGetAmountsOutCallData(t *testing.T) {
	amountIn := big.NewInt(1_000_000_000)
	path := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}

	data := GetAmountsOutCallData(amountIn, path)

	if len(data) != 4+32*5 {
		t.Fatalf("calldata length = %d, want %d", len(data), 4+32*5)
	}
	if !bytes.Equal(data[:4], selGetAmountsOut) {
		t.Errorf("selector = %x", data[:4])
	}

	args := data[4:]
	if got, _ := ParseUint256(args, 0); got.Cmp(amountIn) != 0 {
		t.Errorf("amountIn word = %s", got)
	}
	if got, _ := ParseUint256(args, 1); got.Int64() != 64 {
		t.Errorf("offset word = %s, want 64", got)
	}
	if got, _ := ParseUint256(args, 2); got.Int64() != 2 {
		t.Errorf("length word = %s, want 2", got)
	}
	for i, addr := range path {
		got, err := ParseAddress(args, 3+i)
		if err != nil {
			t.Fatal(err)
		}
		if got != addr {
			t.Errorf("path[%d] = %s, want %s", i, got.Hex(), addr.Hex())
		}
	}
}

func TestParseUint256Array(t *testing.T) {
	// offset + len + 2 items
	data := make([]byte, 0, 4*32)
	data = append(data, common.LeftPadBytes(big.NewInt(32).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(2).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(1000).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(2000).Bytes(), 32)...)

	amounts, err := ParseUint256Array(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 2 {
		t.Fatalf("len = %d, want 2", len(amounts))
	}
	if amounts[0].Int64() != 1000 || amounts[1].Int64() != 2000 {
		t.Errorf("amounts = %s, %s", amounts[0], amounts[1])
	}
}

func TestParseUint256ArrayEmpty(t *testing.T) {
	data := make([]byte, 0, 2*32)
	data = append(data, common.LeftPadBytes(big.NewInt(32).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(0).Bytes(), 32)...)

	amounts, err := ParseUint256Array(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 0 {
		t.Errorf("len = %d, want 0", len(amounts))
	}
}

func TestParseUint256ArrayMalformed(t *testing.T) {
	if _, err := ParseUint256Array(nil); err == nil {
		t.Error("expected error for empty data")
	}

	// 长度字声称有元素但数据截断
	data := make([]byte, 0, 2*32)
	data = append(data, common.LeftPadBytes(big.NewInt(32).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(3).Bytes(), 32)...)
	if _, err := ParseUint256Array(data); err == nil {
		t.Error("expected error for truncated array")
	}
}
