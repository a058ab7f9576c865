package evm_client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const dialTimeout = 5 * time.Second

// Dial 建立evm节点连接
func Dial(ctx context.Context, rawurl string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("dial evm node %s: %w", rawurl, err)
	}

	return client, nil
}
