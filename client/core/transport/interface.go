// Package transport provides the node connection used by the attendance contract client.
package transport

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Node 节点连接 - CLI 与链通信的唯一通道
// 合约调用、交易提交、回执查询都经由此接口
type Node interface {
	bind.ContractBackend

	// ChainID 获取链ID
	ChainID(ctx context.Context) (*big.Int, error)

	// TransactionReceipt 获取交易回执，未上链时返回 ethereum.NotFound
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// Close 关闭连接
	Close()
}

// DialFunc 建立节点连接
type DialFunc func(ctx context.Context, endpoint string) (Node, error)
