package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"plumise.backend/internal/domain/entities"
)

var dialEVMClient = func(rpcURL string) (ethBackend, error) {
	return ethclient.Dial(rpcURL)
}

// ethBackend is the slice of the RPC client the verifier needs. ethclient.Client
// satisfies it; tests inject a fake.
type ethBackend interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// EVMClient reads payment transactions from an EVM chain over JSON-RPC.
type EVMClient struct {
	client ethBackend
	rpcURL string
}

// NewEVMClient creates a new EVM client. Dialing is lazy on the ethclient
// side, so this does not hit the network.
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}
	return &EVMClient{client: client, rpcURL: rpcURL}, nil
}

func newEVMClientWithBackend(backend ethBackend) *EVMClient {
	return &EVMClient{client: backend}
}

// GetTransaction looks up a transaction by hash and recovers its sender.
// Returns (nil, nil) when the chain has no such transaction.
func (c *EVMClient) GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error) {
	tx, _, err := c.client.TransactionByHash(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover transaction sender: %w", err)
	}

	out := &entities.ChainTransaction{
		Hash:    tx.Hash().Hex(),
		From:    from.Hex(),
		Value:   new(big.Int).Set(tx.Value()),
		ChainID: tx.ChainId(),
	}
	if to := tx.To(); to != nil {
		out.To = to.Hex()
	}
	return out, nil
}

// GetTransactionReceipt looks up a transaction receipt. Returns (nil, nil)
// for transactions that are unknown or not yet mined.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entities.ChainReceipt{
		Succeeded:   receipt.Status == types.ReceiptStatusSuccessful,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// LatestBlockNumber returns the chain head block number.
func (c *EVMClient) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// Close closes the underlying connection when the backend supports it.
func (c *EVMClient) Close() {
	if closer, ok := c.client.(interface{ Close() }); ok {
		closer.Close()
	}
}
