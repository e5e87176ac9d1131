package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	core "github.com/core-coin/go-core/v2"
	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/accounts/abi/bind"
	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"
	"github.com/core-coin/go-core/v2/xcbclient"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

const (
	// LogChannelBuffer is the buffer size for the live log channel.
	LogChannelBuffer = 64

	requestTimeout = 30 * time.Second
)

// Gocore is the go-core node client used by the scanner.
type Gocore struct {
	logger   *logger.Logger
	apiURL   string
	contract common.Address
	client   *xcbclient.Client

	mu           sync.Mutex
	subscription core.Subscription
}

var _ models.BlockchainService = (*Gocore)(nil)

// NewGocore creates a new Gocore instance for the given contract.
func NewGocore(apiURL, contractAddress string, logger *logger.Logger) (*Gocore, error) {
	contract, err := common.HexToAddress(contractAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract address: %w", err)
	}
	return &Gocore{apiURL: apiURL, contract: contract, logger: logger}, nil
}

func (g *Gocore) Run() error {
	if err := g.ConnectToRPC(); err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	return nil
}

func (g *Gocore) ConnectToRPC() error {
	client, err := xcbclient.Dial(g.apiURL)
	if err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	g.client = client
	g.logger.Info("Connected to node ", g.apiURL)
	return nil
}

func (g *Gocore) LatestBlock(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	number, err := g.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return number, nil
}

// FilterLogs fetches the contract logs in [from, to].
func (g *Gocore) FilterLogs(ctx context.Context, from, to uint64) ([]types.Log, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	logs, err := g.client.FilterLogs(ctx, core.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{g.contract},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs [%d, %d]: %w", from, to, err)
	}
	return logs, nil
}

// SubscribeLogs opens a live feed of the contract logs from the latest block.
// A previous subscription is closed first.
func (g *Gocore) SubscribeLogs(ctx context.Context, ch chan<- types.Log) (models.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.subscription != nil {
		g.subscription.Unsubscribe()
		g.subscription = nil
	}

	subscription, err := g.client.SubscribeFilterLogs(ctx, core.FilterQuery{
		Addresses: []common.Address{g.contract},
	}, ch)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to contract logs: %w", err)
	}
	g.subscription = subscription
	return subscription, nil
}

// GasUsed returns the energy used by the transaction, read from its receipt.
func (g *Gocore) GasUsed(ctx context.Context, txHash common.Hash) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	receipt, err := g.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	return receipt.EnergyUsed, nil
}

// TokenMetadata reads name, symbol and decimals from a token contract.
func (g *Gocore) TokenMetadata(ctx context.Context, tokenAddress string) (*models.Token, error) {
	address, err := common.HexToAddress(tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token address: %w", err)
	}
	parsedABI, err := abi.JSON(strings.NewReader(TokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}
	contract := bind.NewBoundContract(address, parsedABI, g.client, g.client, g.client)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	opts := &bind.CallOpts{Context: ctx}

	call := func(method string) (interface{}, error) {
		results := []interface{}{}
		if err := contract.Call(opts, &results, method); err != nil {
			return nil, fmt.Errorf("failed to call %s: %w", method, err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("empty %s result", method)
		}
		return results[0], nil
	}

	token := &models.Token{Address: tokenAddress}
	name, err := call("name")
	if err != nil {
		return nil, err
	}
	symbol, err := call("symbol")
	if err != nil {
		return nil, err
	}
	decimals, err := call("decimals")
	if err != nil {
		return nil, err
	}
	token.Name, _ = name.(string)
	token.Symbol, _ = symbol.(string)
	if d, ok := decimals.(uint8); ok {
		token.Decimals = int(d)
	}
	return token, nil
}

func (g *Gocore) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.subscription != nil {
		g.subscription.Unsubscribe()
		g.subscription = nil
	}
	if g.client != nil {
		g.client.Close()
	}

	return nil
}
