package wellknown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/core-coin/fortunity-sync/internal/config"
	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
	"github.com/core-coin/fortunity-sync/pkg/validation"
)

// TokenMetadata represents detailed information about a single token
type TokenMetadata struct {
	Blockchain string `json:"blockchain"`
	Network    string `json:"network"`
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Decimals   int    `json:"decimals"`
	Symbol     string `json:"symbol"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	CreatedAt  string `json:"createdAt"`
}

// ContractReader reads token metadata straight from the token contract.
type ContractReader interface {
	TokenMetadata(ctx context.Context, tokenAddress string) (*models.Token, error)
}

// WellKnownService resolves the payout token from the Core well-known registry.
type WellKnownService struct {
	logger   *logger.Logger
	baseURL  string
	network  string
	decimals int
	client   *http.Client
	contract ContractReader

	cache      map[string]*models.Token
	cacheMutex sync.RWMutex
}

// NewWellKnownService creates a new WellKnownService instance. contract is the
// fallback used when the registry does not know the token and may be nil.
func NewWellKnownService(logger *logger.Logger, config *config.Config, contract ContractReader) *WellKnownService {
	return &WellKnownService{
		logger:   logger.Named("wellknown"),
		baseURL:  strings.TrimRight(config.WellKnownURL, "/"),
		network:  config.GetNetworkName(),
		decimals: config.AmountDecimals,
		contract: contract,
		cache:    make(map[string]*models.Token),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ResolvePayoutToken returns the token payouts are denominated in. An empty
// address means the native coin. Lookups fall back from the registry to the
// token contract and finally to the native coin, so it always returns a token.
func (w *WellKnownService) ResolvePayoutToken(ctx context.Context, address string) *models.Token {
	if address == "" {
		return models.NativeToken(w.network, w.decimals)
	}
	address = validation.NormalizeAddress(address)

	w.cacheMutex.RLock()
	cached, ok := w.cache[address]
	w.cacheMutex.RUnlock()
	if ok {
		return cached
	}

	token, err := w.fromRegistry(ctx, address)
	if err != nil {
		w.logger.Warnw("Token not resolved from well-known registry", "address", address, "error", err)
		token, err = w.fromContract(ctx, address)
	}
	if err != nil {
		w.logger.Warnw("Token metadata unavailable, using native coin", "address", address, "error", err)
		return models.NativeToken(w.network, w.decimals)
	}

	w.cacheMutex.Lock()
	w.cache[address] = token
	w.cacheMutex.Unlock()

	w.logger.Infow("Payout token resolved", "address", address, "symbol", token.Symbol, "decimals", token.Decimals)
	return token
}

func (w *WellKnownService) fromRegistry(ctx context.Context, address string) (*models.Token, error) {
	metadata, err := w.fetchTokenMetadata(ctx, address)
	if err != nil {
		return nil, err
	}
	if metadata.Type != "CBC20" {
		return nil, fmt.Errorf("token type %q is not CBC20", metadata.Type)
	}
	symbol := metadata.Symbol
	if symbol == "" {
		symbol = metadata.Ticker
	}
	return &models.Token{
		Address:  address,
		Name:     metadata.Name,
		Symbol:   symbol,
		Decimals: metadata.Decimals,
		Network:  metadata.Network,
	}, nil
}

func (w *WellKnownService) fromContract(ctx context.Context, address string) (*models.Token, error) {
	if w.contract == nil {
		return nil, fmt.Errorf("no contract reader configured")
	}
	token, err := w.contract.TokenMetadata(ctx, address)
	if err != nil {
		return nil, err
	}
	token.Network = w.network
	return token, nil
}

// fetchTokenMetadata fetches detailed metadata for a specific token
func (w *WellKnownService) fetchTokenMetadata(ctx context.Context, address string) (*TokenMetadata, error) {
	url := fmt.Sprintf("%s/.well-known/tokens/%s/%s.json", w.baseURL, w.network, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var metadata TokenMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode token metadata: %w", err)
	}

	return &metadata, nil
}
