package wellknown

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/core-coin/fortunity-sync/internal/config"
	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

const tokenAddress = "cb19c7acc4c292d2943ba23c2eaa5d9c5a6652a8710c"

type fakeContract struct {
	token *models.Token
	err   error
	calls int
}

func (f *fakeContract) TokenMetadata(context.Context, string) (*models.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t := *f.token
	return &t, nil
}

func newService(t *testing.T, url string, contract ContractReader) *WellKnownService {
	t.Helper()
	cfg := &config.Config{WellKnownURL: url + "/", NetworkID: big.NewInt(1), AmountDecimals: 18}
	return NewWellKnownService(logger.NewNop(), cfg, contract)
}

func TestResolveFromRegistry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/.well-known/tokens/xcb/"+tokenAddress+".json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"network":"xcb","name":"Core Token","symbol":"CTN","decimals":18,"type":"CBC20"}`))
	}))
	defer srv.Close()

	contract := &fakeContract{err: errors.New("must not be called")}
	svc := newService(t, srv.URL, contract)

	token := svc.ResolvePayoutToken(context.Background(), "0x"+tokenAddress)
	if token.Symbol != "CTN" || token.Decimals != 18 || token.Address != tokenAddress {
		t.Fatalf("token = %+v", token)
	}
	svc.ResolvePayoutToken(context.Background(), tokenAddress)
	if hits.Load() != 1 {
		t.Fatalf("registry hits = %d, want 1 (cached)", hits.Load())
	}
	if contract.calls != 0 {
		t.Fatalf("contract called %d times", contract.calls)
	}
}

func TestResolveFallsBackToContract(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	contract := &fakeContract{token: &models.Token{Address: tokenAddress, Name: "Fortune", Symbol: "FRT", Decimals: 6}}
	svc := newService(t, srv.URL, contract)

	token := svc.ResolvePayoutToken(context.Background(), tokenAddress)
	if token.Symbol != "FRT" || token.Decimals != 6 || token.Network != "xcb" {
		t.Fatalf("token = %+v", token)
	}
}

func TestResolveRejectsNonFungible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"NFT","decimals":0,"type":"CBC721"}`))
	}))
	defer srv.Close()

	svc := newService(t, srv.URL, nil)
	token := svc.ResolvePayoutToken(context.Background(), tokenAddress)
	if token.Symbol != "CORE" || token.Decimals != 18 {
		t.Fatalf("token = %+v, want native fallback", token)
	}
}

func TestResolveNative(t *testing.T) {
	svc := newService(t, "http://127.0.0.1:1", nil)
	token := svc.ResolvePayoutToken(context.Background(), "")
	if token.Symbol != "CORE" || token.Address != "" || token.Network != "xcb" {
		t.Fatalf("token = %+v", token)
	}
}
