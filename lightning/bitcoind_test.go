package lightning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bitcoind(t *testing.T, result string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != "user" || password != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, GETWALLETINFO, req.Method)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":` + result + `,"error":null,"id":` + string(req.ID) + `}`))
	}))
}

func backendFor(server *httptest.Server) *entities.Backend {
	return &entities.Backend{
		Name:           "backend1",
		Implementation: entities.Bitcoind,
		Endpoint:       strings.TrimPrefix(server.URL, "http://"),
		User:           "user",
		Password:       "pass",
	}
}

func TestGetWalletInfo(t *testing.T) {
	server := bitcoind(t, `{"walletname":"","walletversion":169900,"balance":0.00001,"unconfirmed_balance":0.10000001,"immature_balance":12.5,"txcount":3}`)
	defer server.Close()

	info, err := NewBitcoindWalletProvider().GetWalletInfo(context.Background(), backendFor(server))
	require.NoError(t, err)

	assert.Equal(t, "0.00001", info.Balance.String())
	assert.Equal(t, "0.10000001", info.UnconfirmedBalance.String())
	assert.Equal(t, "12.5", info.ImmatureBalance.String())
	assert.Equal(t, "12.60001001", info.Total().String())
}

func TestGetWalletInfoUnauthorized(t *testing.T) {
	server := bitcoind(t, `{}`)
	defer server.Close()

	backend := backendFor(server)
	backend.Password = "wrong"

	_, err := NewBitcoindWalletProvider().GetWalletInfo(context.Background(), backend)
	assert.Error(t, err)
}

func TestGetWalletInfoCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewBitcoindWalletProvider().GetWalletInfo(ctx, backendFor(server))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetWalletInfoNoEndpoint(t *testing.T) {
	_, err := NewBitcoindWalletProvider().GetWalletInfo(context.Background(), &entities.Backend{Name: "backend1"})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewBitcoindWalletProvider().GetWalletInfo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}
