package lightning

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/ybbus/jsonrpc"
)

// GETWALLETINFO is the bitcoind method returning wallet balances
const GETWALLETINFO = "getwalletinfo"

// BitcoindWalletProvider reads balances of a bitcoind wallet over JSON-RPC
type BitcoindWalletProvider struct {
	HTTPClient *http.Client
}

// Compile time check for the interface
var _ WalletProvider = &BitcoindWalletProvider{}

// NewBitcoindWalletProvider returns a new BitcoindWalletProvider
func NewBitcoindWalletProvider() *BitcoindWalletProvider {
	return &BitcoindWalletProvider{HTTPClient: &http.Client{Timeout: DefaultHTTPTimeout}}
}

func (b *BitcoindWalletProvider) client(backend *entities.Backend) jsonrpc.RPCClient {
	endpoint := backend.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", backend.User, backend.Password)))

	return jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: b.HTTPClient,
		CustomHeaders: map[string]string{
			"Authorization": "Basic " + auth,
		},
	})
}

// GetWalletInfo calls getwalletinfo, the rpc client has no context support so ctx only bounds the wait
func (b *BitcoindWalletProvider) GetWalletInfo(ctx context.Context, backend *entities.Backend) (*entities.WalletInfo, error) {
	if backend == nil || backend.Endpoint == "" {
		return nil, &ConfigError{Op: "GetWalletInfo", Reason: "backend has no endpoint"}
	}

	rpc := b.client(backend)

	type result struct {
		info *entities.WalletInfo
		err  error
	}

	c := make(chan result, 1)
	go func() {
		var info entities.WalletInfo
		err := rpc.CallFor(&info, GETWALLETINFO)
		c <- result{info: &info, err: err}
	}()

	select {
	case r := <-c:
		if r.err != nil {
			return nil, fmt.Errorf("%s on %s: %w", GETWALLETINFO, backend.Name, r.err)
		}
		return r.info, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
