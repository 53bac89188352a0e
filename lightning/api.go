package lightning

import (
	"context"
	"fmt"
	"time"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/getsentry/sentry-go"
)

// NodeInfo struct
type NodeInfo struct {
	PubKey        string `json:"pubkey"`
	Alias         string `json:"alias"`
	RPCURL        string `json:"rpc_url"`
	SyncedToChain bool   `json:"synced_to_chain"`
	BlockHeight   int64  `json:"block_height"`
	Version       string `json:"version,omitempty"`
	Network       string `json:"network,omitempty"`
}

// BalancesInfo struct, all amounts are satoshis
type BalancesInfo struct {
	Confirmed   string `json:"confirmed"`
	Unconfirmed string `json:"unconfirmed"`
	Total       string `json:"total"`
}

// Address struct
type Address struct {
	Address string `json:"address"`
}

// ChannelState enum
type ChannelState string

// ChannelState values
const (
	ChannelPending ChannelState = "pending"
	ChannelOpen    ChannelState = "open"
	ChannelClosing ChannelState = "closing"
	ChannelClosed  ChannelState = "closed"
	ChannelOffline ChannelState = "offline"
	ChannelUnknown ChannelState = "unknown"
)

// Channel struct, all amounts are satoshis
type Channel struct {
	ID            string       `json:"id"`
	PubKey        string       `json:"pubkey"`
	ChannelPoint  string       `json:"channel_point,omitempty"`
	Capacity      string       `json:"capacity"`
	LocalBalance  string       `json:"local_balance"`
	RemoteBalance string       `json:"remote_balance"`
	State         ChannelState `json:"state"`
	Pending       bool         `json:"pending"`
	IsPrivate     bool         `json:"is_private"`
}

// Peer struct
type Peer struct {
	PubKey       string `json:"pubkey"`
	Address      string `json:"address"`
	State        string `json:"state"`
	ChannelCount int    `json:"channel_count"`
}

// OpenChannelRequest struct
type OpenChannelRequest struct {
	From *entities.Node
	// ToRPCURL is pubkey@host:port of the counterparty
	ToRPCURL   string
	AmountSats int64
	IsPrivate  bool
}

// ChannelPoint struct
type ChannelPoint struct {
	FundingTxID string `json:"txid"`
	OutputIndex uint32 `json:"index"`
}

// PayResult struct
type PayResult struct {
	Preimage    string `json:"preimage"`
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
}

// Defaults for polling
const (
	DefaultOnlineInterval      = 3 * time.Second
	DefaultOnlineTimeout       = 30 * time.Second
	DefaultPaymentPollInterval = 500 * time.Millisecond
	DefaultPaymentTimeout      = 60 * time.Second
)

// API - generic API settings
type API struct {
	// PaymentPollInterval is the pause between two getsentinfo calls
	PaymentPollInterval time.Duration
	// PaymentTimeout bounds the whole settlement poll
	PaymentTimeout time.Duration
}

// LightningAPI is the canonical API over a lightning node, implementations hold no per node state
type LightningAPI interface {
	GetInfo(ctx context.Context, node *entities.Node) (*NodeInfo, error)
	GetBalances(ctx context.Context, node *entities.Node, backend *entities.Backend) (*BalancesInfo, error)
	GetNewAddress(ctx context.Context, node *entities.Node) (*Address, error)
	GetChannels(ctx context.Context, node *entities.Node) ([]Channel, error)
	GetPeers(ctx context.Context, node *entities.Node) ([]Peer, error)
	ConnectPeers(ctx context.Context, node *entities.Node, rpcURLs []string) error
	OpenChannel(ctx context.Context, req OpenChannelRequest) (*ChannelPoint, error)
	CloseChannel(ctx context.Context, node *entities.Node, channelID string) (string, error)
	CreateInvoice(ctx context.Context, node *entities.Node, sats int64, memo string) (string, error)
	PayInvoice(ctx context.Context, node *entities.Node, invoice string, sats *int64) (*PayResult, error)
	WaitUntilOnline(ctx context.Context, node *entities.Node, interval, timeout time.Duration) error
}

// Gateway executes one request against a node and decodes the reply into reply
//
//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks . Gateway,WalletProvider
type Gateway interface {
	Call(ctx context.Context, node *entities.Node, method string, params map[string]string, reply any) error
}

// WalletProvider returns wallet balances of a chain backend
type WalletProvider interface {
	GetWalletInfo(ctx context.Context, backend *entities.Backend) (*entities.WalletInfo, error)
}

// NewAPI - gets new lightning API for the given implementation, nil gateway or wallet select the defaults
func NewAPI(impl entities.Implementation, gateway Gateway, wallet WalletProvider) (LightningAPI, error) {
	if gateway == nil {
		gateway = NewHTTPAPI()
	}
	if wallet == nil {
		wallet = NewBitcoindWalletProvider()
	}

	switch impl {
	case entities.Eclair:
		return NewEclairAPI(gateway, wallet), nil
	}

	err := &ConfigError{Op: "NewAPI", Reason: fmt.Sprintf("unsupported implementation %q", impl)}
	sentry.CaptureException(err)

	return nil, err
}
