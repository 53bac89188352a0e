package lightning

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/getsentry/sentry-go"
	"github.com/golang/glog"
)

// EclairAPI struct
type EclairAPI struct {
	API

	Gateway Gateway
	Wallet  WalletProvider
}

// Compile time check for the interface
var _ LightningAPI = &EclairAPI{}

// NewEclairAPI returns a new EclairAPI with default poll settings
func NewEclairAPI(gateway Gateway, wallet WalletProvider) *EclairAPI {
	return &EclairAPI{
		API: API{
			PaymentPollInterval: DefaultPaymentPollInterval,
			PaymentTimeout:      DefaultPaymentTimeout,
		},
		Gateway: gateway,
		Wallet:  wallet,
	}
}

func (e *EclairAPI) configError(op string, reason string) error {
	err := &ConfigError{Op: op, Reason: reason}
	sentry.CaptureException(err)

	return err
}

func (e *EclairAPI) checkNode(op string, node *entities.Node) error {
	if node == nil {
		return e.configError(op, "no node")
	}

	return nil
}

func (e *EclairAPI) paymentPollSettings() pollSettings {
	return pollSettings{interval: e.PaymentPollInterval, timeout: e.PaymentTimeout}
}

// GetInfo API call
func (e *EclairAPI) GetInfo(ctx context.Context, node *entities.Node) (*NodeInfo, error) {
	if err := e.checkNode("GetInfo", node); err != nil {
		return nil, err
	}

	var info EclairInfo

	err := e.Gateway.Call(ctx, node, GETINFO, map[string]string{}, &info)
	if err != nil {
		return nil, err
	}

	return convertInfo(&info), nil
}

// GetBalances returns on-chain balances, eclair leaves them to its bitcoind so backend is mandatory
func (e *EclairAPI) GetBalances(ctx context.Context, node *entities.Node, backend *entities.Backend) (*BalancesInfo, error) {
	if err := e.checkNode("GetBalances", node); err != nil {
		return nil, err
	}

	if backend == nil {
		return nil, e.configError("GetBalances", fmt.Sprintf("node %s has no backend, eclair balances come from bitcoind", node.Name))
	}

	if backend.Implementation != "" && backend.Implementation != entities.Bitcoind {
		return nil, e.configError("GetBalances", fmt.Sprintf("backend %s is %s, only %s is supported", backend.Name, backend.Implementation, entities.Bitcoind))
	}

	wallet, err := e.Wallet.GetWalletInfo(ctx, backend)
	if err != nil {
		return nil, err
	}

	return &BalancesInfo{
		Confirmed:   FormatSats(BaseToSats(wallet.Balance)),
		Unconfirmed: FormatSats(BaseToSats(wallet.UnconfirmedBalance)),
		Total:       FormatSats(BaseToSats(wallet.Total())),
	}, nil
}

// GetNewAddress API call
func (e *EclairAPI) GetNewAddress(ctx context.Context, node *entities.Node) (*Address, error) {
	if err := e.checkNode("GetNewAddress", node); err != nil {
		return nil, err
	}

	var address string

	err := e.Gateway.Call(ctx, node, GETNEWADDRESS, map[string]string{}, &address)
	if err != nil {
		return nil, err
	}

	return &Address{Address: address}, nil
}

// GetChannels API call, channels that cannot be interpreted are skipped
func (e *EclairAPI) GetChannels(ctx context.Context, node *entities.Node) ([]Channel, error) {
	if err := e.checkNode("GetChannels", node); err != nil {
		return nil, err
	}

	var records []json.RawMessage

	err := e.Gateway.Call(ctx, node, CHANNELS, map[string]string{}, &records)
	if err != nil {
		return nil, err
	}

	return convertChannels(records), nil
}

// OpenChannel connects to the counterparty when needed and opens a channel to it
func (e *EclairAPI) OpenChannel(ctx context.Context, req OpenChannelRequest) (*ChannelPoint, error) {
	if err := e.checkNode("OpenChannel", req.From); err != nil {
		return nil, err
	}

	if req.AmountSats <= 0 {
		return nil, e.configError("OpenChannel", fmt.Sprintf("invalid amount %d", req.AmountSats))
	}

	pubKey, _, err := SplitRPCURL(req.ToRPCURL)
	if err != nil {
		return nil, e.configError("OpenChannel", err.Error())
	}

	if err := e.ConnectPeers(ctx, req.From, []string{req.ToRPCURL}); err != nil {
		return nil, err
	}

	flags := "1"
	if req.IsPrivate {
		flags = "0"
	}

	params := map[string]string{
		"nodeId":          pubKey,
		"fundingSatoshis": FormatSats(btcutil.Amount(req.AmountSats)),
		"channelFlags":    flags,
		// releases after 0.7 read this one instead of channelFlags
		"announceChannel": strconv.FormatBool(!req.IsPrivate),
	}

	var reply string
	if err := e.Gateway.Call(ctx, req.From, OPEN, params, &reply); err != nil {
		return nil, err
	}

	txid := parseFundingTxID(reply)
	if txid == "" {
		return nil, fmt.Errorf("%w: open replied %q", ErrInvalidResponse, reply)
	}

	return &ChannelPoint{FundingTxID: txid, OutputIndex: 0}, nil
}

// parseFundingTxID reads "created channel <id> with fundingTxId=<txid> and fees=<fees>"
func parseFundingTxID(reply string) string {
	const marker = "fundingTxId="

	fields := strings.Fields(reply)
	for _, field := range fields {
		if strings.HasPrefix(field, marker) {
			return strings.TrimRight(strings.TrimPrefix(field, marker), ",.")
		}
	}

	if len(fields) >= 3 {
		glog.Warningf("No funding txid in %q, using channel id", reply)
		return fields[2]
	}

	return ""
}

// CloseChannel API call, returns what the node reported for the channel
func (e *EclairAPI) CloseChannel(ctx context.Context, node *entities.Node, channelID string) (string, error) {
	if err := e.checkNode("CloseChannel", node); err != nil {
		return "", err
	}

	if channelID == "" {
		return "", e.configError("CloseChannel", "empty channel id")
	}

	var reply json.RawMessage
	if err := e.Gateway.Call(ctx, node, CLOSE, map[string]string{"channelId": channelID}, &reply); err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(reply, &text); err == nil {
		return text, nil
	}

	var results map[string]json.RawMessage
	if err := json.Unmarshal(reply, &results); err != nil {
		return "", fmt.Errorf("%w: close replied %s", ErrInvalidResponse, string(reply))
	}

	result, ok := results[channelID]
	if !ok && len(results) == 1 {
		// the node may key the result by short channel id
		for _, one := range results {
			result, ok = one, true
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: close replied %s", ErrInvalidResponse, string(reply))
	}

	if err := json.Unmarshal(result, &text); err == nil {
		return text, nil
	}

	return string(result), nil
}

// CreateInvoice API call, memo defaults to "Payment to <node name>"
func (e *EclairAPI) CreateInvoice(ctx context.Context, node *entities.Node, sats int64, memo string) (string, error) {
	if err := e.checkNode("CreateInvoice", node); err != nil {
		return "", err
	}

	if sats < 0 {
		return "", e.configError("CreateInvoice", fmt.Sprintf("negative amount %d", sats))
	}

	if memo == "" {
		memo = fmt.Sprintf("Payment to %s", node.Name)
	}

	params := map[string]string{
		"description": memo,
		"amountMsat":  strconv.FormatUint(uint64(SatsToMsat(btcutil.Amount(sats))), 10),
	}

	var invoice EclairInvoice
	if err := e.Gateway.Call(ctx, node, CREATEINVOICE, params, &invoice); err != nil {
		return "", err
	}

	if invoice.Serialized == "" {
		return "", fmt.Errorf("%w: invoice without serialized form", ErrInvalidResponse)
	}

	return invoice.Serialized, nil
}
