package lightning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
)

// resolve picks the newer field when present, the older one otherwise and def when both are missing
func resolve[T any](newer, older *T, def T) T {
	if newer != nil {
		return *newer
	}
	if older != nil {
		return *older
	}

	return def
}

func resolveLocalIsFunder(params *EclairLocalParams) *bool {
	if params == nil {
		return nil
	}

	if params.IsInitiator != nil {
		return params.IsInitiator
	}

	return params.IsFunder
}

// localIsFunder tells whether our side funded the channel, false when the record does not say
func localIsFunder(c *EclairCommitments) bool {
	if c == nil {
		return false
	}

	var newer *bool
	if c.Params != nil {
		newer = resolveLocalIsFunder(c.Params.LocalParams)
	}

	return resolve(newer, resolveLocalIsFunder(c.LocalParams), false)
}

// channelFlags is either the raw flags byte (bit 0 announces the channel) or {"announceChannel": bool}
func announceChannel(flags json.RawMessage) (bool, bool) {
	if len(flags) == 0 || string(flags) == "null" {
		return false, false
	}

	var b uint8
	if err := json.Unmarshal(flags, &b); err == nil {
		return b&1 == 1, true
	}

	var obj struct {
		AnnounceChannel *bool `json:"announceChannel"`
	}
	if err := json.Unmarshal(flags, &obj); err == nil && obj.AnnounceChannel != nil {
		return *obj.AnnounceChannel, true
	}

	return false, false
}

// isPrivateChannel defaults to public when flags are missing or unreadable
func isPrivateChannel(c *EclairCommitments) bool {
	if c == nil {
		return false
	}

	if c.Params != nil {
		if announce, ok := announceChannel(c.Params.ChannelFlags); ok {
			return !announce
		}
	}

	if announce, ok := announceChannel(c.ChannelFlags); ok {
		return !announce
	}

	return false
}

// commitment returns the local commitment and funding input regardless of layout
func commitment(c *EclairCommitments) (*EclairLocalCommit, *EclairFundingInput) {
	if c == nil {
		return nil, nil
	}

	if len(c.Active) > 0 {
		active := c.Active[0]
		return active.LocalCommit, fundingInput(active)
	}

	return c.LocalCommit, c.CommitInput
}

func fundingInput(c EclairCommitment) *EclairFundingInput {
	if c.FundingTx != nil {
		return c.FundingTx
	}

	return c.CommitInput
}

// paymentInvoice returns the request data of a sent payment
func paymentInvoice(p *EclairSentPayment) *EclairInvoice {
	if p == nil {
		return nil
	}

	if p.Invoice != nil {
		return p.Invoice
	}

	return p.PaymentRequest
}

// paymentAmount is what the recipient got, in msat
func paymentAmount(p *EclairSentPayment) lnwire.MilliSatoshi {
	if p == nil {
		return 0
	}

	amount := resolve(p.RecipientAmount, p.Amount, 0)
	if amount == 0 {
		if invoice := paymentInvoice(p); invoice != nil && invoice.Amount != nil {
			amount = *invoice.Amount
		}
	}

	return lnwire.MilliSatoshi(amount)
}

// paymentDestination is the pubkey of the recipient as far as the record tells
func paymentDestination(p *EclairSentPayment) string {
	if p == nil {
		return ""
	}

	if invoice := paymentInvoice(p); invoice != nil && invoice.NodeID != "" {
		return invoice.NodeID
	}

	return p.RecipientNodeID
}

func failureMessage(f EclairFailure) string {
	return strings.TrimSpace(resolve(f.FailureMessage, f.T, ""))
}

// PaymentState is the settlement state of a sent payment
type PaymentState int

// PaymentState values
const (
	PaymentNotFound PaymentState = iota
	PaymentPending
	PaymentSucceeded
	// PaymentFailedNoDetail is a failed status without any failure message, it is not final yet
	PaymentFailedNoDetail
	PaymentFailed
)

func (s PaymentState) String() string {
	switch s {
	case PaymentNotFound:
		return "not-found"
	case PaymentPending:
		return "pending"
	case PaymentSucceeded:
		return "succeeded"
	case PaymentFailedNoDetail:
		return "failed-no-detail"
	case PaymentFailed:
		return "failed"
	}

	return fmt.Sprintf("PaymentState(%d)", int(s))
}

// classifyPayment maps a getsentinfo record to a settlement state and the failure message, if any
func classifyPayment(p *EclairSentPayment) (PaymentState, string) {
	if p == nil {
		return PaymentNotFound, ""
	}

	if p.Status == nil {
		return PaymentPending, ""
	}

	switch strings.ToLower(p.Status.Type) {
	case eclairPaymentSent:
		return PaymentSucceeded, ""
	case eclairPaymentFailed:
		for _, one := range p.Status.Failures {
			if msg := failureMessage(one); msg != "" {
				return PaymentFailed, msg
			}
		}

		return PaymentFailedNoDetail, ""
	}

	return PaymentPending, ""
}

// findPayment locates the record of a payment, payinvoice returns the parent id of multi-part payments
func findPayment(records []EclairSentPayment, id string) *EclairSentPayment {
	var candidate *EclairSentPayment

	for i := range records {
		one := &records[i]
		if one.ID != id && one.ParentID != id {
			continue
		}

		state, _ := classifyPayment(one)
		if state == PaymentSucceeded || state == PaymentFailed {
			return one
		}

		if candidate == nil {
			candidate = one
		}
	}

	return candidate
}

// convertInfo turns getinfo into NodeInfo
func convertInfo(info *EclairInfo) *NodeInfo {
	if info == nil {
		return &NodeInfo{}
	}

	ret := &NodeInfo{
		PubKey:  info.NodeID,
		Alias:   info.Alias,
		Version: info.Version,
		Network: info.Network,
	}

	if info.BlockHeight != nil {
		ret.BlockHeight = *info.BlockHeight
		ret.SyncedToChain = *info.BlockHeight >= 0
	}

	if len(info.PublicAddresses) > 0 && info.PublicAddresses[0] != "" && info.NodeID != "" {
		ret.RPCURL = fmt.Sprintf("%s@%s", info.NodeID, info.PublicAddresses[0])
	}

	return ret
}

func convertPeer(peer EclairPeer) Peer {
	return Peer{
		PubKey:       peer.NodeID,
		Address:      peer.Address,
		State:        peer.State,
		ChannelCount: peer.Channels,
	}
}
