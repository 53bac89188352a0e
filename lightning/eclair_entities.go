package lightning

import "encoding/json"

// Eclair API method names
const (
	GETINFO       = "getinfo"
	GETNEWADDRESS = "getnewaddress"
	CHANNELS      = "channels"
	PEERS         = "peers"
	CONNECT       = "connect"
	OPEN          = "open"
	CLOSE         = "close"
	CREATEINVOICE = "createinvoice"
	PAYINVOICE    = "payinvoice"
	GETSENTINFO   = "getsentinfo"
)

// Payment status types reported by getsentinfo
const (
	eclairPaymentPending = "pending"
	eclairPaymentSent    = "sent"
	eclairPaymentFailed  = "failed"
)

// EclairInfo struct
type EclairInfo struct {
	Version         string   `json:"version"`
	NodeID          string   `json:"nodeId"`
	Alias           string   `json:"alias"`
	Color           string   `json:"color,omitempty"`
	Network         string   `json:"network"`
	ChainHash       string   `json:"chainHash,omitempty"`
	BlockHeight     *int64   `json:"blockHeight,omitempty"`
	PublicAddresses []string `json:"publicAddresses,omitempty"`
}

// EclairChannel struct
type EclairChannel struct {
	NodeID    string             `json:"nodeId"`
	ChannelID string             `json:"channelId"`
	State     string             `json:"state"`
	Data      *EclairChannelData `json:"data,omitempty"`
}

// EclairChannelData struct
type EclairChannelData struct {
	Type        string             `json:"type,omitempty"`
	Commitments *EclairCommitments `json:"commitments,omitempty"`
}

// EclairCommitments holds every layout of commitment data seen so far.
// Up to 0.8 everything is flat, later releases moved the parameters to params and the commitment itself to active[].
type EclairCommitments struct {
	Params       *EclairCommitmentParams `json:"params,omitempty"`
	LocalParams  *EclairLocalParams      `json:"localParams,omitempty"`
	ChannelFlags json.RawMessage         `json:"channelFlags,omitempty"`
	LocalCommit  *EclairLocalCommit      `json:"localCommit,omitempty"`
	CommitInput  *EclairFundingInput     `json:"commitInput,omitempty"`
	Active       []EclairCommitment      `json:"active,omitempty"`
}

// EclairCommitmentParams struct
type EclairCommitmentParams struct {
	LocalParams  *EclairLocalParams `json:"localParams,omitempty"`
	ChannelFlags json.RawMessage    `json:"channelFlags,omitempty"`
}

// EclairLocalParams struct
type EclairLocalParams struct {
	NodeID string `json:"nodeId,omitempty"`
	// IsFunder was renamed to IsInitiator
	IsFunder    *bool `json:"isFunder,omitempty"`
	IsInitiator *bool `json:"isInitiator,omitempty"`
}

// EclairCommitment struct
type EclairCommitment struct {
	FundingTx   *EclairFundingInput `json:"fundingTx,omitempty"`
	CommitInput *EclairFundingInput `json:"commitInput,omitempty"`
	LocalCommit *EclairLocalCommit  `json:"localCommit,omitempty"`
}

// EclairLocalCommit struct
type EclairLocalCommit struct {
	Index uint64           `json:"index"`
	Spec  EclairCommitSpec `json:"spec"`
}

// EclairCommitSpec struct, amounts are in msat
type EclairCommitSpec struct {
	ToLocal  uint64 `json:"toLocal"`
	ToRemote uint64 `json:"toRemote"`
}

// EclairFundingInput struct
type EclairFundingInput struct {
	OutPoint       string `json:"outPoint"`
	AmountSatoshis uint64 `json:"amountSatoshis"`
}

// EclairPeer struct
type EclairPeer struct {
	NodeID   string `json:"nodeId"`
	State    string `json:"state"`
	Address  string `json:"address,omitempty"`
	Channels int    `json:"channels"`
}

// EclairInvoice struct
type EclairInvoice struct {
	Prefix      string `json:"prefix,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	NodeID      string `json:"nodeId"`
	Serialized  string `json:"serialized"`
	Description string `json:"description,omitempty"`
	PaymentHash string `json:"paymentHash,omitempty"`
	Expiry      int64  `json:"expiry,omitempty"`
	// Amount is in msat
	Amount *uint64 `json:"amount,omitempty"`
}

// EclairSentPayment is one record of getsentinfo.
// The request data is under paymentRequest in older releases and under invoice in newer ones.
type EclairSentPayment struct {
	ID              string               `json:"id"`
	ParentID        string               `json:"parentId,omitempty"`
	PaymentHash     string               `json:"paymentHash"`
	PaymentType     string               `json:"paymentType,omitempty"`
	Amount          *uint64              `json:"amount,omitempty"`
	RecipientAmount *uint64              `json:"recipientAmount,omitempty"`
	RecipientNodeID string               `json:"recipientNodeId,omitempty"`
	CreatedAt       json.RawMessage      `json:"createdAt,omitempty"`
	PaymentRequest  *EclairInvoice       `json:"paymentRequest,omitempty"`
	Invoice         *EclairInvoice       `json:"invoice,omitempty"`
	Status          *EclairPaymentStatus `json:"status,omitempty"`
}

// EclairPaymentStatus struct
type EclairPaymentStatus struct {
	Type            string          `json:"type"`
	PaymentPreimage string          `json:"paymentPreimage,omitempty"`
	FeesPaid        *uint64         `json:"feesPaid,omitempty"`
	Failures        []EclairFailure `json:"failures,omitempty"`
}

// EclairFailure struct, failureMessage used to be called t
type EclairFailure struct {
	FailureType    string  `json:"failureType,omitempty"`
	FailureMessage *string `json:"failureMessage,omitempty"`
	T              *string `json:"t,omitempty"`
}

// EclairError is the error body of a failed request
type EclairError struct {
	Error string `json:"error"`
}
