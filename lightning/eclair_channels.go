package lightning

import (
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/golang/glog"
	"github.com/lightningnetwork/lnd/lnwire"
)

// Eclair channel states
const (
	eclairStateNormal      = "NORMAL"
	eclairStateSyncing     = "SYNCING"
	eclairStateShutdown    = "SHUTDOWN"
	eclairStateNegotiating = "NEGOTIATING"
	eclairStateClosing     = "CLOSING"
	eclairStateClosed      = "CLOSED"
	eclairStateOffline     = "OFFLINE"
	eclairStateWaitPrefix  = "WAIT_FOR_"
)

func convertChannelState(state string) ChannelState {
	state = strings.ToUpper(strings.TrimSpace(state))

	switch {
	case strings.HasPrefix(state, eclairStateWaitPrefix), state == eclairStateSyncing:
		return ChannelPending
	case state == eclairStateNormal:
		return ChannelOpen
	case state == eclairStateShutdown, state == eclairStateNegotiating, state == eclairStateClosing:
		return ChannelClosing
	case state == eclairStateClosed:
		return ChannelClosed
	case state == eclairStateOffline:
		return ChannelOffline
	}

	return ChannelUnknown
}

// convertChannel maps one raw channel, ok is false when it carries no commitment
func convertChannel(raw *EclairChannel) (Channel, bool) {
	if raw == nil || raw.Data == nil || raw.Data.Commitments == nil {
		return Channel{}, false
	}

	commitments := raw.Data.Commitments
	local, input := commitment(commitments)
	if local == nil || input == nil {
		return Channel{}, false
	}

	toLocal := MsatToSats(lnwire.MilliSatoshi(local.Spec.ToLocal))
	toRemote := MsatToSats(lnwire.MilliSatoshi(local.Spec.ToRemote))

	// a non-funder sees the split from the other side
	if !localIsFunder(commitments) {
		toLocal, toRemote = toRemote, toLocal
	}

	state := convertChannelState(raw.State)

	return Channel{
		ID:            raw.ChannelID,
		PubKey:        raw.NodeID,
		ChannelPoint:  input.OutPoint,
		Capacity:      FormatSats(btcutil.Amount(input.AmountSatoshis)),
		LocalBalance:  FormatSats(toLocal),
		RemoteBalance: FormatSats(toRemote),
		State:         state,
		Pending:       state == ChannelPending,
		IsPrivate:     isPrivateChannel(commitments),
	}, true
}

// convertChannels decodes records one by one so a single bad record does not hide the rest
func convertChannels(records []json.RawMessage) []Channel {
	ret := make([]Channel, 0, len(records))

	for i, one := range records {
		var raw EclairChannel
		if err := json.Unmarshal(one, &raw); err != nil {
			glog.Warningf("Skipping channel %d: %v", i, err)
			continue
		}

		channel, ok := convertChannel(&raw)
		if !ok {
			glog.Warningf("Skipping channel %s (%s): no commitment data", raw.ChannelID, raw.State)
			continue
		}

		ret = append(ret, channel)
	}

	return ret
}
