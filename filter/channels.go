package filter

import (
	"github.com/bolt-observer/eclair-adapter/lightning"
)

// Allowed tells whether a channel passes the filter
func Allowed(f FilteringInterface, channel lightning.Channel) bool {
	if f == nil {
		return true
	}

	return f.AllowSpecial(channel.IsPrivate) || f.AllowPubKey(channel.PubKey) || f.AllowChanID(channel.ID)
}

// Channels returns the channels that pass the filter, keeping their order
func Channels(f FilteringInterface, channels []lightning.Channel) []lightning.Channel {
	ret := make([]lightning.Channel, 0, len(channels))
	for _, one := range channels {
		if Allowed(f, one) {
			ret = append(ret, one)
		}
	}

	return ret
}
