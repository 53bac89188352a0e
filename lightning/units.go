package lightning

import (
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/shopspring/decimal"
)

// BaseToSats converts BTC to satoshis rounding to the nearest satoshi
func BaseToSats(btc decimal.Decimal) btcutil.Amount {
	return btcutil.Amount(btc.Shift(8).Round(0).IntPart())
}

// SatsToMsat converts satoshis to millisatoshis
func SatsToMsat(sats btcutil.Amount) lnwire.MilliSatoshi {
	return lnwire.NewMSatFromSatoshis(sats)
}

// MsatToSats converts millisatoshis to satoshis, the remainder is dropped
func MsatToSats(msat lnwire.MilliSatoshi) btcutil.Amount {
	return msat.ToSatoshis()
}

// FormatSats is the outward representation of an amount
func FormatSats(sats btcutil.Amount) string {
	return strconv.FormatInt(int64(sats), 10)
}
