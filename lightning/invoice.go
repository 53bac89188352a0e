package lightning

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

var (
	pubKeyRegex = regexp.MustCompile("^0[23][a-fA-F0-9]{64}$")

	invoiceNetworks = []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNet3Params,
		&chaincfg.RegressionNetParams,
		&chaincfg.SimNetParams,
		&chaincfg.SigNetParams,
	}
)

// IsValidPubKey - returns true if pubkey is valid, false otherwise
func IsValidPubKey(pubKey string) bool {
	return pubKeyRegex.MatchString(pubKey)
}

// SplitRPCURL splits pubkey@host:port, the host part is optional
func SplitRPCURL(uri string) (string, string, error) {
	uri = strings.TrimSpace(uri)
	pubKey, host, _ := strings.Cut(uri, "@")

	if !IsValidPubKey(pubKey) {
		return "", "", fmt.Errorf("invalid node uri %q", uri)
	}

	return strings.ToLower(pubKey), host, nil
}

// invoiceDestination decodes a BOLT11 invoice and returns the payee, empty when it cannot be decoded
func invoiceDestination(invoice string) string {
	invoice = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(invoice)), "lightning:")
	if invoice == "" {
		return ""
	}

	for _, net := range invoiceNetworks {
		decoded, err := zpay32.Decode(invoice, net)
		if err != nil || decoded.Destination == nil {
			continue
		}

		return hex.EncodeToString(decoded.Destination.SerializeCompressed())
	}

	return ""
}
