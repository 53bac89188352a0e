package entities

import (
	"fmt"
	"strings"
)

// Implementation enum
type Implementation string

// Implementation values
const (
	Eclair    Implementation = "eclair"
	LND       Implementation = "lnd"
	CLN       Implementation = "c-lightning"
	Bitcoind  Implementation = "bitcoind"
	Elementsd Implementation = "elementsd"
)

// ParseImplementation is case insensitive and accepts a few common aliases
func ParseImplementation(s string) (Implementation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eclair":
		return Eclair, nil
	case "lnd":
		return LND, nil
	case "c-lightning", "cln", "core-lightning":
		return CLN, nil
	case "bitcoind", "bitcoin-core":
		return Bitcoind, nil
	case "elementsd", "elements":
		return Elementsd, nil
	}

	return "", fmt.Errorf("unknown implementation %q", s)
}

// Node describes a lightning node the adapter talks to. It is owned by the caller and never mutated.
type Node struct {
	Name           string         `json:"name"`
	Implementation Implementation `json:"implementation"`
	Version        string         `json:"version,omitempty"`
	// Endpoint is host:port of the node API (a full URL is accepted as well)
	Endpoint string `json:"endpoint"`
	Password string `json:"password,omitempty"`
	// Backend is the name of the chain backend this node uses
	Backend string `json:"backend,omitempty"`
}

// String returns a short description used in logs
func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}

	return fmt.Sprintf("%s(%s %s)", n.Name, n.Implementation, n.Version)
}

// Backend describes a chain backend (bitcoind) some lightning nodes delegate wallet queries to
type Backend struct {
	Name           string         `json:"name"`
	Implementation Implementation `json:"implementation"`
	Version        string         `json:"version,omitempty"`
	Endpoint       string         `json:"endpoint"`
	User           string         `json:"user,omitempty"`
	Password       string         `json:"password,omitempty"`
}

// String returns a short description used in logs
func (b *Backend) String() string {
	if b == nil {
		return "<nil backend>"
	}

	return fmt.Sprintf("%s(%s %s)", b.Name, b.Implementation, b.Version)
}
