package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// Network is the description of a simulated network (nodes and their chain backends)
type Network struct {
	Name     string    `json:"name,omitempty"`
	Nodes    []Node    `json:"nodes"`
	Backends []Backend `json:"backends,omitempty"`
}

// LoadNetwork reads a network description from a JSON file
func LoadNetwork(path string) (*Network, error) {
	content, err := os.ReadFile(CleanAndExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("could not read network file: %w", err)
	}

	var network Network
	err = json.Unmarshal(content, &network)
	if err != nil {
		return nil, fmt.Errorf("could not parse network file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(network.Nodes))
	for i := range network.Nodes {
		name := network.Nodes[i].Name
		if name == "" {
			return nil, fmt.Errorf("node %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate node %s", name)
		}
		seen[name] = struct{}{}

		if network.Nodes[i].Implementation == "" {
			network.Nodes[i].Implementation = Eclair
		}
	}

	for i := range network.Backends {
		if network.Backends[i].Implementation == "" {
			network.Backends[i].Implementation = Bitcoind
		}
	}

	return &network, nil
}

// Node returns the node with the given name
func (n *Network) Node(name string) (*Node, error) {
	for i := range n.Nodes {
		if n.Nodes[i].Name == name {
			return &n.Nodes[i], nil
		}
	}

	return nil, fmt.Errorf("node %s not found", name)
}

// BackendFor returns the chain backend of a node or nil when it has none
func (n *Network) BackendFor(node *Node) *Backend {
	if node == nil || node.Backend == "" {
		return nil
	}

	for i := range n.Backends {
		if n.Backends[i].Name == node.Backend {
			return &n.Backends[i]
		}
	}

	return nil
}
