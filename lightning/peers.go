package lightning

import (
	"context"
	"fmt"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/golang/glog"
)

func (e *EclairAPI) listPeers(ctx context.Context, node *entities.Node) ([]EclairPeer, error) {
	var reply []EclairPeer

	err := e.Gateway.Call(ctx, node, PEERS, map[string]string{}, &reply)
	if err != nil {
		return nil, err
	}

	return reply, nil
}

// GetPeers API call
func (e *EclairAPI) GetPeers(ctx context.Context, node *entities.Node) ([]Peer, error) {
	if err := e.checkNode("GetPeers", node); err != nil {
		return nil, err
	}

	peers, err := e.listPeers(ctx, node)
	if err != nil {
		return nil, err
	}

	ret := make([]Peer, 0, len(peers))
	for _, one := range peers {
		ret = append(ret, convertPeer(one))
	}

	return ret, nil
}

// ConnectPeers connects to every node in rpcURLs that is not a peer yet.
// Connections are attempted one after another and failures only get logged.
func (e *EclairAPI) ConnectPeers(ctx context.Context, node *entities.Node, rpcURLs []string) error {
	if err := e.checkNode("ConnectPeers", node); err != nil {
		return err
	}

	peers, err := e.listPeers(ctx, node)
	if err != nil {
		return fmt.Errorf("list peers of %s: %w", node.Name, err)
	}

	known := make(map[string]struct{}, len(peers))
	for _, one := range peers {
		if pubKey, _, err := SplitRPCURL(one.NodeID); err == nil {
			known[pubKey] = struct{}{}
		}
	}

	for _, uri := range rpcURLs {
		pubKey, host, err := SplitRPCURL(uri)
		if err != nil {
			glog.Warningf("Node %s: skipping peer: %v", node.Name, err)
			continue
		}

		if _, ok := known[pubKey]; ok {
			continue
		}
		// duplicates in rpcURLs are tried only once
		known[pubKey] = struct{}{}

		params := map[string]string{"nodeId": pubKey}
		if host != "" {
			params = map[string]string{"uri": fmt.Sprintf("%s@%s", pubKey, host)}
		}

		var reply string
		if err := e.Gateway.Call(ctx, node, CONNECT, params, &reply); err != nil {
			glog.Warningf("Node %s: connect to %s failed: %v", node.Name, uri, err)
			continue
		}

		glog.V(2).Infof("Node %s: connect to %s: %s", node.Name, uri, reply)
	}

	return nil
}
