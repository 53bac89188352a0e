package lightning

import (
	"context"
	"errors"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	davePubKey = "039f1bd9e1bfa5d56a6fd0d4d5a0c3e2fb8c27e4c31e5b6c84f5de6c0f0a3c2b1a"
	erinPubKey = "02d8f6ad1bd9ee1b0e5e7a3b2c3a4f5e6d7c8b9a0f1e2d3c4b5a69788796a5b4c3"
)

func TestGetPeers(t *testing.T) {
	api, gateway, _ := common(t)

	gateway.EXPECT().
		Call(gomock.Any(), alice, PEERS, emptyParams, gomock.Any()).
		DoAndReturn(replyWith(fixture(t, "eclair_peers"))).
		Times(1)

	peers, err := api.GetPeers(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, 2, len(peers))

	assert.Equal(t, bobPubKey, peers[0].PubKey)
	assert.Equal(t, "172.18.0.4:9735", peers[0].Address)
	assert.Equal(t, "CONNECTED", peers[0].State)
	assert.Equal(t, 2, peers[0].ChannelCount)

	assert.Equal(t, carolPubKey, peers[1].PubKey)
	assert.Equal(t, "", peers[1].Address)
	assert.Equal(t, "DISCONNECTED", peers[1].State)
}

func TestConnectPeersSkipsKnown(t *testing.T) {
	api, gateway, _ := common(t)

	gateway.EXPECT().
		Call(gomock.Any(), alice, PEERS, emptyParams, gomock.Any()).
		DoAndReturn(replyWith(fixture(t, "eclair_peers"))).
		Times(1)

	// a disconnected peer is still a peer
	err := api.ConnectPeers(context.Background(), alice, []string{
		bobPubKey + "@172.18.0.4:9735",
		carolPubKey + "@172.18.0.5:9735",
	})
	assert.NoError(t, err)
}

func TestConnectPeersIsolatesFailures(t *testing.T) {
	api, gateway, _ := common(t)

	gomock.InOrder(
		gateway.EXPECT().
			Call(gomock.Any(), alice, PEERS, emptyParams, gomock.Any()).
			DoAndReturn(replyWith(fixture(t, "eclair_peers"))).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, CONNECT, map[string]string{"uri": davePubKey + "@172.18.0.9:9735"}, gomock.Any()).
			Return(errors.New("connection refused")).
			Times(1),
		gateway.EXPECT().
			Call(gomock.Any(), alice, CONNECT, map[string]string{"nodeId": erinPubKey}, gomock.Any()).
			DoAndReturn(replyJSON(t, "connected")).
			Times(1),
	)

	err := api.ConnectPeers(context.Background(), alice, []string{
		bobPubKey + "@172.18.0.4:9735",
		davePubKey + "@172.18.0.9:9735",
		"not a node",
		davePubKey + "@172.18.0.9:9735",
		erinPubKey,
	})
	assert.NoError(t, err)
}

func TestConnectPeersListFails(t *testing.T) {
	api, gateway, _ := common(t)

	gateway.EXPECT().
		Call(gomock.Any(), alice, PEERS, emptyParams, gomock.Any()).
		Return(errors.New("unauthorized")).
		Times(1)

	err := api.ConnectPeers(context.Background(), alice, []string{davePubKey + "@172.18.0.9:9735"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestConnectPeersNothingToDo(t *testing.T) {
	api, gateway, _ := common(t)

	gateway.EXPECT().
		Call(gomock.Any(), alice, PEERS, emptyParams, gomock.Any()).
		DoAndReturn(replyWith([]byte("[]"))).
		Times(1)

	assert.NoError(t, api.ConnectPeers(context.Background(), alice, nil))
}

func TestSplitRPCURL(t *testing.T) {
	pubKey, host, err := SplitRPCURL(" " + bobPubKey + "@172.18.0.4:9735")
	require.NoError(t, err)
	assert.Equal(t, bobPubKey, pubKey)
	assert.Equal(t, "172.18.0.4:9735", host)

	pubKey, host, err = SplitRPCURL(bobPubKey)
	require.NoError(t, err)
	assert.Equal(t, bobPubKey, pubKey)
	assert.Equal(t, "", host)

	_, _, err = SplitRPCURL("04" + bobPubKey[2:] + "@host:1")
	assert.Error(t, err)

	_, _, err = SplitRPCURL("")
	assert.Error(t, err)
}

func TestIsValidPubKey(t *testing.T) {
	assert.True(t, IsValidPubKey(alicePubKey))
	assert.True(t, IsValidPubKey(carolPubKey))
	assert.False(t, IsValidPubKey(alicePubKey[:65]))
	assert.False(t, IsValidPubKey("burek"))
}
