package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletInfoTotal(t *testing.T) {
	var info WalletInfo

	err := json.Unmarshal([]byte(`{"balance": 0.1, "unconfirmed_balance": 0.2, "immature_balance": 50}`), &info)
	require.NoError(t, err)

	// 0.1 + 0.2 is exact with decimals
	assert.Equal(t, "50.3", info.Total().String())

	var empty WalletInfo
	err = json.Unmarshal([]byte(`{"balance": 0.00001}`), &empty)
	require.NoError(t, err)
	assert.Equal(t, "0.00001", empty.Total().String())
}
