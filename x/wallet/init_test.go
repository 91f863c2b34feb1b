package wallet

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/store"
)

func TestGenesisWallet(t *testing.T) {
	a, b := custtest.NewAddress(), custtest.NewAddress()
	genesis := fmt.Sprintf(`
		{
			"wallet": [
				{
					"signers": ["%s", "%s"],
					"threshold": 2,
					"guardian_mask": 1,
					"approval_window": "2h"
				}
			]
		}
	`, a, b)

	var opts custos.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, db))

	// the first wallet gets the first sequence id
	id := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	w, err := NewWalletBucket().GetWallet(db, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), w.Version)
	assert.Equal(t, uint8(2), w.Threshold)
	assert.Equal(t, uint32(1), w.GuardianMask)
	assert.Equal(t, custos.UnixDuration(7200), w.ApprovalWindow)
	assert.True(t, w.IsSigner(a))
	assert.True(t, w.IsSigner(b))
}

func TestGenesisWalletInvalid(t *testing.T) {
	var opts custos.Options
	require.NoError(t, json.Unmarshal([]byte(`{"wallet": [{"threshold": 1}]}`), &opts))

	var ini Initializer
	err := ini.FromGenesis(opts, store.MemStore())
	assert.Error(t, err, "wallet without signers must be rejected")
}

func TestGenesisWalletMissingKey(t *testing.T) {
	var ini Initializer
	assert.NoError(t, ini.FromGenesis(custos.Options{}, store.MemStore()))
}
