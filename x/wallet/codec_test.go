package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
)

func TestWalletRoundTrip(t *testing.T) {
	cases := map[string]*Wallet{
		"minimal": {
			Signers:   []custos.Address{custtest.NewAddress()},
			Threshold: 1,
			Version:   1,
		},
		"full house": {
			Signers:        manyAddresses(MaxSigners),
			Threshold:      MaxSigners,
			GuardianMask:   1<<MaxSigners - 1,
			ApprovalWindow: MaxApprovalWindow,
			Version:        42,
			ConfigLocked:   true,
		},
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := w.Marshal()
			require.NoError(t, err)
			assert.Len(t, raw, walletSize)

			var got Wallet
			require.NoError(t, got.Unmarshal(raw))
			assert.Equal(t, *w, got)
		})
	}
}

func TestAccountRoundTrip(t *testing.T) {
	acct := &BalanceAccount{
		GUIDHash:          hashN(1),
		NameHash:          hashN(2),
		AssetType:         AssetToken,
		Mint:              hashN(3),
		WhitelistEnabled:  true,
		DAppsEnabled:      true,
		Active:            true,
		TransferThreshold: 5,
		ApprovalWindow:    custos.UnixDuration(7200),
		Whitelist:         manyAddresses(MaxWhitelistEntries),
	}
	raw, err := acct.Marshal()
	require.NoError(t, err)
	assert.Len(t, raw, accountSize)

	var got BalanceAccount
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, *acct, got)
}

func TestBookRoundTrip(t *testing.T) {
	book := &DAppBook{}
	for i := 0; i < MaxDAppBookEntries; i++ {
		book.Entries = append(book.Entries, DAppEntry{
			ProgramID: hashN(byte(i + 1)),
			Label:     "program",
		})
	}
	raw, err := book.Marshal()
	require.NoError(t, err)
	assert.Len(t, raw, bookSize)

	var got DAppBook
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, *book, got)

	// an empty book is valid too
	raw, err = (&DAppBook{}).Marshal()
	require.NoError(t, err)
	var empty DAppBook
	require.NoError(t, empty.Unmarshal(raw))
	assert.Len(t, empty.Entries, 0)
}

func TestPendingOpRoundTrip(t *testing.T) {
	op := &PendingOp{
		Kind:       KindTransfer,
		WalletID:   []byte{0, 0, 0, 0, 0, 0, 0, 1},
		ParamsHash: hashN(5),
		CreatedAt:  1000,
		Deadline:   2000,
		Status:     StatusPending,
		Votes: []Vote{
			{Signer: custtest.NewAddress(), Disposition: Approve},
			{Signer: custtest.NewAddress(), Disposition: Disapprove},
		},
		Payload: []byte("packed message"),
	}
	raw, err := op.Marshal()
	require.NoError(t, err)
	assert.Len(t, raw, opSize)

	var got PendingOp
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, *op, got)
}

func TestUnmarshalRejectsBadImages(t *testing.T) {
	w := &Wallet{
		Signers:   []custos.Address{custtest.NewAddress()},
		Threshold: 1,
		Version:   1,
	}
	good, err := w.Marshal()
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		var got Wallet
		err := got.Unmarshal(good[:len(good)-1])
		assert.True(t, errors.ErrSchema.Is(err))
	})
	t.Run("oversized", func(t *testing.T) {
		var got Wallet
		err := got.Unmarshal(append(good[:len(good):len(good)], 0))
		assert.True(t, errors.ErrSchema.Is(err))
	})
	t.Run("wrong discriminant", func(t *testing.T) {
		raw := append([]byte(nil), good...)
		raw[0] = recAccount
		var got Wallet
		assert.True(t, errors.ErrSchema.Is(got.Unmarshal(raw)))
	})
	t.Run("unknown schema", func(t *testing.T) {
		raw := append([]byte(nil), good...)
		raw[1] = 99
		var got Wallet
		assert.True(t, errors.ErrSchema.Is(got.Unmarshal(raw)))
	})
	t.Run("count beyond capacity", func(t *testing.T) {
		raw := append([]byte(nil), good...)
		raw[2] = MaxSigners + 1
		var got Wallet
		assert.True(t, errors.ErrSchema.Is(got.Unmarshal(raw)))
	})
}

func TestMarshalValidatesFirst(t *testing.T) {
	// a wallet with a broken invariant must not serialize
	w := &Wallet{
		Signers:   []custos.Address{custtest.NewAddress()},
		Threshold: 2,
	}
	_, err := w.Marshal()
	assert.Error(t, err)

	op := &PendingOp{
		Kind:       KindTransfer,
		WalletID:   []byte{0, 0, 0, 0, 0, 0, 0, 1},
		ParamsHash: hashN(5),
		CreatedAt:  1000,
		Deadline:   2000,
		Status:     StatusApproved,
		Payload:    []byte("x"),
	}
	_, err = op.Marshal()
	assert.True(t, errors.ErrState.Is(err))
}

func manyAddresses(n int) []custos.Address {
	out := make([]custos.Address, n)
	for i := range out {
		out[i] = custtest.NewAddress()
	}
	return out
}
