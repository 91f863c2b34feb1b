package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
)

func TestWalletValidate(t *testing.T) {
	a, b := custtest.NewAddress(), custtest.NewAddress()

	cases := map[string]struct {
		wallet  Wallet
		wantErr *errors.Error
	}{
		"valid": {
			wallet: Wallet{Signers: []custos.Address{a, b}, Threshold: 2},
		},
		"no signers": {
			wallet:  Wallet{Threshold: 1},
			wantErr: errors.ErrEmpty,
		},
		"duplicate signer": {
			wallet:  Wallet{Signers: []custos.Address{a, a}, Threshold: 1},
			wantErr: errors.ErrDuplicate,
		},
		"zero threshold": {
			wallet:  Wallet{Signers: []custos.Address{a}, Threshold: 0},
			wantErr: errors.ErrInput,
		},
		"threshold above signer count": {
			wallet:  Wallet{Signers: []custos.Address{a}, Threshold: 2},
			wantErr: errors.ErrInput,
		},
		"guardian mask beyond slots": {
			wallet:  Wallet{Signers: []custos.Address{a}, Threshold: 1, GuardianMask: 2},
			wantErr: errors.ErrInput,
		},
		"window too short": {
			wallet: Wallet{
				Signers:        []custos.Address{a},
				Threshold:      1,
				ApprovalWindow: MinApprovalWindow - 1,
			},
			wantErr: errors.ErrInput,
		},
		"window too long": {
			wallet: Wallet{
				Signers:        []custos.Address{a},
				Threshold:      1,
				ApprovalWindow: MaxApprovalWindow + 1,
			},
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.wallet.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	base := func() BalanceAccount {
		return BalanceAccount{
			GUIDHash: hashN(1),
			NameHash: hashN(2),
			Mint:     make([]byte, HashSize),
			Active:   true,
		}
	}

	t.Run("valid native", func(t *testing.T) {
		a := base()
		assert.NoError(t, a.Validate())
	})
	t.Run("native with mint", func(t *testing.T) {
		a := base()
		a.Mint = hashN(3)
		assert.Error(t, a.Validate())
	})
	t.Run("token without mint", func(t *testing.T) {
		a := base()
		a.AssetType = AssetToken
		assert.Error(t, a.Validate())
	})
	t.Run("valid token", func(t *testing.T) {
		a := base()
		a.AssetType = AssetToken
		a.Mint = hashN(3)
		assert.NoError(t, a.Validate())
	})
	t.Run("duplicate whitelist entry", func(t *testing.T) {
		a := base()
		d := custtest.NewAddress()
		a.Whitelist = []custos.Address{d, d}
		assert.True(t, errors.ErrDuplicate.Is(a.Validate()))
	})
}

func TestApplyWhitelistUpdate(t *testing.T) {
	d1, d2, d3 := custtest.NewAddress(), custtest.NewAddress(), custtest.NewAddress()
	a := &BalanceAccount{Whitelist: []custos.Address{d1, d2}}

	require.NoError(t, a.applyWhitelistUpdate([]custos.Address{d3}, []custos.Address{d1}))
	assert.False(t, a.Whitelisted(d1))
	assert.True(t, a.Whitelisted(d2))
	assert.True(t, a.Whitelisted(d3))

	// adding a present destination is refused
	err := a.applyWhitelistUpdate([]custos.Address{d2}, nil)
	assert.True(t, errors.ErrDuplicate.Is(err))

	// removing an absent destination is a noop
	require.NoError(t, a.applyWhitelistUpdate(nil, []custos.Address{d1}))
	assert.Len(t, a.Whitelist, 2)
}

func TestApplyBookUpdate(t *testing.T) {
	b := &DAppBook{Entries: []DAppEntry{{ProgramID: hashN(1), Label: "one"}}}

	require.NoError(t, b.applyBookUpdate(
		[]DAppEntry{{ProgramID: hashN(2), Label: "two"}},
		[][]byte{hashN(1)},
	))
	assert.False(t, b.Allows(hashN(1)))
	assert.True(t, b.Allows(hashN(2)))

	err := b.applyBookUpdate([]DAppEntry{{ProgramID: hashN(2)}}, nil)
	assert.True(t, errors.ErrDuplicate.Is(err))
}

func TestApplyConfigUpdate(t *testing.T) {
	a, b := custtest.NewAddress(), custtest.NewAddress()
	w := &Wallet{
		Signers:      []custos.Address{a},
		Threshold:    1,
		Version:      3,
		ConfigLocked: true,
	}

	require.NoError(t, w.applyConfigUpdate([]custos.Address{a, b}, 2, 2, 0))
	assert.Equal(t, uint32(4), w.Version)
	assert.False(t, w.ConfigLocked)
	assert.Equal(t, uint8(2), w.Threshold)
	assert.True(t, w.IsGuardian(b))
	assert.False(t, w.IsGuardian(a))

	// an invalid replacement leaves the wallet untouched
	err := w.applyConfigUpdate([]custos.Address{a}, 2, 0, 0)
	assert.Error(t, err)
	assert.Equal(t, uint32(4), w.Version)
	assert.Len(t, w.Signers, 2)
}

func TestPendingOpVotes(t *testing.T) {
	a, b := custtest.NewAddress(), custtest.NewAddress()
	op := &PendingOp{}

	require.NoError(t, op.recordVote(a, Approve))
	require.NoError(t, op.recordVote(b, Disapprove))

	require.NotNil(t, op.VoteOf(a))
	assert.Equal(t, Approve, op.VoteOf(a).Disposition)
	assert.Equal(t, Disapprove, op.VoteOf(b).Disposition)
	assert.Nil(t, op.VoteOf(custtest.NewAddress()))
}

func TestExpiresAt(t *testing.T) {
	assert.Equal(t, custos.UnixTime(1060), ExpiresAt(1000, 60))
	assert.Equal(t, custos.UnixTime(87400), ExpiresAt(1000, DefaultApprovalWindow))
}
