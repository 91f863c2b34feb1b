package ledger

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/store"
	"github.com/custodia-one/custos/x/wallet"
)

func nativeAsset() wallet.Asset {
	return wallet.Asset{Type: wallet.AssetNative, Mint: make([]byte, wallet.HashSize)}
}

func tokenAsset(n byte) wallet.Asset {
	return wallet.Asset{Type: wallet.AssetToken, Mint: bytes.Repeat([]byte{n}, wallet.HashSize)}
}

func TestDepositAndBalance(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	addr := custtest.NewAddress()

	bal, err := c.Balance(db, addr, nativeAsset())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	require.NoError(t, c.Deposit(db, addr, nativeAsset(), 100))
	require.NoError(t, c.Deposit(db, addr, nativeAsset(), 50))
	bal, err = c.Balance(db, addr, nativeAsset())
	require.NoError(t, err)
	assert.Equal(t, uint64(150), bal)

	// assets are independent
	bal, err = c.Balance(db, addr, tokenAsset(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	err = c.Deposit(db, addr, nativeAsset(), 0)
	assert.True(t, errors.ErrAmount.Is(err))

	err = c.Deposit(db, addr, nativeAsset(), math.MaxUint64)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestMove(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	src, dest := custtest.NewAddress(), custtest.NewAddress()

	require.NoError(t, c.Deposit(db, src, nativeAsset(), 100))

	require.NoError(t, c.Move(db, src, dest, nativeAsset(), 60))
	have, _ := c.Balance(db, src, nativeAsset())
	assert.Equal(t, uint64(40), have)
	have, _ = c.Balance(db, dest, nativeAsset())
	assert.Equal(t, uint64(60), have)

	err := c.Move(db, src, dest, nativeAsset(), 41)
	assert.True(t, errors.ErrAmount.Is(err))

	err = c.Move(db, src, dest, nativeAsset(), 0)
	assert.True(t, errors.ErrAmount.Is(err))

	// a token balance cannot pay a native move
	err = c.Move(db, src, dest, tokenAsset(1), 1)
	assert.True(t, errors.ErrAmount.Is(err))
}

func TestMoveSelfRejected(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	addr := custtest.NewAddress()

	require.NoError(t, c.Deposit(db, addr, nativeAsset(), 100))

	err := c.Move(db, addr, addr, nativeAsset(), 50)
	assert.True(t, errors.ErrInput.Is(err))

	// the balance must not change
	have, _ := c.Balance(db, addr, nativeAsset())
	assert.Equal(t, uint64(100), have)
}

func TestMoveOverflow(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	src, dest := custtest.NewAddress(), custtest.NewAddress()

	require.NoError(t, c.Deposit(db, src, nativeAsset(), 100))
	require.NoError(t, c.Deposit(db, dest, nativeAsset(), math.MaxUint64-10))

	err := c.Move(db, src, dest, nativeAsset(), 20)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestZeroBalanceDeletesRecord(t *testing.T) {
	db := store.MemStore()
	c := NewController()
	src, dest := custtest.NewAddress(), custtest.NewAddress()

	require.NoError(t, c.Deposit(db, src, nativeAsset(), 5))
	require.NoError(t, c.Move(db, src, dest, nativeAsset(), 5))

	bucket := NewBalanceBucket()
	obj, err := bucket.Get(db, BalanceKey(src, nativeAsset().Key()))
	require.NoError(t, err)
	assert.Nil(t, obj, "drained balance leaves no record behind")
}
