package wallet

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/app"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/store"
)

func routedHandler(auth *custtest.Auth, mover Mover) custos.Handler {
	r := app.NewRouter()
	RegisterRoutes(r, auth, mover)
	return r
}

func blockCtx(now custos.UnixTime) custos.Context {
	return custos.WithBlockTime(context.Background(), now.Time())
}

func TestInitWalletHandler(t *testing.T) {
	db := store.MemStore()
	signer := custtest.NewCondition()
	other := custtest.NewCondition()
	h := routedHandler(&custtest.Auth{Signer: signer}, &mockMover{})

	msg := &InitWalletMsg{
		Signers:   []custos.Address{signer.Address(), custtest.NewAddress()},
		Threshold: 2,
	}
	ctx := blockCtx(1000)

	check, err := h.Check(ctx, db, &custtest.Tx{Msg: msg})
	require.NoError(t, err)
	assert.Equal(t, int64(initWalletCost), check.GasAllocated)

	res, err := h.Deliver(ctx, db, &custtest.Tx{Msg: msg})
	require.NoError(t, err)
	require.Len(t, res.Data, 8)

	w, err := NewWalletBucket().GetWallet(db, res.Data)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), w.Version)
	assert.Equal(t, uint8(2), w.Threshold)

	// a wallet naming only strangers as signers is refused
	stranger := &InitWalletMsg{
		Signers:   []custos.Address{other.Address()},
		Threshold: 1,
	}
	_, err = h.Deliver(ctx, db, &custtest.Tx{Msg: stranger})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestProposalAndVoteHandlers(t *testing.T) {
	db := store.MemStore()
	a, b := custtest.NewCondition(), custtest.NewCondition()
	mover := &mockMover{}

	authA := &custtest.Auth{Signer: a}
	authB := &custtest.Auth{Signer: b}
	hA := routedHandler(authA, mover)
	hB := routedHandler(authB, mover)

	// both handler stacks share the store, seed through either
	o := NewOperations(mover)
	walletID := seedWallet(t, db, o, &Wallet{
		Signers:   []custos.Address{a.Address(), b.Address()},
		Threshold: 2,
	})
	seedAccount(t, db, o, walletID, nativeAccount(7))

	transfer := &TransferMsg{
		WalletID:    walletID,
		GUIDHash:    hashN(7),
		Destination: custtest.NewAddress(),
		Amount:      100,
	}
	ctx := blockCtx(1000)

	res, err := hA.Deliver(ctx, db, &custtest.Tx{Msg: transfer})
	require.NoError(t, err)
	require.Len(t, res.Data, 8, "pending operation returns the op id")
	assert.Equal(t, []byte(StatusPending.String()), res.Tags[1].Value)

	opID := res.Data
	hash := paramsHashOf(t, db, o, opID)

	res, err = hB.Deliver(ctx, db, &custtest.Tx{Msg: vote(opID, hash, Approve)})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(res.Data))
	require.Len(t, mover.calls, 1)
}

func TestProposalHandlerRequiresSigner(t *testing.T) {
	db := store.MemStore()
	h := routedHandler(&custtest.Auth{}, &mockMover{})

	msg := &TransferMsg{
		WalletID:    walletID1,
		GUIDHash:    hashN(7),
		Destination: custtest.NewAddress(),
		Amount:      100,
	}
	_, err := h.Deliver(blockCtx(1000), db, &custtest.Tx{Msg: msg})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestHandlersRequireBlockTime(t *testing.T) {
	db := store.MemStore()
	signer := custtest.NewCondition()
	h := routedHandler(&custtest.Auth{Signer: signer}, &mockMover{})

	msg := &TransferMsg{
		WalletID:    walletID1,
		GUIDHash:    hashN(7),
		Destination: custtest.NewAddress(),
		Amount:      100,
	}
	_, err := h.Deliver(context.Background(), db, &custtest.Tx{Msg: msg})
	assert.True(t, errors.ErrState.Is(err))
}

func TestReapHandler(t *testing.T) {
	db := store.MemStore()
	a, b := custtest.NewCondition(), custtest.NewCondition()
	mover := &mockMover{}
	h := routedHandler(&custtest.Auth{Signer: a}, mover)

	o := NewOperations(mover)
	walletID := seedWallet(t, db, o, &Wallet{
		Signers:   []custos.Address{a.Address(), b.Address()},
		Threshold: 2,
	})
	seedAccount(t, db, o, walletID, nativeAccount(7))

	transfer := &TransferMsg{
		WalletID:    walletID,
		GUIDHash:    hashN(7),
		Destination: custtest.NewAddress(),
		Amount:      100,
	}
	res, err := h.Deliver(blockCtx(1000), db, &custtest.Tx{Msg: transfer})
	require.NoError(t, err)
	opID := res.Data

	// anyone may reap, but only after the deadline
	outsider := routedHandler(&custtest.Auth{}, mover)
	_, err = outsider.Deliver(blockCtx(1000), db, &custtest.Tx{Msg: &ReapMsg{OpID: opID}})
	assert.True(t, errors.ErrState.Is(err))

	late := custos.UnixTime(1000).Add(25 * time.Hour)
	_, err = outsider.Deliver(blockCtx(late), db, &custtest.Tx{Msg: &ReapMsg{OpID: opID}})
	require.NoError(t, err)

	_, err = o.ops.GetOp(db, opID)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestRouterRejectsUnknownPath(t *testing.T) {
	db := store.MemStore()
	h := routedHandler(&custtest.Auth{}, &mockMover{})

	_, err := h.Deliver(blockCtx(1000), db, &custtest.Tx{Msg: &custtest.Msg{RoutePath: "wallet/bogus"}})
	assert.Error(t, err)
}
