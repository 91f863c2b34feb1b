package sigs

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/store"
)

const testChainID = "test-chain-1"

// signedTx is a minimal SignedTx for decorator tests.
type signedTx struct {
	custtest.Tx
	signBytes []byte
	sigs      []StdSignature
}

var _ SignedTx = (*signedTx)(nil)

func (tx *signedTx) GetSignBytes() ([]byte, error) { return tx.signBytes, nil }
func (tx *signedTx) GetSignatures() []StdSignature { return tx.sigs }

func genKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func chainCtx() custos.Context {
	return custos.WithChainID(context.Background(), testChainID)
}

func TestDecoratorVerifies(t *testing.T) {
	priv := genKey(t)
	content := []byte("some transaction content")
	tx := &signedTx{
		signBytes: content,
		sigs:      []StdSignature{Sign(priv, content, testChainID)},
	}

	handler := &custtest.Handler{}
	d := NewDecorator()
	db := store.MemStore()

	_, err := d.Deliver(chainCtx(), db, tx, handler)
	require.NoError(t, err)
	require.Equal(t, 1, handler.DeliverCallCount())

	// the handler sees the proven identity
	auth := Authenticate{}
	conds := auth.GetConditions(handler.DeliverCtx)
	require.Len(t, conds, 1)
	assert.Equal(t, PubKeyCondition(priv.Public().(ed25519.PublicKey)), conds[0])
	assert.True(t, auth.HasAddress(handler.DeliverCtx, conds[0].Address()))
	assert.False(t, auth.HasAddress(handler.DeliverCtx, custtest.NewAddress()))
}

func TestDecoratorRejectsBadSignature(t *testing.T) {
	priv := genKey(t)
	content := []byte("content")
	d := NewDecorator()
	db := store.MemStore()

	t.Run("signature over different content", func(t *testing.T) {
		tx := &signedTx{
			signBytes: content,
			sigs:      []StdSignature{Sign(priv, []byte("other content"), testChainID)},
		}
		_, err := d.Deliver(chainCtx(), db, tx, &custtest.Handler{})
		assert.True(t, errors.ErrUnauthorized.Is(err))
	})
	t.Run("signature bound to another chain", func(t *testing.T) {
		tx := &signedTx{
			signBytes: content,
			sigs:      []StdSignature{Sign(priv, content, "other-chain")},
		}
		_, err := d.Deliver(chainCtx(), db, tx, &custtest.Handler{})
		assert.True(t, errors.ErrUnauthorized.Is(err))
	})
	t.Run("malformed signature", func(t *testing.T) {
		tx := &signedTx{
			signBytes: content,
			sigs:      []StdSignature{{PubKey: []byte("short"), Signature: []byte("short")}},
		}
		_, err := d.Deliver(chainCtx(), db, tx, &custtest.Handler{})
		assert.True(t, errors.ErrInput.Is(err))
	})
}

func TestDecoratorRequiresSignedTx(t *testing.T) {
	d := NewDecorator()
	db := store.MemStore()
	_, err := d.Check(chainCtx(), db, &custtest.Tx{}, &custtest.Handler{})
	assert.True(t, errors.ErrType.Is(err))
}

func TestDecoratorAllowsUnsignedThrough(t *testing.T) {
	// no signatures means no identities, not a rejection
	tx := &signedTx{signBytes: []byte("content")}
	handler := &custtest.Handler{}
	db := store.MemStore()

	_, err := NewDecorator().Deliver(chainCtx(), db, tx, handler)
	require.NoError(t, err)
	assert.Len(t, Authenticate{}.GetConditions(handler.DeliverCtx), 0)
}

func TestSignBytesLayout(t *testing.T) {
	got := SignBytes([]byte("abc"), "chain")
	assert.Equal(t, []byte("chain\x00abc"), got)
}
