package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/store"
)

// writingHandler writes one key and optionally fails afterwards.
type writingHandler struct {
	key, value []byte
	err        error
}

var _ custos.Handler = writingHandler{}

func (h writingHandler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	db.Set(h.key, h.value)
	return custos.CheckResult{}, h.err
}

func (h writingHandler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	db.Set(h.key, h.value)
	return custos.DeliverResult{}, h.err
}

func TestSavepointRollsBackOnError(t *testing.T) {
	db := store.MemStore()
	h := writingHandler{
		key:   []byte("side"),
		value: []byte("effect"),
		err:   errors.ErrState.New("boom"),
	}
	stack := NewSavepoint().OnDeliver()

	_, err := stack.Deliver(context.Background(), db, &custtest.Tx{}, h)
	require.Error(t, err)
	assert.Nil(t, db.Get([]byte("side")), "failed delivery leaves no writes")

	// check is not wrapped by an OnDeliver savepoint
	_, err = stack.Check(context.Background(), db, &custtest.Tx{}, h)
	require.Error(t, err)
	assert.Equal(t, []byte("effect"), db.Get([]byte("side")))
}

func TestSavepointCommitsOnSuccess(t *testing.T) {
	db := store.MemStore()
	h := writingHandler{key: []byte("side"), value: []byte("effect")}

	_, err := NewSavepoint().OnDeliver().Deliver(context.Background(), db, &custtest.Tx{}, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("effect"), db.Get([]byte("side")))
}

func TestSavepointOnCheck(t *testing.T) {
	db := store.MemStore()
	h := writingHandler{
		key:   []byte("side"),
		value: []byte("effect"),
		err:   errors.ErrState.New("boom"),
	}

	_, err := NewSavepoint().OnCheck().Check(context.Background(), db, &custtest.Tx{}, h)
	require.Error(t, err)
	assert.Nil(t, db.Get([]byte("side")))
}

func TestChainDecorators(t *testing.T) {
	d1, d2 := &custtest.Decorator{}, &custtest.Decorator{}
	h := &custtest.Handler{}
	db := store.MemStore()

	stack := ChainDecorators(d1, nil, d2).WithHandler(h)

	_, err := stack.Check(context.Background(), db, &custtest.Tx{})
	require.NoError(t, err)
	_, err = stack.Deliver(context.Background(), db, &custtest.Tx{})
	require.NoError(t, err)

	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}
