package orm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/store"
)

// counter is a minimal CloneableData for bucket tests.
type counter struct {
	Count int64
}

var _ CloneableData = (*counter)(nil)

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	return &counter{Count: c.Count}
}

func (c *counter) Marshal() ([]byte, error) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(c.Count))
	return bz, nil
}

func (c *counter) Unmarshal(raw []byte) error {
	if len(raw) != 8 {
		return errors.Wrap(errors.ErrSchema, "counter size")
	}
	c.Count = int64(binary.BigEndian.Uint64(raw))
	return nil
}

func newCounterBucket() Bucket {
	return NewBucket("cnt", NewSimpleObj(nil, &counter{}))
}

func TestBucketCRUD(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	key := []byte("accounts")

	// missing is nil, nil
	obj, err := b.Get(db, key)
	require.NoError(t, err)
	require.Nil(t, obj)

	require.NoError(t, b.Save(db, NewSimpleObj(key, &counter{Count: 55})))

	obj, err = b.Get(db, key)
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, key, obj.Key())
	assert.Equal(t, int64(55), obj.Value().(*counter).Count)

	require.NoError(t, b.Delete(db, key))
	obj, err = b.Get(db, key)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestBucketSaveValidates(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	err := b.Save(db, NewSimpleObj([]byte("bad"), &counter{Count: -2}))
	assert.True(t, errors.ErrState.Is(err))

	err = b.Save(db, NewSimpleObj(nil, &counter{Count: 1}))
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestBucketIsolation(t *testing.T) {
	db := store.MemStore()
	one := NewBucket("one", NewSimpleObj(nil, &counter{}))
	two := NewBucket("two", NewSimpleObj(nil, &counter{}))
	key := []byte("shared")

	require.NoError(t, one.Save(db, NewSimpleObj(key, &counter{Count: 1})))
	require.NoError(t, two.Save(db, NewSimpleObj(key, &counter{Count: 2})))

	obj, err := one.Get(db, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), obj.Value().(*counter).Count)

	obj, err = two.Get(db, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), obj.Value().(*counter).Count)
}

func TestBucketRequiresValidName(t *testing.T) {
	assert.Panics(t, func() { NewBucket("BAD", NewSimpleObj(nil, &counter{})) })
	assert.Panics(t, func() { NewBucket("ab", NewSimpleObj(nil, &counter{})) })
	assert.Panics(t, func() { NewBucket("waytoolongname", NewSimpleObj(nil, &counter{})) })
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("aa"), &counter{Count: 1})))
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("ab"), &counter{Count: 2})))
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("bb"), &counter{Count: 3})))

	models, err := b.Query(db, custos.KeyQueryMod, []byte("aa"))
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, b.DBKey([]byte("aa")), models[0].Key)

	models, err = b.Query(db, custos.KeyQueryMod, []byte("zz"))
	require.NoError(t, err)
	assert.Len(t, models, 0)

	models, err = b.Query(db, custos.PrefixQueryMod, []byte("a"))
	require.NoError(t, err)
	assert.Len(t, models, 2)

	_, err = b.Query(db, "bogus", nil)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestSequence(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	seq := b.Sequence(SeqID)

	assert.Equal(t, int64(1), seq.NextInt(db))
	assert.Equal(t, int64(2), seq.NextInt(db))

	val, bz := seq.Latest(db)
	assert.Equal(t, int64(2), val)
	assert.NoError(t, ValidateSequence(bz))
	assert.Equal(t, int64(2), DecodeSequence(bz))

	// NextVal continues where NextInt left off
	assert.Equal(t, int64(3), DecodeSequence(seq.NextVal(db)))

	// a same-named sequence of another bucket is independent
	other := NewSequence("other", SeqID)
	assert.Equal(t, int64(1), other.NextInt(db))
}

func TestValidateSequence(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(ValidateSequence(nil)))
	assert.True(t, errors.ErrInput.Is(ValidateSequence([]byte{1, 2, 3})))
	assert.NoError(t, ValidateSequence(EncodeSequence(42)))
}
