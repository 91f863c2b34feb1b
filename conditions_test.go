package custos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := NewCondition("sigs", "ed25519", data)

	ext, typ, got, err := c.Parse()
	require.NoError(t, err)
	assert.Equal(t, "sigs", ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, data, got)
	assert.NoError(t, c.Validate())

	// data containing a slash or newline still parses
	weird := NewCondition("wallet", "account", []byte("a/b\nc"))
	_, _, got, err = weird.Parse()
	require.NoError(t, err)
	assert.Equal(t, []byte("a/b\nc"), got)

	bad := Condition("garbage")
	_, _, _, err = bad.Parse()
	assert.Error(t, err)
	assert.Error(t, bad.Validate())
}

func TestConditionAddress(t *testing.T) {
	a := NewCondition("sigs", "ed25519", []byte{1, 2, 3})
	b := NewCondition("sigs", "ed25519", []byte{1, 2, 4})

	addr := a.Address()
	assert.NoError(t, addr.Validate())
	assert.Len(t, []byte(addr), AddressLength)

	// the address is deterministic and collision free in practice
	assert.True(t, addr.Equals(a.Address()))
	assert.False(t, addr.Equals(b.Address()))
}

func TestAddressValidate(t *testing.T) {
	assert.Error(t, Address(nil).Validate())
	assert.Error(t, Address(make([]byte, AddressLength-1)).Validate())
	assert.NoError(t, Address(make([]byte, AddressLength)).Validate())
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte{5}).Address()

	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))

	// empty string zeroes the address
	var empty Address
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)

	var bad Address
	assert.Error(t, json.Unmarshal([]byte(`"xyz"`), &bad))
}

func TestConditionJSON(t *testing.T) {
	c := NewCondition("sigs", "ed25519", []byte{1, 2, 3})

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var got Condition
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, c.Equals(got))
}
