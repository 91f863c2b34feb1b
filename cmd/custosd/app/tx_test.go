package app

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x/sigs"
	"github.com/custodia-one/custos/x/wallet"
)

func testTransferMsg() *wallet.TransferMsg {
	return &wallet.TransferMsg{
		WalletID:    []byte{0, 0, 0, 0, 0, 0, 0, 1},
		GUIDHash:    make([]byte, wallet.HashSize),
		Destination: custtest.NewAddress(),
		Amount:      77,
	}
}

func TestTxRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	tx := &Tx{Msg: testTransferMsg()}
	signBytes, err := tx.GetSignBytes()
	require.NoError(t, err)
	tx.Signatures = []sigs.StdSignature{sigs.Sign(priv, signBytes, "test-chain")}

	raw, err := tx.Marshal()
	require.NoError(t, err)

	parsed, err := TxDecoder(raw)
	require.NoError(t, err)

	msg, err := parsed.GetMsg()
	require.NoError(t, err)
	got, ok := msg.(*wallet.TransferMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, uint64(77), got.Amount)

	signed, ok := parsed.(sigs.SignedTx)
	require.True(t, ok)
	assert.Equal(t, tx.Signatures, signed.GetSignatures())

	// sign bytes survive the round trip
	gotBytes, err := signed.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, signBytes, gotBytes)
}

func TestTxSignBytesIncludePath(t *testing.T) {
	tx := &Tx{Msg: testTransferMsg()}
	signBytes, err := tx.GetSignBytes()
	require.NoError(t, err)

	raw, err := tx.Msg.Marshal()
	require.NoError(t, err)
	want := append([]byte("wallet/transfer\x00"), raw...)
	assert.Equal(t, want, signBytes)
}

func TestTxWithoutMessage(t *testing.T) {
	tx := &Tx{}
	_, err := tx.GetMsg()
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = tx.GetSignBytes()
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestTxDecoderRejectsGarbage(t *testing.T) {
	_, err := TxDecoder([]byte("not a transaction"))
	assert.True(t, errors.ErrInput.Is(err))
}
