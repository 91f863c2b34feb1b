package app

import (
	"github.com/tendermint/go-amino"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x/sigs"
	"github.com/custodia-one/custos/x/wallet"
)

// txCodec serializes the transaction envelope, with every routable
// message registered as a concrete type.
var txCodec = amino.NewCodec()

func init() {
	txCodec.RegisterInterface((*custos.Msg)(nil), nil)
	wallet.RegisterCodec(txCodec)
}

// Tx is the custosd transaction envelope: one message plus the
// signatures authorizing it.
type Tx struct {
	Msg        custos.Msg
	Signatures []sigs.StdSignature
}

var _ custos.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// GetMsg implements custos.Tx.
func (tx *Tx) GetMsg() (custos.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "no message")
	}
	return tx.Msg, nil
}

// GetSignBytes implements sigs.SignedTx. The routing path is part of
// the signed content so that equal encodings of different message
// types can never be swapped.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "no message")
	}
	raw, err := tx.Msg.Marshal()
	if err != nil {
		return nil, err
	}
	path := tx.Msg.Path()
	out := make([]byte, 0, len(path)+1+len(raw))
	out = append(out, path...)
	out = append(out, 0)
	return append(out, raw...), nil
}

// GetSignatures implements sigs.SignedTx.
func (tx *Tx) GetSignatures() []sigs.StdSignature {
	return tx.Signatures
}

// Marshal implements custos.Persistent.
func (tx *Tx) Marshal() ([]byte, error) {
	return txCodec.MarshalBinaryBare(tx)
}

// Unmarshal implements custos.Persistent.
func (tx *Tx) Unmarshal(raw []byte) error {
	return txCodec.UnmarshalBinaryBare(raw, tx)
}

// TxDecoder parses the raw transaction bytes.
func TxDecoder(bz []byte) (custos.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return tx, nil
}
