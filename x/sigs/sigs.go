// Package sigs verifies the ed25519 signatures attached to a
// transaction and exposes the proven identities to downstream
// handlers through the context.
package sigs

import (
	"context"

	"golang.org/x/crypto/ed25519"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x"
)

// StdSignature is one proof of identity attached to a transaction.
type StdSignature struct {
	// PubKey is a raw 32 byte ed25519 public key.
	PubKey []byte
	// Signature signs the chain id followed by the sign bytes of the
	// transaction.
	Signature []byte
}

// Validate checks the sizes of both parts.
func (s StdSignature) Validate() error {
	if len(s.PubKey) != ed25519.PublicKeySize {
		return errors.Wrap(errors.ErrInput, "public key size")
	}
	if len(s.Signature) != ed25519.SignatureSize {
		return errors.Wrap(errors.ErrInput, "signature size")
	}
	return nil
}

// Condition returns the identity this signature proves when valid.
func (s StdSignature) Condition() custos.Condition {
	return PubKeyCondition(s.PubKey)
}

// PubKeyCondition builds the condition of an ed25519 public key.
func PubKeyCondition(pubKey []byte) custos.Condition {
	return custos.NewCondition("sigs", "ed25519", pubKey)
}

// SignedTx is a transaction carrying signatures over its content.
type SignedTx interface {
	custos.Tx

	// GetSignBytes returns the canonical byte representation of the
	// transaction content, excluding the signatures themselves.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns all attached signatures.
	GetSignatures() []StdSignature
}

// SignBytes builds the exact bytes that must be signed for the given
// transaction content and chain.
func SignBytes(signBytes []byte, chainID string) []byte {
	out := make([]byte, 0, len(chainID)+1+len(signBytes))
	out = append(out, chainID...)
	out = append(out, 0)
	return append(out, signBytes...)
}

// Sign produces a StdSignature over the transaction content with the
// given ed25519 private key.
func Sign(priv ed25519.PrivateKey, signBytes []byte, chainID string) StdSignature {
	return StdSignature{
		PubKey:    []byte(priv.Public().(ed25519.PublicKey)),
		Signature: ed25519.Sign(priv, SignBytes(signBytes, chainID)),
	}
}

type contextKey int

const contextKeySigners contextKey = iota

func withSigners(ctx custos.Context, signers []custos.Condition) custos.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate implements x.Authenticator, revealing the identities
// the Decorator proved for this transaction.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions implements x.Authenticator.
func (Authenticate) GetConditions(ctx custos.Context) []custos.Condition {
	val, _ := ctx.Value(contextKeySigners).([]custos.Condition)
	return val
}

// HasAddress implements x.Authenticator.
func (a Authenticate) HasAddress(ctx custos.Context, addr custos.Address) bool {
	for _, cond := range a.GetConditions(ctx) {
		if cond.Address().Equals(addr) {
			return true
		}
	}
	return false
}

// Decorator verifies all attached signatures before passing the
// transaction on. A transaction with any invalid signature is
// rejected, one with no signatures passes through with an empty
// identity set and fails later authorization checks.
type Decorator struct{}

var _ custos.Decorator = Decorator{}

// NewDecorator initializes a Decorator.
func NewDecorator() Decorator {
	return Decorator{}
}

// Check implements custos.Decorator.
func (d Decorator) Check(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Checker) (custos.CheckResult, error) {
	ctx, err := d.verify(ctx, tx)
	if err != nil {
		return custos.CheckResult{}, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver implements custos.Decorator.
func (d Decorator) Deliver(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Deliverer) (custos.DeliverResult, error) {
	ctx, err := d.verify(ctx, tx)
	if err != nil {
		return custos.DeliverResult{}, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) verify(ctx custos.Context, tx custos.Tx) (custos.Context, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return ctx, errors.Wrap(errors.ErrType, "transaction carries no signatures")
	}
	signBytes, err := stx.GetSignBytes()
	if err != nil {
		return ctx, errors.Wrap(err, "cannot compute sign bytes")
	}
	chainID := custos.GetChainID(ctx)
	payload := SignBytes(signBytes, chainID)

	sigs := stx.GetSignatures()
	signers := make([]custos.Condition, 0, len(sigs))
	for i, sig := range sigs {
		if err := sig.Validate(); err != nil {
			return ctx, errors.Wrapf(err, "signature %d", i)
		}
		if !ed25519.Verify(ed25519.PublicKey(sig.PubKey), payload, sig.Signature) {
			return ctx, errors.Wrapf(errors.ErrUnauthorized, "signature %d invalid", i)
		}
		signers = append(signers, sig.Condition())
	}
	return withSigners(ctx, signers), nil
}
