package custtest

import (
	"crypto/rand"

	"github.com/custodia-one/custos"
)

// NewCondition returns a random condition of the signature extension,
// as produced by the host runtime for an authenticated signer.
func NewCondition() custos.Condition {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return custos.NewCondition("sigs", "ed25519", data)
}

// NewAddress returns the address of a random condition.
func NewAddress() custos.Address {
	return NewCondition().Address()
}
