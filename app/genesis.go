package app

import (
	"github.com/custodia-one/custos"
)

// ChainInitializers combines many initializers into one. They are
// executed in the given order against the same genesis options.
func ChainInitializers(inits ...custos.Initializer) custos.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []custos.Initializer
}

// FromGenesis runs all the initializers, stopping at the first error.
func (c chainInitializer) FromGenesis(opts custos.Options, kv custos.KVStore) error {
	for _, init := range c.inits {
		if init == nil {
			continue
		}
		if err := init.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
