package custos

import (
	"encoding/json"

	"github.com/custodia-one/custos/errors"
)

// Options are the app_state options of the genesis file, keeping the
// raw json of every section for the extension initializers to parse.
type Options map[string]json.RawMessage

// ReadOptions reads the value stored under a given key and parses the
// json into the given obj. Noop and no error if the key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw := o[key]
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "option %q: %s", key, err)
	}
	return nil
}

// Initializer implementations are called upon chain initialization to
// load the initial state of their extension from the genesis options.
type Initializer interface {
	FromGenesis(opts Options, kv KVStore) error
}
