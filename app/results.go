package app

import (
	"github.com/tendermint/go-amino"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// resultsCodec serializes query result sets for the ABCI response.
var resultsCodec = amino.NewCodec()

// ResultSet is a list of raw values, able to support 0 to N results
// for a single query in a consistent format.
type ResultSet struct {
	Results [][]byte
}

// Marshal serializes the result set for the query response.
func (rs *ResultSet) Marshal() ([]byte, error) {
	return resultsCodec.MarshalBinaryBare(rs)
}

// Unmarshal parses a serialized result set.
func (rs *ResultSet) Unmarshal(bz []byte) error {
	return resultsCodec.UnmarshalBinaryBare(bz, rs)
}

// ResultsFromKeys returns a ResultSet of all keys given a set of
// models
func ResultsFromKeys(models []custos.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values given a set of
// models
func ResultsFromValues(models []custos.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues and makes
// them a consistent whole again
func JoinResults(keys, values *ResultSet) ([]custos.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrInput, "mismatched result set size")
	}
	mods := make([]custos.Model, len(kref))
	for i := range mods {
		mods[i] = custos.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and if it is not empty,
// unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o custos.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
