package orm

import "github.com/custodia-one/custos"

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr custos.Iterator) []custos.Model {
	defer itr.Close()

	res := []custos.Model{}
	for ; itr.Valid(); itr.Next() {
		mod := custos.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		}
		res = append(res, mod)
	}
	return res
}

// queryPrefix returns all models whose key starts with the given
// prefix, in ascending key order.
func queryPrefix(db custos.ReadOnlyKVStore, prefix []byte) []custos.Model {
	start, end := prefixRange(prefix)
	return ConsumeIterator(db.Iterator(start, end))
}

// prefixRange turns a prefix into (start, end) to create
// an iterator over the whole domain of keys with this prefix.
//
// In the case of a nil prefix, it returns a full range over all keys.
// In the case of a prefix of all 0xff, there is no end, iterate to
// the end of the key space.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
