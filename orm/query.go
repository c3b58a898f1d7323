package orm

import (
	tokenswap "github.com/iov-one/tokenswap"
)

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr tokenswap.Iterator) ([]tokenswap.Model, error) {
	defer itr.Close()

	var res []tokenswap.Model
	for itr.Valid() {
		res = append(res, tokenswap.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		})
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func queryPrefix(db tokenswap.ReadOnlyKVStore, prefix []byte) ([]tokenswap.Model, error) {
	itr, err := db.Iterator(prefix, prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// prefixRange returns the first key that does not start with prefix, or
// nil if there is none.
func prefixRange(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
