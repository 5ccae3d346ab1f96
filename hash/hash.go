package hash

import (
	"crypto"
	"fmt"
)

/*
Sum CBOR encodes values one after another into the hash and returns the digest.
Panics when a value can't be encoded, use New for values which might fail.
*/
func Sum(hashAlgorithm crypto.Hash, values ...any) []byte {
	hasher := New(hashAlgorithm.New())
	for _, value := range values {
		hasher.Write(value)
	}
	res, err := hasher.Sum()
	if err != nil {
		panic(fmt.Errorf("failed to calculate hash: %w", err))
	}
	return res
}
