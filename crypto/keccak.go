// Package crypto provides the hashing and signature primitives the engine
// needs: Keccak-256 digests and secp256k1 ECDSA sign/recover.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/execengine/core/types"
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash returns the Keccak-256 digest of data as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}
