package crypto

import (
	stdecdsa "crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/eth2030/execengine/core/types"
)

// secp256k1N is the order of the secp256k1 curve.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// secp256k1halfN is half the curve order, used for the Homestead low-S check.
var secp256k1halfN = new(big.Int).Div(secp256k1N, big.NewInt(2))

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*stdecdsa.PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return priv.ToECDSA(), nil
}

// Sign produces a 65-byte [R || S || V] recoverable signature over a 32-byte
// hash, where V is the recovery ID in {0, 1} needed by Ecrecover.
func Sign(hash []byte, prv *stdecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, errors.New("crypto: hash must be 32 bytes")
	}
	var dBuf [32]byte
	prv.D.FillBytes(dBuf[:])
	key := secp256k1.PrivKeyFromBytes(dBuf[:])

	compact := ecdsa.SignCompact(key, hash, false)
	// compact is [recoveryID+27, R(32), S(32)]; re-pack as [R || S || recoveryID].
	out := make([]byte, 65)
	copy(out[0:32], compact[1:33])
	copy(out[32:64], compact[33:65])
	out[64] = compact[0] - 27
	return out, nil
}

// Ecrecover recovers the uncompressed public key bytes from hash and a
// 65-byte [R || S || V] signature.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := SigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return FromECDSAPub(pub), nil
}

// SigToPub recovers the public key from hash and a 65-byte [R || S || V] signature.
func SigToPub(hash, sig []byte) (*stdecdsa.PublicKey, error) {
	if len(sig) != 65 {
		return nil, errors.New("crypto: signature must be 65 bytes [R || S || V]")
	}
	if len(hash) != 32 {
		return nil, errors.New("crypto: hash must be 32 bytes")
	}
	v := sig[64]
	if v > 3 {
		return nil, errors.New("crypto: invalid recovery id")
	}
	// dcrd expects a recoverable signature in [recoveryID+27 || R || S] form.
	compact := make([]byte, 65)
	compact[0] = v + 27
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, err
	}
	return pub.ToECDSA(), nil
}

// ValidateSignature verifies a 64-byte [R || S] signature against a 65-byte
// uncompressed public key and 32-byte hash.
func ValidateSignature(pubkey, hash, sig []byte) bool {
	if len(sig) != 64 || len(hash) != 32 || len(pubkey) != 65 || pubkey[0] != 0x04 {
		return false
	}
	pk, err := parseUncompressed(pubkey)
	if err != nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(sig[:32])
	s.SetByteSlice(sig[32:64])
	signature := ecdsa.NewSignature(&r, &s)
	return signature.Verify(hash, pk)
}

// ValidateSignatureValues checks r, s, v bounds per the Homestead rule (low-S
// required once homestead is active).
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return true
}

// PubkeyToAddress derives the Ethereum address from a public key:
// keccak256(pubkey.X || pubkey.Y)[12:].
func PubkeyToAddress(p stdecdsa.PublicKey) types.Address {
	pubBytes := FromECDSAPub(&p)
	if pubBytes == nil {
		return types.Address{}
	}
	hash := Keccak256(pubBytes[1:])
	return types.BytesToAddress(hash[12:])
}

// FromECDSAPub marshals a public key to 65-byte uncompressed format (0x04 || X || Y).
func FromECDSAPub(pub *stdecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	buf := make([]byte, 65)
	buf[0] = 0x04
	pub.X.FillBytes(buf[1:33])
	pub.Y.FillBytes(buf[33:65])
	return buf
}

func parseUncompressed(pubkey []byte) (*secp256k1.PublicKey, error) {
	x := pubkey[1:33]
	y := pubkey[33:65]
	prefix := byte(0x02)
	if y[len(y)-1]&1 == 1 {
		prefix = 0x03
	}
	compact := make([]byte, 33)
	compact[0] = prefix
	copy(compact[1:], x)
	return secp256k1.ParsePubKey(compact)
}
