package vm

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the 0x03 precompile, not a general-purpose hash choice

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
)

// PrecompiledContract is a fixed-address pseudo-contract
// interface: a required-gas function and a Run function.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// PrecompiledContracts is the four-entry table: ECRECOVER,
// SHA256, RIPEMD160, IDENTITY. Later precompiles (ModExp, BN254, BLAKE2F,
// point evaluation) are out of scope — this engine stops before
// Byzantium, which introduced the first of them.
var PrecompiledContracts = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): &ecrecoverPrecompile{},
	types.BytesToAddress([]byte{2}): &sha256Precompile{},
	types.BytesToAddress([]byte{3}): &ripemd160Precompile{},
	types.BytesToAddress([]byte{4}): &identityPrecompile{},
}

// IsPrecompile reports whether addr names one of the fixed precompiles.
func IsPrecompile(addr types.Address) bool {
	_, ok := PrecompiledContracts[addr]
	return ok
}

// RunPrecompiledContract executes the precompile at addr, consuming its
// required gas from the caller's supply.
func RunPrecompiledContract(addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	p, ok := PrecompiledContracts[addr]
	if !ok {
		return nil, gas, errors.New("vm: not a precompiled contract")
	}
	cost := p.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	out, err := p.Run(input)
	return out, gas - cost, err
}

func padRight(b []byte, size int) []byte {
	if len(b) >= size {
		return b[:size]
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// --- 0x01: ECRECOVER ---

type ecrecoverPrecompile struct{}

func (c *ecrecoverPrecompile) RequiredGas(input []byte) uint64 { return 3000 }

func (c *ecrecoverPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	hash := input[0:32]
	vBig := new(big.Int).SetBytes(input[32:64])
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if vBig.BitLen() > 8 {
		return nil, nil
	}
	v := byte(vBig.Uint64())
	if v != 27 && v != 28 {
		return nil, nil
	}
	if !crypto.ValidateSignatureValues(v-27, r, s, true) {
		return nil, nil
	}

	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = v - 27

	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, nil
	}
	addr := crypto.Keccak256(pub[1:])
	out := make([]byte, 32)
	copy(out[12:], addr[12:])
	return out, nil
}

// --- 0x02: SHA256 ---

type sha256Precompile struct{}

func (c *sha256Precompile) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256Precompile) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// --- 0x03: RIPEMD160 ---

type ripemd160Precompile struct{}

func (c *ripemd160Precompile) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160Precompile) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	digest := h.Sum(nil)
	out := make([]byte, 32)
	copy(out[12:], digest)
	return out, nil
}

// --- 0x04: IDENTITY ---

type identityPrecompile struct{}

func (c *identityPrecompile) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityPrecompile) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
