package types

import (
	"math/big"
	"sync/atomic"

	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
)

// Header is the block header in its Homestead/Byzantium-era field set,
// without any post-London additions (no BaseFee, withdrawals, blob gas, or
// beacon-root fields: none of those forks are in scope).
type Header struct {
	ParentHash       Hash
	OmmersHash       Hash
	Beneficiary      Address
	StateRoot        Hash
	TransactionsRoot Hash
	ReceiptsRoot     Hash
	LogsBloom        Bloom
	Difficulty       *big.Int
	Number           *big.Int
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	MixHash          Hash
	Nonce            [8]byte

	hash atomic.Pointer[Hash]
}

func copyHeader(h *Header) *Header {
	cp := *h
	cp.hash = atomic.Pointer[Hash]{}
	if h.Difficulty != nil {
		cp.Difficulty = new(big.Int).Set(h.Difficulty)
	}
	if h.Number != nil {
		cp.Number = new(big.Int).Set(h.Number)
	}
	cp.ExtraData = append([]byte(nil), h.ExtraData...)
	return &cp
}

// rlpHeader is the wire/hash encoding of a Header (15 fields, Yellow Paper
// Appendix B's pre-London header shape).
type rlpHeader struct {
	ParentHash       Hash
	OmmersHash       Hash
	Beneficiary      Address
	StateRoot        Hash
	TransactionsRoot Hash
	ReceiptsRoot     Hash
	LogsBloom        Bloom
	Difficulty       *big.Int
	Number           *big.Int
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	MixHash          Hash
	Nonce            [8]byte
}

func (h *Header) toRLP() rlpHeader {
	return rlpHeader{
		ParentHash: h.ParentHash, OmmersHash: h.OmmersHash, Beneficiary: h.Beneficiary,
		StateRoot: h.StateRoot, TransactionsRoot: h.TransactionsRoot, ReceiptsRoot: h.ReceiptsRoot,
		LogsBloom: h.LogsBloom, Difficulty: h.Difficulty, Number: h.Number,
		GasLimit: h.GasLimit, GasUsed: h.GasUsed, Timestamp: h.Timestamp,
		ExtraData: h.ExtraData, MixHash: h.MixHash, Nonce: h.Nonce,
	}
}

// Hash returns the Keccak-256 hash of the RLP-encoded header, cached after
// first computation the way Block.Hash caches its own.
func (h *Header) Hash() Hash {
	if cached := h.hash.Load(); cached != nil {
		return *cached
	}
	enc, _ := rlp.EncodeToBytes(h.toRLP())
	hash := crypto.Keccak256Hash(enc)
	h.hash.Store(&hash)
	return hash
}

// NumberU64 returns the block number as a uint64.
func (h *Header) NumberU64() uint64 {
	if h.Number == nil {
		return 0
	}
	return h.Number.Uint64()
}
