package types

import (
	"math/big"
	"sync/atomic"
)

// Body is a block's transaction list and ommer (uncle) header list
// (a `{ transactionList, uncleNodesList }` pair).
type Body struct {
	Transactions []*Transaction
	Uncles       []*Header
}

// Block pairs an immutable header with its body.
type Block struct {
	header *Header
	body   Body

	hash atomic.Pointer[Hash]
}

// NewBlock copies header and body into a new Block. A nil body is treated
// as empty.
func NewBlock(header *Header, body *Body) *Block {
	b := &Block{header: copyHeader(header)}
	if body != nil {
		b.body.Transactions = append([]*Transaction(nil), body.Transactions...)
		for _, u := range body.Uncles {
			b.body.Uncles = append(b.body.Uncles, copyHeader(u))
		}
	}
	return b
}

// Header returns a copy of the block's header.
func (b *Block) Header() *Header { return copyHeader(b.header) }

// Body returns the block's transactions and uncles.
func (b *Block) Body() *Body {
	return &Body{Transactions: b.body.Transactions, Uncles: b.body.Uncles}
}

// Transactions returns the block's transaction list.
func (b *Block) Transactions() []*Transaction { return b.body.Transactions }

// Uncles returns the block's ommer headers.
func (b *Block) Uncles() []*Header { return b.body.Uncles }

// Number returns a copy of the block number.
func (b *Block) Number() *big.Int { return new(big.Int).Set(b.header.Number) }

// NumberU64 returns the block number as a uint64.
func (b *Block) NumberU64() uint64 { return b.header.NumberU64() }

// ParentHash returns the hash of the parent block's header.
func (b *Block) ParentHash() Hash { return b.header.ParentHash }

// Hash returns the Keccak-256 hash of the block's header (a block is
// identified by its header hash, independent of its body).
func (b *Block) Hash() Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	h := b.header.Hash()
	b.hash.Store(&h)
	return h
}

// GasLimit returns the header's gas limit.
func (b *Block) GasLimit() uint64 { return b.header.GasLimit }

// GasUsed returns the header's claimed gas used.
func (b *Block) GasUsed() uint64 { return b.header.GasUsed }

// Beneficiary returns the block's coinbase address.
func (b *Block) Beneficiary() Address { return b.header.Beneficiary }

// Timestamp returns the block's timestamp.
func (b *Block) Timestamp() uint64 { return b.header.Timestamp }
