package core

import (
	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
	"github.com/eth2030/execengine/trie"
)

// transactionsRoot derives a block's header.TransactionsRoot: a trie keyed
// by the RLP encoding of each transaction's index, valued by the
// transaction's signed RLP encoding, per Yellow Paper Appendix D.
func transactionsRoot(txs []*types.Transaction) types.Hash {
	t := trie.New()
	for i, tx := range txs {
		key, _ := rlp.EncodeToBytes(uint64(i))
		val, _ := tx.EncodeRLP()
		t.Put(key, val)
	}
	return t.Hash()
}

// receiptsRoot derives a block's header.ReceiptsRoot from the ordered
// per-transaction receipts, using the same index-keyed trie shape as
// transactionsRoot.
func receiptsRoot(receipts []*types.Receipt) types.Hash {
	t := trie.New()
	for i, r := range receipts {
		key, _ := rlp.EncodeToBytes(uint64(i))
		val, _ := r.EncodeRLP()
		t.Put(key, val)
	}
	return t.Hash()
}

// ommersHash returns the keccak256 of the RLP-encoded ommer header list,
// the value committed to by header.OmmersHash. An empty list hashes to
// EmptyOmmersHash.
func ommersHash(uncles []*types.Header) types.Hash {
	enc, _ := rlp.EncodeToBytes(uncles)
	return crypto.Keccak256Hash(enc)
}

// EmptyOmmersHash is keccak256(rlp([])), the OmmersHash of a block with no
// ommers.
var EmptyOmmersHash = crypto.Keccak256Hash(rlp.WrapList(nil))
