package types

import "github.com/eth2030/execengine/rlp"

// Receipt is the per-transaction execution record: the Homestead
// shape committing to a post-state root rather than a status byte — this
// engine targets the pre-Byzantium receipt format, not the later
// status-byte receipt format introduced at Byzantium.
type Receipt struct {
	PostStateHash     Hash
	CumulativeGasUsed uint64
	LogsBloomFilter   Bloom
	Logs              []*Log

	// Metadata useful to callers but not part of the receipt's RLP
	// encoding or receiptsRoot commitment.
	TxHash          Hash
	ContractAddress Address
	GasUsed         uint64
}

// NewReceipt builds a receipt from the outcome of applying one transaction.
func NewReceipt(postState Hash, cumulativeGasUsed uint64, logs []*Log) *Receipt {
	return &Receipt{
		PostStateHash:     postState,
		CumulativeGasUsed: cumulativeGasUsed,
		LogsBloomFilter:   LogsBloom(logs),
		Logs:              logs,
	}
}

// rlpReceipt is the wire/trie-leaf encoding of a Receipt.
type rlpReceipt struct {
	PostStateHash     Hash
	CumulativeGasUsed uint64
	LogsBloomFilter   Bloom
	Logs              []rlpLog
}

func (r *Receipt) toRLP() rlpReceipt {
	logs := make([]rlpLog, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = l.toRLP()
	}
	return rlpReceipt{
		PostStateHash:     r.PostStateHash,
		CumulativeGasUsed: r.CumulativeGasUsed,
		LogsBloomFilter:   r.LogsBloomFilter,
		Logs:              logs,
	}
}

// EncodeRLP returns the wire/trie-leaf encoding used for the receiptsRoot
// trie.
func (r *Receipt) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(r.toRLP())
}
