package types

import "github.com/eth2030/execengine/crypto"

// CreateBloom builds the 2048-bit logs bloom filter for a set of receipts,
// folding in every log's address and topics per Yellow Paper Appendix E's
// "fixed bloom" construction (3 bit positions per item, each derived from a
// different 16-bit slice of that item's Keccak-256 digest).
func CreateBloom(receipts []*Receipt) Bloom {
	var bloom Bloom
	for _, r := range receipts {
		for _, log := range r.Logs {
			bloomAdd(&bloom, log.Address.Bytes())
			for _, topic := range log.Topics {
				bloomAdd(&bloom, topic.Bytes())
			}
		}
	}
	return bloom
}

// LogsBloom builds the bloom filter for a single transaction's logs.
func LogsBloom(logs []*Log) Bloom {
	var bloom Bloom
	for _, log := range logs {
		bloomAdd(&bloom, log.Address.Bytes())
		for _, topic := range log.Topics {
			bloomAdd(&bloom, topic.Bytes())
		}
	}
	return bloom
}

func bloomAdd(b *Bloom, data []byte) {
	hash := crypto.Keccak256(data)
	for i := 0; i < 3; i++ {
		bitPos := (uint(hash[2*i])<<8 | uint(hash[2*i+1])) & 0x7ff
		b[BloomByteLength-1-bitPos/8] |= 1 << (bitPos % 8)
	}
}

// UnionBlooms returns the bitwise OR of a set of bloom filters.
func UnionBlooms(blooms []Bloom) Bloom {
	var out Bloom
	for _, bl := range blooms {
		for i := range out {
			out[i] |= bl[i]
		}
	}
	return out
}
