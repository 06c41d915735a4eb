package types

// Log is a single LOG0..LOG4 entry emitted during execution: the emitting
// contract's address, its indexed topics, and opaque data.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte

	// Execution-position metadata; not part of the log's RLP encoding or
	// bloom input. MemoryStateDB.AddLog sets TxHash and TxIndex;
	// BlockNumber, BlockHash and Index are left zero by this engine.
	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	BlockHash   Hash
	Index       uint
}

// rlpLog is the wire representation of a Log: address, topics, data only.
type rlpLog struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

func (l *Log) toRLP() rlpLog {
	return rlpLog{Address: l.Address, Topics: l.Topics, Data: l.Data}
}
