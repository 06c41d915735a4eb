package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressed, lazily-extended working memory.
// Active size is always a multiple of 32 bytes; callers charge expansion
// cost separately via MemoryGasCost before calling Resize.
type Memory struct {
	store       []byte
	lastGasCost uint64
}

// NewMemory returns a new empty Memory.
func NewMemory() *Memory { return &Memory{} }

// Resize grows memory to size bytes (already word-rounded by the caller).
// It never shrinks memory.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Set copies value into memory at [offset, offset+size).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("vm: memory out of bounds write")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 256-bit big-endian value at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("vm: memory out of bounds write")
	}
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// Get returns a copy of memory contents at [offset, offset+size).
func (m *Memory) Get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a direct slice into memory at [offset, offset+size), valid
// only until the next Resize.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Len returns the current memory size in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Data returns the full backing slice.
func (m *Memory) Data() []byte { return m.store }
