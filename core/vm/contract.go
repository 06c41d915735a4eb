package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
)

// Contract is the execution context of one running piece of code: the
// callee's code, its caller, and the gas/value it was invoked with.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Gas           uint64
	Value         *uint256.Int

	jumpdests map[uint64]bool
}

// NewContract creates a new contract execution frame.
func NewContract(caller, addr types.Address, value *uint256.Int, gas uint64) *Contract {
	return &Contract{CallerAddress: caller, Address: addr, Value: value, Gas: gas}
}

// SetCallCode installs the code to run and its hash (used by
// CALLCODE/DELEGATECALL, where Address stays the caller's own). codeAddr
// is accepted but not recorded.
func (c *Contract) SetCallCode(codeAddr *types.Address, hash types.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	_ = codeAddr
}

// GetOp returns the opcode at position n, or STOP past the end of code.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas attempts to consume gas, returning false on insufficient gas.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// validJumpdest reports whether dest is a JUMPDEST opcode position that is
// not inside PUSH immediate data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	udest := dest.Uint64()
	if udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = make(map[uint64]bool)
		c.analyzeJumpdests()
	}
	return c.jumpdests[pos]
}

// analyzeJumpdests scans code once, recording every real JUMPDEST position
// (skipping bytes that are PUSH immediate data, not opcodes).
func (c *Contract) analyzeJumpdests() {
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			c.jumpdests[i] = true
		}
		if op.IsPush() {
			i += uint64(op - PUSH1 + 1)
		}
	}
}
