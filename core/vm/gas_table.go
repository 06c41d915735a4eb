package vm

import "math"

// Base opcode costs (the Yellow Paper's `G_*` constants — the Homestead/Spurious
// Dragon schedule; no EIP-2929 cold/warm split, no EIP-3529 refund cap).
const (
	GasQuickStep   uint64 = 2  // G_base
	GasFastestStep uint64 = 3  // G_verylow
	GasFastStep    uint64 = 5  // G_low
	GasMidStep     uint64 = 8  // G_mid
	GasSlowStep    uint64 = 10 // G_high
	GasExtStep     uint64 = 20 // G_extcode (EXTCODESIZE/COPY)
	GasZero        uint64 = 0  // G_zero

	GasBalance  uint64 = 20 // G_balance
	GasSload    uint64 = 50 // G_sload
	GasJumpdest uint64 = 1  // G_jumpdest

	GasSset   uint64 = 20000 // G_sset: write non-zero to a zero slot
	GasSreset uint64 = 5000  // G_sreset: any other SSTORE write
	RSclear   uint64 = 15000 // R_sclear: refund for clearing a slot to zero

	GasCall         uint64 = 40   // G_call
	GasCallValue    uint64 = 9000 // G_callvalue
	GasCallStipend  uint64 = 2300 // G_callstipend, added to forwarded gas
	GasNewAccount   uint64 = 25000
	GasSelfdestruct uint64 = 0 // pre-EIP-150 SUICIDE has no base surcharge beyond GasZero

	GasMemory     uint64 = 3 // G_memory, linear coefficient
	GasCopy       uint64 = 3 // G_copy, per word
	GasLog        uint64 = 375
	GasLogTopic   uint64 = 375
	GasLogData    uint64 = 8
	GasSha3       uint64 = 30
	GasSha3Word   uint64 = 6
	GasCreate     uint64 = 32000
	GasCodeDeposit uint64 = 200

	GasExpByte uint64 = 10 // per byte of exponent before EIP-160; expByteCost returns 50 once Config.EIP160 is set

	TxGas             uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas     uint64 = 4
	TxDataNonZeroGas  uint64 = 68

	CallGasFraction uint64 = 64 // EIP-150's 63/64 rule

	MaxCodeSize  = 24576 // EIP-170
	MaxCallDepth = 1024
)

// MemoryGasCost returns the total cost of memory of the given size (bytes,
// already word-rounded), per the Yellow Paper's `C_mem(w) = 3w + w²/512`.
func MemoryGasCost(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	words := toWordSize(size)
	if words > 181_000 {
		return math.MaxUint64
	}
	return words*GasMemory + words*words/512
}

// MemoryExpansionGas returns the incremental cost of growing memory from
// oldSize to newSize (both in bytes); zero if newSize doesn't grow it.
func MemoryExpansionGas(oldSize, newSize uint64) uint64 {
	if newSize <= oldSize {
		return 0
	}
	newCost := MemoryGasCost(newSize)
	if newCost == math.MaxUint64 {
		return math.MaxUint64
	}
	return newCost - MemoryGasCost(oldSize)
}

func toWordSize(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// CallGas computes the gas forwarded to a CALL-family target per the
// EIP-150 63/64 rule.
func CallGas(available, requested uint64) uint64 {
	maxGas := available - available/CallGasFraction
	if requested > maxGas {
		return maxGas
	}
	return requested
}

// expByteCost returns the per-byte cost of the EXP exponent, which EIP-160
// raised from 10 to 50 at Spurious Dragon.
func expByteCost(eip160 bool) uint64 {
	if eip160 {
		return 50
	}
	return 10
}

func wordCount(l int) uint64 { return (uint64(l) + 31) / 32 }
