package vm

import (
	"github.com/eth2030/execengine/core/types"
)

// --- memory size functions: required memory size (bytes, pre-rounding) ---

func memSize2(stack *Stack, offIdx, lenIdx int) (uint64, bool) {
	off, err1 := stack.Back(offIdx)
	ln, err2 := stack.Back(lenIdx)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	if ln.IsZero() {
		return 0, false
	}
	if !off.IsUint64() || !ln.IsUint64() {
		return 0, true
	}
	end, overflow := addUint64Overflow(off.Uint64(), ln.Uint64())
	return end, overflow
}

func addUint64Overflow(a, b uint64) (uint64, bool) {
	s := a + b
	return s, s < a
}

func memoryMload(stack *Stack) (uint64, bool) {
	off, _ := stack.Back(0)
	if !off.IsUint64() {
		return 0, true
	}
	return addUint64Overflow(off.Uint64(), 32)
}

func memoryMstore(stack *Stack) (uint64, bool)  { return memoryMload(stack) }
func memoryMstore8(stack *Stack) (uint64, bool) {
	off, _ := stack.Back(0)
	if !off.IsUint64() {
		return 0, true
	}
	return addUint64Overflow(off.Uint64(), 1)
}

func memorySha3(stack *Stack) (uint64, bool)         { return memSize2(stack, 0, 1) }
func memoryReturn(stack *Stack) (uint64, bool)        { return memSize2(stack, 0, 1) }
func memoryLog(stack *Stack) (uint64, bool)           { return memSize2(stack, 0, 1) }
func memoryCalldataCopy(stack *Stack) (uint64, bool)  { return memSize2(stack, 0, 2) }
func memoryCodeCopy(stack *Stack) (uint64, bool)      { return memSize2(stack, 0, 2) }
func memoryExtCodeCopy(stack *Stack) (uint64, bool)   { return memSize2(stack, 1, 3) }
func memoryCreate(stack *Stack) (uint64, bool)        { return memSize2(stack, 1, 2) }

func memoryCall(stack *Stack) (uint64, bool) {
	argsEnd, of1 := memSize2(stack, 3, 4)
	retEnd, of2 := memSize2(stack, 5, 6)
	if of1 || of2 {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

func memoryDelegateCall(stack *Stack) (uint64, bool) {
	argsEnd, of1 := memSize2(stack, 2, 3)
	retEnd, of2 := memSize2(stack, 4, 5)
	if of1 || of2 {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

// --- dynamic gas functions ---

// gasMemoryExpansion charges only the memory-expansion delta.
func gasMemoryExpansion(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return MemoryExpansionGas(uint64(mem.Len()), memorySize), nil
}

var gasMemoryExpansionOnly = gasMemoryExpansion

func gasExp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	exponent, err := stack.Back(1)
	if err != nil {
		return 0, err
	}
	byteLen := (exponent.BitLen() + 7) / 8
	return uint64(byteLen) * expByteCost(evm.Config.EIP160), nil
}

func gasSha3(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size, err := stack.Back(1)
	if err != nil {
		return 0, err
	}
	words := wordCount(int(size.Uint64()))
	memGas := MemoryExpansionGas(uint64(mem.Len()), memorySize)
	return words*GasSha3Word + memGas, nil
}

func gasCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size, err := stack.Back(2)
	if err != nil {
		return 0, err
	}
	words := wordCount(int(size.Uint64()))
	memGas := MemoryExpansionGas(uint64(mem.Len()), memorySize)
	return words*GasCopy + memGas, nil
}

func gasExtCodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size, err := stack.Back(3)
	if err != nil {
		return 0, err
	}
	words := wordCount(int(size.Uint64()))
	memGas := MemoryExpansionGas(uint64(mem.Len()), memorySize)
	return words*GasCopy + memGas, nil
}

// gasSstore implements the Homestead-era SSTORE policy: G_sset writing non-zero to
// a zero slot, else G_sreset; refund R_sclear when a non-zero slot is set
// to zero. No EIP-2200/3529 original-value dirty tracking: the simpler
// current-value-only SLOAD/SSTORE gas policy.
func gasSstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	locVal, err := stack.Back(0)
	if err != nil {
		return 0, err
	}
	newVal, err := stack.Back(1)
	if err != nil {
		return 0, err
	}
	key := types.BytesToHash(locVal.Bytes())
	current := evm.StateDB.GetState(contract.Address, key)
	var newBytes [32]byte
	nb := newVal.Bytes32()
	newBytes = nb

	currentIsZero := current.IsZero()
	newIsZero := types.BytesToHash(newBytes[:]).IsZero()

	if currentIsZero && !newIsZero {
		return GasSset, nil
	}
	if !currentIsZero && newIsZero {
		evm.StateDB.AddRefund(RSclear)
	}
	return GasSreset, nil
}

// gasSuicide charges the EIP-158 new-account surcharge when the
// beneficiary is a previously empty/non-existent account receiving a
// nonzero balance.
func gasSuicide(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	beneficiaryVal, err := stack.Back(0)
	if err != nil {
		return 0, err
	}
	if !evm.Config.EIP158 {
		return 0, nil
	}
	beneficiary := types.BytesToAddress(beneficiaryVal.Bytes())
	balance := evm.StateDB.GetBalance(contract.Address)
	if evm.StateDB.Empty(beneficiary) && !balance.IsZero() {
		return GasNewAccount, nil
	}
	return 0, nil
}

func callGasCost(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64, codeAddrIdx, valueIdx int, isCall bool) (uint64, error) {
	memGas := MemoryExpansionGas(uint64(mem.Len()), memorySize)

	var gas uint64 = memGas
	value, err := stack.Back(valueIdx)
	if err != nil {
		return 0, err
	}
	if isCall && !value.IsZero() {
		gas += GasCallValue
		addrVal, _ := stack.Back(codeAddrIdx)
		addr := types.BytesToAddress(addrVal.Bytes())
		if evm.Config.EIP158 {
			if evm.StateDB.Empty(addr) {
				gas += GasNewAccount
			}
		} else if !evm.StateDB.Exist(addr) {
			gas += GasNewAccount
		}
	} else if !isCall && valueIdx >= 0 && !value.IsZero() {
		gas += GasCallValue
	}
	return gas, nil
}

func gasCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return callGasCost(evm, contract, stack, mem, memorySize, 1, 2, true)
}

func gasCallCode(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return callGasCost(evm, contract, stack, mem, memorySize, 1, 2, false)
}

func gasDelegateCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return MemoryExpansionGas(uint64(mem.Len()), memorySize), nil
}

func makeGasLog(n int) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		size, err := stack.Back(1)
		if err != nil {
			return 0, err
		}
		memGas := MemoryExpansionGas(uint64(mem.Len()), memorySize)
		return GasLog + uint64(n)*GasLogTopic + size.Uint64()*GasLogData + memGas, nil
	}
}
