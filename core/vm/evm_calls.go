package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
)

// Call executes the code at addr with caller as sender, transferring value
// (CALL semantics, step-numbered in the comments below).
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	// 5. Failure conditions: depth, insufficient balance.
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if value != nil && !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	// 6. Checkpoint world; transfer value cross-account.
	snapshot := evm.StateDB.Snapshot()
	if !evm.StateDB.Exist(addr) {
		if !IsPrecompile(addr) && (evm.Config.EIP158 && (value == nil || value.IsZero())) {
			// post-EIP-158: calling a non-existent account with zero value
			// creates no account (touch-but-don't-create).
		} else {
			evm.StateDB.CreateAccount(addr)
		}
	}
	if value != nil && !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	var (
		ret []byte
		err error
	)
	if IsPrecompile(addr) {
		ret, gas, err = RunPrecompiledContract(addr, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		if len(code) == 0 {
			return nil, gas, nil
		}
		contract := NewContract(caller, addr, value, gas)
		contract.SetCallCode(&addr, evm.StateDB.GetCodeHash(addr), code)
		evm.depth++
		ret, err = NewInterpreter(evm).Run(contract, input, false)
		gas = contract.Gas
		evm.depth--
	}

	// 7. On child error: discard world mutations, consume forwarded gas.
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// CallCode executes addr's code in the caller's own storage context
// (owner=self, value transferred within self, code loaded from addr).
func (evm *EVM) CallCode(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if value != nil && !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := evm.StateDB.Snapshot()

	var (
		ret []byte
		err error
	)
	if IsPrecompile(addr) {
		ret, gas, err = RunPrecompiledContract(addr, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		contract := NewContract(caller, caller, value, gas)
		contract.SetCallCode(&addr, evm.StateDB.GetCodeHash(addr), code)
		evm.depth++
		ret, err = NewInterpreter(evm).Run(contract, input, false)
		gas = contract.Gas
		evm.depth--
	}

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// DelegateCall executes addr's code with the running contract's own
// identity, caller, and call-value (owner=self, caller=parentCaller,
// callValue=parentCallValue, code from addr).
func (evm *EVM) DelegateCall(parent *Contract, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}

	snapshot := evm.StateDB.Snapshot()

	var (
		ret []byte
		err error
	)
	if IsPrecompile(addr) {
		ret, gas, err = RunPrecompiledContract(addr, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		contract := NewContract(parent.CallerAddress, parent.Address, parent.Value, gas)
		contract.SetCallCode(&addr, evm.StateDB.GetCodeHash(addr), code)
		evm.depth++
		ret, err = NewInterpreter(evm).Run(contract, input, false)
		gas = contract.Gas
		evm.depth--
	}

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// Create executes CREATE semantics: derive the new address
// from the sender's nonce, transfer value, run init code with empty
// calldata, and install the returned bytes as the new account's code.
func (evm *EVM) Create(caller types.Address, initCode []byte, gas uint64, value *uint256.Int) (types.Address, []byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return types.Address{}, nil, gas, ErrMaxCallDepthExceeded
	}
	if value != nil && !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return types.Address{}, nil, gas, ErrInsufficientBalance
	}

	nonce := evm.StateDB.GetNonce(caller)
	evm.StateDB.SetNonce(caller, nonce+1)

	addr := createAddress(caller, nonce)
	snapshot := evm.StateDB.Snapshot()

	evm.StateDB.CreateAccount(addr)
	evm.StateDB.SetNonce(addr, 0)
	if value != nil && !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	contract := NewContract(caller, addr, value, gas)
	contract.Code = initCode

	evm.depth++
	ret, err := NewInterpreter(evm).Run(contract, nil, false)
	evm.depth--
	remainingGas := contract.Gas

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			remainingGas = 0
		}
		return addr, ret, remainingGas, err
	}

	if evm.Config.EIP170 && len(ret) > MaxCodeSize {
		evm.StateDB.RevertToSnapshot(snapshot)
		return addr, nil, 0, ErrMaxCodeSizeExceeded
	}

	depositCost := uint64(len(ret)) * GasCodeDeposit
	if remainingGas < depositCost {
		// exceptionalFailedCodeDeposit: post-Homestead this is out-of-gas
		// and reverts the whole creation; pre-Homestead the account keeps
		// its balance/nonce but gets no code.
		if evm.Config.Homestead {
			evm.StateDB.RevertToSnapshot(snapshot)
			return addr, nil, 0, ErrOutOfGas
		}
		return addr, nil, remainingGas, nil
	}
	remainingGas -= depositCost
	evm.StateDB.SetCode(addr, ret)
	return addr, ret, remainingGas, nil
}

