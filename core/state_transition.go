package core

import (
	"errors"
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/core/vm"
)

// Base transaction gas costs. Pre-Homestead, contract creation charged the
// same base cost as a call; Homestead's EIP-2 added TxCreateGas on top.
const (
	TxGas            uint64 = 21000
	TxCreateGas      uint64 = 32000
	TxDataZeroGas    uint64 = 4
	TxDataNonZeroGas uint64 = 68
)

var (
	ErrNonceTooLow            = errors.New("core: nonce too low")
	ErrNonceTooHigh           = errors.New("core: nonce too high")
	ErrInsufficientFunds      = errors.New("core: insufficient balance for upfront cost")
	ErrIntrinsicGasTooLow     = errors.New("core: intrinsic gas exceeds transaction gas limit")
	ErrGasLimitExceedsBlock   = errors.New("core: transaction gas limit exceeds remaining block gas")
	ErrGasUintOverflow        = errors.New("core: gas calculation overflowed")
)

// intrinsicGas computes the up-front gas charge for a transaction: the base
// transaction cost plus a per-byte data cost, with the CREATE surcharge
// gated on Homestead.
func intrinsicGas(data []byte, isCreate, isHomestead bool) (uint64, error) {
	gas := TxGas
	if isCreate && isHomestead {
		gas = TxGas + TxCreateGas
	}
	if len(data) == 0 {
		return gas, nil
	}
	var nz uint64
	for _, b := range data {
		if b != 0 {
			nz++
		}
	}
	z := uint64(len(data)) - nz
	if (math.MaxUint64-gas)/TxDataNonZeroGas < nz {
		return 0, ErrGasUintOverflow
	}
	gas += nz * TxDataNonZeroGas
	if (math.MaxUint64-gas)/TxDataZeroGas < z {
		return 0, ErrGasUintOverflow
	}
	gas += z * TxDataZeroGas
	return gas, nil
}

// StateDB is the World-State Proxy surface the Transaction Executor and
// Block Executor drive, beyond the narrower surface the VM itself needs.
type StateDB interface {
	vm.StateDB

	SetTxContext(txHash types.Hash, txIndex int)
	GetLogs(txHash types.Hash) []*types.Log
	ClearTouched()
	ResetRefund()
	SweepEmptyTouched()
	Sweep()
	IntermediateRoot() (types.Hash, error)
	Commit() (types.Hash, error)
}

// ExecutionResult is the outcome of running a single transaction's message
// through the VM, before the executor's gas accounting and refund logic.
type ExecutionResult struct {
	UsedGas         uint64
	ReturnData      []byte
	ContractAddress types.Address
	VMErr           error // non-fatal: OutOfGas, InvalidOpcode, reverts, ...
}

// Failed reports whether the VM run ended in a non-fatal error, in which
// case the transaction's world-state effects (beyond the upfront debit)
// must be discarded but the transaction is still included in the block.
func (r *ExecutionResult) Failed() bool { return r.VMErr != nil }

// StateTransition applies one transaction's message against a StateDB,
// implementing the Transaction Executor's debit/run/settle sequence.
type StateTransition struct {
	config *ChainConfig
	evm    *vm.EVM
	state  StateDB

	tx       *types.Transaction
	from     types.Address
	gasPrice *big.Int
}

// NewStateTransition builds a StateTransition for tx running against evm,
// whose StateDB must be state.
func NewStateTransition(config *ChainConfig, evm *vm.EVM, state StateDB, tx *types.Transaction, from types.Address) *StateTransition {
	return &StateTransition{config: config, evm: evm, state: state, tx: tx, from: from, gasPrice: tx.GasPrice}
}

// ValidateTransaction checks a transaction against the sender's current
// account state and the block's remaining gas pool, independent of VM
// execution. A failure here is a block-level TxsExecutionError: the block
// is rejected outright, unlike a VM-level failure which is merely recorded.
func (st *StateTransition) ValidateTransaction(gasPool *GasPool, blockNumber *big.Int) error {
	tx := st.tx

	nonce := st.state.GetNonce(st.from)
	if nonce < tx.Nonce {
		return ErrNonceTooHigh
	}
	if nonce > tx.Nonce {
		return ErrNonceTooLow
	}

	igas, err := intrinsicGas(tx.Data, tx.IsContractCreation(), st.config.IsHomestead(blockNumber))
	if err != nil {
		return err
	}
	if tx.GasLimit < igas {
		return ErrIntrinsicGasTooLow
	}

	if tx.GasLimit > gasPool.Gas() {
		return ErrGasLimitExceedsBlock
	}

	upfrontCost := upfrontCost(tx)
	balance := st.state.GetBalance(st.from)
	upfront256, overflow := uint256.FromBig(upfrontCost)
	if overflow || balance.Cmp(upfront256) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// upfrontCost returns gasLimit*gasPrice + value, the balance a sender must
// have available before a transaction may run.
func upfrontCost(tx *types.Transaction) *big.Int {
	total := new(big.Int).Mul(new(big.Int).SetUint64(tx.GasLimit), tx.GasPrice)
	if tx.Value != nil {
		total.Add(total, tx.Value)
	}
	return total
}

// Apply runs the Transaction Executor sequence: upfront debit, CREATE/CALL
// context preparation, VM execution, and success/error settlement
// (refunds, miner payment, self-destruct and empty-account sweeps). It
// does not commit state; the block executor takes the intermediate root
// after each transaction. blockNumber gates Homestead/EIP-150/EIP-158
// behavior.
func (st *StateTransition) Apply(blockNumber *big.Int) (*ExecutionResult, error) {
	tx := st.tx
	gasLimit256, overflow := uint256.FromBig(new(big.Int).SetUint64(tx.GasLimit))
	if overflow {
		return nil, ErrGasUintOverflow
	}
	gasPrice256, overflow := uint256.FromBig(st.gasPrice)
	if overflow {
		return nil, ErrGasUintOverflow
	}

	// Step 1: upfront debit. Charge gasLimit*gasPrice, increment the
	// sender's nonce, and checkpoint so a VM-level failure can roll back
	// everything except this debit and the nonce bump.
	upfrontGas := new(uint256.Int).Mul(gasLimit256, gasPrice256)
	st.state.SubBalance(st.from, upfrontGas)
	st.state.SetNonce(st.from, st.state.GetNonce(st.from)+1)
	checkpoint := st.state.Snapshot()

	value256 := new(uint256.Int)
	if tx.Value != nil {
		value256, overflow = uint256.FromBig(tx.Value)
		if overflow {
			return nil, ErrGasUintOverflow
		}
	}

	gasRemaining := tx.GasLimit

	var (
		ret    []byte
		vmErr  error
		contractAddr types.Address
	)
	// Step 2+3: prepare the CREATE or CALL context and run the VM.
	if tx.IsContractCreation() {
		contractAddr, ret, gasRemaining, vmErr = st.evm.Create(st.from, tx.Data, gasRemaining, value256)
	} else {
		ret, gasRemaining, vmErr = st.evm.Call(st.from, *tx.To, tx.Data, gasRemaining, value256)
	}

	var gasUsed uint64
	if vmErr != nil {
		// Step 4: on error, discard every effect past the upfront debit
		// and nonce increment; the full gas limit is still consumed.
		st.state.RevertToSnapshot(checkpoint)
		gasUsed = tx.GasLimit
	} else {
		// Step 5: settle gas. Refund is capped at half the gas used (the
		// Homestead-era ratio, not EIP-3529's later 1/5 cap).
		gasUsed = tx.GasLimit - gasRemaining
		refund := st.state.GetRefund()
		if max := gasUsed / 2; refund > max {
			refund = max
		}
		gasRemaining += refund

		st.state.Sweep()
	}

	// Return unused gas (plus any refund) to the sender, then pay the
	// consumed gas to the block's beneficiary.
	remaining256 := new(uint256.Int).Mul(new(uint256.Int).SetUint64(gasRemaining), gasPrice256)
	st.state.AddBalance(st.from, remaining256)

	paid := tx.GasLimit - gasRemaining
	paid256 := new(uint256.Int).Mul(new(uint256.Int).SetUint64(paid), gasPrice256)
	st.state.AddBalance(st.evm.Coinbase, paid256)

	if st.config.IsEIP158(blockNumber) {
		st.state.SweepEmptyTouched()
	}

	return &ExecutionResult{
		UsedGas:         gasUsed,
		ReturnData:      ret,
		ContractAddress: contractAddr,
		VMErr:           vmErr,
	}, nil
}
