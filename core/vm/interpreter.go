package vm

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
)

var (
	ErrOutOfGas             = errors.New("vm: out of gas")
	ErrInvalidJump          = errors.New("vm: invalid jump destination")
	ErrExecutionReverted    = errors.New("vm: execution reverted")
	ErrMaxCallDepthExceeded = errors.New("vm: max call depth exceeded")
	ErrInvalidOpCode        = errors.New("vm: invalid opcode")
	ErrInsufficientBalance  = errors.New("vm: insufficient balance for transfer")
	ErrGasUintOverflow      = errors.New("vm: gas uint64 overflow")
	ErrWriteProtection      = errors.New("vm: write protection")
	ErrMaxCodeSizeExceeded  = errors.New("vm: max code size exceeded")
)

// GetHashFunc returns the hash of the ancestor block with the given number,
// for the BLOCKHASH opcode.
type GetHashFunc func(uint64) types.Hash

// BlockContext carries the block-level values exposed to running code
// (the environment opcodes).
type BlockContext struct {
	GetHash     GetHashFunc
	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber *big.Int
	Time        uint64
	Difficulty  *big.Int
}

// TxContext carries the transaction-level values exposed to running code.
type TxContext struct {
	Origin   types.Address
	GasPrice *big.Int
}

// StateDB is the World-State Proxy surface the VM needs: account and
// storage mutation, snapshotting, logs, refunds, and self-destruct
// bookkeeping. Defined here (not in core/state) so this package never
// imports core/state, keeping the dependency graph acyclic.
type StateDB interface {
	CreateAccount(addr types.Address)
	Exist(addr types.Address) bool
	Empty(addr types.Address) bool

	GetBalance(addr types.Address) *uint256.Int
	AddBalance(addr types.Address, amount *uint256.Int)
	SubBalance(addr types.Address, amount *uint256.Int)

	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)

	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeHash(addr types.Address) types.Hash
	GetCodeSize(addr types.Address) int

	GetState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key types.Hash, value types.Hash)
	GetCommittedState(addr types.Address, key types.Hash) types.Hash

	SelfDestruct(addr types.Address)
	HasSelfDestructed(addr types.Address) bool

	Snapshot() int
	RevertToSnapshot(id int)

	AddLog(log *types.Log)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64
}

// Config selects the fork-gated VM behavior.
type Config struct {
	Homestead bool // failed code deposit is OOG rather than a no-op CREATE
	EIP150    bool // 63/64 call-gas forwarding + extcode gas bump
	EIP155    bool // chainId-bound signatures (consumed by core/types.Signer, not the VM)
	EIP158    bool // empty-account clearing on CALL/zero-value transfer
	EIP160    bool // EXP exponent byte cost raised to 50
	EIP170    bool // max code size 24576
}

// EVM is the execution context shared across a transaction's nested calls.
type EVM struct {
	BlockContext
	TxContext

	StateDB  StateDB
	Config   Config
	depth    int
	readOnly bool
}

// NewEVM creates an EVM bound to the given contexts and state view.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, cfg Config) *EVM {
	return &EVM{BlockContext: blockCtx, TxContext: txCtx, StateDB: statedb, Config: cfg}
}

// Interpreter runs the bytecode of a single contract frame.
type Interpreter struct {
	evm   *EVM
	table JumpTable
}

// NewInterpreter returns an interpreter bound to evm's jump table.
func NewInterpreter(evm *EVM) *Interpreter {
	return &Interpreter{evm: evm, table: newInstructionSet()}
}

// ScopeContext groups the per-frame state an opcode needs.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

// Run executes contract.Code starting at pc 0 with the given calldata,
// returning the halt output (RETURN data, or REVERT reason) and error.
func (in *Interpreter) Run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	contract.Input = input
	if readOnly && !in.evm.readOnly {
		in.evm.readOnly = true
		defer func() { in.evm.readOnly = false }()
	}

	var (
		pc     = uint64(0)
		stack  = NewStack()
		mem    = NewMemory()
		scope  = &ScopeContext{Memory: mem, Stack: stack, Contract: contract}
		output []byte
		err    error
	)

	for {
		op := contract.GetOp(pc)
		operation := in.table[op]
		if operation == nil {
			return nil, ErrInvalidOpCode
		}
		if stack.Len() < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if stack.Len() > operation.maxStack {
			return nil, ErrStackOverflow
		}
		if in.evm.readOnly && operation.writes {
			return nil, ErrWriteProtection
		}

		var memorySize uint64
		if operation.memorySize != nil {
			size, overflow := operation.memorySize(stack)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			wordSize := toWordSize(size) * 32
			if wordSize > uint64(mem.Len()) {
				memorySize = wordSize
			} else {
				memorySize = uint64(mem.Len())
			}
		}

		cost := operation.constantGas
		if !contract.UseGas(cost) {
			return nil, ErrOutOfGas
		}
		if operation.dynamicGas != nil {
			dynCost, derr := operation.dynamicGas(in.evm, contract, stack, mem, memorySize)
			if derr != nil {
				return nil, derr
			}
			if !contract.UseGas(dynCost) {
				return nil, ErrOutOfGas
			}
		}
		if memorySize > uint64(mem.Len()) {
			mem.Resize(memorySize)
		}

		output, err = operation.execute(&pc, in, scope)
		if err != nil {
			if errors.Is(err, errStopExecution) {
				return output, nil
			}
			return output, err
		}
		if operation.halts {
			return output, nil
		}
		if !operation.jumps {
			pc++
		}
	}
}

var errStopExecution = errors.New("vm: stop")

// createAddress computes the CREATE target address: the low 20 bytes of
// keccak256(rlp([sender, nonce])).
func createAddress(sender types.Address, nonce uint64) types.Address {
	type rlpCreate struct {
		Sender types.Address
		Nonce  uint64
	}
	enc, _ := rlp.EncodeToBytes(rlpCreate{sender, nonce})
	hash := crypto.Keccak256(enc)
	return types.BytesToAddress(hash[12:])
}
