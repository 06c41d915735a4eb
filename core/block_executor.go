package core

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/core/vm"
)

// BlockchainStorages is the keyed byte-string store the Block Executor
// consults for header and receipt lookups (ommer-ancestor walks, and
// persisting the block's own header/receipts once execution succeeds).
// Trie-node and code storage live behind core/state's own World-State
// Proxy, not behind this interface.
type BlockchainStorages interface {
	HeaderChain
	PutHeader(header *types.Header)
	PutReceipts(blockHash types.Hash, receipts []*types.Receipt)
}

// Validators bundles the four pure predicates the caller supplies to gate
// a block's pre-validation: each inspects only its arguments (no access to
// world state) and returns a descriptive error or nil.
type Validators struct {
	BlockHeaderValidator       func(header, parent *types.Header) error
	BlockValidator             func(block *types.Block) error
	OmmersValidator            func(block *types.Block, chain HeaderChain) error
	SignedTransactionValidator func(tx *types.Transaction, signer types.Signer) error
}

// DefaultValidators builds a Validators bundle backed by this package's
// own BlockValidator, suitable when the caller has no stricter consensus
// rules to layer on top.
func DefaultValidators(config *ChainConfig) Validators {
	bv := NewBlockValidator(config)
	return Validators{
		BlockHeaderValidator: bv.ValidateHeader,
		BlockValidator:       bv.ValidateBody,
		OmmersValidator:      bv.ValidateOmmers,
		SignedTransactionValidator: func(tx *types.Transaction, signer types.Signer) error {
			_, err := types.Sender(signer, tx)
			return err
		},
	}
}

// BlockExecutor drives a block's transactions end to end: pre-validation,
// sequential application against a StateDB, reward distribution, and
// post-validation of the resulting header claims.
type BlockExecutor struct {
	config  *ChainConfig
	signer  types.Signer
	getHash vm.GetHashFunc
}

// NewBlockExecutor builds a BlockExecutor bound to config's fork schedule
// and signer. getHash resolves ancestor block hashes for the BLOCKHASH
// opcode.
func NewBlockExecutor(config *ChainConfig, signer types.Signer, getHash vm.GetHashFunc) *BlockExecutor {
	return &BlockExecutor{config: config, signer: signer, getHash: getHash}
}

// ExecuteBlock runs the five-step Block Executor sequence against state,
// which must already reflect parent's post-state (the World-State Proxy's
// "initialize from parentHash's stateRoot" step is the caller's
// responsibility: this engine's StateDB is an in-memory proxy, not one
// reconstructed from a trie root per call). On any error the returned
// *BlockExecutionError names which stage failed and state must be
// discarded by the caller; storages is only written to on success.
func (e *BlockExecutor) ExecuteBlock(block *types.Block, parent *types.Header, state StateDB, storages BlockchainStorages, validators Validators) ([]*types.Receipt, error) {
	header := block.Header()

	// Step 1: pre-validation.
	if err := validators.BlockHeaderValidator(header, parent); err != nil {
		return nil, ValidationBeforeExecError(err)
	}
	if err := validators.BlockValidator(block); err != nil {
		return nil, ValidationBeforeExecError(err)
	}
	if err := validators.OmmersValidator(block, storages); err != nil {
		return nil, ValidationBeforeExecError(err)
	}

	// Step 2: the World-State Proxy is already initialized by the caller
	// from parent.StateRoot; nothing further to do here.

	blockCtx := vm.BlockContext{
		GetHash:     e.getHash,
		Coinbase:    header.Beneficiary,
		GasLimit:    header.GasLimit,
		BlockNumber: header.Number,
		Time:        header.Timestamp,
		Difficulty:  header.Difficulty,
	}
	cfg := vm.Config{
		Homestead: e.config.IsHomestead(header.Number),
		EIP150:    e.config.IsEIP150(header.Number),
		EIP155:    e.config.IsEIP155(header.Number),
		EIP158:    e.config.IsEIP158(header.Number),
		EIP160:    e.config.IsEIP160(header.Number),
		EIP170:    e.config.IsEIP158(header.Number), // EIP-170 shipped alongside EIP-158 at Spurious Dragon
	}

	// Step 3: ordered transaction loop.
	gasPool := new(GasPool).AddGas(header.GasLimit)
	var (
		receipts     []*types.Receipt
		cumulativeGas uint64
		txIndex      int
	)
	for _, tx := range block.Transactions() {
		if err := validators.SignedTransactionValidator(tx, e.signer); err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: %w", txIndex, err))
		}
		from, err := types.Sender(e.signer, tx)
		if err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: sender unknown: %w", txIndex, err))
		}

		txCtx := vm.TxContext{Origin: from, GasPrice: tx.GasPrice}
		evm := vm.NewEVM(blockCtx, txCtx, state, cfg)
		st := NewStateTransition(e.config, evm, state, tx, from)

		if err := st.ValidateTransaction(gasPool, header.Number); err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: %w", txIndex, err))
		}
		if err := gasPool.SubGas(tx.GasLimit); err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: %w", txIndex, err))
		}

		state.SetTxContext(tx.Hash(), txIndex)
		state.ClearTouched()
		state.ResetRefund()

		result, err := st.Apply(header.Number)
		if err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: %w", txIndex, err))
		}

		cumulativeGas += result.UsedGas
		postState, err := state.IntermediateRoot()
		if err != nil {
			return nil, TxsExecutionError(fmt.Errorf("tx %d: %w", txIndex, err))
		}
		logs := state.GetLogs(tx.Hash())
		receipt := types.NewReceipt(postState, cumulativeGas, logs)
		receipt.TxHash = tx.Hash()
		receipt.GasUsed = result.UsedGas
		if tx.IsContractCreation() && result.VMErr == nil {
			receipt.ContractAddress = result.ContractAddress
		}
		receipts = append(receipts, receipt)
		txIndex++
	}

	// Step 4: reward distribution (Yellow Paper §11.3).
	applyBlockReward(e.config, state, header, block.Uncles())

	// Step 5: post-validation.
	if header.GasUsed != cumulativeGas {
		return nil, ValidationAfterExecError(fmt.Errorf("gasUsed mismatch: header %d, computed %d", header.GasUsed, cumulativeGas))
	}
	stateRoot, err := state.Commit()
	if err != nil {
		return nil, ValidationAfterExecError(err)
	}
	if stateRoot != header.StateRoot {
		return nil, ValidationAfterExecError(fmt.Errorf("stateRoot mismatch: header %s, computed %s", header.StateRoot, stateRoot))
	}
	if got := receiptsRoot(receipts); got != header.ReceiptsRoot {
		return nil, ValidationAfterExecError(fmt.Errorf("receiptsRoot mismatch: header %s, computed %s", header.ReceiptsRoot, got))
	}
	if got := types.CreateBloom(receipts); got != header.LogsBloom {
		return nil, ValidationAfterExecError(fmt.Errorf("logsBloom mismatch"))
	}

	storages.PutHeader(header)
	storages.PutReceipts(header.Hash(), receipts)
	return receipts, nil
}

// applyBlockReward credits the block's beneficiary and ommer beneficiaries
// per the Yellow Paper §11.3 static reward formula: the beneficiary
// receives R + R·|ommers|/32; each ommer's beneficiary receives
// R − R·(blockNumber−ommerNumber)/8. Rewards credit accounts directly
// (creating them with balance=reward if absent), not through the normal
// transfer path.
func applyBlockReward(config *ChainConfig, state StateDB, header *types.Header, uncles []*types.Header) {
	reward := config.Reward()

	minerReward := new(big.Int).Set(reward)
	ommerShare := new(big.Int).Mul(reward, big.NewInt(int64(len(uncles))))
	ommerShare.Div(ommerShare, big.NewInt(32))
	minerReward.Add(minerReward, ommerShare)
	creditReward(state, header.Beneficiary, minerReward)

	for _, uncle := range uncles {
		ommerReward := new(big.Int).Set(reward)
		delta := new(big.Int).Sub(header.Number, uncle.Number)
		deduction := new(big.Int).Mul(reward, delta)
		deduction.Div(deduction, big.NewInt(8))
		ommerReward.Sub(ommerReward, deduction)
		if ommerReward.Sign() < 0 {
			ommerReward.SetInt64(0)
		}
		creditReward(state, uncle.Beneficiary, ommerReward)
	}
}

// creditReward adds amount to addr's balance, creating the account first
// if it does not yet exist — the reward path bypasses the normal
// transfer/call flow entirely.
func creditReward(state StateDB, addr types.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	if !state.Exist(addr) {
		state.CreateAccount(addr)
	}
	amt256, _ := uint256.FromBig(amount)
	state.AddBalance(addr, amt256)
}
