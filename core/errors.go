package core

import "fmt"

// BlockExecutionError is the two-level error taxonomy a block execution
// can fail with. Every variant is fatal to the block: on any of these,
// the caller's storage is left untouched and the block is rejected
// outright. This is distinct from a VM-level failure (ExecutionResult.VMErr)
// inside a single transaction, which is recorded in a receipt rather than
// propagated as a BlockExecutionError.
type BlockExecutionError struct {
	Stage  string // "pre-validation", "transaction", "post-validation"
	Reason error
}

func (e *BlockExecutionError) Error() string {
	return fmt.Sprintf("core: block execution failed at %s: %v", e.Stage, e.Reason)
}

func (e *BlockExecutionError) Unwrap() error { return e.Reason }

// ValidationBeforeExecError wraps a header/body/ommers consistency failure
// discovered before any transaction has run.
func ValidationBeforeExecError(reason error) *BlockExecutionError {
	return &BlockExecutionError{Stage: "pre-validation", Reason: reason}
}

// TxsExecutionError wraps a failure to even attempt a transaction: missing
// sender, bad nonce, insufficient upfront balance, or a gas limit that
// does not fit the remaining block gas pool.
func TxsExecutionError(reason error) *BlockExecutionError {
	return &BlockExecutionError{Stage: "transaction", Reason: reason}
}

// ValidationAfterExecError wraps a mismatch between the header's claimed
// gasUsed/stateRoot/receiptsRoot/logsBloom and what executing the block
// actually produced.
func ValidationAfterExecError(reason error) *BlockExecutionError {
	return &BlockExecutionError{Stage: "post-validation", Reason: reason}
}
