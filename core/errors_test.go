package core

import (
	"errors"
	"testing"
)

func TestValidationBeforeExecErrorWrapsReason(t *testing.T) {
	reason := errors.New("bad parent hash")
	err := ValidationBeforeExecError(reason)
	if err.Stage != "pre-validation" {
		t.Fatalf("Stage = %q, want pre-validation", err.Stage)
	}
	if !errors.Is(err, reason) {
		t.Fatal("ValidationBeforeExecError should unwrap to its reason")
	}
}

func TestTxsExecutionErrorWrapsReason(t *testing.T) {
	reason := errors.New("nonce too low")
	err := TxsExecutionError(reason)
	if err.Stage != "transaction" {
		t.Fatalf("Stage = %q, want transaction", err.Stage)
	}
	if !errors.Is(err, reason) {
		t.Fatal("TxsExecutionError should unwrap to its reason")
	}
}

func TestValidationAfterExecErrorWrapsReason(t *testing.T) {
	reason := errors.New("stateRoot mismatch")
	err := ValidationAfterExecError(reason)
	if err.Stage != "post-validation" {
		t.Fatalf("Stage = %q, want post-validation", err.Stage)
	}
	if !errors.Is(err, reason) {
		t.Fatal("ValidationAfterExecError should unwrap to its reason")
	}
}

func TestBlockExecutionErrorMessageIncludesStageAndReason(t *testing.T) {
	err := TxsExecutionError(errors.New("boom"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
	if !errors.Is(err, err.Reason) {
		t.Fatal("errors.Is should find the wrapped reason")
	}
}
