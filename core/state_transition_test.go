package core

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/state"
	"github.com/eth2030/execengine/core/types"
)

func TestIntrinsicGasBaseCall(t *testing.T) {
	got, err := intrinsicGas(nil, false, true)
	if err != nil {
		t.Fatalf("intrinsicGas failed: %v", err)
	}
	if got != TxGas {
		t.Fatalf("intrinsicGas(nil, false, true) = %d, want %d", got, TxGas)
	}
}

func TestIntrinsicGasCreateHomesteadSurcharge(t *testing.T) {
	got, err := intrinsicGas(nil, true, true)
	if err != nil {
		t.Fatalf("intrinsicGas failed: %v", err)
	}
	if want := TxGas + TxCreateGas; got != want {
		t.Fatalf("post-Homestead create gas = %d, want %d", got, want)
	}
}

func TestIntrinsicGasCreatePreHomesteadNoSurcharge(t *testing.T) {
	got, err := intrinsicGas(nil, true, false)
	if err != nil {
		t.Fatalf("intrinsicGas failed: %v", err)
	}
	if got != TxGas {
		t.Fatalf("pre-Homestead create gas = %d, want %d (no surcharge)", got, TxGas)
	}
}

func TestIntrinsicGasDataCost(t *testing.T) {
	data := []byte{0x00, 0x00, 0x01, 0x02}
	got, err := intrinsicGas(data, false, true)
	if err != nil {
		t.Fatalf("intrinsicGas failed: %v", err)
	}
	want := TxGas + 2*TxDataZeroGas + 2*TxDataNonZeroGas
	if got != want {
		t.Fatalf("intrinsicGas with data = %d, want %d", got, want)
	}
}

func TestUpfrontCostIncludesValue(t *testing.T) {
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(1000), big.NewInt(2), 21000, nil)
	got := upfrontCost(tx)
	want := new(big.Int).Add(new(big.Int).Mul(big.NewInt(21000), big.NewInt(2)), big.NewInt(1000))
	if got.Cmp(want) != 0 {
		t.Fatalf("upfrontCost = %s, want %s", got, want)
	}
}

func newFundedStateTransition(t *testing.T, from types.Address, balance *big.Int, nonce uint64, tx *types.Transaction) (*StateTransition, *state.MemoryStateDB) {
	t.Helper()
	statedb := state.NewMemoryStateDB()
	statedb.CreateAccount(from)
	bal256, overflow := uint256.FromBig(balance)
	if overflow {
		t.Fatalf("test balance overflows uint256")
	}
	statedb.AddBalance(from, bal256)
	statedb.SetNonce(from, nonce)

	st := NewStateTransition(AllForksConfig, nil, statedb, tx, from)
	return st, statedb
}

func TestValidateTransactionRejectsNonceTooLow(t *testing.T) {
	from := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(0), big.NewInt(1), 21000, nil)
	st, _ := newFundedStateTransition(t, from, big.NewInt(1_000_000_000), 1, tx)

	if err := st.ValidateTransaction(new(GasPool).AddGas(1_000_000), big.NewInt(1)); err != ErrNonceTooLow {
		t.Fatalf("ValidateTransaction error = %v, want ErrNonceTooLow", err)
	}
}

func TestValidateTransactionRejectsNonceTooHigh(t *testing.T) {
	from := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(5, types.Address{}, big.NewInt(0), big.NewInt(1), 21000, nil)
	st, _ := newFundedStateTransition(t, from, big.NewInt(1_000_000_000), 1, tx)

	if err := st.ValidateTransaction(new(GasPool).AddGas(1_000_000), big.NewInt(1)); err != ErrNonceTooHigh {
		t.Fatalf("ValidateTransaction error = %v, want ErrNonceTooHigh", err)
	}
}

func TestValidateTransactionRejectsInsufficientFunds(t *testing.T) {
	from := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(0), big.NewInt(1), 21000, nil)
	st, _ := newFundedStateTransition(t, from, big.NewInt(100), 0, tx)

	if err := st.ValidateTransaction(new(GasPool).AddGas(1_000_000), big.NewInt(1)); err != ErrInsufficientFunds {
		t.Fatalf("ValidateTransaction error = %v, want ErrInsufficientFunds", err)
	}
}

func TestValidateTransactionRejectsGasPoolExceeded(t *testing.T) {
	from := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(0), big.NewInt(1), 21000, nil)
	st, _ := newFundedStateTransition(t, from, big.NewInt(1_000_000_000), 0, tx)

	if err := st.ValidateTransaction(new(GasPool).AddGas(10000), big.NewInt(1)); err != ErrGasLimitExceedsBlock {
		t.Fatalf("ValidateTransaction error = %v, want ErrGasLimitExceedsBlock", err)
	}
}

func TestValidateTransactionAccepts(t *testing.T) {
	from := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(0), big.NewInt(1), 21000, nil)
	st, _ := newFundedStateTransition(t, from, big.NewInt(1_000_000_000), 0, tx)

	if err := st.ValidateTransaction(new(GasPool).AddGas(1_000_000), big.NewInt(1)); err != nil {
		t.Fatalf("ValidateTransaction unexpected error: %v", err)
	}
}
