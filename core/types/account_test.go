package types

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestNewEmptyAccountIsEmpty(t *testing.T) {
	a := NewEmptyAccount()
	if !a.IsEmpty() {
		t.Fatal("a fresh empty account should satisfy IsEmpty")
	}
}

func TestAccountWithBalanceIsNotEmpty(t *testing.T) {
	a := NewEmptyAccount()
	a.Balance = uint256.NewInt(1)
	if a.IsEmpty() {
		t.Fatal("an account with a nonzero balance should not be empty")
	}
}

func TestAccountWithNonceIsNotEmpty(t *testing.T) {
	a := NewEmptyAccount()
	a.Nonce = 1
	if a.IsEmpty() {
		t.Fatal("an account with a nonzero nonce should not be empty")
	}
}

func TestAccountWithCodeIsNotEmpty(t *testing.T) {
	a := NewEmptyAccount()
	a.CodeHash = HexToHash("deadbeef")
	if a.IsEmpty() {
		t.Fatal("an account with code should not be empty")
	}
}

func TestAccountCopyIsIndependent(t *testing.T) {
	a := NewEmptyAccount()
	a.Balance = uint256.NewInt(100)
	b := a.Copy()
	b.Balance.Add(b.Balance, uint256.NewInt(1))
	if a.Balance.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("mutating the copy's balance should not affect the original: got %s", a.Balance)
	}
}
