package types

import "github.com/holiman/uint256"

// Account is the Yellow-Paper account record: nonce, balance, the root of
// the account's storage trie, and the hash of its code. A fresh
// externally-owned account has EmptyRootHash/EmptyCodeHash.
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot Hash
	CodeHash    Hash
}

// NewEmptyAccount returns an account with zero nonce/balance and the empty
// storage/code roots — the state of a freshly-touched address.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:     new(uint256.Int),
		StorageRoot: EmptyRootHash,
		CodeHash:    EmptyCodeHash,
	}
}

// IsEmpty reports the EIP-161 emptiness predicate: zero nonce, zero
// balance, and no code.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.IsZero()) && a.CodeHash == EmptyCodeHash
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := *a
	if a.Balance != nil {
		cp.Balance = new(uint256.Int).Set(a.Balance)
	}
	return &cp
}
