package types

import (
	"math/big"
	"testing"
)

func TestNewTransactionIsNotContractCreation(t *testing.T) {
	to := BytesToAddress([]byte{0x01})
	tx := NewTransaction(0, to, big.NewInt(0), big.NewInt(1), 21000, nil)
	if tx.IsContractCreation() {
		t.Fatal("a transaction with a receiver should not be a contract creation")
	}
}

func TestNewContractCreationHasNilTo(t *testing.T) {
	tx := NewContractCreation(0, big.NewInt(0), big.NewInt(1), 100000, []byte{0x60, 0x00})
	if !tx.IsContractCreation() {
		t.Fatal("a transaction with no receiver should be a contract creation")
	}
}

func TestTransactionHashIsCached(t *testing.T) {
	tx := NewTransaction(0, BytesToAddress([]byte{0x01}), big.NewInt(0), big.NewInt(1), 21000, nil)
	first := tx.Hash()
	second := tx.Hash()
	if first != second {
		t.Fatalf("Hash() not stable across calls: %s vs %s", first, second)
	}
}

func TestTransactionHashChangesWithFields(t *testing.T) {
	to := BytesToAddress([]byte{0x01})
	a := NewTransaction(0, to, big.NewInt(0), big.NewInt(1), 21000, nil)
	b := NewTransaction(1, to, big.NewInt(0), big.NewInt(1), 21000, nil)
	if a.Hash() == b.Hash() {
		t.Fatal("transactions differing only in nonce should hash differently")
	}
}

func TestSigningHashDiffersByChainID(t *testing.T) {
	tx := NewTransaction(0, BytesToAddress([]byte{0x01}), big.NewInt(0), big.NewInt(1), 21000, nil)
	legacy := tx.SigningHash(nil)
	eip155 := tx.SigningHash(big.NewInt(1))
	if legacy == eip155 {
		t.Fatal("legacy and EIP-155 signing hashes should differ")
	}
}

func TestCachedSenderRoundTrip(t *testing.T) {
	tx := NewTransaction(0, BytesToAddress([]byte{0x01}), big.NewInt(0), big.NewInt(1), 21000, nil)
	if _, ok := tx.CachedSender(); ok {
		t.Fatal("a fresh transaction should have no cached sender")
	}
	addr := BytesToAddress([]byte{0x42})
	tx.SetSender(addr)
	got, ok := tx.CachedSender()
	if !ok || got != addr {
		t.Fatalf("CachedSender() = (%s, %v), want (%s, true)", got, ok, addr)
	}
}

func TestEncodeRLPDeterministic(t *testing.T) {
	tx := NewTransaction(0, BytesToAddress([]byte{0x01}), big.NewInt(5), big.NewInt(1), 21000, []byte("data"))
	a, err := tx.EncodeRLP()
	if err != nil {
		t.Fatalf("EncodeRLP failed: %v", err)
	}
	b, err := tx.EncodeRLP()
	if err != nil {
		t.Fatalf("EncodeRLP failed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("EncodeRLP should be deterministic for an unmutated transaction")
	}
}
