package core

import (
	"math/big"
	"testing"

	"github.com/eth2030/execengine/core/types"
)

func TestTransactionsRootEmptyIsDefined(t *testing.T) {
	got := transactionsRoot(nil)
	if got == (types.Hash{}) {
		t.Fatal("transactionsRoot of an empty list should still hash to a defined empty-trie root, not the zero hash")
	}
}

func TestTransactionsRootDeterministic(t *testing.T) {
	to := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(0, to, big.NewInt(5), big.NewInt(1), 21000, nil)

	a := transactionsRoot([]*types.Transaction{tx})
	b := transactionsRoot([]*types.Transaction{tx})
	if a != b {
		t.Fatal("transactionsRoot should be deterministic for the same input")
	}
}

func TestTransactionsRootVariesWithContent(t *testing.T) {
	to := types.BytesToAddress([]byte{0x01})
	tx1 := types.NewTransaction(0, to, big.NewInt(5), big.NewInt(1), 21000, nil)
	tx2 := types.NewTransaction(1, to, big.NewInt(5), big.NewInt(1), 21000, nil)

	a := transactionsRoot([]*types.Transaction{tx1})
	b := transactionsRoot([]*types.Transaction{tx2})
	if a == b {
		t.Fatal("transactionsRoot should differ when the transaction list differs")
	}
}

func TestReceiptsRootDeterministic(t *testing.T) {
	r := types.NewReceipt(types.Hash{0x01}, 21000, nil)

	a := receiptsRoot([]*types.Receipt{r})
	b := receiptsRoot([]*types.Receipt{r})
	if a != b {
		t.Fatal("receiptsRoot should be deterministic for the same input")
	}
}

func TestReceiptsRootVariesWithContent(t *testing.T) {
	r1 := types.NewReceipt(types.Hash{0x01}, 21000, nil)
	r2 := types.NewReceipt(types.Hash{0x02}, 42000, nil)

	a := receiptsRoot([]*types.Receipt{r1})
	b := receiptsRoot([]*types.Receipt{r2})
	if a == b {
		t.Fatal("receiptsRoot should differ when the receipt list differs")
	}
}

func TestOmmersHashEmptyMatchesEmptyOmmersHash(t *testing.T) {
	if got := ommersHash(nil); got != EmptyOmmersHash {
		t.Fatalf("ommersHash(nil) = %x, want EmptyOmmersHash %x", got, EmptyOmmersHash)
	}
}

func TestOmmersHashVariesWithContent(t *testing.T) {
	h1 := &types.Header{Number: big.NewInt(1)}
	h2 := &types.Header{Number: big.NewInt(2)}

	a := ommersHash([]*types.Header{h1})
	b := ommersHash([]*types.Header{h2})
	if a == b {
		t.Fatal("ommersHash should differ across different ommer lists")
	}
	if a == EmptyOmmersHash {
		t.Fatal("a non-empty ommer list should not hash to EmptyOmmersHash")
	}
}
