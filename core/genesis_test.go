package core

import (
	"math/big"
	"testing"

	"github.com/eth2030/execengine/core/types"
)

func TestLoadGenesisJSON(t *testing.T) {
	data := []byte(`{
		"difficulty": 1024,
		"gasLimit": 5000,
		"nonce": 66,
		"timestamp": 0,
		"coinbase": "0x0000000000000000000000000000000000000000",
		"alloc": {
			"0x0000000000000000000000000000000000000001": {"balance": 1000}
		}
	}`)
	g, err := LoadGenesis(data)
	if err != nil {
		t.Fatalf("LoadGenesis failed: %v", err)
	}
	if g.GasLimit == 0 {
		t.Fatalf("expected non-zero gas limit")
	}
	if len(g.Alloc) != 1 {
		t.Fatalf("expected 1 allocated account, got %d", len(g.Alloc))
	}
}

func TestGenesisCommitProducesFundedAccount(t *testing.T) {
	addr := types.BytesToAddress([]byte{0x01})
	g := &Genesis{
		Difficulty: big.NewInt(131072),
		GasLimit:   5000000,
		Alloc: GenesisAlloc{
			addr: {Balance: big.NewInt(1_000_000)},
		},
	}
	block, statedb, err := g.Commit()
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if block.NumberU64() != 0 {
		t.Fatalf("genesis block number = %d, want 0", block.NumberU64())
	}
	if !statedb.Exist(addr) {
		t.Fatal("expected allocated account to exist in committed state")
	}
	if got := statedb.GetBalance(addr); got.ToBig().Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("balance = %s, want 1000000", got)
	}
	if block.Header().OmmersHash != EmptyOmmersHash {
		t.Fatalf("genesis ommers hash = %s, want empty-list hash", block.Header().OmmersHash)
	}
}

func TestGenesisCommitDeterministicRoot(t *testing.T) {
	addr := types.BytesToAddress([]byte{0x02})
	build := func() types.Hash {
		g := &Genesis{
			Difficulty: big.NewInt(131072),
			GasLimit:   5000000,
			Alloc: GenesisAlloc{
				addr: {Balance: big.NewInt(42)},
			},
		}
		block, _, err := g.Commit()
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		return block.Header().StateRoot
	}
	first := build()
	second := build()
	if first != second {
		t.Fatalf("genesis state root not deterministic: %s vs %s", first, second)
	}
}
