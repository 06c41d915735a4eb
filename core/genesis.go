package core

import (
	"encoding/json"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/state"
	"github.com/eth2030/execengine/core/types"
)

// GenesisAccount is one entry of a genesis allocation: the initial
// balance, code, nonce, and storage of a pre-funded account.
type GenesisAccount struct {
	Balance *big.Int                  `json:"balance"`
	Code    []byte                    `json:"code,omitempty"`
	Nonce   uint64                    `json:"nonce,omitempty"`
	Storage map[types.Hash]types.Hash `json:"storage,omitempty"`
}

// GenesisAlloc maps addresses to their genesis allocation.
type GenesisAlloc map[types.Address]GenesisAccount

// Genesis specifies a chain's genesis block header fields and the initial
// account allocation, matching the on-disk JSON genesis file format:
// difficulty, extraData, gasLimit, nonce, timestamp, coinbase, mixHash,
// and alloc.
type Genesis struct {
	Config     *ChainConfig `json:"config,omitempty"`
	Difficulty *big.Int     `json:"difficulty"`
	ExtraData  []byte       `json:"extraData,omitempty"`
	GasLimit   uint64       `json:"gasLimit"`
	Nonce      uint64       `json:"nonce"`
	Timestamp  uint64       `json:"timestamp"`
	Coinbase   types.Address `json:"coinbase"`
	MixHash    types.Hash    `json:"mixHash"`
	Alloc      GenesisAlloc  `json:"alloc"`
}

// LoadGenesis decodes a JSON genesis file into a Genesis.
func LoadGenesis(data []byte) (*Genesis, error) {
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	if g.Difficulty == nil {
		g.Difficulty = new(big.Int)
	}
	return &g, nil
}

// ToBlock builds the (bodyless) genesis header, encoding Nonce as a
// big-endian 8-byte PoW nonce. stateRoot, transactionsRoot, receiptsRoot,
// and ommersHash reflect a block with no transactions or ommers and
// whatever state g.Alloc has already produced.
func (g *Genesis) ToBlock(stateRoot types.Hash) *types.Block {
	header := &types.Header{
		ParentHash:       types.Hash{},
		OmmersHash:       EmptyOmmersHash,
		Beneficiary:      g.Coinbase,
		StateRoot:        stateRoot,
		TransactionsRoot: types.EmptyRootHash,
		ReceiptsRoot:     types.EmptyRootHash,
		Difficulty:       new(big.Int).Set(g.Difficulty),
		Number:           new(big.Int),
		GasLimit:         g.GasLimit,
		GasUsed:          0,
		Timestamp:        g.Timestamp,
		MixHash:          g.MixHash,
	}
	if len(g.ExtraData) > 0 {
		header.ExtraData = append([]byte(nil), g.ExtraData...)
	}
	nonce := g.Nonce
	for i := 7; i >= 0; i-- {
		header.Nonce[i] = byte(nonce)
		nonce >>= 8
	}
	return types.NewBlock(header, nil)
}

// Commit applies the genesis allocation to a fresh MemoryStateDB and
// returns the resulting genesis block with its state root filled in.
func (g *Genesis) Commit() (*types.Block, *state.MemoryStateDB, error) {
	statedb := state.NewMemoryStateDB()
	for addr, account := range g.Alloc {
		statedb.CreateAccount(addr)
		if account.Balance != nil {
			bal, overflow := uint256.FromBig(account.Balance)
			if overflow {
				return nil, nil, errOverflow(addr)
			}
			statedb.AddBalance(addr, bal)
		}
		if account.Nonce > 0 {
			statedb.SetNonce(addr, account.Nonce)
		}
		if len(account.Code) > 0 {
			statedb.SetCode(addr, account.Code)
		}
		for key, val := range account.Storage {
			statedb.SetState(addr, key, val)
		}
	}
	stateRoot, err := statedb.Commit()
	if err != nil {
		return nil, nil, err
	}
	return g.ToBlock(stateRoot), statedb, nil
}

func errOverflow(addr types.Address) error {
	return &genesisError{addr: addr}
}

type genesisError struct{ addr types.Address }

func (e *genesisError) Error() string {
	return "core: genesis balance for " + e.addr.Hex() + " overflows 256 bits"
}
