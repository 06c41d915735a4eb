// Package core is the sequencing layer that drives core/vm and core/state
// through a block's transactions: validating headers and transactions,
// applying each message, distributing the block reward, and checking the
// resulting state root, receipts root, and gas accounting against the
// block header.
package core

import "math/big"

// ChainConfig is the fork-activation table: chain ID plus the block
// numbers at which each named EIP switches on. Every fork here activates
// by block number rather than by timestamp — this engine covers only the
// pre-merge, block-number-gated EIP-150/155/158/160/170 era.
type ChainConfig struct {
	ChainID *big.Int

	HomesteadBlock *big.Int // EIP-2: CREATE/CALL gas/behavior changes folded into Homestead
	EIP150Block    *big.Int // 63/64 call-gas forwarding, extcode gas bump
	EIP155Block    *big.Int // chain-ID-bound transaction signing
	EIP158Block    *big.Int // empty-account clearing (EIP-161)
	EIP160Block    *big.Int // EXP exponent byte cost 10 -> 50

	// BlockReward is the static per-block miner reward in wei (Yellow
	// Paper §11.3's R). Defaults to 5 ether (Frontier/Homestead) when
	// nil via DefaultBlockReward.
	BlockReward *big.Int
}

// DefaultBlockReward is the Frontier/Homestead-era static block reward:
// 5 ether, before EIP-649/EIP-1234 later reduced it (those forks are
// out of this engine's scope).
var DefaultBlockReward = new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18))

func blockForked(forkBlock, blockNumber *big.Int) bool {
	if forkBlock == nil {
		return false
	}
	return forkBlock.Cmp(blockNumber) <= 0
}

// IsHomestead reports whether num is at or past the Homestead fork.
func (c *ChainConfig) IsHomestead(num *big.Int) bool { return blockForked(c.HomesteadBlock, num) }

// IsEIP150 reports whether num is at or past the EIP-150 fork.
func (c *ChainConfig) IsEIP150(num *big.Int) bool { return blockForked(c.EIP150Block, num) }

// IsEIP155 reports whether num is at or past the EIP-155 fork.
func (c *ChainConfig) IsEIP155(num *big.Int) bool { return blockForked(c.EIP155Block, num) }

// IsEIP158 reports whether num is at or past the EIP-158 fork.
func (c *ChainConfig) IsEIP158(num *big.Int) bool { return blockForked(c.EIP158Block, num) }

// IsEIP160 reports whether num is at or past the EIP-160 fork.
func (c *ChainConfig) IsEIP160(num *big.Int) bool { return blockForked(c.EIP160Block, num) }

// Reward returns the configured static block reward, defaulting to
// DefaultBlockReward when unset.
func (c *ChainConfig) Reward() *big.Int {
	if c != nil && c.BlockReward != nil {
		return c.BlockReward
	}
	return DefaultBlockReward
}

func newBlock(n int64) *big.Int { return big.NewInt(n) }

// MainnetConfig activates every in-scope fork at Ethereum mainnet's
// historical block numbers.
var MainnetConfig = &ChainConfig{
	ChainID:        big.NewInt(1),
	HomesteadBlock: newBlock(1150000),
	EIP150Block:    newBlock(2463000),
	EIP155Block:    newBlock(2675000),
	EIP158Block:    newBlock(2675000),
	EIP160Block:    newBlock(2675000),
}

// AllForksConfig activates every in-scope fork at genesis — convenient for
// tests that want Spurious-Dragon semantics from block 0.
var AllForksConfig = &ChainConfig{
	ChainID:        big.NewInt(1337),
	HomesteadBlock: newBlock(0),
	EIP150Block:    newBlock(0),
	EIP155Block:    newBlock(0),
	EIP158Block:    newBlock(0),
	EIP160Block:    newBlock(0),
}
