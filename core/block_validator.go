package core

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/eth2030/execengine/core/types"
)

var (
	ErrUnknownParent    = errors.New("core: unknown parent")
	ErrInvalidNumber    = errors.New("core: invalid block number")
	ErrInvalidGasLimit  = errors.New("core: invalid gas limit")
	ErrInvalidGasUsed   = errors.New("core: gas used exceeds gas limit")
	ErrInvalidTimestamp = errors.New("core: timestamp not greater than parent")
	ErrExtraDataTooLong = errors.New("core: extra data too long")
	ErrInvalidDifficulty = errors.New("core: difficulty does not match formula")

	ErrUnknownOmmer    = errors.New("core: ommer parent not within ancestor window")
	ErrDuplicateOmmer  = errors.New("core: ommer already included in an ancestor block")
	ErrTooManyOmmers   = errors.New("core: block has more than two ommers")
	ErrOmmerIsAncestor = errors.New("core: ommer is itself an ancestor")

	ErrTransactionsRootMismatch = errors.New("core: transactionsRoot does not match block body")
	ErrOmmersHashMismatch       = errors.New("core: ommersHash does not match block body")
)

const (
	// MaxExtraDataSize bounds the header's ExtraData field.
	MaxExtraDataSize = 32

	// GasLimitBoundDivisor bounds how much the gas limit may change
	// between consecutive blocks: by less than parentGasLimit/1024.
	GasLimitBoundDivisor uint64 = 1024

	// MinGasLimit is the protocol-wide floor on a block's gas limit.
	MinGasLimit uint64 = 5000

	// MaxOmmerDepth is how many ancestor generations back an ommer's
	// parent may be found.
	MaxOmmerDepth = 6

	// MaxOmmers is the maximum number of ommers a block may include.
	MaxOmmers = 2

	// minimumDifficulty is the protocol floor below which difficulty may
	// never drop, regardless of the timestamp/number adjustment terms.
	minimumDifficulty uint64 = 131072
)

// HeaderChain is the minimal ancestor lookup the ommer validator needs:
// resolving a hash to the header and block that introduced it, far enough
// back to check the 6-generation ommer window.
type HeaderChain interface {
	GetHeader(hash types.Hash) *types.Header
	// IsOmmerIncluded reports whether hash was already included as an
	// ommer (or is itself a canonical block) within the ancestor window.
	IsOmmerIncluded(hash types.Hash) bool
}

// BlockValidator implements the header, body-consistency, and ommers
// predicates named by the Validators bundle: pure checks against a parent
// header (and, for ommers, a short ancestor window) with no access to
// world state.
type BlockValidator struct {
	config *ChainConfig
}

// NewBlockValidator builds a BlockValidator bound to config's fork schedule.
func NewBlockValidator(config *ChainConfig) *BlockValidator {
	return &BlockValidator{config: config}
}

// ValidateHeader checks header against its direct parent: hash linkage,
// extra-data bound, strictly increasing timestamp, sequential numbering,
// the gas-limit delta bound, gasUsed within gasLimit, and the difficulty
// formula. It does not verify the proof-of-work solution itself (the
// mix-hash/nonce digest check) — mining and PoW verification are handled
// by the caller-supplied consensus engine, outside this engine's scope.
func (v *BlockValidator) ValidateHeader(header, parent *types.Header) error {
	if header.ParentHash != parent.Hash() {
		return fmt.Errorf("%w: want %s, got %s", ErrUnknownParent, parent.Hash(), header.ParentHash)
	}
	if len(header.ExtraData) > MaxExtraDataSize {
		return fmt.Errorf("%w: %d > %d", ErrExtraDataTooLong, len(header.ExtraData), MaxExtraDataSize)
	}
	if header.Timestamp <= parent.Timestamp {
		return fmt.Errorf("%w: child %d <= parent %d", ErrInvalidTimestamp, header.Timestamp, parent.Timestamp)
	}
	expectedNumber := new(big.Int).Add(parent.Number, big.NewInt(1))
	if header.Number.Cmp(expectedNumber) != 0 {
		return fmt.Errorf("%w: want %s, got %s", ErrInvalidNumber, expectedNumber, header.Number)
	}
	if err := verifyGasLimit(parent.GasLimit, header.GasLimit); err != nil {
		return err
	}
	if header.GasUsed > header.GasLimit {
		return fmt.Errorf("%w: %d > %d", ErrInvalidGasUsed, header.GasUsed, header.GasLimit)
	}
	expectedDifficulty := CalcDifficulty(v.config, header.Timestamp, parent)
	if header.Difficulty.Cmp(expectedDifficulty) != 0 {
		return fmt.Errorf("%w: want %s, got %s", ErrInvalidDifficulty, expectedDifficulty, header.Difficulty)
	}
	return nil
}

func verifyGasLimit(parentGasLimit, headerGasLimit uint64) error {
	if headerGasLimit < MinGasLimit {
		return fmt.Errorf("%w: %d below minimum %d", ErrInvalidGasLimit, headerGasLimit, MinGasLimit)
	}
	diff := headerGasLimit - parentGasLimit
	if headerGasLimit < parentGasLimit {
		diff = parentGasLimit - headerGasLimit
	}
	if limit := parentGasLimit / GasLimitBoundDivisor; diff >= limit {
		return fmt.Errorf("%w: change %d exceeds limit %d", ErrInvalidGasLimit, diff, limit)
	}
	return nil
}

// CalcDifficulty computes the expected difficulty of a block built on
// parent at the given timestamp, per the Homestead difficulty-bomb
// formula (Yellow Paper Appendix, EIP-2), which adjusts in 10-second
// steps. Before the Homestead fork, Frontier's coarser rule applies: +1
// if the block arrives within 13 seconds of its parent, else -1.
func CalcDifficulty(config *ChainConfig, timestamp uint64, parent *types.Header) *big.Int {
	bigTime := new(big.Int).SetUint64(timestamp)
	bigParentTime := new(big.Int).SetUint64(parent.Timestamp)

	var adjust *big.Int
	if config.IsHomestead(new(big.Int).Add(parent.Number, big.NewInt(1))) {
		// max(1 - (blockTime - parentTime) / 10, -99)
		adjust = new(big.Int).Sub(bigTime, bigParentTime)
		adjust.Div(adjust, big.NewInt(10))
		adjust.Sub(big.NewInt(1), adjust)
	} else {
		// Frontier: +1 if within 13 seconds of the parent, else -1.
		if bigTime.Sub(bigTime, bigParentTime).Cmp(big.NewInt(13)) < 0 {
			adjust = big.NewInt(1)
		} else {
			adjust = big.NewInt(-1)
		}
	}
	if adjust.Cmp(big.NewInt(-99)) < 0 {
		adjust = big.NewInt(-99)
	}

	diff := new(big.Int).Div(parent.Difficulty, big.NewInt(2048))
	diff.Mul(diff, adjust)
	diff.Add(diff, parent.Difficulty)

	// Exponential difficulty bomb: 2^(floor(blockNumber/100000) - 2).
	blockNumber := new(big.Int).Add(parent.Number, big.NewInt(1))
	periodCount := new(big.Int).Div(blockNumber, big.NewInt(100000))
	if periodCount.Cmp(big.NewInt(1)) > 0 {
		exp := new(big.Int).Sub(periodCount, big.NewInt(2))
		bomb := new(big.Int).Exp(big.NewInt(2), exp, nil)
		diff.Add(diff, bomb)
	}

	if diff.Cmp(big.NewInt(int64(minimumDifficulty))) < 0 {
		diff = big.NewInt(int64(minimumDifficulty))
	}
	return diff
}

// ValidateBody checks header/body consistency: the header's
// transactionsRoot and ommersHash commit to the block's actual body.
func (v *BlockValidator) ValidateBody(block *types.Block) error {
	header := block.Header()
	if got := transactionsRoot(block.Transactions()); got != header.TransactionsRoot {
		return fmt.Errorf("%w: header %s, computed %s", ErrTransactionsRootMismatch, header.TransactionsRoot, got)
	}
	if got := ommersHash(block.Uncles()); got != header.OmmersHash {
		return fmt.Errorf("%w: header %s, computed %s", ErrOmmersHashMismatch, header.OmmersHash, got)
	}
	return nil
}

// ValidateOmmers checks each ommer's header is independently valid and
// that it could legally be included: its parent lies within the last
// MaxOmmerDepth ancestors of block, it has not already been included as
// an ommer (or as a canonical block) in that window, and it is not
// itself one of block's own ancestors.
func (v *BlockValidator) ValidateOmmers(block *types.Block, chain HeaderChain) error {
	uncles := block.Uncles()
	if len(uncles) > MaxOmmers {
		return fmt.Errorf("%w: %d > %d", ErrTooManyOmmers, len(uncles), MaxOmmers)
	}
	ancestors := make(map[types.Hash]*types.Header, MaxOmmerDepth)
	parent := chain.GetHeader(block.ParentHash())
	for i := 0; i < MaxOmmerDepth && parent != nil; i++ {
		ancestors[parent.Hash()] = parent
		if parent.Number.Sign() == 0 {
			break
		}
		parent = chain.GetHeader(parent.ParentHash)
	}

	for _, ommer := range uncles {
		if _, isAncestor := ancestors[ommer.Hash()]; isAncestor {
			return fmt.Errorf("%w: %s", ErrOmmerIsAncestor, ommer.Hash())
		}
		ommerParent, ok := ancestors[ommer.ParentHash]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOmmer, ommer.Hash())
		}
		if chain.IsOmmerIncluded(ommer.Hash()) {
			return fmt.Errorf("%w: %s", ErrDuplicateOmmer, ommer.Hash())
		}
		if err := v.ValidateHeader(ommer, ommerParent); err != nil {
			return fmt.Errorf("invalid ommer header: %w", err)
		}
	}
	return nil
}
