package types

import (
	"errors"
	"math/big"

	"github.com/eth2030/execengine/crypto"
)

var ErrInvalidSig = errors.New("types: invalid transaction signature")

// Signer recovers the sender address from a signed transaction and
// supplies the hash that was signed, for a given chain configuration.
type Signer interface {
	Sender(tx *Transaction) (Address, error)
	Hash(tx *Transaction) Hash
	ChainID() *big.Int
}

// HomesteadSigner implements pre-EIP-155 signature recovery: v is 27 or 28,
// with no chain-ID binding.
type HomesteadSigner struct{}

func (HomesteadSigner) ChainID() *big.Int { return nil }
func (HomesteadSigner) Hash(tx *Transaction) Hash { return tx.SigningHash(nil) }

func (s HomesteadSigner) Sender(tx *Transaction) (Address, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return Address{}, ErrInvalidSig
	}
	v := tx.V.Uint64()
	if v != 27 && v != 28 {
		return Address{}, ErrInvalidSig
	}
	return recoverSender(s.Hash(tx), byte(v-27), tx.R, tx.S, true)
}

// EIP155Signer implements chain-ID-bound signature recovery: v encodes
// chainID·2+35+parity, per EIP-155.
type EIP155Signer struct {
	chainID *big.Int
}

// NewEIP155Signer builds a signer bound to the given chain ID.
func NewEIP155Signer(chainID *big.Int) EIP155Signer { return EIP155Signer{chainID: chainID} }

func (s EIP155Signer) ChainID() *big.Int { return s.chainID }
func (s EIP155Signer) Hash(tx *Transaction) Hash { return tx.SigningHash(s.chainID) }

func (s EIP155Signer) Sender(tx *Transaction) (Address, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return Address{}, ErrInvalidSig
	}
	v := new(big.Int).Set(tx.V)
	// Legacy (unprotected) transactions remain valid under an EIP-155 signer.
	if v.Uint64() == 27 || v.Uint64() == 28 {
		return recoverSender(HomesteadSigner{}.Hash(tx), byte(v.Uint64()-27), tx.R, tx.S, true)
	}
	chainIDx2 := new(big.Int).Mul(s.chainID, big.NewInt(2))
	parity := new(big.Int).Sub(v, chainIDx2)
	parity.Sub(parity, big.NewInt(35))
	if parity.Sign() < 0 || parity.Cmp(big.NewInt(1)) > 0 {
		return Address{}, ErrInvalidSig
	}
	return recoverSender(s.Hash(tx), byte(parity.Uint64()), tx.R, tx.S, true)
}

func recoverSender(sigHash Hash, parity byte, r, sVal *big.Int, homestead bool) (Address, error) {
	if !crypto.ValidateSignatureValues(parity, r, sVal, homestead) {
		return Address{}, ErrInvalidSig
	}
	sig := make([]byte, 65)
	r.FillBytes(sig[0:32])
	sVal.FillBytes(sig[32:64])
	sig[64] = parity
	pub, err := crypto.Ecrecover(sigHash.Bytes(), sig)
	if err != nil {
		return Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return Address{}, ErrInvalidSig
	}
	hash := crypto.Keccak256(pub[1:])
	return BytesToAddress(hash[12:]), nil
}

// Sender recovers and caches the sending address of tx under signer s.
func Sender(signer Signer, tx *Transaction) (Address, error) {
	if addr, ok := tx.CachedSender(); ok {
		return addr, nil
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return Address{}, err
	}
	tx.SetSender(addr)
	return addr, nil
}

// DeriveChainID extracts the chain ID implied by an EIP-155 v value, or nil
// if the transaction is an unprotected (pre-EIP-155) legacy transaction.
func DeriveChainID(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	if v.Uint64() == 27 || v.Uint64() == 28 {
		return nil
	}
	x := new(big.Int).Sub(v, big.NewInt(35))
	return x.Div(x, big.NewInt(2))
}
