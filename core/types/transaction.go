package types

import (
	"math/big"
	"sync/atomic"

	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
)

// Transaction is the legacy (pre-EIP-2718) signed transaction.
// Later transaction types (access-list, dynamic-fee, blob,
// set-code) are out of scope: this engine's gas schedule and wire format
// cover only the single `{nonce, gasPrice, gasLimit, to, value, data, v,
// r, s}` shape.
type Transaction struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *Address // nil means contract creation
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int

	hash atomic.Pointer[Hash]
	from atomic.Pointer[Address]
}

// NewTransaction builds an unsigned transaction for a CALL (To != nil).
func NewTransaction(nonce uint64, to Address, value, gasPrice *big.Int, gasLimit uint64, data []byte) *Transaction {
	return &Transaction{Nonce: nonce, To: &to, Value: value, GasPrice: gasPrice, GasLimit: gasLimit, Data: data}
}

// NewContractCreation builds an unsigned transaction for a CREATE (To == nil).
func NewContractCreation(nonce uint64, value, gasPrice *big.Int, gasLimit uint64, data []byte) *Transaction {
	return &Transaction{Nonce: nonce, To: nil, Value: value, GasPrice: gasPrice, GasLimit: gasLimit, Data: data}
}

// IsContractCreation reports whether the transaction has no receiver,
// meaning it runs as a CREATE rather than a CALL.
func (tx *Transaction) IsContractCreation() bool { return tx.To == nil }

// rlpTransaction is the signed wire/hash encoding of a Transaction.
type rlpTransaction struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *Address
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

func (tx *Transaction) toRLP() rlpTransaction {
	return rlpTransaction{
		Nonce: tx.Nonce, GasPrice: tx.GasPrice, GasLimit: tx.GasLimit,
		To: tx.To, Value: tx.Value, Data: tx.Data, V: tx.V, R: tx.R, S: tx.S,
	}
}

// EncodeRLP returns the signed wire encoding used for the transactionsRoot
// trie and for network/storage serialization.
func (tx *Transaction) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(tx.toRLP())
}

// Hash returns the Keccak-256 hash of the signed transaction's RLP
// encoding, used as the receipt's TxHash and as the key under which the
// state groups the transaction's logs.
func (tx *Transaction) Hash() Hash {
	if cached := tx.hash.Load(); cached != nil {
		return *cached
	}
	enc, _ := rlp.EncodeToBytes(tx.toRLP())
	h := crypto.Keccak256Hash(enc)
	tx.hash.Store(&h)
	return h
}

// SigningHash returns the hash signed by the sender: the RLP encoding of
// the transaction with the signature fields replaced per EIP-155 (or
// omitted entirely pre-EIP-155).
func (tx *Transaction) SigningHash(chainID *big.Int) Hash {
	type unsignedEIP155 struct {
		Nonce    uint64
		GasPrice *big.Int
		GasLimit uint64
		To       *Address
		Value    *big.Int
		Data     []byte
		ChainID  *big.Int
		Zero1    uint64
		Zero2    uint64
	}
	type unsignedLegacy struct {
		Nonce    uint64
		GasPrice *big.Int
		GasLimit uint64
		To       *Address
		Value    *big.Int
		Data     []byte
	}
	var enc []byte
	if chainID != nil && chainID.Sign() > 0 {
		enc, _ = rlp.EncodeToBytes(unsignedEIP155{tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data, chainID, 0, 0})
	} else {
		enc, _ = rlp.EncodeToBytes(unsignedLegacy{tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data})
	}
	return crypto.Keccak256Hash(enc)
}

// SetSender caches a previously-recovered sender address on the transaction.
func (tx *Transaction) SetSender(addr Address) {
	a := addr
	tx.from.Store(&a)
}

// CachedSender returns the cached sender address, if SetSender was called.
func (tx *Transaction) CachedSender() (Address, bool) {
	if a := tx.from.Load(); a != nil {
		return *a, true
	}
	return Address{}, false
}
