// Package types defines the primitive wire/state data types shared across
// the execution engine: fixed-width hashes and addresses, accounts,
// transactions, blocks, receipts, and logs.
package types

import "encoding/hex"

// HashLength is the byte length of a keccak-256 digest.
const HashLength = 32

// AddressLength is the byte length of an account address.
const AddressLength = 20

// BloomByteLength is the byte length of a logs bloom filter.
const BloomByteLength = 256

// Hash is a fixed-size 32-byte keccak-256 digest.
type Hash [HashLength]byte

// BytesToHash left-pads or truncates b to a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether the hash is the zero value.
func (h Hash) IsZero() bool { return h == Hash{} }

// Hex returns the "0x"-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// MarshalText implements encoding.TextMarshaler, so a Hash round-trips
// through JSON as a "0x"-prefixed hex string.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	*h = HexToHash(string(text))
	return nil
}

// Address is a 20-byte account address.
type Address [AddressLength]byte

// BytesToAddress left-pads or truncates b to an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool { return a == Address{} }

// Hex returns the "0x"-prefixed hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler, so an Address round-trips
// through JSON as a "0x"-prefixed hex string.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	*a = HexToAddress(string(text))
	return nil
}

// Bloom is a 2048-bit logs bloom filter.
type Bloom [BloomByteLength]byte

// Bytes returns a copy of the bloom filter.
func (b Bloom) Bytes() []byte { return b[:] }

// EmptyCodeHash is keccak256 of the empty byte string, the codeHash of any
// account with no code (including freshly-created externally-owned accounts).
var EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// EmptyRootHash is keccak256(rlp([])), the storageRoot of an account with an
// empty storage trie.
var EmptyRootHash = HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// HexToHash decodes a hex string (with or without "0x" prefix) into a Hash.
func HexToHash(s string) Hash { return BytesToHash(hexDecode(s)) }

// HexToAddress decodes a hex string (with or without "0x" prefix) into an Address.
func HexToAddress(s string) Address { return BytesToAddress(hexDecode(s)) }

func hexDecode(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
