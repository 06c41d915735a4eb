package trie

import (
	"errors"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("trie: key not found")

// EmptyRoot is the root hash of a trie with no entries: Keccak256(RLP("")).
var EmptyRoot = crypto.Keccak256Hash([]byte{0x80})

// Trie is an in-memory Merkle-Patricia trie. It holds the full node graph
// (no backing key-value store), matching the World-State Proxy's
// copy-on-write usage: each MemoryStateDB IntermediateRoot/Commit call
// builds a fresh Trie from the account/storage set rather than mutating a
// shared, disk-backed one.
type Trie struct {
	root node
}

// New returns an empty trie.
func New() *Trie { return &Trie{} }

// Get returns the value stored at key, or ErrNotFound.
func (t *Trie) Get(key []byte) ([]byte, error) {
	v, ok := get(t.root, keyBytesToHex(key), 0)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func get(n node, key []byte, pos int) ([]byte, bool) {
	switch n := n.(type) {
	case nil:
		return nil, false
	case valueNode:
		return []byte(n), true
	case *shortNode:
		if len(key)-pos < len(n.Key) || !nibblesEqual(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, false
		}
		return get(n.Val, key, pos+len(n.Key))
	case *fullNode:
		if pos >= len(key) {
			return get(n.Children[16], key, pos)
		}
		return get(n.Children[key[pos]], key, pos+1)
	default:
		return nil, false
	}
}

// Put inserts or overwrites key with value. An empty value deletes the key.
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	n, err := insert(t.root, keyBytesToHex(key), valueNode(value))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func insert(n node, key []byte, value node) (node, error) {
	if len(key) == 0 {
		return value, nil
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, flags: nodeFlag{dirty: true}}, nil

	case *shortNode:
		match := prefixLen(key, n.Key)
		if match == len(n.Key) {
			child, err := insert(n.Val, key[match:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		existing, err := insert(nil, n.Key[match+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[n.Key[match]] = existing
		fresh, err := insert(nil, key[match+1:], value)
		if err != nil {
			return nil, err
		}
		branch.Children[key[match]] = fresh
		if match > 0 {
			return &shortNode{Key: key[:match], Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		return branch, nil

	case *fullNode:
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		child, err := insert(n.Children[key[0]], key[1:], value)
		if err != nil {
			return nil, err
		}
		nn.Children[key[0]] = child
		return nn, nil

	case hashNode:
		return nil, errors.New("trie: cannot insert below an unresolved hash node")

	default:
		return nil, errors.New("trie: unknown node type")
	}
}

// Delete removes key from the trie. A missing key is a no-op.
func (t *Trie) Delete(key []byte) error {
	n, err := del(t.root, keyBytesToHex(key))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func del(n node, key []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case *shortNode:
		match := prefixLen(key, n.Key)
		if match < len(n.Key) {
			return n, nil
		}
		if match == len(key) {
			return nil, nil
		}
		child, err := del(n.Val, key[len(n.Key):])
		if err != nil {
			return nil, err
		}
		switch child := child.(type) {
		case nil:
			return nil, nil
		case *shortNode:
			return &shortNode{Key: concatNibbles(n.Key, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			return &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}

	case *fullNode:
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		child, err := del(n.Children[key[0]], key[1:])
		if err != nil {
			return nil, err
		}
		nn.Children[key[0]] = child

		only := -1
		for i := 0; i < 17; i++ {
			if nn.Children[i] != nil {
				if only >= 0 {
					return nn, nil
				}
				only = i
			}
		}
		if only < 0 {
			return nil, nil
		}
		if only == 16 {
			return &shortNode{Key: []byte{terminatorNibble}, Val: nn.Children[16], flags: nodeFlag{dirty: true}}, nil
		}
		if cnode, ok := nn.Children[only].(*shortNode); ok {
			return &shortNode{Key: concatNibbles([]byte{byte(only)}, cnode.Key), Val: cnode.Val, flags: nodeFlag{dirty: true}}, nil
		}
		return &shortNode{Key: []byte{byte(only)}, Val: nn.Children[only], flags: nodeFlag{dirty: true}}, nil

	case valueNode:
		return nil, nil

	case hashNode:
		return nil, errors.New("trie: cannot delete below an unresolved hash node")

	default:
		return nil, errors.New("trie: unknown node type")
	}
}

// Hash returns the Keccak-256 root commitment of the trie.
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached
	if hn, ok := hashed.(hashNode); ok {
		return types.BytesToHash(hn)
	}
	enc, _ := encodeNode(hashed)
	return crypto.Keccak256Hash(enc)
}

// Len reports the number of key-value pairs in the trie (O(n)).
func (t *Trie) Len() int { return countValues(t.root) }

// Empty reports whether the trie has no entries.
func (t *Trie) Empty() bool { return t.root == nil }

func countValues(n node) int {
	switch n := n.(type) {
	case nil:
		return 0
	case valueNode:
		return 1
	case *shortNode:
		return countValues(n.Val)
	case *fullNode:
		sum := 0
		for i := 0; i < 17; i++ {
			sum += countValues(n.Children[i])
		}
		return sum
	default:
		return 0
	}
}
