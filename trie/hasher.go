package trie

import (
	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
)

// hasher collapses a trie into its RLP/Keccak-256 commitment, caching
// computed hashes on each visited node so a subsequent Hash() call after a
// small mutation only re-walks the dirty path.
type hasher struct{}

func newHasher() *hasher { return &hasher{} }

func (h *hasher) hash(n node, force bool) (hashed, cached node) {
	if hn, dirty := n.cache(); hn != nil && !dirty {
		return hn, n
	}
	collapsed, cachedChildren := h.hashChildren(n)
	stored, err := h.store(collapsed, force)
	if err != nil {
		panic("trie: " + err.Error())
	}
	if hn, ok := stored.(hashNode); ok {
		switch c := cachedChildren.(type) {
		case *shortNode:
			c.flags = nodeFlag{hash: hn, dirty: false}
		case *fullNode:
			c.flags = nodeFlag{hash: hn, dirty: false}
		}
	}
	return stored, cachedChildren
}

func (h *hasher) hashChildren(original node) (collapsed, cached node) {
	switch n := original.(type) {
	case *shortNode:
		collapsed, cached := n.copy(), n.copy()
		collapsed.Key = hexToCompact(n.Key)
		if _, ok := n.Val.(valueNode); !ok && n.Val != nil {
			ch, cc := h.hash(n.Val, false)
			collapsed.Val, cached.Val = ch, cc
		}
		return collapsed, cached
	case *fullNode:
		collapsed, cached := n.copy(), n.copy()
		for i := 0; i < 16; i++ {
			if n.Children[i] != nil {
				ch, cc := h.hash(n.Children[i], false)
				collapsed.Children[i], cached.Children[i] = ch, cc
			}
		}
		return collapsed, cached
	default:
		return n, n
	}
}

func (h *hasher) store(n node, force bool) (node, error) {
	switch n.(type) {
	case hashNode, valueNode:
		return n, nil
	}
	enc, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	if len(enc) < 32 && !force {
		return n, nil
	}
	return hashNode(crypto.Keccak256(enc)), nil
}

// encodeNode produces the RLP encoding of a trie node for hashing: a
// shortNode is a 2-element list [compactKey, value], a fullNode a 17-element
// list of its children plus the value slot.
func encodeNode(n node) ([]byte, error) {
	switch n := n.(type) {
	case *shortNode:
		keyEnc, err := rlp.EncodeToBytes(n.Key)
		if err != nil {
			return nil, err
		}
		valEnc, err := encodeChild(n.Val)
		if err != nil {
			return nil, err
		}
		return rlp.WrapList(append(keyEnc, valEnc...)), nil
	case *fullNode:
		var payload []byte
		for i := 0; i < 17; i++ {
			enc, err := encodeChild(n.Children[i])
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return rlp.WrapList(payload), nil
	case hashNode:
		return []byte(n), nil
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	default:
		return []byte{0x80}, nil
	}
}

// encodeChild encodes a child reference for inclusion in a parent's RLP: a
// nil child is the empty string, a value/hash node is an RLP string, and a
// small inline short/full node is its own raw RLP encoding.
func encodeChild(n node) ([]byte, error) {
	if n == nil {
		return []byte{0x80}, nil
	}
	switch n := n.(type) {
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	case hashNode:
		return rlp.EncodeToBytes([]byte(n))
	default:
		return encodeNode(n)
	}
}
