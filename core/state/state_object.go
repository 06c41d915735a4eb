package state

import "github.com/eth2030/execengine/core/types"

// stateObject is the in-memory representation of one account: its Yellow
// Paper record plus code and a committed/dirty storage split
// (GetCommittedState sees the committed value even after SetState has
// written a new one). SSTORE gas pricing reads only the current value.
type stateObject struct {
	account          types.Account
	code             []byte
	dirtyStorage     map[types.Hash]types.Hash
	committedStorage map[types.Hash]types.Hash
	selfDestructed   bool
}

func newStateObject() *stateObject {
	return &stateObject{
		account:          *types.NewEmptyAccount(),
		dirtyStorage:     make(map[types.Hash]types.Hash),
		committedStorage: make(map[types.Hash]types.Hash),
	}
}

// mergeStorage builds a merged committed+dirty view, dropping zero-valued
// entries (slot deletions) so they're absent from the storage trie.
func mergeStorage(obj *stateObject) map[types.Hash]types.Hash {
	merged := make(map[types.Hash]types.Hash, len(obj.committedStorage)+len(obj.dirtyStorage))
	for k, v := range obj.committedStorage {
		merged[k] = v
	}
	for k, v := range obj.dirtyStorage {
		if v.IsZero() {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}
	return merged
}
