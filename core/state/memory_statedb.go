package state

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/eth2030/execengine/core/types"
	"github.com/eth2030/execengine/crypto"
	"github.com/eth2030/execengine/rlp"
	"github.com/eth2030/execengine/trie"
)

// MemoryStateDB is the World-State Proxy: an in-memory account/storage
// store with journaled mutations so a transaction's effects can be
// discarded on revert without disturbing the rest of the block. It
// implements core/vm.StateDB.
type MemoryStateDB struct {
	stateObjects map[types.Address]*stateObject
	journal      *journal
	logs         map[types.Hash][]*types.Log
	refund       uint64

	// touched accumulates every address written during the current
	// transaction, so the executor can run the EIP-158 empty-account
	// sweep without re-scanning every account in the state.
	touched mapset.Set[types.Address]

	txHash  types.Hash
	txIndex int
}

// NewMemoryStateDB returns an empty World-State Proxy.
func NewMemoryStateDB() *MemoryStateDB {
	return &MemoryStateDB{
		stateObjects: make(map[types.Address]*stateObject),
		journal:      newJournal(),
		logs:         make(map[types.Hash][]*types.Log),
		touched:      mapset.NewSet[types.Address](),
	}
}

func (s *MemoryStateDB) touch(addr types.Address) {
	s.touched.Add(addr)
}

func (s *MemoryStateDB) getStateObject(addr types.Address) *stateObject {
	return s.stateObjects[addr]
}

func (s *MemoryStateDB) getOrNewStateObject(addr types.Address) *stateObject {
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	obj := newStateObject()
	s.stateObjects[addr] = obj
	return obj
}

// --- Account operations ---

func (s *MemoryStateDB) CreateAccount(addr types.Address) {
	prev := s.stateObjects[addr]
	s.journal.append(createAccountChange{addr: addr, prev: prev})
	s.stateObjects[addr] = newStateObject()
	s.touch(addr)
}

func (s *MemoryStateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: new(uint256.Int).Set(obj.account.Balance)})
	obj.account.Balance = new(uint256.Int).Sub(obj.account.Balance, amount)
	s.touch(addr)
}

func (s *MemoryStateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: new(uint256.Int).Set(obj.account.Balance)})
	obj.account.Balance = new(uint256.Int).Add(obj.account.Balance, amount)
	s.touch(addr)
}

func (s *MemoryStateDB) GetBalance(addr types.Address) *uint256.Int {
	if obj := s.getStateObject(addr); obj != nil {
		return new(uint256.Int).Set(obj.account.Balance)
	}
	return new(uint256.Int)
}

func (s *MemoryStateDB) GetNonce(addr types.Address) uint64 {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.account.Nonce
	}
	return 0
}

func (s *MemoryStateDB) SetNonce(addr types.Address, nonce uint64) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(nonceChange{addr: addr, prev: obj.account.Nonce})
	obj.account.Nonce = nonce
	s.touch(addr)
}

func (s *MemoryStateDB) GetCode(addr types.Address) []byte {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.code
	}
	return nil
}

func (s *MemoryStateDB) SetCode(addr types.Address, code []byte) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(codeChange{addr: addr, prevCode: obj.code, prevHash: obj.account.CodeHash})
	obj.code = code
	obj.account.CodeHash = types.BytesToHash(crypto.Keccak256(code))
	s.touch(addr)
}

func (s *MemoryStateDB) GetCodeHash(addr types.Address) types.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.account.CodeHash
	}
	return types.Hash{}
}

func (s *MemoryStateDB) GetCodeSize(addr types.Address) int {
	if obj := s.getStateObject(addr); obj != nil {
		return len(obj.code)
	}
	return 0
}

// --- Self-destruct ---

func (s *MemoryStateDB) SelfDestruct(addr types.Address) {
	obj := s.getStateObject(addr)
	if obj == nil {
		return
	}
	s.journal.append(selfDestructChange{
		addr:           addr,
		prevDestructed: obj.selfDestructed,
		prevBalance:    new(uint256.Int).Set(obj.account.Balance),
	})
	obj.selfDestructed = true
	obj.account.Balance = new(uint256.Int)
	s.touch(addr)
}

func (s *MemoryStateDB) HasSelfDestructed(addr types.Address) bool {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.selfDestructed
	}
	return false
}

// SelfDestructed returns every address currently marked for removal and
// not yet swept, sorted by hex address. Sweep clears these marks at the
// end of each successful transaction.
func (s *MemoryStateDB) SelfDestructed() []types.Address {
	var addrs []types.Address
	for addr, obj := range s.stateObjects {
		if obj.selfDestructed {
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Hex() < addrs[j].Hex() })
	return addrs
}

// Sweep deletes every self-destructed account from the world state. Called
// once per transaction by the executor, after the transaction's changes
// have been merged and can no longer be reverted.
func (s *MemoryStateDB) Sweep() {
	for addr, obj := range s.stateObjects {
		if obj.selfDestructed {
			delete(s.stateObjects, addr)
		}
	}
}

// ClearTouched resets the per-transaction touched-address set. Called by
// the executor before running each transaction.
func (s *MemoryStateDB) ClearTouched() {
	s.touched = mapset.NewSet[types.Address]()
}

// SweepEmptyTouched deletes every address touched this transaction that is
// now empty (the EIP-158 rule): post-transaction, any account that
// was created, credited, or otherwise written but ended up with zero
// nonce, zero balance, and no code is removed from the state rather than
// persisted as a no-op entry.
func (s *MemoryStateDB) SweepEmptyTouched() {
	for _, addr := range s.touched.ToSlice() {
		if s.Empty(addr) {
			delete(s.stateObjects, addr)
		}
	}
}

// --- Storage operations ---

func (s *MemoryStateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		if val, ok := obj.dirtyStorage[key]; ok {
			return val
		}
		return obj.committedStorage[key]
	}
	return types.Hash{}
}

func (s *MemoryStateDB) SetState(addr types.Address, key types.Hash, value types.Hash) {
	obj := s.getOrNewStateObject(addr)
	prevDirty, prevExists := obj.dirtyStorage[key]
	prev := obj.committedStorage[key]
	if prevExists {
		prev = prevDirty
	}
	s.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: prevExists})
	obj.dirtyStorage[key] = value
	s.touch(addr)
}

func (s *MemoryStateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.committedStorage[key]
	}
	return types.Hash{}
}

// --- Account existence ---

func (s *MemoryStateDB) Exist(addr types.Address) bool {
	return s.stateObjects[addr] != nil
}

func (s *MemoryStateDB) Empty(addr types.Address) bool {
	obj := s.getStateObject(addr)
	if obj == nil {
		return true
	}
	return obj.account.Nonce == 0 && obj.account.Balance.IsZero() && obj.account.CodeHash == types.EmptyCodeHash
}

// --- Snapshot and revert ---

func (s *MemoryStateDB) Snapshot() int {
	return s.journal.snapshot()
}

func (s *MemoryStateDB) RevertToSnapshot(id int) {
	s.journal.revertToSnapshot(id, s)
}

// --- Logs ---

func (s *MemoryStateDB) AddLog(log *types.Log) {
	log.TxHash = s.txHash
	log.TxIndex = uint(s.txIndex)
	s.journal.append(logChange{txHash: s.txHash, prevLen: len(s.logs[s.txHash])})
	s.logs[s.txHash] = append(s.logs[s.txHash], log)
}

func (s *MemoryStateDB) GetLogs(txHash types.Hash) []*types.Log {
	return s.logs[txHash]
}

// SetTxContext binds subsequent AddLog calls to txHash/txIndex, mirroring
// the per-transaction attribution the block executor must set before
// running each transaction.
func (s *MemoryStateDB) SetTxContext(txHash types.Hash, txIndex int) {
	s.txHash = txHash
	s.txIndex = txIndex
}

// --- Refund counter ---

func (s *MemoryStateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

func (s *MemoryStateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		s.refund = 0
		return
	}
	s.refund -= gas
}

func (s *MemoryStateDB) GetRefund() uint64 {
	return s.refund
}

// ResetRefund zeroes the refund counter, called by the executor at the
// start of each transaction — refunds never carry across transactions.
func (s *MemoryStateDB) ResetRefund() {
	s.refund = 0
}

// --- Trie construction and commit ---

// rlpAccount is the RLP wire form of a Yellow-Paper account record.
type rlpAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     types.Hash
	CodeHash types.Hash
}

// computeStorageRoot builds the account's storage trie from its merged
// committed+dirty slots (key = keccak256(slot), value = rlp(trimmedValue))
// and returns its root hash.
func computeStorageRoot(obj *stateObject) types.Hash {
	merged := mergeStorage(obj)
	if len(merged) == 0 {
		return types.EmptyRootHash
	}
	storageTrie := trie.New()
	for slot, val := range merged {
		hashedSlot := crypto.Keccak256(slot[:])
		encoded, err := rlp.EncodeToBytes(trimLeadingZeros(val[:]))
		if err != nil {
			continue
		}
		storageTrie.Put(hashedSlot, encoded)
	}
	return storageTrie.Hash()
}

func trimLeadingZeros(b []byte) []byte {
	for i, v := range b {
		if v != 0 {
			return b[i:]
		}
	}
	return []byte{}
}

// accountEncoding returns obj's RLP-encodable account record with its
// storage root freshly computed.
func accountEncoding(obj *stateObject) ([]byte, error) {
	acc := rlpAccount{
		Nonce:    obj.account.Nonce,
		Balance:  obj.account.Balance,
		Root:     computeStorageRoot(obj),
		CodeHash: obj.account.CodeHash,
	}
	return rlp.EncodeToBytes(acc)
}

// Commit flushes dirty storage into committed storage for every account,
// drops self-destructed accounts, and returns the new state trie root
// (the per-block state-root requirement).
func (s *MemoryStateDB) Commit() (types.Hash, error) {
	for addr, obj := range s.stateObjects {
		if obj.selfDestructed {
			delete(s.stateObjects, addr)
			continue
		}
		for key, val := range obj.dirtyStorage {
			if val.IsZero() {
				delete(obj.committedStorage, key)
			} else {
				obj.committedStorage[key] = val
			}
		}
		obj.dirtyStorage = make(map[types.Hash]types.Hash)
	}
	return s.stateRoot()
}

// IntermediateRoot computes the state root without flushing dirty storage
// or dropping self-destructed accounts, for mid-block inspection.
func (s *MemoryStateDB) IntermediateRoot() (types.Hash, error) {
	return s.stateRoot()
}

func (s *MemoryStateDB) stateRoot() (types.Hash, error) {
	if len(s.stateObjects) == 0 {
		return types.EmptyRootHash, nil
	}
	stateTrie := trie.New()
	addrs := make([]types.Address, 0, len(s.stateObjects))
	for addr := range s.stateObjects {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Hex() < addrs[j].Hex() })

	for _, addr := range addrs {
		obj := s.stateObjects[addr]
		if obj.selfDestructed {
			continue
		}
		encoded, err := accountEncoding(obj)
		if err != nil {
			return types.Hash{}, err
		}
		stateTrie.Put(crypto.Keccak256(addr[:]), encoded)
	}
	return stateTrie.Hash(), nil
}

// StorageRoot returns addr's current storage trie root.
func (s *MemoryStateDB) StorageRoot(addr types.Address) types.Hash {
	obj := s.getStateObject(addr)
	if obj == nil {
		return types.EmptyRootHash
	}
	return computeStorageRoot(obj)
}

// Copy returns a deep copy sharing no mutable state with the receiver.
func (s *MemoryStateDB) Copy() *MemoryStateDB {
	cp := &MemoryStateDB{
		stateObjects: make(map[types.Address]*stateObject, len(s.stateObjects)),
		journal:      newJournal(),
		logs:         make(map[types.Hash][]*types.Log, len(s.logs)),
		refund:       s.refund,
		touched:      mapset.NewSet[types.Address](),
	}
	for addr, obj := range s.stateObjects {
		newObj := &stateObject{
			account: types.Account{
				Nonce:    obj.account.Nonce,
				Balance:  new(uint256.Int).Set(obj.account.Balance),
				StorageRoot: obj.account.StorageRoot,
				CodeHash: obj.account.CodeHash,
			},
			code:             append([]byte(nil), obj.code...),
			dirtyStorage:     make(map[types.Hash]types.Hash, len(obj.dirtyStorage)),
			committedStorage: make(map[types.Hash]types.Hash, len(obj.committedStorage)),
			selfDestructed:   obj.selfDestructed,
		}
		for k, v := range obj.dirtyStorage {
			newObj.dirtyStorage[k] = v
		}
		for k, v := range obj.committedStorage {
			newObj.committedStorage[k] = v
		}
		cp.stateObjects[addr] = newObj
	}
	for txHash, logs := range s.logs {
		cpLogs := make([]*types.Log, len(logs))
		for i, l := range logs {
			cpLog := *l
			cpLogs[i] = &cpLog
		}
		cp.logs[txHash] = cpLogs
	}
	return cp
}

// FinalizePreState copies genesis-loaded dirty storage into committed
// storage before any transaction runs, so GetCommittedState reflects the
// pre-block values.
func (s *MemoryStateDB) FinalizePreState() {
	for _, obj := range s.stateObjects {
		for key, value := range obj.dirtyStorage {
			obj.committedStorage[key] = value
		}
		obj.dirtyStorage = make(map[types.Hash]types.Hash)
	}
}
