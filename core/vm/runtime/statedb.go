// Package runtime is the outer driver: an in-memory Database implementation
// plus the transaction-boundary operations the core engine deliberately
// does not own (SELFDESTRUCT resolution, refund capping). None of it is
// part of the execution engine itself (spec.md §1: "a persistent
// world-state backend, consumed via a narrow interface, is explicitly out
// of scope").
package runtime

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/coreexec/evmcore/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// StateDB is a minimal in-memory vm.Database: a flat account map plus
// per-account storage/transient-storage maps and a content-addressed code
// store. It exists to drive end-to-end scenarios and tests against the
// engine, not as a production trie-backed store (spec.md §6 scopes the real
// backend out of core).
type StateDB struct {
	accounts  map[types.Address]types.Account
	storage   map[types.Address]map[uint256.Int]uint256.Int
	transient map[types.Address]map[uint256.Int]uint256.Int
	code      map[types.Hash][]byte

	snapshots map[int]stateDBSnapshot
	nextID    int
}

type stateDBSnapshot struct {
	accounts  map[types.Address]types.Account
	storage   map[types.Address]map[uint256.Int]uint256.Int
	transient map[types.Address]map[uint256.Int]uint256.Int
	code      map[types.Hash][]byte
}

// NewStateDB returns an empty StateDB.
func NewStateDB() *StateDB {
	return &StateDB{
		accounts:  make(map[types.Address]types.Account),
		storage:   make(map[types.Address]map[uint256.Int]uint256.Int),
		transient: make(map[types.Address]map[uint256.Int]uint256.Int),
		code:      make(map[types.Hash][]byte),
		snapshots: make(map[int]stateDBSnapshot),
	}
}

var _ vm.Database = (*StateDB)(nil)

func (s *StateDB) GetAccount(addr types.Address) (types.Account, bool) {
	acct, ok := s.accounts[addr]
	return acct, ok
}

func (s *StateDB) SetAccount(addr types.Address, acct types.Account) error {
	s.accounts[addr] = acct
	return nil
}

func (s *StateDB) DeleteAccount(addr types.Address) error {
	delete(s.accounts, addr)
	delete(s.storage, addr)
	delete(s.transient, addr)
	return nil
}

func (s *StateDB) GetStorage(addr types.Address, key *uint256.Int) uint256.Int {
	slots, ok := s.storage[addr]
	if !ok {
		return *uint256.NewInt(0)
	}
	return slots[*key]
}

func (s *StateDB) SetStorage(addr types.Address, key, value *uint256.Int) error {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[uint256.Int]uint256.Int)
		s.storage[addr] = slots
	}
	if value.IsZero() {
		delete(slots, *key)
		return nil
	}
	slots[*key] = *value
	return nil
}

func (s *StateDB) GetTransientStorage(addr types.Address, key *uint256.Int) uint256.Int {
	slots, ok := s.transient[addr]
	if !ok {
		return *uint256.NewInt(0)
	}
	return slots[*key]
}

func (s *StateDB) SetTransientStorage(addr types.Address, key, value *uint256.Int) error {
	slots, ok := s.transient[addr]
	if !ok {
		slots = make(map[uint256.Int]uint256.Int)
		s.transient[addr] = slots
	}
	if value.IsZero() {
		delete(slots, *key)
		return nil
	}
	slots[*key] = *value
	return nil
}

func (s *StateDB) GetCode(codeHash types.Hash) []byte {
	return s.code[codeHash]
}

func (s *StateDB) SetCode(code []byte) (types.Hash, error) {
	if len(code) == 0 {
		return types.EmptyCodeHash, nil
	}
	hash := types.BytesToHash(crypto.Keccak256(code))
	s.code[hash] = code
	return hash, nil
}

func (s *StateDB) GetCodeByAddress(addr types.Address) []byte {
	acct, ok := s.accounts[addr]
	if !ok {
		return nil
	}
	return s.code[acct.CodeHash]
}

// CreateSnapshot deep-copies the whole state under a fresh id. This is the
// database-level checkpoint spec.md §6 describes as independent of the
// engine's own Journal: a coarse whole-transaction/whole-block boundary the
// outer driver uses, not a per-instruction revert mechanism. A production
// backend would use copy-on-write trie nodes instead; a flat deep copy is
// the simplest faithful implementation for this in-memory store.
func (s *StateDB) CreateSnapshot() int {
	id := s.nextID
	s.nextID++
	s.snapshots[id] = stateDBSnapshot{
		accounts:  cloneAccounts(s.accounts),
		storage:   cloneSlots(s.storage),
		transient: cloneSlots(s.transient),
		code:      cloneCode(s.code),
	}
	return id
}

func (s *StateDB) RevertToSnapshot(id int) {
	snap, ok := s.snapshots[id]
	if !ok {
		return
	}
	s.accounts = snap.accounts
	s.storage = snap.storage
	s.transient = snap.transient
	s.code = snap.code
	for sid := range s.snapshots {
		if sid >= id {
			delete(s.snapshots, sid)
		}
	}
}

func (s *StateDB) CommitSnapshot(id int) {
	for sid := range s.snapshots {
		if sid >= id {
			delete(s.snapshots, sid)
		}
	}
}

func cloneAccounts(m map[types.Address]types.Account) map[types.Address]types.Account {
	out := make(map[types.Address]types.Account, len(m))
	for addr, acct := range m {
		if acct.Balance != nil {
			bal := *acct.Balance
			acct.Balance = &bal
		}
		if acct.DelegatedAddress != nil {
			d := *acct.DelegatedAddress
			acct.DelegatedAddress = &d
		}
		out[addr] = acct
	}
	return out
}

func cloneSlots(m map[types.Address]map[uint256.Int]uint256.Int) map[types.Address]map[uint256.Int]uint256.Int {
	out := make(map[types.Address]map[uint256.Int]uint256.Int, len(m))
	for addr, slots := range m {
		inner := make(map[uint256.Int]uint256.Int, len(slots))
		for k, v := range slots {
			inner[k] = v
		}
		out[addr] = inner
	}
	return out
}

func cloneCode(m map[types.Hash][]byte) map[types.Hash][]byte {
	out := make(map[types.Hash][]byte, len(m))
	for h, code := range m {
		out[h] = code
	}
	return out
}
