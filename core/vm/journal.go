package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// journalEntry is a reversible state delta, tagged by kind (spec.md §3).
type journalEntry struct {
	kind journalEntryKind

	addr types.Address
	key  uint256.Int // storageChange / transientStorageChange only

	origBalance *uint256.Int
	origNonce   uint64
	origCode    types.Hash
	origStorage uint256.Int

	logIndex   int   // logAppended only
	origRefund int64 // refundChange only
}

type journalEntryKind uint8

const (
	storageChange journalEntryKind = iota
	transientStorageChange
	balanceChange
	nonceChange
	codeChange
	accountCreated
	logAppended
	refundChange
	selfDestructMarked
)

// Journal is the engine's append-only log of reversible state deltas
// (spec.md §4.4). It sits between the Host and the Database: writes are
// applied to the Database immediately, but the original value is recorded
// here first so a later RevertToSnapshot can undo them. It never mutates
// the Database on its own initiative -- the outer driver commits or
// discards the net effect at transaction end.
//
// Snapshots are cheap revision markers (spec.md §4.4: "O(1) snapshot"):
// CreateSnapshot records the current journal length under a fresh id;
// RevertToSnapshot looks the id back up and undoes everything recorded
// since, from the tail backward, in O(reverted) work.
type Journal struct {
	db        Database
	selfD     *SelfDestructTracker
	entries   []journalEntry
	revisions []journalRevision
	nextID    int
	logs      []types.Log
	refund    int64
}

type journalRevision struct {
	id          int
	journalSize int
}

// NewJournal wraps db with a fresh, empty journal. selfD is the same
// SelfDestructTracker the EVM exposes via Host, threaded through here so a
// SELFDESTRUCT mark recorded by a sub-call can be undone if that sub-call's
// snapshot is later reverted (spec.md §4.3: "discard any self-destruct
// entries recorded deeper than snapshot_id").
func NewJournal(db Database, selfD *SelfDestructTracker) *Journal {
	return &Journal{db: db, selfD: selfD}
}

// CreateSnapshot returns a monotonically increasing id marking the current
// journal length.
func (j *Journal) CreateSnapshot() int {
	id := j.nextID
	j.nextID++
	j.revisions = append(j.revisions, journalRevision{id: id, journalSize: len(j.entries)})
	return id
}

// RevertToSnapshot undoes every entry recorded since id was created, from
// the tail backward, then discards the revision itself and any taken after
// it (spec.md §4.4).
func (j *Journal) RevertToSnapshot(id int) {
	idx := -1
	for i := len(j.revisions) - 1; i >= 0; i-- {
		if j.revisions[i].id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	target := j.revisions[idx].journalSize
	for i := len(j.entries) - 1; i >= target; i-- {
		j.undo(&j.entries[i])
	}
	j.entries = j.entries[:target]
	j.revisions = j.revisions[:idx]
}

func (j *Journal) undo(e *journalEntry) {
	switch e.kind {
	case storageChange:
		_ = j.db.SetStorage(e.addr, &e.key, &e.origStorage)
	case transientStorageChange:
		_ = j.db.SetTransientStorage(e.addr, &e.key, &e.origStorage)
	case balanceChange:
		acct, ok := j.db.GetAccount(e.addr)
		if !ok {
			acct = newEmptyAccount()
		}
		acct.Balance = e.origBalance
		_ = j.db.SetAccount(e.addr, acct)
	case nonceChange:
		acct, ok := j.db.GetAccount(e.addr)
		if !ok {
			acct = newEmptyAccount()
		}
		acct.Nonce = e.origNonce
		_ = j.db.SetAccount(e.addr, acct)
	case codeChange:
		acct, ok := j.db.GetAccount(e.addr)
		if !ok {
			acct = newEmptyAccount()
		}
		acct.CodeHash = e.origCode
		_ = j.db.SetAccount(e.addr, acct)
	case accountCreated:
		_ = j.db.DeleteAccount(e.addr)
	case logAppended:
		if e.logIndex < len(j.logs) {
			j.logs = j.logs[:e.logIndex]
		}
	case refundChange:
		j.refund = e.origRefund
	case selfDestructMarked:
		j.selfD.Discard(e.addr)
	}
}

// MarkSelfDestruct journals then records a SELFDESTRUCT mark, so a later
// revert of this snapshot (or an ancestor's) discards it again.
func (j *Journal) MarkSelfDestruct(contract, recipient types.Address) {
	if j.selfD.IsMarked(contract) {
		return
	}
	j.entries = append(j.entries, journalEntry{kind: selfDestructMarked, addr: contract})
	j.selfD.Mark(contract, recipient)
}

// AddRefund adjusts the transaction-scoped SSTORE refund counter by delta
// (positive or negative, per EIP-2200/3529's (original,current,new) table),
// journaling the prior value so a sub-call revert undoes it too.
func (j *Journal) AddRefund(delta int64) {
	j.entries = append(j.entries, journalEntry{kind: refundChange, origRefund: j.refund})
	j.refund += delta
}

// RefundCounter returns the current accumulated refund, never negative.
func (j *Journal) RefundCounter() uint64 {
	if j.refund < 0 {
		return 0
	}
	return uint64(j.refund)
}

func (j *Journal) snapshotStorage(addr types.Address, key *uint256.Int) {
	j.entries = append(j.entries, journalEntry{
		kind:        storageChange,
		addr:        addr,
		key:         *key,
		origStorage: j.db.GetStorage(addr, key),
	})
}

func (j *Journal) snapshotTransientStorage(addr types.Address, key *uint256.Int) {
	j.entries = append(j.entries, journalEntry{
		kind:        transientStorageChange,
		addr:        addr,
		key:         *key,
		origStorage: j.db.GetTransientStorage(addr, key),
	})
}

func (j *Journal) snapshotBalance(addr types.Address) {
	acct, _ := j.db.GetAccount(addr)
	bal := acct.Balance
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	j.entries = append(j.entries, journalEntry{kind: balanceChange, addr: addr, origBalance: bal})
}

func (j *Journal) snapshotNonce(addr types.Address) {
	acct, _ := j.db.GetAccount(addr)
	j.entries = append(j.entries, journalEntry{kind: nonceChange, addr: addr, origNonce: acct.Nonce})
}

func (j *Journal) snapshotCode(addr types.Address) {
	acct, _ := j.db.GetAccount(addr)
	j.entries = append(j.entries, journalEntry{kind: codeChange, addr: addr, origCode: acct.CodeHash})
}

func (j *Journal) snapshotAccountCreated(addr types.Address) {
	j.entries = append(j.entries, journalEntry{kind: accountCreated, addr: addr})
}

func (j *Journal) appendLog(log types.Log) {
	log.Index = uint(len(j.logs))
	j.logs = append(j.logs, log)
	j.entries = append(j.entries, journalEntry{kind: logAppended, logIndex: len(j.logs) - 1})
}

// Logs returns all logs emitted so far this transaction, in emission order.
func (j *Journal) Logs() []types.Log { return j.logs }

// SetStorage journals then applies a storage write.
func (j *Journal) SetStorage(addr types.Address, key, value *uint256.Int) error {
	j.snapshotStorage(addr, key)
	return j.db.SetStorage(addr, key, value)
}

// SetTransientStorage journals then applies a transient-storage write.
func (j *Journal) SetTransientStorage(addr types.Address, key, value *uint256.Int) error {
	j.snapshotTransientStorage(addr, key)
	return j.db.SetTransientStorage(addr, key, value)
}

// AddBalance journals then credits amount to addr's balance.
func (j *Journal) AddBalance(addr types.Address, amount *uint256.Int) error {
	j.snapshotBalance(addr)
	acct, ok := j.db.GetAccount(addr)
	if !ok {
		acct = newEmptyAccount()
	}
	if acct.Balance == nil {
		acct.Balance = uint256.NewInt(0)
	}
	acct.Balance = new(uint256.Int).Add(acct.Balance, amount)
	return j.db.SetAccount(addr, acct)
}

// SubBalance journals then debits amount from addr's balance. Callers must
// have already checked sufficiency (spec.md §4.3 value-transfer precondition).
func (j *Journal) SubBalance(addr types.Address, amount *uint256.Int) error {
	j.snapshotBalance(addr)
	acct, ok := j.db.GetAccount(addr)
	if !ok {
		acct = newEmptyAccount()
	}
	if acct.Balance == nil {
		acct.Balance = uint256.NewInt(0)
	}
	acct.Balance = new(uint256.Int).Sub(acct.Balance, amount)
	return j.db.SetAccount(addr, acct)
}

// GetBalance returns addr's current balance (zero for a non-existent account).
func (j *Journal) GetBalance(addr types.Address) uint256.Int {
	acct, ok := j.db.GetAccount(addr)
	if !ok || acct.Balance == nil {
		return *uint256.NewInt(0)
	}
	return *acct.Balance
}

// IncrementNonce journals then increments addr's nonce. Returns
// ErrNonceUintOverflow if the nonce is already at 2^64-1 (spec.md §4.3
// CREATE precondition).
func (j *Journal) IncrementNonce(addr types.Address) error {
	acct, ok := j.db.GetAccount(addr)
	if !ok {
		acct = newEmptyAccount()
	}
	if acct.Nonce == ^uint64(0) {
		return ErrNonceUintOverflow
	}
	j.snapshotNonce(addr)
	acct.Nonce++
	return j.db.SetAccount(addr, acct)
}

// GetNonce returns addr's current nonce.
func (j *Journal) GetNonce(addr types.Address) uint64 {
	acct, _ := j.db.GetAccount(addr)
	return acct.Nonce
}

// SetCode journals then installs code as addr's code.
func (j *Journal) SetCode(addr types.Address, code []byte) error {
	j.snapshotCode(addr)
	hash, err := j.db.SetCode(code)
	if err != nil {
		return err
	}
	acct, ok := j.db.GetAccount(addr)
	if !ok {
		acct = newEmptyAccount()
	}
	acct.CodeHash = hash
	return j.db.SetAccount(addr, acct)
}

// CreateAccount journals the creation of a fresh, empty account at addr if
// one does not already exist.
func (j *Journal) CreateAccount(addr types.Address) error {
	if _, ok := j.db.GetAccount(addr); ok {
		return nil
	}
	j.snapshotAccountCreated(addr)
	return j.db.SetAccount(addr, newEmptyAccount())
}

// AppendLog journals a log emission (subject to revert like any other
// journal entry); Logs() exposes the accumulated set.
func (j *Journal) AppendLog(log types.Log) {
	j.appendLog(log)
}

// GetOriginalStorage returns the value of (addr, key) as of the start of
// the current transaction. The earliest matching journal entry's origStorage
// is the value recorded before any write this transaction made, so the scan
// runs head-to-tail and keeps the first hit (spec.md §4.4). If no entry
// exists, the current Database value is already original.
func (j *Journal) GetOriginalStorage(addr types.Address, key *uint256.Int) uint256.Int {
	for i := 0; i < len(j.entries); i++ {
		e := &j.entries[i]
		if e.kind == storageChange && e.addr == addr && e.key == *key {
			return e.origStorage
		}
	}
	return j.db.GetStorage(addr, key)
}

// GetOriginalBalance returns addr's balance as of the start of the
// transaction, by the same head-to-tail first-hit rule as GetOriginalStorage.
func (j *Journal) GetOriginalBalance(addr types.Address) uint256.Int {
	for i := 0; i < len(j.entries); i++ {
		e := &j.entries[i]
		if e.kind == balanceChange && e.addr == addr {
			return *e.origBalance
		}
	}
	acct, _ := j.db.GetAccount(addr)
	if acct.Balance == nil {
		return *uint256.NewInt(0)
	}
	return *acct.Balance
}
