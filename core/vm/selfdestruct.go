package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// SelfDestructTracker records deferred SELFDESTRUCT marks for a single
// transaction: contract_addr -> recipient_addr (spec.md §3, §4.6). Marking
// is idempotent -- a contract that self-destructs more than once keeps only
// the first recorded recipient, matching the real protocol's "last SSTORE
// before STOP wins, but SELFDESTRUCT's recipient is fixed at first mark"
// behavior used by every mainstream client.
type SelfDestructTracker struct {
	marks map[types.Address]types.Address
	order []types.Address // mark order, so Entries and resolution are deterministic
}

// NewSelfDestructTracker returns an empty tracker.
func NewSelfDestructTracker() *SelfDestructTracker {
	return &SelfDestructTracker{marks: make(map[types.Address]types.Address)}
}

// Mark records that contract should be destroyed at end-of-transaction,
// with its balance sent to recipient. Idempotent.
func (t *SelfDestructTracker) Mark(contract, recipient types.Address) {
	if _, ok := t.marks[contract]; ok {
		return
	}
	t.marks[contract] = recipient
	t.order = append(t.order, contract)
}

// IsMarked reports whether contract has been marked for destruction.
func (t *SelfDestructTracker) IsMarked(contract types.Address) bool {
	_, ok := t.marks[contract]
	return ok
}

// Discard removes a mark, used when a sub-call that performed the
// SELFDESTRUCT is reverted (spec.md §4.3: "discard any self-destruct
// entries recorded deeper than snapshot_id"). The caller is responsible for
// knowing which marks were recorded within the reverted window; see
// Journal's selfDestructMarked entries for how that window is tracked.
func (t *SelfDestructTracker) Discard(contract types.Address) {
	if _, ok := t.marks[contract]; !ok {
		return
	}
	delete(t.marks, contract)
	for i, a := range t.order {
		if a == contract {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Entries returns the marked (contract, recipient) pairs in mark order.
func (t *SelfDestructTracker) Entries() []SelfDestructEntry {
	out := make([]SelfDestructEntry, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, SelfDestructEntry{Contract: c, Recipient: t.marks[c]})
	}
	return out
}

// SelfDestructEntry is one resolved SELFDESTRUCT mark.
type SelfDestructEntry struct {
	Contract  types.Address
	Recipient types.Address
}

// CreatedInTx is the per-transaction set of addresses created during this
// transaction (by CREATE or CREATE2), used to decide EIP-6780 eligibility.
type CreatedInTx struct {
	set map[types.Address]struct{}
}

// NewCreatedInTx returns an empty created-in-tx set.
func NewCreatedInTx() *CreatedInTx {
	return &CreatedInTx{set: make(map[types.Address]struct{})}
}

// Mark records that addr was created during this transaction.
func (c *CreatedInTx) Mark(addr types.Address) { c.set[addr] = struct{}{} }

// Contains reports whether addr was created during this transaction.
func (c *CreatedInTx) Contains(addr types.Address) bool {
	_, ok := c.set[addr]
	return ok
}

// ResolveSelfDestructs is the end-of-transaction operation described in
// spec.md §4.6: for each marked entry, transfer the contract's balance to
// the recipient (always), and additionally clear code/storage/delete the
// account if the chain is pre-Cancun OR the contract was created in this
// same transaction (EIP-6780). It is invoked by the outer driver, not by
// the interpreter itself, since it is a transaction-boundary operation.
func ResolveSelfDestructs(db Database, tracker *SelfDestructTracker, created *CreatedInTx, rules ForkRules) error {
	for _, e := range tracker.Entries() {
		acct, ok := db.GetAccount(e.Contract)
		if !ok {
			continue
		}
		if acct.Balance != nil && !acct.Balance.IsZero() {
			if e.Contract != e.Recipient {
				recv, ok := db.GetAccount(e.Recipient)
				if !ok {
					recv = types.Account{Balance: uint256.NewInt(0)}
				}
				if recv.Balance == nil {
					recv.Balance = uint256.NewInt(0)
				}
				recv.Balance = new(uint256.Int).Add(recv.Balance, acct.Balance)
				if err := db.SetAccount(e.Recipient, recv); err != nil {
					return err
				}
			}
			acct.Balance = uint256.NewInt(0)
		}

		sweepsStorage := !rules.IsCancun || created.Contains(e.Contract)
		if sweepsStorage {
			if err := db.DeleteAccount(e.Contract); err != nil {
				return err
			}
		} else if err := db.SetAccount(e.Contract, acct); err != nil {
			return err
		}
	}
	return nil
}
