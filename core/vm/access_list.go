package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// slotKey identifies a storage slot within an address for warm-set tracking.
type slotKey struct {
	addr types.Address
	slot uint256.Int
}

// AccessList implements EIP-2929 transaction-scoped warm/cold tracking for
// addresses and storage slots. Unlike the journal, it is never reverted
// across sub-call boundaries (spec.md §4.5: "the access list is never
// reverted across sub-call boundaries"), so it needs no snapshot bookkeeping
// at all -- a plain growing set suffices.
type AccessList struct {
	addresses map[types.Address]struct{}
	slots     map[slotKey]struct{}
}

// NewAccessList returns an empty, transaction-scoped access list.
func NewAccessList() *AccessList {
	return &AccessList{
		addresses: make(map[types.Address]struct{}, 16),
		slots:     make(map[slotKey]struct{}, 16),
	}
}

// IsWarmAddress reports whether addr has already been accessed this transaction.
func (al *AccessList) IsWarmAddress(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

// IsWarmSlot reports whether (addr, slot) has already been accessed this transaction.
func (al *AccessList) IsWarmSlot(addr types.Address, slot *uint256.Int) bool {
	_, ok := al.slots[slotKey{addr, *slot}]
	return ok
}

// AccessAddress marks addr as warm and returns the gas cost of this access:
// ColdAccountAccessCost on first touch, WarmStorageReadCost thereafter.
func (al *AccessList) AccessAddress(addr types.Address) uint64 {
	if _, ok := al.addresses[addr]; ok {
		return WarmStorageReadCost
	}
	al.addresses[addr] = struct{}{}
	return ColdAccountAccessCost
}

// AccessSlot marks (addr, slot) as warm and returns the gas cost of this
// access: ColdSloadCost on first touch, WarmStorageReadCost thereafter.
func (al *AccessList) AccessSlot(addr types.Address, slot *uint256.Int) uint64 {
	k := slotKey{addr, *slot}
	if _, ok := al.slots[k]; ok {
		return WarmStorageReadCost
	}
	al.slots[k] = struct{}{}
	return ColdSloadCost
}

// PreWarmAddress seeds addr as warm without charging gas (used for tx
// origin/destination, precompiles, and -- Shanghai+ -- the coinbase).
func (al *AccessList) PreWarmAddress(addr types.Address) {
	al.addresses[addr] = struct{}{}
}

// PreWarmSlot seeds (addr, slot) as warm without charging gas (used to
// pre-populate a transaction's declared EIP-2930 access list).
func (al *AccessList) PreWarmSlot(addr types.Address, slot *uint256.Int) {
	al.slots[slotKey{addr, *slot}] = struct{}{}
}
