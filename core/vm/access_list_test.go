package vm

import (
	"testing"

	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func TestAccessListAddressColdThenWarm(t *testing.T) {
	al := NewAccessList()
	a := addr(1)

	if al.IsWarmAddress(a) {
		t.Fatal("fresh address should be cold")
	}
	if cost := al.AccessAddress(a); cost != ColdAccountAccessCost {
		t.Errorf("first access cost = %d, want %d", cost, ColdAccountAccessCost)
	}
	if !al.IsWarmAddress(a) {
		t.Fatal("address should be warm after first access")
	}
	if cost := al.AccessAddress(a); cost != WarmStorageReadCost {
		t.Errorf("second access cost = %d, want %d", cost, WarmStorageReadCost)
	}
}

func TestAccessListSlotColdThenWarm(t *testing.T) {
	al := NewAccessList()
	a := addr(1)
	slot := uint256.NewInt(7)

	if al.IsWarmSlot(a, slot) {
		t.Fatal("fresh slot should be cold")
	}
	if cost := al.AccessSlot(a, slot); cost != ColdSloadCost {
		t.Errorf("first access cost = %d, want %d", cost, ColdSloadCost)
	}
	if cost := al.AccessSlot(a, slot); cost != WarmStorageReadCost {
		t.Errorf("second access cost = %d, want %d", cost, WarmStorageReadCost)
	}
}

func TestAccessListSlotsIndependentPerAddress(t *testing.T) {
	al := NewAccessList()
	slot := uint256.NewInt(1)

	al.AccessSlot(addr(1), slot)
	if al.IsWarmSlot(addr(2), slot) {
		t.Error("same slot number under a different address should still be cold")
	}
}

func TestAccessListPreWarm(t *testing.T) {
	al := NewAccessList()
	a := addr(1)
	slot := uint256.NewInt(1)

	al.PreWarmAddress(a)
	al.PreWarmSlot(a, slot)

	if !al.IsWarmAddress(a) {
		t.Error("PreWarmAddress should mark address warm")
	}
	if !al.IsWarmSlot(a, slot) {
		t.Error("PreWarmSlot should mark slot warm")
	}
	// Pre-warming must not itself charge gas; confirmed by AccessAddress/
	// AccessSlot now reporting the already-warm cost.
	if cost := al.AccessAddress(a); cost != WarmStorageReadCost {
		t.Errorf("access after pre-warm = %d, want %d", cost, WarmStorageReadCost)
	}
}
