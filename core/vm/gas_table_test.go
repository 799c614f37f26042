package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func sstoreClearsRefund(isLondon bool) int64 {
	if isLondon {
		return int64(SstoreClearsRefund)
	}
	return int64(LegacySstoreClearRefund)
}

// TestSstoreRefundDelta exercises the EIP-2200/EIP-3529 refund table keyed
// on (original, current, new), per spec.md §4.2.
func TestSstoreRefundDelta(t *testing.T) {
	zero, one, two := *uint256.NewInt(0), *uint256.NewInt(1), *uint256.NewInt(2)

	tests := []struct {
		name                  string
		original, current, n uint256.Int
		isLondon              bool
		want                  int64
	}{
		{"no-op: current == new", zero, one, one, true, 0},
		{"fresh dirty: 0 -> 0 -> nonzero", zero, zero, one, true, 0},
		{"fresh dirty reset to original zero: 0 -> nonzero -> 0", zero, one, zero, true,
			int64(SstoreSetGas - WarmStorageReadCost)},
		{"clear: original nonzero, current nonzero, new zero", one, one, zero, true,
			sstoreClearsRefund(true)},
		{"clear, legacy quotient", one, one, zero, false, sstoreClearsRefund(false)},
		{"undo clear: original nonzero, current zero, new nonzero", one, zero, two, true,
			-sstoreClearsRefund(true)},
		{"dirty slot reset to original nonzero", one, two, one, true,
			int64(SstoreResetGas - WarmStorageReadCost)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sstoreRefundDelta(tt.original, tt.current, tt.n, tt.isLondon)
			if got != tt.want {
				t.Errorf("sstoreRefundDelta(%s, %s, %s, london=%v) = %d, want %d",
					tt.original.Hex(), tt.current.Hex(), tt.n.Hex(), tt.isLondon, got, tt.want)
			}
		})
	}
}

// TestMemorySizeFuncForCoversReturnAndRevert is a regression test: RETURN
// and REVERT must price their output range's memory expansion like any
// other memory-touching opcode, not silently charge zero (the unfixed
// dispatcher's default case).
func TestMemorySizeFuncForCoversReturnAndRevert(t *testing.T) {
	for _, op := range []OpCode{RETURN, REVERT} {
		st := newStack()
		st.push(uint256.NewInt(64)) // size
		st.push(uint256.NewInt(0))  // offset
		size, ok := memorySizeFuncFor(op)(st)
		if !ok {
			t.Fatalf("memorySizeFuncFor(%s) returned ok=false", op)
		}
		if size != 64 {
			t.Errorf("memorySizeFuncFor(%s) size = %d, want 64", op, size)
		}
	}
}

func TestMemorySizeFuncForMload(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(10)) // offset
	size, ok := memorySizeMload(st)
	if !ok {
		t.Fatal("memorySizeMload returned ok=false")
	}
	if size != 42 { // offset 10 + 32-byte word
		t.Errorf("memorySizeMload size = %d, want 42", size)
	}
}
