package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestOpLt(t *testing.T) {
	// Stack bottom-to-top: [10, 3] -- top (3) < second (10) -> true.
	f := newOpFrame(10, 3)
	if err := opLt(f, nil); err != nil {
		t.Fatalf("opLt: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("3 < 10 = %s, want 1", got.Hex())
	}
}

func TestOpGtFalse(t *testing.T) {
	f := newOpFrame(10, 3)
	if err := opGt(f, nil); err != nil {
		t.Fatalf("opGt: %v", err)
	}
	if got := f.stack.peek(); !got.IsZero() {
		t.Errorf("3 > 10 = %s, want 0", got.Hex())
	}
}

func TestOpIszero(t *testing.T) {
	f := newOpFrame(0)
	if err := opIszero(f, nil); err != nil {
		t.Fatalf("opIszero: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("ISZERO(0) = %s, want 1", got.Hex())
	}
}

func TestOpByte(t *testing.T) {
	// BYTE(31, 0x...ff) extracts the last (least-significant) byte.
	f := &Frame{stack: newStack(), memory: newMemory()}
	val := new(uint256.Int).SetUint64(0xabcd)
	f.stack.push(val)
	f.stack.push(uint256.NewInt(31))
	if err := opByte(f, nil); err != nil {
		t.Fatalf("opByte: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(0xcd)) {
		t.Errorf("BYTE(31, 0xabcd) = %s, want 0xcd", got.Hex())
	}
}

func TestOpShl(t *testing.T) {
	// Stack bottom-to-top: [1, 4] -- shift (4, top) of value (1, second).
	f := newOpFrame(1, 4)
	if err := opShl(f, nil); err != nil {
		t.Fatalf("opShl: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(16)) {
		t.Errorf("1 << 4 = %s, want 16", got.Hex())
	}
}

func TestOpShlSaturatesAtZero(t *testing.T) {
	f := newOpFrame(1, 256)
	if err := opShl(f, nil); err != nil {
		t.Fatalf("opShl: %v", err)
	}
	if got := f.stack.peek(); !got.IsZero() {
		t.Errorf("1 << 256 = %s, want 0", got.Hex())
	}
}

func TestOpAnd(t *testing.T) {
	f := newOpFrame(0b1100, 0b1010)
	if err := opAnd(f, nil); err != nil {
		t.Fatalf("opAnd: %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(0b1000)) {
		t.Errorf("0b1100 & 0b1010 = %s, want 0b1000", got.Hex())
	}
}
