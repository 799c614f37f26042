package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func newControlFrame(code []byte) *Frame {
	a, err := analyze(code, len(code), false)
	if err != nil {
		panic(err)
	}
	return &Frame{stack: newStack(), memory: newMemory(), analysis: a}
}

func TestOpJumpToValidDest(t *testing.T) {
	// PUSH1 0x02 JUMPDEST STOP -- pc 2 is a real JUMPDEST.
	code := []byte{byte(PUSH1), 0x02, byte(JUMPDEST), byte(STOP)}
	f := newControlFrame(code)
	f.stack.push(uint256.NewInt(2))

	if err := opJump(f, nil); err != nil {
		t.Fatalf("opJump: %v", err)
	}
	idx, _ := f.analysis.scheduleIndexForPC(2)
	if f.nextCursor != idx {
		t.Errorf("nextCursor = %d, want schedule index of pc 2 (%d)", f.nextCursor, idx)
	}
}

func TestOpJumpToInvalidDest(t *testing.T) {
	code := []byte{byte(PUSH1), 0x02, byte(JUMPDEST), byte(STOP)}
	f := newControlFrame(code)
	f.stack.push(uint256.NewInt(1)) // pc 1 is inside the PUSH1 immediate

	if err := opJump(f, nil); err != ErrInvalidJump {
		t.Errorf("opJump to pc 1 = %v, want ErrInvalidJump", err)
	}
}

func TestOpJumpiConditionFalseDoesNotJump(t *testing.T) {
	code := []byte{byte(PUSH1), 0x02, byte(JUMPDEST), byte(STOP)}
	f := newControlFrame(code)
	f.cursor = 0
	f.stack.push(uint256.NewInt(0)) // cond (pushed first, popped second)
	f.stack.push(uint256.NewInt(2)) // dest (pushed second, popped first)

	if err := opJumpi(f, nil); err != nil {
		t.Fatalf("opJumpi: %v", err)
	}
	if f.nextCursor != 0 {
		t.Errorf("nextCursor = %d, want unchanged (0): JUMPI with zero condition must not jump", f.nextCursor)
	}
}

func TestOpJumpiConditionTrueJumps(t *testing.T) {
	code := []byte{byte(PUSH1), 0x02, byte(JUMPDEST), byte(STOP)}
	f := newControlFrame(code)
	f.stack.push(uint256.NewInt(1)) // cond
	f.stack.push(uint256.NewInt(2)) // dest

	if err := opJumpi(f, nil); err != nil {
		t.Fatalf("opJumpi: %v", err)
	}
	idx, _ := f.analysis.scheduleIndexForPC(2)
	if f.nextCursor != idx {
		t.Errorf("nextCursor = %d, want schedule index of pc 2 (%d)", f.nextCursor, idx)
	}
}

func TestOpDupSwap(t *testing.T) {
	f := newOpFrame(1, 2, 3)
	if err := opDup(2)(f, nil); err != nil {
		t.Fatalf("opDup(2): %v", err)
	}
	if got := f.stack.peek(); !got.Eq(uint256.NewInt(2)) {
		t.Errorf("DUP2 result = %s, want 2", got.Hex())
	}

	f2 := newOpFrame(1, 2, 3)
	if err := opSwap(2)(f2, nil); err != nil {
		t.Fatalf("opSwap(2): %v", err)
	}
	if got := f2.stack.back(0); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("SWAP2 top = %s, want 1", got.Hex())
	}
}
