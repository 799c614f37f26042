package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStackPushPop(t *testing.T) {
	st := newStack()
	v := uint256.NewInt(42)
	if err := st.push(v); err != nil {
		t.Fatalf("push: %v", err)
	}
	if st.len() != 1 {
		t.Fatalf("len() = %d, want 1", st.len())
	}
	got, err := st.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if !got.Eq(v) {
		t.Errorf("pop() = %s, want %s", got.Hex(), v.Hex())
	}
	if st.len() != 0 {
		t.Errorf("len() after pop = %d, want 0", st.len())
	}
}

func TestStackPopEmpty(t *testing.T) {
	st := newStack()
	if _, err := st.pop(); err != ErrStackUnderflow {
		t.Errorf("pop() on empty = %v, want ErrStackUnderflow", err)
	}
}

func TestStackPushOverflow(t *testing.T) {
	st := newStack()
	for i := 0; i < stackLimit; i++ {
		if err := st.push(uint256.NewInt(uint64(i))); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := st.push(uint256.NewInt(0)); err != ErrStackOverflow {
		t.Errorf("push past limit = %v, want ErrStackOverflow", err)
	}
}

func TestStackPeekBack(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.push(uint256.NewInt(3))

	if got := st.peek(); !got.Eq(uint256.NewInt(3)) {
		t.Errorf("peek() = %s, want 3", got.Hex())
	}
	if got := st.back(0); !got.Eq(uint256.NewInt(3)) {
		t.Errorf("back(0) = %s, want 3", got.Hex())
	}
	if got := st.back(2); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("back(2) = %s, want 1", got.Hex())
	}
}

func TestStackRequire(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	if err := st.require(1); err != nil {
		t.Errorf("require(1) = %v, want nil", err)
	}
	if err := st.require(2); err != ErrStackUnderflow {
		t.Errorf("require(2) = %v, want ErrStackUnderflow", err)
	}
}

func TestStackSwap(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.push(uint256.NewInt(3))

	if err := st.swap(2); err != nil {
		t.Fatalf("swap(2): %v", err)
	}
	// top (3) swapped with 2nd-below-top (1): stack is now [3, 2, 1] bottom to top.
	if got := st.back(0); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("back(0) after swap(2) = %s, want 1", got.Hex())
	}
	if got := st.back(2); !got.Eq(uint256.NewInt(3)) {
		t.Errorf("back(2) after swap(2) = %s, want 3", got.Hex())
	}
}

func TestStackSwapUnderflow(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	if err := st.swap(1); err != ErrStackUnderflow {
		t.Errorf("swap(1) on single-element stack = %v, want ErrStackUnderflow", err)
	}
}

func TestStackDup(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(10))
	st.push(uint256.NewInt(20))

	if err := st.dup(2); err != nil {
		t.Fatalf("dup(2): %v", err)
	}
	if st.len() != 3 {
		t.Fatalf("len() after dup = %d, want 3", st.len())
	}
	if got := st.peek(); !got.Eq(uint256.NewInt(10)) {
		t.Errorf("peek() after dup(2) = %s, want 10", got.Hex())
	}
}

func TestStackDupUnderflow(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	if err := st.dup(2); err != ErrStackUnderflow {
		t.Errorf("dup(2) on single-element stack = %v, want ErrStackUnderflow", err)
	}
}

func TestStackDupOverflow(t *testing.T) {
	st := newStack()
	for i := 0; i < stackLimit; i++ {
		st.push(uint256.NewInt(uint64(i)))
	}
	if err := st.dup(1); err != ErrStackOverflow {
		t.Errorf("dup(1) at stack limit = %v, want ErrStackOverflow", err)
	}
}

func TestStackReset(t *testing.T) {
	st := newStack()
	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.reset()
	if st.len() != 0 {
		t.Errorf("len() after reset = %d, want 0", st.len())
	}
}
