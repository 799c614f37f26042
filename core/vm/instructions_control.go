package vm

import "github.com/holiman/uint256"

// Flow-control, stack-shuffling, and introspection opcode handlers
// (spec.md §4.2). JUMP/JUMPI validate against the fork-independent
// Analyzed.jumpdests bitmap, then resolve the target PC to a schedule
// index and overwrite f.nextCursor -- the interpreter's normal cursor+1
// advance never runs for a taken jump.

func opPop(f *Frame, item *scheduleItem) error {
	_, err := f.stack.pop()
	return err
}

func opPush(f *Frame, item *scheduleItem) error {
	return f.stack.push(item.value)
}

func opPush0(f *Frame, item *scheduleItem) error {
	var zero uint256.Int
	return f.stack.push(&zero)
}

func opDup(n int) executionFunc {
	return func(f *Frame, item *scheduleItem) error {
		return f.stack.dup(n)
	}
}

func opSwap(n int) executionFunc {
	return func(f *Frame, item *scheduleItem) error {
		return f.stack.swap(n)
	}
}

func opJump(f *Frame, item *scheduleItem) error {
	dest, _ := f.stack.pop()
	return jumpTo(f, &dest)
}

func opJumpi(f *Frame, item *scheduleItem) error {
	dest, _ := f.stack.pop()
	cond, _ := f.stack.pop()
	if cond.IsZero() {
		return nil
	}
	return jumpTo(f, &dest)
}

func jumpTo(f *Frame, dest *uint256.Int) error {
	if !dest.IsUint64() {
		return ErrInvalidJump
	}
	pc := dest.Uint64()
	if !f.analysis.validJumpdest(pc) {
		return ErrInvalidJump
	}
	idx, ok := f.analysis.scheduleIndexForPC(pc)
	if !ok {
		return ErrInvalidJump
	}
	f.nextCursor = idx
	return nil
}

func opPc(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.pc)
	return f.stack.push(&v)
}

func opGas(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.gas)
	return f.stack.push(&v)
}

func opJumpdest(f *Frame, item *scheduleItem) error { return nil }
