package vm

// Comparison, bitwise, and shift opcode handlers (spec.md §4.2).

func opLt(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opGt(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSlt(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSgt(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opEq(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opIszero(f *Frame, item *scheduleItem) error {
	x := f.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil
}

func opAnd(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.And(a, &b)
	return nil
}

func opOr(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Or(a, &b)
	return nil
}

func opXor(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Xor(a, &b)
	return nil
}

func opNot(f *Frame, item *scheduleItem) error {
	a := f.stack.peek()
	a.Not(a)
	return nil
}

func opByte(f *Frame, item *scheduleItem) error {
	th, _ := f.stack.pop()
	val := f.stack.peek()
	val.Byte(&th)
	return nil
}

func opShl(f *Frame, item *scheduleItem) error {
	shift, _ := f.stack.pop()
	value := f.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opShr(f *Frame, item *scheduleItem) error {
	shift, _ := f.stack.pop()
	value := f.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opSar(f *Frame, item *scheduleItem) error {
	shift, _ := f.stack.pop()
	value := f.stack.peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil
}
