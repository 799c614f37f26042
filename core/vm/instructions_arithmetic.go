package vm

// Arithmetic opcode handlers (spec.md §4.2). Each follows the same shape:
// pop what's no longer needed, combine the result into the element that
// stays on the stack, avoiding an extra push/pop round trip.

func opAdd(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Add(a, &b)
	return nil
}

func opMul(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Mul(a, &b)
	return nil
}

// opSub computes top - next (DESIGN.md resolution #1): x is the popped
// top, y is the element left on the stack (the original second-from-top).
func opSub(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y := f.stack.peek()
	y.Sub(&x, y)
	return nil
}

func opDiv(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Div(&b, a)
	return nil
}

func opSdiv(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.SDiv(&b, a)
	return nil
}

func opMod(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.Mod(&b, a)
	return nil
}

func opSmod(f *Frame, item *scheduleItem) error {
	b, _ := f.stack.pop()
	a := f.stack.peek()
	a.SMod(&b, a)
	return nil
}

func opAddmod(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y, _ := f.stack.pop()
	z := f.stack.peek()
	z.AddMod(&x, &y, z)
	return nil
}

func opMulmod(f *Frame, item *scheduleItem) error {
	x, _ := f.stack.pop()
	y, _ := f.stack.pop()
	z := f.stack.peek()
	z.MulMod(&x, &y, z)
	return nil
}

func opExp(f *Frame, item *scheduleItem) error {
	base, _ := f.stack.pop()
	exponent := f.stack.peek()
	exponent.Exp(&base, exponent)
	return nil
}

func opSignExtend(f *Frame, item *scheduleItem) error {
	back, _ := f.stack.pop()
	num := f.stack.peek()
	num.ExtendSign(num, &back)
	return nil
}
