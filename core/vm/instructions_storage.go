package vm

// Storage and transient-storage opcode handlers (spec.md §4.2, §4.4).
// SSTORE/TSTORE carry an explicit static-context check here in addition to
// the StaticHost rejection at the Host boundary, so a static violation is
// classified before any journal entry is recorded.

func opSload(f *Frame, item *scheduleItem) error {
	loc := f.stack.peek()
	val := f.host.GetStorage(f.address, loc)
	*loc = val
	return nil
}

func opSstore(f *Frame, item *scheduleItem) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	key, _ := f.stack.pop()
	newVal, _ := f.stack.pop()

	current := f.host.GetStorage(f.address, &key)
	original := f.host.GetOriginalStorage(f.address, &key)

	if err := f.host.SetStorage(f.address, &key, &newVal); err != nil {
		return err
	}

	rules := f.host.Rules()
	if rules.IsIstanbul {
		delta := sstoreRefundDelta(original, current, newVal, rules.IsLondon)
		if delta != 0 {
			f.host.AddRefund(delta)
		}
	} else if current.IsZero() != newVal.IsZero() && !current.IsZero() {
		f.host.AddRefund(int64(LegacySstoreClearRefund))
	}
	return nil
}

func opTload(f *Frame, item *scheduleItem) error {
	loc := f.stack.peek()
	val := f.host.GetTransientStorage(f.address, loc)
	*loc = val
	return nil
}

func opTstore(f *Frame, item *scheduleItem) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	key, _ := f.stack.pop()
	val, _ := f.stack.pop()
	return f.host.SetTransientStorage(f.address, &key, &val)
}
