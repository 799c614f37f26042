package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// LOG0-LOG4, CREATE/CREATE2, the CALL family, RETURN/REVERT/INVALID, and
// SELFDESTRUCT (spec.md §4.2-§4.3, §4.6). Dynamic gas (memory expansion,
// EIP-2929 cold-access, LOG topic cost) is already charged by the
// jump-table's dynamicGas func before these run; the CALL-family handlers
// additionally own the EIP-150 63/64 gas-forwarding split, since only the
// handler has both the frame's post-base-cost remaining gas and the
// requested amount off the stack.

func opStop(f *Frame, item *scheduleItem) error { return errStopExecution }

func opInvalid(f *Frame, item *scheduleItem) error { return ErrInvalidOpcode }

func opReturn(f *Frame, item *scheduleItem) error {
	offsetWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	offset, size := offsetWord.Uint64(), sizeWord.Uint64()
	if size > 0 {
		f.memory.resize(toWordSize(offset+size) * 32)
		f.output = f.memory.get(offset, size)
	}
	return errReturnExecution
}

func opRevert(f *Frame, item *scheduleItem) error {
	offsetWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	offset, size := offsetWord.Uint64(), sizeWord.Uint64()
	if size > 0 {
		f.memory.resize(toWordSize(offset+size) * 32)
		f.output = f.memory.get(offset, size)
	}
	return errRevertExecution
}

func opSelfdestruct(f *Frame, item *scheduleItem) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	recipientWord, _ := f.stack.pop()
	recipient := addressFromWord(&recipientWord)

	balance := f.host.GetBalance(f.address)
	if !balance.IsZero() {
		if err := f.host.SubBalance(f.address, &balance); err != nil {
			return err
		}
		if err := f.host.AddBalance(recipient, &balance); err != nil {
			return err
		}
	}
	f.host.MarkSelfDestruct(f.address, recipient)
	return errStopExecution
}

// opLog returns the execute func for LOGn: pop offset/size, then n topics
// (topic0 sits directly below size, so the i-th topic popped is Topics[i]),
// emit.
func opLog(n int) executionFunc {
	return func(f *Frame, item *scheduleItem) error {
		if f.isStatic {
			return ErrWriteProtection
		}
		offsetWord, _ := f.stack.pop()
		sizeWord, _ := f.stack.pop()
		offset, size := offsetWord.Uint64(), sizeWord.Uint64()

		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			w, _ := f.stack.pop()
			topics[i] = wordToHash(&w)
		}

		var data []byte
		if size > 0 {
			f.memory.resize(toWordSize(offset+size) * 32)
			data = f.memory.get(offset, size)
		}

		f.host.EmitLog(types.Log{Address: f.address, Topics: topics, Data: data})
		return nil
	}
}

func opCreate(f *Frame, item *scheduleItem) error {
	return doCreate(f, false)
}

func opCreate2(f *Frame, item *scheduleItem) error {
	return doCreate(f, true)
}

func doCreate(f *Frame, isCreate2 bool) error {
	if f.isStatic {
		return ErrWriteProtection
	}
	value, _ := f.stack.pop()
	offsetWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	var salt uint256.Int
	if isCreate2 {
		salt, _ = f.stack.pop()
	}

	offset, size := offsetWord.Uint64(), sizeWord.Uint64()
	var code []byte
	if size > 0 {
		f.memory.resize(toWordSize(offset+size) * 32)
		code = f.memory.get(offset, size)
	}

	available := f.gas - f.gas/Call63Over64th
	f.gas -= available

	addr, ret, remaining, success := f.host.Create(f.address, code, &value, available, &salt, isCreate2)
	f.refundGas(remaining)
	f.returnData = ret

	var result uint256.Int
	if success {
		result = addressToWord(addr)
	}
	return f.stack.push(&result)
}

func opCall(f *Frame, item *scheduleItem) error {
	return doCall(f, CallKindCall)
}

func opCallCode(f *Frame, item *scheduleItem) error {
	return doCall(f, CallKindCallCode)
}

func opDelegateCall(f *Frame, item *scheduleItem) error {
	return doCall(f, CallKindDelegateCall)
}

func opStaticCall(f *Frame, item *scheduleItem) error {
	return doCall(f, CallKindStaticCall)
}

// doCall implements the shared body of CALL/CALLCODE/DELEGATECALL/
// STATICCALL: pop the kind-appropriate stack operands, copy the call's
// input out of memory, compute the EIP-150 gas-forwarding split, dispatch
// through the Host, then copy returned data back into memory and push the
// success flag (spec.md §4.3).
func doCall(f *Frame, kind CallKind) error {
	hasValue := kind == CallKindCall || kind == CallKindCallCode

	requestedGas, _ := f.stack.pop()
	addrWord, _ := f.stack.pop()
	addr := addressFromWord(&addrWord)

	var value uint256.Int
	if hasValue {
		value, _ = f.stack.pop()
	}
	if kind == CallKindCall && f.isStatic && !value.IsZero() {
		return ErrWriteProtection
	}

	argsOffsetWord, _ := f.stack.pop()
	argsSizeWord, _ := f.stack.pop()
	retOffsetWord, _ := f.stack.pop()
	retSizeWord, _ := f.stack.pop()

	argsOffset, argsSize := argsOffsetWord.Uint64(), argsSizeWord.Uint64()
	retOffset, retSize := retOffsetWord.Uint64(), retSizeWord.Uint64()

	var input []byte
	if argsSize > 0 {
		f.memory.resize(toWordSize(argsOffset+argsSize) * 32)
		input = f.memory.get(argsOffset, argsSize)
	}
	if retSize > 0 {
		f.memory.resize(toWordSize(retOffset+retSize) * 32)
	}

	available := f.gas - f.gas/Call63Over64th
	gasToForward := available
	if requestedGas.IsUint64() && requestedGas.Uint64() < available {
		gasToForward = requestedGas.Uint64()
	}
	f.gas -= gasToForward

	caller := f.address
	if kind == CallKindDelegateCall {
		caller = f.caller
	}
	callValue := &value
	if kind == CallKindDelegateCall {
		callValue = &f.value
	}

	ret, remaining, success := f.host.Call(kind, f.address, caller, addr, callValue, input, gasToForward, f.isStatic)
	f.refundGas(remaining)
	f.returnData = ret

	if retSize > 0 {
		n := uint64(len(ret))
		if n > retSize {
			n = retSize
		}
		f.memory.set(retOffset, n, ret[:n])
	}

	var result uint256.Int
	if success {
		result.SetOne()
	}
	return f.stack.push(&result)
}
