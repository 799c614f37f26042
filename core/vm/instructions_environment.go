package vm

import "github.com/holiman/uint256"

// Environment- and account-introspection opcode handlers (spec.md §4.2,
// §4.5). Dynamic gas (EIP-2929 cold access, memory expansion) is already
// charged by the jump table's dynamicGas func; these only read and push,
// or copy bytes into memory.

func opAddress(f *Frame, item *scheduleItem) error {
	v := addressToWord(f.address)
	return f.stack.push(&v)
}

func opBalance(f *Frame, item *scheduleItem) error {
	addrWord := f.stack.peek()
	addr := addressFromWord(addrWord)
	bal := f.host.GetBalance(addr)
	*addrWord = bal
	return nil
}

func opOrigin(f *Frame, item *scheduleItem) error {
	v := addressToWord(f.host.TxContext().Origin)
	return f.stack.push(&v)
}

func opCaller(f *Frame, item *scheduleItem) error {
	v := addressToWord(f.caller)
	return f.stack.push(&v)
}

func opCallValue(f *Frame, item *scheduleItem) error {
	v := f.value
	return f.stack.push(&v)
}

func opCallDataLoad(f *Frame, item *scheduleItem) error {
	offWord := f.stack.peek()
	off := offWord.Uint64()
	var buf [32]byte
	if off < uint64(len(f.input)) {
		copy(buf[:], f.input[off:])
	}
	offWord.SetBytes(buf[:])
	return nil
}

func opCallDataSize(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(uint64(len(f.input)))
	return f.stack.push(&v)
}

func opCallDataCopy(f *Frame, item *scheduleItem) error {
	return copyToMemory(f, f.input)
}

func opCodeSize(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(uint64(len(f.analysis.code)))
	return f.stack.push(&v)
}

func opCodeCopy(f *Frame, item *scheduleItem) error {
	return copyToMemory(f, f.analysis.code)
}

func opGasPrice(f *Frame, item *scheduleItem) error {
	v := f.host.TxContext().GasPrice
	return f.stack.push(&v)
}

func opExtCodeSize(f *Frame, item *scheduleItem) error {
	addrWord := f.stack.peek()
	addr := addressFromWord(addrWord)
	var v uint256.Int
	v.SetUint64(uint64(f.host.GetCodeSize(addr)))
	*addrWord = v
	return nil
}

func opExtCodeCopy(f *Frame, item *scheduleItem) error {
	addrWord, _ := f.stack.pop()
	addr := addressFromWord(&addrWord)
	return copyToMemory(f, f.host.GetCode(addr))
}

func opExtCodeHash(f *Frame, item *scheduleItem) error {
	addrWord := f.stack.peek()
	addr := addressFromWord(addrWord)
	if !f.host.AccountExists(addr) {
		var zero uint256.Int
		*addrWord = zero
		return nil
	}
	hash := f.host.GetCodeHash(addr)
	*addrWord = hashToWord(hash)
	return nil
}

func opReturnDataSize(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(uint64(len(f.returnData)))
	return f.stack.push(&v)
}

func opReturnDataCopy(f *Frame, item *scheduleItem) error {
	destWord, _ := f.stack.pop()
	offWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	if !offWord.IsUint64() || !sizeWord.IsUint64() {
		return ErrOutOfBounds
	}
	dest, off, size := destWord.Uint64(), offWord.Uint64(), sizeWord.Uint64()
	end := off + size
	if end < off || end > uint64(len(f.returnData)) {
		return ErrOutOfBounds
	}
	if size > 0 {
		f.memory.resize(toWordSize(dest+size) * 32)
		f.memory.set(dest, size, f.returnData[off:off+size])
	}
	return nil
}

func opChainId(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.host.BlockContext().ChainID)
	return f.stack.push(&v)
}

func opSelfBalance(f *Frame, item *scheduleItem) error {
	v := f.host.GetBalance(f.address)
	return f.stack.push(&v)
}

func opBaseFee(f *Frame, item *scheduleItem) error {
	v := f.host.BlockContext().BaseFee
	return f.stack.push(&v)
}

func opBlobHash(f *Frame, item *scheduleItem) error {
	idxWord := f.stack.peek()
	hashes := f.host.TxContext().BlobVersionedHashes
	var v uint256.Int
	if idxWord.IsUint64() {
		idx := idxWord.Uint64()
		if idx < uint64(len(hashes)) {
			v = hashToWord(hashes[idx])
		}
	}
	*idxWord = v
	return nil
}

func opBlobBaseFee(f *Frame, item *scheduleItem) error {
	v := f.host.BlockContext().BlobBaseFee
	return f.stack.push(&v)
}

// copyToMemory implements the shared CALLDATACOPY/CODECOPY/EXTCODECOPY
// body: pop (destOffset, offset, size), zero-extending reads that run past
// the end of src (spec.md §4.2: "reads past the end of code/calldata are
// implicitly zero").
func copyToMemory(f *Frame, src []byte) error {
	destWord, _ := f.stack.pop()
	offWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	dest, off, size := destWord.Uint64(), offWord.Uint64(), sizeWord.Uint64()
	if size == 0 {
		return nil
	}
	f.memory.resize(toWordSize(dest+size) * 32)
	buf := make([]byte, size)
	if off < uint64(len(src)) {
		copy(buf, src[off:])
	}
	f.memory.set(dest, size, buf)
	return nil
}
