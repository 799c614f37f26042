package vm

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Memory and hashing opcode handlers (spec.md §4.2). Dynamic gas for
// expansion is always charged beforehand by the jump-table's dynamicGas
// func (gas_table.go); these handlers only need to resize and touch
// memory, never price it.

func opMload(f *Frame, item *scheduleItem) error {
	offsetWord := f.stack.peek()
	offset := offsetWord.Uint64()
	f.memory.resize(toWordSize(offset+32) * 32)
	b := f.memory.getPtr(offset, 32)
	offsetWord.SetBytes(b)
	return nil
}

func opMstore(f *Frame, item *scheduleItem) error {
	offsetWord, _ := f.stack.pop()
	val, _ := f.stack.pop()
	offset := offsetWord.Uint64()
	f.memory.resize(toWordSize(offset+32) * 32)
	f.memory.set32(offset, &val)
	return nil
}

func opMstore8(f *Frame, item *scheduleItem) error {
	offsetWord, _ := f.stack.pop()
	val, _ := f.stack.pop()
	offset := offsetWord.Uint64()
	f.memory.resize(toWordSize(offset+1) * 32)
	var buf [32]byte
	val.WriteToSlice(buf[:])
	f.memory.set(offset, 1, buf[31:32])
	return nil
}

func opMsize(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.memory.len())
	return f.stack.push(&v)
}

func opMcopy(f *Frame, item *scheduleItem) error {
	dstWord, _ := f.stack.pop()
	srcWord, _ := f.stack.pop()
	sizeWord, _ := f.stack.pop()
	size := sizeWord.Uint64()
	if size == 0 {
		return nil
	}
	dst, src := dstWord.Uint64(), srcWord.Uint64()
	end := dst + size
	if e := src + size; e > end {
		end = e
	}
	f.memory.resize(toWordSize(end) * 32)
	copy(f.memory.getPtr(dst, size), f.memory.getPtr(src, size))
	return nil
}

func opKeccak256(f *Frame, item *scheduleItem) error {
	offsetWord, _ := f.stack.pop()
	sizeWord := f.stack.peek()
	offset, size := offsetWord.Uint64(), sizeWord.Uint64()
	f.memory.resize(toWordSize(offset+size) * 32)
	data := f.memory.getPtr(offset, size)
	hash := crypto.Keccak256(data)
	sizeWord.SetBytes(hash)
	return nil
}
