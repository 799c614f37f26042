package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressable, zero-filled memory: it expands in
// 32-byte words, and a read/write to offset o of size s guarantees
// ceil((o+s)/32) words are present (spec.md §3).
type Memory struct {
	store []byte
}

func newMemory() *Memory {
	return &Memory{}
}

// set copies value into memory at the given offset. The caller must have
// already resized memory to cover [offset, offset+size).
func (m *Memory) set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// set32 writes a 32-byte word at the given offset, big-endian.
func (m *Memory) set32(offset uint64, val *uint256.Int) {
	var b [32]byte
	val.WriteToSlice(b[:])
	copy(m.store[offset:offset+32], b[:])
}

// resize grows memory to the given size in bytes, rounded up by the caller
// to a 32-byte word boundary; it never shrinks.
func (m *Memory) resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
}

// get returns a copy of memory at [offset, offset+size).
func (m *Memory) get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// getPtr returns a direct slice reference into memory at [offset, offset+size).
// Callers must not retain it past the next mutation.
func (m *Memory) getPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// len returns the current length of memory in bytes.
func (m *Memory) len() uint64 { return uint64(len(m.store)) }

// data returns the full backing slice.
func (m *Memory) data() []byte { return m.store }

// toWordSize rounds a byte size up to the number of 32-byte words it spans.
func toWordSize(size uint64) uint64 {
	if size > (1<<64-1)-31 {
		return (1<<64 - 1) / 32
	}
	return (size + 31) / 32
}

// memoryGasCost computes the total quadratic memory-expansion gas cost for
// memory sized to newWords 32-byte words (spec.md §4.2, §8 property 9):
// 3w + floor(w^2/512).
func memoryGasCost(words uint64) uint64 {
	square := words * words
	linear := words * MemoryGasCoefficient
	return linear + square/MemoryGasQuadDivisor
}

// memoryExpansionCost returns the incremental gas cost of growing memory
// from its current size to cover [offset, offset+size), along with the new
// size in bytes. It returns ok=false on overflow (the caller must treat
// this as out-of-gas).
func (m *Memory) memoryExpansionCost(offset, size uint64) (cost, newSize uint64, ok bool) {
	if size == 0 {
		return 0, m.len(), true
	}
	if offset > (1<<64-1)-size {
		return 0, 0, false
	}
	end := offset + size
	if end <= m.len() {
		return 0, m.len(), true
	}
	newWords := toWordSize(end)
	oldWords := toWordSize(m.len())
	cost = memoryGasCost(newWords) - memoryGasCost(oldWords)
	return cost, newWords * 32, true
}
