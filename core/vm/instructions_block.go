package vm

import "github.com/holiman/uint256"

// Block-context opcode handlers (spec.md §4.2). All read BlockContext
// through the Host rather than touching a Frame field directly, since
// block info is shared read-only state across every frame in a call tree.

func opBlockhash(f *Frame, item *scheduleItem) error {
	numWord := f.stack.peek()
	var v uint256.Int
	if numWord.IsUint64() {
		hash := f.host.GetBlockHash(numWord.Uint64())
		v = hashToWord(hash)
	}
	*numWord = v
	return nil
}

func opCoinbase(f *Frame, item *scheduleItem) error {
	v := addressToWord(f.host.BlockContext().Coinbase)
	return f.stack.push(&v)
}

func opTimestamp(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.host.BlockContext().Timestamp)
	return f.stack.push(&v)
}

func opNumber(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.host.BlockContext().Number)
	return f.stack.push(&v)
}

// opPrevRandao serves both DIFFICULTY (pre-Merge) and PREVRANDAO
// (post-Merge): the same opcode byte, reinterpreted at The Merge to carry
// the beacon chain's RANDAO output instead of PoW difficulty.
func opPrevRandao(f *Frame, item *scheduleItem) error {
	v := hashToWord(f.host.BlockContext().PrevRandao)
	return f.stack.push(&v)
}

func opGasLimit(f *Frame, item *scheduleItem) error {
	var v uint256.Int
	v.SetUint64(f.host.BlockContext().GasLimit)
	return f.stack.push(&v)
}
