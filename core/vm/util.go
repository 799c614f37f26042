package vm

import (
	"errors"

	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// Sentinel control-flow signals returned by execute funcs to tell the
// dispatch loop a frame has reached a terminal state. They are never
// surfaced to callers outside the package; classifyOutcome translates
// them (and any other error) into a FrameOutcome.
var (
	errStopExecution   = errors.New("vm: stop")
	errReturnExecution = errors.New("vm: return")
	errRevertExecution = errors.New("vm: revert")
)

// addressFromWord takes the low 20 bytes of a 256-bit stack word, the
// representation CALL/EXTCODE*/BALANCE family opcodes use for addresses.
func addressFromWord(w *uint256.Int) types.Address {
	var b [32]byte
	w.WriteToSlice(b[:])
	var addr types.Address
	copy(addr[:], b[12:32])
	return addr
}

// addressToWord packs an address into the low 20 bytes of a stack word.
func addressToWord(addr types.Address) uint256.Int {
	var b [32]byte
	copy(b[12:32], addr[:])
	var w uint256.Int
	w.SetBytes(b[:])
	return w
}

// hashToWord packs a 32-byte hash into a stack word, big-endian.
func hashToWord(h types.Hash) uint256.Int {
	var w uint256.Int
	w.SetBytes(h[:])
	return w
}

// wordToHash unpacks a stack word into a 32-byte hash, big-endian, the
// representation LOG's topics use.
func wordToHash(w *uint256.Int) types.Hash {
	var h types.Hash
	w.WriteToSlice(h[:])
	return h
}
