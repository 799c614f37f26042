package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// Frame is one call-stack entry, the unit of execution spec.md §3
// describes: one bytecode execution context with its own stack, memory,
// and gas meter, nested by CALL/CREATE/message-call sub-execution. Shaped
// after the teacher's Contract (core/vm/contract.go), generalized with the
// fields the spec's full call/create family needs: depth and mode flags,
// a snapshot id for revert, and the shared Analyzed/Host handles.
type Frame struct {
	depth      int
	isStatic   bool
	isDelegate bool
	isCreate   bool

	// address is the storage/code-identity context this frame executes
	// against (what ADDRESS and SLOAD/SSTORE see); codeAddress is whose
	// code is actually running. They differ only under DELEGATECALL/
	// CALLCODE and EIP-7702 delegation.
	address     types.Address
	codeAddress types.Address
	caller      types.Address
	value       uint256.Int

	input      []byte
	returnData []byte // output of the most recently completed sub-call
	output     []byte // this frame's own RETURN/REVERT payload

	gas uint64
	pc  uint64 // byte program counter, for the PC opcode and error reporting

	cursor int // index into analysis.schedule; the actual dispatch position

	stack    *Stack
	memory   *Memory
	analysis *Analyzed

	snapshotID int
	host       Host

	// nextCursor is where execution resumes after the current schedule
	// item; the interpreter initializes it to cursor+1 before calling the
	// operation's execute func, and JUMP/JUMPI/fused-jump handlers may
	// overwrite it.
	nextCursor int
}

// NewFrame builds a Frame ready to execute analyzed code.
func NewFrame(depth int, isStatic, isDelegate, isCreate bool, address, codeAddress, caller types.Address, value *uint256.Int, input []byte, gas uint64, analysis *Analyzed, snapshotID int, host Host) *Frame {
	f := &Frame{
		depth:       depth,
		isStatic:    isStatic,
		isDelegate:  isDelegate,
		isCreate:    isCreate,
		address:     address,
		codeAddress: codeAddress,
		caller:      caller,
		input:       input,
		gas:         gas,
		stack:       newStack(),
		memory:      newMemory(),
		analysis:    analysis,
		snapshotID:  snapshotID,
		host:        host,
	}
	if value != nil {
		f.value = *value
	}
	return f
}

// useGas deducts cost from the frame's remaining gas. Returns
// ErrOutOfGas, leaving gas at 0, if cost exceeds what remains -- gas never
// goes negative (spec.md §3: "becoming negative is the definition of
// out-of-gas"), this is the uint64 encoding of that rule.
func (f *Frame) useGas(cost uint64) error {
	if f.gas < cost {
		f.gas = 0
		return ErrOutOfGas
	}
	f.gas -= cost
	return nil
}

// refundGas returns unspent gas to the frame, used when a sub-call returns
// less than what was forwarded to it.
func (f *Frame) refundGas(amount uint64) { f.gas += amount }

// currentOp returns the opcode at the frame's current schedule position.
func (f *Frame) currentOp() OpCode { return f.analysis.schedule[f.cursor].op }
