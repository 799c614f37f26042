package vm

import "errors"

// Frame-abort errors. Each corresponds to one FrameOutcome kind in the
// error taxonomy: StackUnderflow/StackOverflow/OutOfGas/InvalidOpcode/
// InvalidJump/WriteProtection/OutOfBounds all consume all remaining gas and
// return empty output; Revert preserves output and returns unspent gas.
var (
	ErrOutOfGas              = errors.New("vm: out of gas")
	ErrStackUnderflow        = errors.New("vm: stack underflow")
	ErrStackOverflow         = errors.New("vm: stack overflow")
	ErrInvalidOpcode         = errors.New("vm: invalid opcode")
	ErrInvalidJump           = errors.New("vm: invalid jump destination")
	ErrWriteProtection       = errors.New("vm: write protection (static call)")
	ErrOutOfBounds           = errors.New("vm: return data out of bounds")
	ErrExecutionReverted     = errors.New("vm: execution reverted")
	ErrCodeTooLarge          = errors.New("vm: code too large")
	ErrInitCodeTooLarge      = errors.New("vm: initcode too large")
	ErrInvalidCodeEntry      = errors.New("vm: invalid code entry point (0xEF prefix)")
	ErrDepthExceeded         = errors.New("vm: max call depth exceeded")
	ErrInsufficientBalance   = errors.New("vm: insufficient balance for transfer")
	ErrNonceUintOverflow     = errors.New("vm: nonce exceeds 2^64-1")
	ErrContractAddressExists = errors.New("vm: contract address collision")
	ErrGasUintOverflow       = errors.New("vm: gas uint64 overflow")
	ErrNoCompatibleInterpreter = errors.New("vm: no compatible interpreter")
	ErrPrecompileInput         = errors.New("vm: malformed precompile input")
)
