package vm

import (
	"log/slog"

	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// Call implements the CALL/CALLCODE/DELEGATECALL/STATICCALL family
// (spec.md §4.3 "inner_call"). The base gas cost (memory expansion, EIP-2929
// cold-access surcharge, value-transfer and new-account surcharges) has
// already been charged by the calling opcode's dynamicGas function, and gas
// already reflects the EIP-150 63/64 forwarding split -- the opcode handler
// (instructions_system.go) computes min(requested, available-available/64)
// before calling here, since only it has the frame's post-base-cost gas and
// the requested amount off the stack. What's left to do here is add the
// value-transfer stipend, resolve the sub-frame's storage/caller/value by
// kind, and unwind the outcome into (ret, remainingGas, success).
func (e *EVM) Call(kind CallKind, self, caller, addr types.Address, value *uint256.Int, input []byte, gas uint64, static bool) ([]byte, uint64, bool) {
	if value == nil {
		value = uint256.NewInt(0)
	}
	valueTransfer := kind == CallKindCall || kind == CallKindCallCode

	if e.depth+1 > MaxCallDepth {
		return nil, gas, false
	}
	if static && kind == CallKindCall && !value.IsZero() {
		return nil, gas, false
	}
	if valueTransfer && !value.IsZero() {
		if e.GetBalance(caller).Lt(value) {
			return nil, gas, false
		}
	}

	// Storage/code context: Call/StaticCall execute against the target
	// account; CallCode/DelegateCall execute against the calling frame's
	// own account, running the target's code in that context.
	storageAddr := addr
	if kind == CallKindCallCode || kind == CallKindDelegateCall {
		storageAddr = self
	}

	codeAddr, code := e.ResolveCode(addr)

	stipend := gas
	if valueTransfer && !value.IsZero() {
		stipend += CallStipend
	}

	snap := e.CreateSnapshot()

	if valueTransfer && !value.IsZero() {
		if err := e.SubBalance(caller, value); err != nil {
			e.RevertToSnapshot(snap)
			return nil, gas, false
		}
		if err := e.AddBalance(storageAddr, value); err != nil {
			e.RevertToSnapshot(snap)
			return nil, gas, false
		}
	}

	if precompile, ok := lookupPrecompile(e.rules, addr, e.cfg.KZGVerifier); ok {
		ret, remaining, ok := runPrecompile(precompile, input, stipend)
		if !ok {
			e.RevertToSnapshot(snap)
			return ret, 0, false
		}
		return ret, remaining, true
	}
	if len(code) == 0 {
		return nil, stipend, true
	}

	analysis, err := analyze(code, len(code), e.cfg.EnableFusion)
	if err != nil {
		e.RevertToSnapshot(snap)
		return nil, stipend, false
	}

	isDelegate := kind == CallKindDelegateCall
	var host Host = e
	if static {
		host = StaticHost{Host: e}
	}
	frame := NewFrame(e.depth+1, static, isDelegate, false, storageAddr, codeAddr, caller, value, input, stipend, analysis, snap, host)
	logEnabled := e.log != nil && e.log.Enabled(slog.LevelDebug)
	if logEnabled {
		e.log.Debug("call enter", "kind", kind, "depth", e.depth+1, "to", codeAddr, "gas", stipend, "static", static)
	}
	e.depth++
	outcome := e.Run(frame)
	e.depth--
	if logEnabled {
		e.log.Debug("call exit", "kind", kind, "depth", e.depth+1, "to", codeAddr, "outcome", outcome.Kind, "gasLeft", outcome.GasLeft)
	}

	switch outcome.Kind {
	case FrameReturned, FrameHalted:
		return outcome.Output, outcome.GasLeft, true
	case FrameReverted:
		e.RevertToSnapshot(snap)
		return outcome.Output, outcome.GasLeft, false
	default:
		e.RevertToSnapshot(snap)
		return nil, 0, false
	}
}
