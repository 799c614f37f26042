package runtime

import (
	"log/slog"

	"github.com/coreexec/evmcore/core/types"
	"github.com/coreexec/evmcore/core/vm"
	"github.com/holiman/uint256"
)

// Message is one transaction's call parameters, already past intrinsic-gas
// and signature validation (spec.md §1 Non-goals: "transaction-level
// validation"). To is nil for a contract-creation transaction.
type Message struct {
	From     types.Address
	To       *types.Address
	Value    *uint256.Int
	Input    []byte
	GasLimit uint64
	Salt     *uint256.Int // CREATE2 only; unused for To == nil CREATE
}

// Result is the outcome of one applied message: the engine's own
// FrameOutcome plus the driver's own bookkeeping (gas charged after the
// refund cap, logs, and the resolved SELFDESTRUCT set).
type Result struct {
	Success        bool
	ReturnData     []byte
	CreatedAddress types.Address
	GasUsed        uint64
	Logs           []types.Log
	SelfDestructs  []vm.SelfDestructEntry
}

// ApplyMessage runs one top-level message call or contract-creation
// transaction against db, end to end: it builds a fresh EVM, dispatches the
// call/create through the same Host.Call/Host.Create contract every nested
// CALL/CREATE uses, then performs the transaction-boundary work the engine
// itself never does -- refund capping (ApplyRefundCap) and SELFDESTRUCT
// resolution (vm.ResolveSelfDestructs) -- exactly once, after every frame
// has returned (spec.md §4.6, §9 "Global mutable state" design note: these
// live at the transaction boundary, not inside the interpreter).
func ApplyMessage(db vm.Database, block vm.BlockContext, tx vm.TxContext, rules vm.ForkRules, cfg vm.Config, msg Message) Result {
	snap := db.CreateSnapshot()
	e := vm.NewEVM(block, tx, rules, cfg, db)

	var (
		ret     []byte
		created types.Address
		ok      bool
		gasLeft uint64
	)
	if msg.To == nil {
		created, ret, gasLeft, ok = e.Create(msg.From, msg.Input, msg.Value, msg.GasLimit, msg.Salt, msg.Salt != nil)
	} else {
		ret, gasLeft, ok = e.Call(vm.CallKindCall, types.Address{}, msg.From, *msg.To, msg.Value, msg.Input, msg.GasLimit, false)
	}

	gasUsed := msg.GasLimit - gasLeft
	if ok {
		gasUsed = ApplyRefundCap(gasUsed, e.RefundCounter(), rules.IsLondon)
	}

	var selfDestructs []vm.SelfDestructEntry
	if ok {
		tracker := e.SelfDestructTracker()
		selfDestructs = tracker.Entries()
		err := vm.ResolveSelfDestructs(db, tracker, e.CreatedInTx(), rules)
		if cfg.Logger != nil {
			runtimeLog := cfg.Logger.Module("runtime")
			if runtimeLog.Enabled(slog.LevelDebug) {
				runtimeLog.Debug("selfdestruct resolve", "entries", len(selfDestructs), "err", err)
			}
		}
		if err != nil {
			ok = false
		}
	}

	if ok {
		db.CommitSnapshot(snap)
	} else {
		db.RevertToSnapshot(snap)
	}

	return Result{
		Success:        ok,
		ReturnData:     ret,
		CreatedAddress: created,
		GasUsed:        gasUsed,
		Logs:           e.Logs(),
		SelfDestructs:  selfDestructs,
	}
}

// ApplyRefundCap applies the EIP-3529 (or pre-London EIP-2200) refund cap:
// the accumulated SSTORE refund may reimburse at most gasUsed/quotient of
// the gas actually consumed (spec.md §4.4 "refund is capped at the very
// end, once, against total gas used by the whole transaction" -- never
// per-frame, and never before every frame, including reverted ones, has
// contributed its final refund delta). Reverted sub-calls already
// contribute zero, since their AddRefund journal entries were undone by
// RevertToSnapshot before this ever runs.
func ApplyRefundCap(gasUsed, refund uint64, isLondon bool) uint64 {
	quotient := vm.MaxRefundQuotient
	if !isLondon {
		quotient = vm.LegacyMaxRefundQuotient
	}
	capped := gasUsed / quotient
	if refund > capped {
		refund = capped
	}
	if refund > gasUsed {
		return 0
	}
	return gasUsed - refund
}
