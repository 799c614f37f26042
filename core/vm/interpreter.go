package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/coreexec/evmcore/log"
	"github.com/holiman/uint256"
)

// FrameOutcomeKind classifies how a Frame's execution ended (spec.md §3, §7).
type FrameOutcomeKind uint8

const (
	FrameHalted FrameOutcomeKind = iota // STOP
	FrameReturned
	FrameReverted
	FrameErrored
)

// FrameOutcome is the result of running one Frame to completion.
type FrameOutcome struct {
	Kind    FrameOutcomeKind
	Output  []byte
	GasLeft uint64
	Err     error
}

// EVM is the execution engine: the Database/Journal/AccessList/
// SelfDestructTracker stack plus block/tx context and the fork's jump
// table, all wired together behind the Host interface (spec.md §6). One
// EVM value spans a whole transaction; each nested CALL/CREATE runs a new
// Frame against the same EVM.
type EVM struct {
	block BlockContext
	tx    TxContext
	rules ForkRules
	cfg   Config

	db       Database
	journal  *Journal
	access   *AccessList
	selfD    *SelfDestructTracker
	created  *CreatedInTx
	jumpTbl  JumpTable

	// log is the "vm" module child logger, built once at construction so
	// Call/Create only ever pay for an Enabled() check, never a Module()
	// call, on their hot path. Nil when cfg.Logger is nil.
	log *log.Logger

	depth int
}

// NewEVM constructs an EVM ready to run the top-level call of one
// transaction.
func NewEVM(block BlockContext, tx TxContext, rules ForkRules, cfg Config, db Database) *EVM {
	selfD := NewSelfDestructTracker()
	var vmLog *log.Logger
	if cfg.Logger != nil {
		vmLog = cfg.Logger.Module("vm")
	}
	return &EVM{
		block:   block,
		tx:      tx,
		rules:   rules,
		cfg:     cfg,
		db:      db,
		journal: NewJournal(db, selfD),
		access:  NewAccessList(),
		selfD:   selfD,
		created: NewCreatedInTx(),
		jumpTbl: jumpTableForRules(rules),
		log:     vmLog,
	}
}

// --- Host implementation: info accessors ---

func (e *EVM) BlockContext() BlockContext { return e.block }
func (e *EVM) TxContext() TxContext       { return e.tx }
func (e *EVM) Rules() ForkRules           { return e.rules }
func (e *EVM) Depth() int                 { return e.depth }
func (e *EVM) StaticMode() bool           { return false }

func (e *EVM) AccountExists(addr types.Address) bool {
	acct, ok := e.db.GetAccount(addr)
	if !ok {
		return false
	}
	return !acct.IsEmpty()
}

func (e *EVM) GetBalance(addr types.Address) uint256.Int { return e.journal.GetBalance(addr) }

func (e *EVM) GetCodeHash(addr types.Address) types.Hash {
	acct, ok := e.db.GetAccount(addr)
	if !ok {
		return types.Hash{}
	}
	return acct.CodeHash
}

func (e *EVM) GetCode(addr types.Address) []byte { return e.db.GetCodeByAddress(addr) }
func (e *EVM) GetCodeSize(addr types.Address) int { return len(e.db.GetCodeByAddress(addr)) }
func (e *EVM) GetNonce(addr types.Address) uint64 { return e.journal.GetNonce(addr) }

// --- Host implementation: storage ---

func (e *EVM) GetStorage(addr types.Address, key *uint256.Int) uint256.Int {
	return e.db.GetStorage(addr, key)
}
func (e *EVM) SetStorage(addr types.Address, key, value *uint256.Int) error {
	return e.journal.SetStorage(addr, key, value)
}
func (e *EVM) GetOriginalStorage(addr types.Address, key *uint256.Int) uint256.Int {
	return e.journal.GetOriginalStorage(addr, key)
}
func (e *EVM) GetTransientStorage(addr types.Address, key *uint256.Int) uint256.Int {
	return e.db.GetTransientStorage(addr, key)
}
func (e *EVM) SetTransientStorage(addr types.Address, key, value *uint256.Int) error {
	return e.journal.SetTransientStorage(addr, key, value)
}

// --- Host implementation: balance/nonce/code mutation ---

func (e *EVM) AddBalance(addr types.Address, amount *uint256.Int) error {
	return e.journal.AddBalance(addr, amount)
}
func (e *EVM) SubBalance(addr types.Address, amount *uint256.Int) error {
	return e.journal.SubBalance(addr, amount)
}
func (e *EVM) IncrementNonce(addr types.Address) error { return e.journal.IncrementNonce(addr) }
func (e *EVM) SetCode(addr types.Address, code []byte) error {
	return e.journal.SetCode(addr, code)
}
func (e *EVM) CreateAccount(addr types.Address) error { return e.journal.CreateAccount(addr) }

// --- Host implementation: block/log/access/selfdestruct ---

func (e *EVM) GetBlockHash(number uint64) types.Hash {
	if e.block.GetHash == nil {
		return types.Hash{}
	}
	return e.block.GetHash(number)
}
func (e *EVM) EmitLog(log types.Log) { e.journal.AppendLog(log) }

func (e *EVM) AccessAddress(addr types.Address) uint64 { return e.access.AccessAddress(addr) }
func (e *EVM) AccessSlot(addr types.Address, slot *uint256.Int) uint64 {
	return e.access.AccessSlot(addr, slot)
}
func (e *EVM) IsWarmAddress(addr types.Address) bool { return e.access.IsWarmAddress(addr) }
func (e *EVM) IsWarmSlot(addr types.Address, slot *uint256.Int) bool {
	return e.access.IsWarmSlot(addr, slot)
}

func (e *EVM) MarkSelfDestruct(contract, recipient types.Address) {
	e.journal.MarkSelfDestruct(contract, recipient)
}
func (e *EVM) HasSelfDestructed(contract types.Address) bool { return e.selfD.IsMarked(contract) }
func (e *EVM) MarkCreated(addr types.Address)                { e.created.Mark(addr) }
func (e *EVM) WasCreatedInTx(addr types.Address) bool        { return e.created.Contains(addr) }

func (e *EVM) AddRefund(delta int64)      { e.journal.AddRefund(delta) }
func (e *EVM) RefundCounter() uint64      { return e.journal.RefundCounter() }

func (e *EVM) CreateSnapshot() int      { return e.journal.CreateSnapshot() }
func (e *EVM) RevertToSnapshot(id int)  { e.journal.RevertToSnapshot(id) }

// Logs returns every log emitted so far this transaction, in emission order
// (spec.md §4.6: reverted sub-calls' logs are already gone, undone by
// RevertToSnapshot).
func (e *EVM) Logs() []types.Log { return e.journal.Logs() }

// SelfDestructTracker exposes the transaction-scoped SELFDESTRUCT mark set,
// for the outer driver's end-of-transaction ResolveSelfDestructs call.
func (e *EVM) SelfDestructTracker() *SelfDestructTracker { return e.selfD }

// CreatedInTx exposes the transaction-scoped created-address set, needed
// alongside SelfDestructTracker to decide EIP-6780 eligibility.
func (e *EVM) CreatedInTx() *CreatedInTx { return e.created }

// ResolveCode follows one EIP-7702 delegation hop: if addr's account has a
// DelegatedAddress set, the code that executes is the delegate's, while
// the storage/balance/nonce context (and ADDRESS) remains addr's.
func (e *EVM) ResolveCode(addr types.Address) (types.Address, []byte) {
	acct, ok := e.db.GetAccount(addr)
	if ok && acct.DelegatedAddress != nil {
		return *acct.DelegatedAddress, e.db.GetCodeByAddress(*acct.DelegatedAddress)
	}
	return addr, e.db.GetCodeByAddress(addr)
}

// classifyOutcome turns an execute func's returned error into a
// FrameOutcome: the three control-flow sentinels become normal endings,
// anything else is an abort that forfeits all remaining gas (spec.md §7).
func classifyOutcome(f *Frame, err error) FrameOutcome {
	switch err {
	case errStopExecution:
		return FrameOutcome{Kind: FrameHalted, GasLeft: f.gas}
	case errReturnExecution:
		return FrameOutcome{Kind: FrameReturned, Output: f.output, GasLeft: f.gas}
	case errRevertExecution:
		return FrameOutcome{Kind: FrameReverted, Output: f.output, GasLeft: f.gas}
	default:
		f.gas = 0
		return FrameOutcome{Kind: FrameErrored, GasLeft: 0, Err: err}
	}
}

func errOutcome(f *Frame, err error) FrameOutcome {
	f.gas = 0
	return FrameOutcome{Kind: FrameErrored, GasLeft: 0, Err: err}
}

// Run executes f against the EVM's active jump table until it reaches a
// terminal state (spec.md §4.1 "dispatch loop", §4.2 step order: validate
// stack depth, charge constant gas, charge dynamic gas, execute, advance).
// It never recurses into Go's call stack for CALL/CREATE sub-executions --
// those go through Host.Call/Host.Create, which push and run an entirely
// separate Frame value (spec.md §3: "tail-call-style dispatch, not
// recursion into the host language's call stack").
func (e *EVM) Run(f *Frame) FrameOutcome {
	jt := e.jumpTbl
	for {
		item := &f.analysis.schedule[f.cursor]
		op := item.op
		f.pc = item.pc
		f.nextCursor = f.cursor + 1

		if e.cfg.Tracer != nil {
			e.cfg.Tracer.OnOpcode(f.pc, op, f.gas, 0, f.depth)
		}

		if item.fusedWith != 0 {
			outcome, ok := e.runFused(f, item)
			if ok {
				return outcome
			}
			f.cursor = f.nextCursor
			continue
		}

		operation := jt[op]
		if operation == nil {
			return errOutcome(f, ErrInvalidOpcode)
		}
		if err := f.stack.require(operation.minStack); err != nil {
			return errOutcome(f, err)
		}
		if f.stack.len() > operation.maxStack {
			return errOutcome(f, ErrStackOverflow)
		}
		if err := f.useGas(operation.constantGas); err != nil {
			return errOutcome(f, err)
		}
		if operation.dynamicGas != nil {
			extra, err := operation.dynamicGas(f, item)
			if err != nil {
				return errOutcome(f, err)
			}
			if err := f.useGas(extra); err != nil {
				return errOutcome(f, err)
			}
		}
		if err := operation.execute(f, item); err != nil {
			return classifyOutcome(f, err)
		}
		f.cursor = f.nextCursor
	}
}

// runFused executes one PUSHn+consumer fused schedule item: push the
// embedded immediate, then run the consumer opcode's operation against the
// now-one-deeper stack, combining both steps' gas (spec.md §4.1 item 6,
// §3 "fused instructions must be observably identical to the unfused
// sequence"). ok is false to keep looping, true when outcome is terminal.
func (e *EVM) runFused(f *Frame, item *scheduleItem) (FrameOutcome, bool) {
	jt := e.jumpTbl
	consumer := jt[item.fusedWith]
	if consumer == nil {
		return errOutcome(f, ErrInvalidOpcode), true
	}
	// Pushing the immediate must itself respect the 1024 limit.
	if f.stack.len() >= stackLimit {
		return errOutcome(f, ErrStackOverflow), true
	}
	// consumer.minStack/maxStack were computed assuming PUSH already ran;
	// since the fused immediate supplies exactly one operand the consumer
	// would otherwise have popped off the stack, the pre-push stack must
	// satisfy consumer.minStack-1 and the post-push stack (checked below)
	// must satisfy consumer.maxStack exactly as for an unfused PUSH+op.
	if need := consumer.minStack - 1; need > 0 {
		if err := f.stack.require(need); err != nil {
			return errOutcome(f, err), true
		}
	}
	if err := f.stack.push(item.value); err != nil {
		return errOutcome(f, err), true
	}
	if f.stack.len() > consumer.maxStack {
		return errOutcome(f, ErrStackOverflow), true
	}
	if err := f.useGas(GasFastestStep + consumer.constantGas); err != nil {
		return errOutcome(f, err), true
	}
	if consumer.dynamicGas != nil {
		extra, err := consumer.dynamicGas(f, item)
		if err != nil {
			return errOutcome(f, err), true
		}
		if err := f.useGas(extra); err != nil {
			return errOutcome(f, err), true
		}
	}
	if err := consumer.execute(f, item); err != nil {
		return classifyOutcome(f, err), true
	}
	return FrameOutcome{}, false
}
