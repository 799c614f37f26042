package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// CallKind distinguishes the four CALL-family sub-execution shapes
// (spec.md §4.3).
type CallKind uint8

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
)

// Host is the full capability set a Frame needs to observe and mutate the
// world around it (spec.md §6): block/tx info, account and storage access,
// logs, sub-call dispatch, and snapshotting. It is interface-shaped rather
// than inheritance-shaped (spec.md §9 design note (b)) precisely so that a
// static context can be expressed as StaticHost wrapping any Host, instead
// of a boolean threaded through every method.
type Host interface {
	BlockContext() BlockContext
	TxContext() TxContext
	Rules() ForkRules
	Depth() int
	StaticMode() bool

	AccountExists(addr types.Address) bool
	GetBalance(addr types.Address) uint256.Int
	GetCodeHash(addr types.Address) types.Hash
	GetCode(addr types.Address) []byte
	GetCodeSize(addr types.Address) int
	GetNonce(addr types.Address) uint64

	GetStorage(addr types.Address, key *uint256.Int) uint256.Int
	SetStorage(addr types.Address, key, value *uint256.Int) error
	GetOriginalStorage(addr types.Address, key *uint256.Int) uint256.Int
	GetTransientStorage(addr types.Address, key *uint256.Int) uint256.Int
	SetTransientStorage(addr types.Address, key, value *uint256.Int) error

	AddBalance(addr types.Address, amount *uint256.Int) error
	SubBalance(addr types.Address, amount *uint256.Int) error
	IncrementNonce(addr types.Address) error
	SetCode(addr types.Address, code []byte) error
	CreateAccount(addr types.Address) error

	GetBlockHash(number uint64) types.Hash
	EmitLog(log types.Log)

	AccessAddress(addr types.Address) uint64
	AccessSlot(addr types.Address, slot *uint256.Int) uint64
	IsWarmAddress(addr types.Address) bool
	IsWarmSlot(addr types.Address, slot *uint256.Int) bool

	MarkSelfDestruct(contract, recipient types.Address)
	HasSelfDestructed(contract types.Address) bool
	MarkCreated(addr types.Address)
	WasCreatedInTx(addr types.Address) bool

	AddRefund(delta int64)
	RefundCounter() uint64

	// ResolveCode returns the address whose code should actually execute
	// for addr, and that code, following EIP-7702 delegation designators
	// one hop if present. For an ordinary EOA or contract, codeAddr == addr.
	ResolveCode(addr types.Address) (codeAddr types.Address, code []byte)

	// Call dispatches one CALL-family sub-execution (spec.md §4.3
	// "inner_call"). self is the calling frame's own address (used as the
	// new frame's storage context for CallCode/DelegateCall); caller is
	// the msg.sender the new frame should see (self, except DelegateCall
	// which preserves the calling frame's own caller); addr is the target
	// whose code executes. value is ignored for DelegateCall/StaticCall.
	// success is false for both a REVERT and any other frame failure
	// (out-of-gas, depth exceeded, insufficient balance, ...); ret carries
	// the revert reason in the REVERT case and is empty otherwise -- this
	// mirrors the real protocol, where CALL-family sub-failures are never
	// exceptional, only a 0 pushed onto the caller's stack.
	Call(kind CallKind, self, caller, addr types.Address, value *uint256.Int, input []byte, gas uint64, static bool) (ret []byte, remainingGas uint64, success bool)

	// Create dispatches CREATE/CREATE2, with the same success-flag contract
	// as Call.
	Create(caller types.Address, code []byte, value *uint256.Int, gas uint64, salt *uint256.Int, isCreate2 bool) (addr types.Address, ret []byte, remainingGas uint64, success bool)

	CreateSnapshot() int
	RevertToSnapshot(id int)
}

// StaticHost wraps a Host and rejects every error-returning write with
// ErrWriteProtection (spec.md §6: "A static variant must fail any write call with
// PermissionDenied"). EmitLog, MarkSelfDestruct and AddRefund have no error
// result and are dropped silently; Create always reports failure. Call wraps the callee's Frame host in a StaticHost
// whenever it enters with static=true, so a write that somehow slips past
// the interpreter's own per-handler checks (instructions_system.go) still
// fails at the Host boundary instead of reaching the Database.
type StaticHost struct {
	Host
}

func (StaticHost) StaticMode() bool { return true }

func (StaticHost) SetStorage(types.Address, *uint256.Int, *uint256.Int) error {
	return ErrWriteProtection
}
func (StaticHost) SetTransientStorage(types.Address, *uint256.Int, *uint256.Int) error {
	return ErrWriteProtection
}
func (StaticHost) AddBalance(types.Address, *uint256.Int) error { return ErrWriteProtection }
func (StaticHost) SubBalance(types.Address, *uint256.Int) error { return ErrWriteProtection }
func (StaticHost) IncrementNonce(types.Address) error           { return ErrWriteProtection }
func (StaticHost) SetCode(types.Address, []byte) error          { return ErrWriteProtection }
func (StaticHost) CreateAccount(types.Address) error            { return ErrWriteProtection }
func (StaticHost) EmitLog(types.Log)                             {}
func (StaticHost) MarkSelfDestruct(types.Address, types.Address) {}
func (StaticHost) AddRefund(int64)                               {}

func (h StaticHost) Call(kind CallKind, self, caller, addr types.Address, value *uint256.Int, input []byte, gas uint64, static bool) ([]byte, uint64, bool) {
	return h.Host.Call(kind, self, caller, addr, value, input, gas, true)
}

func (StaticHost) Create(types.Address, []byte, *uint256.Int, uint64, *uint256.Int, bool) (types.Address, []byte, uint64, bool) {
	return types.Address{}, nil, 0, false
}
