package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/coreexec/evmcore/log"
	"github.com/holiman/uint256"
)

// ForkRules selects the active jump table and gas schedule (spec.md §6,
// §9 "Global mutable state" design note: configuration, not a process
// global). Each flag gates the EIP(s) introduced by that fork; later forks
// imply all earlier ones are also set, mirroring the teacher's
// fork-chained jump table construction.
type ForkRules struct {
	IsHomestead     bool
	IsTangerine     bool // EIP-150
	IsSpuriousDragon bool // EIP-170/161
	IsByzantium     bool
	IsConstantinople bool
	IsPetersburg    bool
	IsIstanbul      bool
	IsBerlin        bool // EIP-2929/2930
	IsLondon        bool // EIP-1559/3529/3541
	IsMerge         bool
	IsShanghai      bool // EIP-3855 PUSH0, EIP-3860 initcode limit
	IsCancun        bool // EIP-1153/4788/4844/5656/6780
}

// CancunRules returns the rule set with every fork flag through Cancun set,
// the newest hardfork in this spec's covered range.
func CancunRules() ForkRules {
	return ForkRules{
		IsHomestead: true, IsTangerine: true, IsSpuriousDragon: true,
		IsByzantium: true, IsConstantinople: true, IsPetersburg: true,
		IsIstanbul: true, IsBerlin: true, IsLondon: true, IsMerge: true,
		IsShanghai: true, IsCancun: true,
	}
}

// BlockContext carries block-scoped, call-independent information exposed
// to handlers via the Host (spec.md §6: "block info layout").
type BlockContext struct {
	ChainID     uint64
	Number      uint64
	Timestamp   uint64
	GasLimit    uint64
	BaseFee     uint256.Int
	PrevRandao  types.Hash
	BlobBaseFee uint256.Int
	Coinbase    types.Address
	BeaconRoot  *types.Hash

	// BlobVersionedHashes belongs to the transaction per EIP-4844 and is
	// not carried here; BLOBHASH reads it from TxContext.
	GetHash func(blockNumber uint64) types.Hash // blockhash of the last 256 blocks
}

// TxContext carries transaction-scoped, call-independent information.
type TxContext struct {
	Origin              types.Address
	GasPrice            uint256.Int
	BlobVersionedHashes []types.Hash
}

// Config carries engine-wide toggles that do not correspond to a hardfork
// boolean: performance/debugging knobs rather than protocol rules.
type Config struct {
	// EnableFusion toggles the analyzer's PUSHn+opcode fusion pass
	// (spec.md §4.1). Must not change observable gas or output (S5); exists
	// so both code paths can be exercised and compared in tests.
	EnableFusion bool

	// Tracer, if non-nil, receives a callback before every executed
	// instruction. Nil is the zero-cost default on the hot path.
	Tracer Tracer

	// KZGVerifier, if non-nil, backs the point-evaluation precompile
	// (0x0a). A nil verifier accepts any well-formed input without
	// checking the pairing, matching the spec's scoping of the actual
	// trusted-setup-backed cryptography as an external concern.
	KZGVerifier KZGVerifier

	// Logger receives Debug-level frame entry/exit and SELFDESTRUCT
	// resolution events. Nil disables logging entirely rather than
	// falling back to a default writer, so running without a Logger costs
	// nothing beyond the nil check at frame entry.
	Logger *log.Logger
}

// Tracer observes interpreter execution for diagnostics; it is not on the
// critical path when nil.
type Tracer interface {
	OnOpcode(pc uint64, op OpCode, gas, cost uint64, depth int)
}

// KZGVerifier verifies a KZG point-evaluation proof, per EIP-4844. Loading
// the actual trusted setup is out of scope for the core (spec.md §1); this
// interface is the plug point an outer driver wires to
// github.com/crate-crypto/go-eth-kzg.
type KZGVerifier interface {
	VerifyProof(commitment [48]byte, z, y [32]byte, proof [48]byte) bool
}
