package vm

// Gas cost tiers and protocol constants, Frontier through Cancun. Names and
// values follow the Ethereum Yellow Paper and the EIPs cited per group.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	GasSha3        uint64 = 30
	GasSha3Word    uint64 = 6
	GasMemoryWord  uint64 = 3
	GasCopyWord    uint64 = 3
	GasLog         uint64 = 375
	GasLogData     uint64 = 8
	GasLogTopic    uint64 = 375
	GasCreate      uint64 = 32000
	GasCallStipend uint64 = 2300

	// EIP-150.
	Call63Over64th = 64

	// EIP-2929 (Berlin) cold/warm access costs.
	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100

	// Pre-Berlin (Tangerine Whistle, EIP-150) flat access costs, used when
	// ForkRules.IsBerlin is false.
	NonBerlinSloadGas      uint64 = 200
	NonBerlinCallGas       uint64 = 700
	NonBerlinExtcodeGas    uint64 = 700
	NonBerlinBalanceGas    uint64 = 400
	NonBerlinExtcodeHashGas uint64 = 400

	// EIP-2200 / EIP-3529 SSTORE.
	SstoreSetGas           uint64 = 20000
	SstoreResetGas         uint64 = 2900
	SstoreClearsRefund     uint64 = 4800
	SstoreSentryGasEIP2200 uint64 = 2300

	// Legacy (pre-Constantinople) flat SSTORE costs.
	LegacySstoreSetGas   uint64 = 20000
	LegacySstoreResetGas uint64 = 5000
	LegacySstoreClearRefund uint64 = 15000

	MaxRefundQuotient       uint64 = 5 // EIP-3529 (London+): refund capped at gas_used/5
	LegacyMaxRefundQuotient uint64 = 2 // pre-London: refund capped at gas_used/2

	// Value-transfer / new-account surcharges.
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	CallStipend          uint64 = 2300

	// SELFDESTRUCT (EIP-150 base, EIP-161 new-account surcharge).
	SelfdestructGas           uint64 = 5000
	CreateBySelfdestructGas   uint64 = 25000

	// CREATE/CREATE2 size limits and per-byte/per-word costs.
	MaxCodeSize           = 24576             // EIP-170
	MaxInitCodeSize       = 2 * MaxCodeSize    // EIP-3860 (49152)
	CreateDataGas  uint64 = 200                // per deployed code byte
	InitCodeWordGas uint64 = 2                 // EIP-3860 per 32-byte word of initcode

	// Resource bounds.
	MaxStackDepth uint64 = 1024
	MaxCallDepth  int    = 1024

	// Memory expansion (applies uniformly across MSTORE/MLOAD/*COPY/KECCAK256/LOG).
	MemoryGasCoefficient uint64 = 3
	MemoryGasQuadDivisor uint64 = 512

	// EIP-4844 / EIP-4788.
	BlobHashGas       uint64 = GasFastestStep
	BeaconRootsRingBufferLength uint64 = 8191

	// Precompiled contracts (addresses 0x01-0x0a), Frontier through Cancun.
	EcrecoverGas     uint64 = 3000
	Sha256BaseGas    uint64 = 60
	Sha256WordGas    uint64 = 12
	Ripemd160BaseGas uint64 = 600
	Ripemd160WordGas uint64 = 120
	IdentityBaseGas  uint64 = 15
	IdentityWordGas  uint64 = 3

	ModexpQuadDivisorLegacy  uint64 = 20 // pre-EIP-2565
	ModexpQuadDivisorEIP2565 uint64 = 3
	ModexpMinGasEIP2565      uint64 = 200

	Bn256AddGasByzantium           uint64 = 500
	Bn256AddGasIstanbul            uint64 = 150
	Bn256MulGasByzantium           uint64 = 40000
	Bn256MulGasIstanbul            uint64 = 6000
	Bn256PairingBaseGasByzantium   uint64 = 100000
	Bn256PairingPerPointGasByzantium uint64 = 80000
	Bn256PairingBaseGasIstanbul   uint64 = 45000
	Bn256PairingPerPointGasIstanbul uint64 = 34000

	KZGPointEvalGas uint64 = 50000
)
