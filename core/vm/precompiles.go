package vm

import (
	"crypto/sha256"
	"math/big"

	"github.com/coreexec/evmcore/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
)

// PrecompiledContract is the shape every precompile at addresses 0x01-0x0a
// implements (spec.md §1 Non-goals: "the cryptography inside the
// precompiles is out of scope -- only their address, gas formula, and
// input/output shape belong to this module"). RequiredGas is charged
// before Run executes; Run returning an error behaves like a REVERT with
// empty output, consuming all gas given to it.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// lookupPrecompile resolves addr to its PrecompiledContract under the
// active fork's registry, mirroring the fork-chained registries the
// teacher builds for its jump tables (spec.md §4.3: precompile addresses
// and their available set are themselves fork-gated). kzgVerifier is the
// calling EVM's own Config.KZGVerifier, threaded through per call so that
// concurrently running EVM instances with different verifiers never share
// mutable state (spec.md §5: transactions may execute on separate
// worker goroutines).
func lookupPrecompile(rules ForkRules, addr types.Address, kzgVerifier KZGVerifier) (PrecompiledContract, bool) {
	set := precompilesFor(rules, kzgVerifier)
	c, ok := set[addr]
	return c, ok
}

// runPrecompile charges RequiredGas against the gas forwarded to the call,
// then executes it, folding the result into the same (ret, remainingGas,
// success) contract as a full interpreted sub-call.
func runPrecompile(c PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, bool) {
	cost := c.RequiredGas(input)
	if cost > gas {
		return nil, 0, false
	}
	ret, err := c.Run(input)
	if err != nil {
		return nil, 0, false
	}
	return ret, gas - cost, true
}

func precompileAddr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

var (
	addrEcrecover    = precompileAddr(0x01)
	addrSha256       = precompileAddr(0x02)
	addrRipemd160    = precompileAddr(0x03)
	addrIdentity     = precompileAddr(0x04)
	addrModexp       = precompileAddr(0x05)
	addrBn256Add     = precompileAddr(0x06)
	addrBn256Mul     = precompileAddr(0x07)
	addrBn256Pairing = precompileAddr(0x08)
	addrBlake2F      = precompileAddr(0x09)
	addrKZGPointEval = precompileAddr(0x0a)
)

func precompilesFor(rules ForkRules, kzgVerifier KZGVerifier) map[types.Address]PrecompiledContract {
	set := map[types.Address]PrecompiledContract{
		addrEcrecover: ecrecoverContract{},
		addrSha256:    sha256Contract{},
		addrRipemd160: ripemd160Contract{},
		addrIdentity:  identityContract{},
	}
	if rules.IsByzantium {
		set[addrModexp] = modexpContract{eip2565: rules.IsBerlin}
		set[addrBn256Add] = bn256AddContract{istanbul: rules.IsIstanbul}
		set[addrBn256Mul] = bn256MulContract{istanbul: rules.IsIstanbul}
		set[addrBn256Pairing] = bn256PairingContract{istanbul: rules.IsIstanbul}
	}
	if rules.IsIstanbul {
		set[addrBlake2F] = blake2FContract{}
	}
	if rules.IsCancun {
		set[addrKZGPointEval] = kzgPointEvalContract{verifier: kzgVerifier}
	}
	return set
}

// --- 0x01 ECRECOVER ---

type ecrecoverContract struct{}

func (ecrecoverContract) RequiredGas([]byte) uint64 { return EcrecoverGas }

func (ecrecoverContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 128)
	var hash [32]byte
	copy(hash[:], input[:32])
	v := input[63]
	if !allZero(input[32:63]) || (v != 27 && v != 28) {
		return nil, nil
	}
	sig := make([]byte, 65)
	copy(sig[:32], input[64:96])
	copy(sig[32:64], input[96:128])
	sig[64] = v - 27

	pub, err := ethcrypto.Ecrecover(hash[:], sig)
	if err != nil {
		return nil, nil
	}
	addr := ethcrypto.Keccak256(pub[1:])[12:]
	out := make([]byte, 32)
	copy(out[12:], addr)
	return out, nil
}

// --- 0x02 SHA256 ---

type sha256Contract struct{}

func (sha256Contract) RequiredGas(input []byte) uint64 {
	return Sha256BaseGas + Sha256WordGas*wordCount(len(input))
}

func (sha256Contract) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// --- 0x03 RIPEMD160 ---

type ripemd160Contract struct{}

func (ripemd160Contract) RequiredGas(input []byte) uint64 {
	return Ripemd160BaseGas + Ripemd160WordGas*wordCount(len(input))
}

func (ripemd160Contract) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	out := make([]byte, 32)
	copy(out[32-h.Size():], h.Sum(nil))
	return out, nil
}

// --- 0x04 IDENTITY ---

type identityContract struct{}

func (identityContract) RequiredGas(input []byte) uint64 {
	return IdentityBaseGas + IdentityWordGas*wordCount(len(input))
}

func (identityContract) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}

// --- 0x05 MODEXP (EIP-198, repriced by EIP-2565) ---

type modexpContract struct{ eip2565 bool }

func (c modexpContract) RequiredGas(input []byte) uint64 {
	input = rightPad(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	if !baseLen.IsUint64() || !expLen.IsUint64() || !modLen.IsUint64() {
		return ^uint64(0)
	}
	bl, el, ml := baseLen.Uint64(), expLen.Uint64(), modLen.Uint64()

	rest := input[96:]
	expHead := new(big.Int)
	if bl < uint64(len(rest)) {
		expStart := bl
		expEnd := expStart + el
		if expEnd > uint64(len(rest)) {
			expEnd = uint64(len(rest))
		}
		if expStart < expEnd {
			expHead.SetBytes(rest[expStart:expEnd])
		}
	}

	maxLen := bl
	if ml > maxLen {
		maxLen = ml
	}
	words := (maxLen + 7) / 8
	multComplexity := words * words

	var expBits uint64
	if expHead.Sign() != 0 {
		expBits = uint64(expHead.BitLen())
	}
	var iterCount uint64
	if el <= 32 {
		if expBits > 0 {
			iterCount = expBits - 1
		}
	} else {
		iterCount = 8*(el-32) + maxUint64(expBits, 1) - 1
	}
	if iterCount == 0 {
		iterCount = 1
	}

	if c.eip2565 {
		gas := (multComplexity * iterCount) / ModexpQuadDivisorEIP2565
		if gas < ModexpMinGasEIP2565 {
			gas = ModexpMinGasEIP2565
		}
		return gas
	}
	gas := (multComplexity * iterCount) / ModexpQuadDivisorLegacy
	return gas
}

func (modexpContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	rest := rightPad(input[96:], int(baseLen+expLen+modLen))
	base := new(big.Int).SetBytes(rest[0:baseLen])
	exp := new(big.Int).SetBytes(rest[baseLen : baseLen+expLen])
	mod := new(big.Int).SetBytes(rest[baseLen+expLen : baseLen+expLen+modLen])

	out := make([]byte, modLen)
	if mod.Sign() == 0 {
		return out, nil
	}
	result := new(big.Int).Exp(base, exp, mod)
	result.FillBytes(out)
	return out, nil
}

// --- 0x06/0x07/0x08 BN254 (alt_bn128) ---

type bn256AddContract struct{ istanbul bool }

func (c bn256AddContract) RequiredGas([]byte) uint64 {
	if c.istanbul {
		return Bn256AddGasIstanbul
	}
	return Bn256AddGasByzantium
}

func (bn256AddContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 128)
	p1, err := newCurvePoint(input[0:64])
	if err != nil {
		return nil, err
	}
	p2, err := newCurvePoint(input[64:128])
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1).Add(p1, p2)
	return res.Marshal(), nil
}

type bn256MulContract struct{ istanbul bool }

func (c bn256MulContract) RequiredGas([]byte) uint64 {
	if c.istanbul {
		return Bn256MulGasIstanbul
	}
	return Bn256MulGasByzantium
}

func (bn256MulContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 96)
	p, err := newCurvePoint(input[0:64])
	if err != nil {
		return nil, err
	}
	scalar := new(big.Int).SetBytes(input[64:96])
	res := new(bn256.G1).ScalarMult(p, scalar)
	return res.Marshal(), nil
}

type bn256PairingContract struct{ istanbul bool }

const bn256PairElementSize = 192

func (c bn256PairingContract) RequiredGas(input []byte) uint64 {
	n := uint64(len(input) / bn256PairElementSize)
	if c.istanbul {
		return Bn256PairingBaseGasIstanbul + n*Bn256PairingPerPointGasIstanbul
	}
	return Bn256PairingBaseGasByzantium + n*Bn256PairingPerPointGasByzantium
}

func (bn256PairingContract) Run(input []byte) ([]byte, error) {
	if len(input)%bn256PairElementSize != 0 {
		return nil, ErrPrecompileInput
	}
	var g1s []*bn256.G1
	var g2s []*bn256.G2
	for i := 0; i+bn256PairElementSize <= len(input); i += bn256PairElementSize {
		chunk := input[i : i+bn256PairElementSize]
		g1, err := newCurvePoint(chunk[0:64])
		if err != nil {
			return nil, err
		}
		g2, err := newTwistPoint(chunk[64:192])
		if err != nil {
			return nil, err
		}
		g1s = append(g1s, g1)
		g2s = append(g2s, g2)
	}
	out := make([]byte, 32)
	if bn256.PairingCheck(g1s, g2s) {
		out[31] = 1
	}
	return out, nil
}

func newCurvePoint(b []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, ErrPrecompileInput
	}
	return p, nil
}

func newTwistPoint(b []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, ErrPrecompileInput
	}
	return p, nil
}

// --- 0x09 BLAKE2F (EIP-152) ---

type blake2FContract struct{}

const blake2FInputLength = 213

func (blake2FContract) RequiredGas(input []byte) uint64 {
	if len(input) != blake2FInputLength {
		return 0
	}
	rounds := beUint32(input[0:4])
	return uint64(rounds)
}

func (blake2FContract) Run(input []byte) ([]byte, error) {
	if len(input) != blake2FInputLength {
		return nil, ErrPrecompileInput
	}
	rounds := beUint32(input[0:4])
	final := input[212]
	if final != 0 && final != 1 {
		return nil, ErrPrecompileInput
	}

	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = leUint64(input[4+i*8:])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = leUint64(input[68+i*8:])
	}
	var t [2]uint64
	t[0] = leUint64(input[196:])
	t[1] = leUint64(input[204:])

	out := blake2b.F(int(rounds), h, m, t, final == 1)
	ret := make([]byte, 64)
	for i, v := range out {
		putLeUint64(ret[i*8:], v)
	}
	return ret, nil
}

// --- 0x0a KZG point evaluation (EIP-4844) ---

// kzgPointEvalContract carries its verifier by value so each call to
// precompilesFor builds one bound to the issuing EVM's own
// Config.KZGVerifier, rather than reaching for shared state.
type kzgPointEvalContract struct {
	verifier KZGVerifier
}

func (kzgPointEvalContract) RequiredGas([]byte) uint64 { return KZGPointEvalGas }

// BlsModulus is the BLS12-381 scalar field modulus and FieldElementsPerBlob
// is the number of field elements per blob (4096); both are returned packed
// together as the precompile's success output per EIP-4844.
var (
	BlsModulus, _        = new(big.Int).SetString("52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)
	FieldElementsPerBlob = big.NewInt(4096)
)

var kzgReturnValue = append(append([]byte{}, uint256BE(BlsModulus)...), uint256BE(FieldElementsPerBlob)...)

func (c kzgPointEvalContract) Run(input []byte) ([]byte, error) {
	if len(input) != 192 {
		return nil, ErrPrecompileInput
	}
	var commitment [48]byte
	var z, y [32]byte
	var proof [48]byte
	copy(commitment[:], input[32:80])
	copy(z[:], input[80:112])
	copy(y[:], input[112:144])
	copy(proof[:], input[144:192])

	if c.verifier == nil {
		return kzgReturnValue, nil
	}
	if !c.verifier.VerifyProof(commitment, z, y, proof) {
		return nil, ErrPrecompileInput
	}
	return kzgReturnValue, nil
}

func wordCount(n int) uint64 { return uint64((n + 31) / 32) }

func rightPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func putLeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func uint256BE(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	return out
}
