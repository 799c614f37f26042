//go:build goethkzg

// Real go-eth-kzg-backed point-evaluation verifier, gated the same way the
// teacher gates its own heavy crypto backends: loading the Ethereum KZG
// ceremony trusted setup costs real time and is never on by default.
//
// Build with: go build -tags goethkzg ./...
package runtime

import (
	gokzg4844 "github.com/crate-crypto/go-eth-kzg"

	"github.com/coreexec/evmcore/core/vm"
)

// GoEthKZGVerifier backs the point-evaluation precompile (0x0a) with the
// real Ethereum ceremony trusted setup via crate-crypto/go-eth-kzg,
// fulfilling the vm.KZGVerifier plug point (spec.md §1 scopes loading the
// trusted setup itself out of the core engine).
type GoEthKZGVerifier struct {
	ctx *gokzg4844.Context
}

var _ vm.KZGVerifier = (*GoEthKZGVerifier)(nil)

// NewGoEthKZGVerifier initializes a context from the embedded ceremony SRS.
// This is the expensive step (seconds) the core engine itself never pays.
func NewGoEthKZGVerifier() (*GoEthKZGVerifier, error) {
	ctx, err := gokzg4844.NewContext4096Secure()
	if err != nil {
		return nil, err
	}
	return &GoEthKZGVerifier{ctx: ctx}, nil
}

// VerifyProof checks that p(z) == y for the polynomial committed to by
// commitment, per EIP-4844's point-evaluation precompile.
func (v *GoEthKZGVerifier) VerifyProof(commitment [48]byte, z, y [32]byte, proof [48]byte) bool {
	var comm gokzg4844.KZGCommitment
	copy(comm[:], commitment[:])
	var zScalar, yScalar gokzg4844.Scalar
	copy(zScalar[:], z[:])
	copy(yScalar[:], y[:])
	var pf gokzg4844.KZGProof
	copy(pf[:], proof[:])

	err := v.ctx.VerifyKZGProof(comm, zScalar, yScalar, pf)
	return err == nil
}
