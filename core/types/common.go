// Package types defines the small set of core Ethereum data structures the
// execution engine needs (addresses, hashes, logs). It is deliberately
// self-contained so that core/vm does not need to import core/state or any
// persistence layer.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash represents the 32-byte Keccak256 hash of data.
type Hash [HashLength]byte

// Address represents the 20-byte address of an Ethereum account.
type Address [AddressLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool { return h == Hash{} }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from a byte slice, left-padding if necessary.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Account represents an Ethereum account as seen by the execution engine.
// DelegatedAddress is set only for EOAs that have installed an EIP-7702
// delegation designator; it is nil for ordinary EOAs and for contracts.
type Account struct {
	Balance          *uint256.Int
	Nonce            uint64
	CodeHash         Hash
	DelegatedAddress *Address
}

// IsEmpty reports whether the account is "empty" per EIP-161: zero balance,
// zero nonce, empty code hash, and no delegation.
func (a *Account) IsEmpty() bool {
	if a == nil {
		return true
	}
	return (a.Balance == nil || a.Balance.IsZero()) &&
		a.Nonce == 0 &&
		(a.CodeHash.IsZero() || a.CodeHash == EmptyCodeHash) &&
		a.DelegatedAddress == nil
}

// Log represents a contract log event (LOG0-LOG4).
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte

	// BlockNumber and TxHash are populated by the outer driver at commit
	// time; the engine itself only needs Address/Topics/Data/Index.
	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	Index       uint
}

// EmptyCodeHash is the Keccak256 hash of empty EVM bytecode -- the code_hash
// an externally-owned account carries.
var EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
