package vm

import (
	"github.com/coreexec/evmcore/core/types"
	"github.com/holiman/uint256"
)

// Database is the persistent world-state backend, consumed by the engine
// but never implemented by it (spec.md §6). Accounts, code blobs, and the
// storage trie live on the other side of this interface; the core only
// ever sees it through these operations. Every mutating method returns an
// error so write rejection (e.g. EIP-214 static-context enforcement,
// applied at the Host layer -- see StaticHost) can be reported without
// resorting to panics.
type Database interface {
	GetAccount(addr types.Address) (types.Account, bool)
	SetAccount(addr types.Address, acct types.Account) error
	DeleteAccount(addr types.Address) error

	GetStorage(addr types.Address, key *uint256.Int) uint256.Int
	SetStorage(addr types.Address, key, value *uint256.Int) error

	GetTransientStorage(addr types.Address, key *uint256.Int) uint256.Int
	SetTransientStorage(addr types.Address, key, value *uint256.Int) error

	GetCode(codeHash types.Hash) []byte
	SetCode(code []byte) (types.Hash, error)
	GetCodeByAddress(addr types.Address) []byte

	// CreateSnapshot/RevertToSnapshot/CommitSnapshot are database-level
	// checkpoints, independent of the engine's own Journal, used by the
	// outer driver to bound whole-transaction or whole-block boundaries.
	CreateSnapshot() int
	RevertToSnapshot(id int)
	CommitSnapshot(id int)
}

// newEmptyAccount returns a zero-value account with a non-nil balance,
// ready for first use by CreateAccount.
func newEmptyAccount() types.Account {
	return types.Account{Balance: uint256.NewInt(0), CodeHash: types.EmptyCodeHash}
}
