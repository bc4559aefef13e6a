package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EmptyCodeHash is the keccak of nil, the code hash of every code-less account.
var EmptyCodeHash = crypto.Keccak256Hash(nil)

// EmptyStorageRoot is the root hash of an account with no storage.
var EmptyStorageRoot = common.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// Account is the VM-facing view of one state trie leaf.
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot common.Hash
	CodeHash    common.Hash
}

// NewAccount returns a fresh empty account.
func NewAccount() *Account {
	return &Account{
		Balance:     new(uint256.Int),
		StorageRoot: EmptyStorageRoot,
		CodeHash:    EmptyCodeHash,
	}
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cpy := *a
	cpy.Balance = new(uint256.Int).Set(a.Balance)
	return &cpy
}

// IsEmpty reports the EIP-161 emptiness predicate: zero nonce, zero balance
// and no code.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && a.Balance.IsZero() && a.CodeHash == EmptyCodeHash
}

// IsContract reports whether the account carries deployed code.
func (a *Account) IsContract() bool {
	return a.CodeHash != EmptyCodeHash && a.CodeHash != (common.Hash{})
}
