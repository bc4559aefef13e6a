// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/params"
)

// StateView is the host state the executor runs against. All mutation flows
// through Checkpoint/Commit/Revert; the executor opens exactly one checkpoint
// per message and closes it on exit.
type StateView interface {
	GetAccount(addr common.Address) (*state.Account, error)
	PutAccount(addr common.Address, acc *state.Account) error
	AccountExists(addr common.Address) (bool, error)

	GetContractCode(addr common.Address) ([]byte, error)
	PutContractCode(addr common.Address, code []byte) error

	GetContractStorage(addr common.Address, key common.Hash) (common.Hash, error)
	PutContractStorage(addr common.Address, key common.Hash, value common.Hash) error
	ClearContractStorage(addr common.Address) error

	Checkpoint()
	Commit() error
	Revert() error
}

// ContractRegistry resolves the OVM pseudo-contracts the executor needs to
// recognize and the entry rewrite it applies at depth 0.
type ContractRegistry interface {
	// ExecutionManagerAddress is the address every entry message is
	// re-targeted to.
	ExecutionManagerAddress() common.Address

	// StateManagerAddress is the pseudo-address whose calls are intercepted
	// and served by the StateBridge instead of byte-code.
	StateManagerAddress() common.Address

	// ECDSAContractAccountCode is the well-known wrapper byte-code installed
	// at externally-owned entry accounts.
	ECDSAContractAccountCode() []byte

	// EncodeEntry ABI-encodes the Execution Manager entry call for the given
	// original target (nil for creation) and calldata.
	EncodeEntry(target *common.Address, data []byte, gasLimit *uint256.Int) ([]byte, error)
}

// StateBridge handles calls routed to the StateManager pseudo-address by
// serving them out of the host state, bypassing interpretation.
type StateBridge interface {
	HandleCall(msg *Message) ([]byte, error)
}

// BlockContext is the immutable per-block environment.
type BlockContext struct {
	Coinbase   common.Address
	Number     *uint256.Int
	Timestamp  *uint256.Int
	Difficulty *uint256.Int
	GasLimit   *uint256.Int

	// GetHash resolves a historical block hash for BLOCKHASH.
	GetHash func(uint64) common.Hash
}

// TxContext is the immutable per-transaction environment.
type TxContext struct {
	Origin   common.Address
	GasPrice *uint256.Int
}

// Context bundles every capability the executor borrows from its host. It
// replaces back-pointer cycles between the executor, the bridge and the VM
// owner with one explicitly typed seam.
type Context struct {
	State     StateView
	Config    *params.ChainConfig
	Contracts ContractRegistry
	Bridge    StateBridge
	Observer  Observer

	Block BlockContext
	Tx    TxContext
}
