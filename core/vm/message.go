package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Message is one unit of execution: an external transaction at depth 0 or a
// nested call/create produced by a CALL-family or CREATE-family handler.
// Messages live for the duration of one ExecuteMessage invocation.
type Message struct {
	Caller   common.Address
	To       *common.Address // nil for contract creation
	Value    *uint256.Int
	Data     []byte
	Code     []byte // lazily resolved before interpretation
	GasLimit *uint256.Int
	Depth    int

	IsStatic     bool
	DelegateCall bool // suppresses value transfer, keeps parent caller/value

	Salt []byte // 32 bytes, set for deterministic creation

	// CodeAddress is the account whose code runs; differs from To under
	// delegatecall/callcode.
	CodeAddress *common.Address

	// OriginalTargetAddress is the sentinel set by the depth-0 entry rewrite:
	// the address the outside caller actually addressed before the message
	// was re-targeted to the Execution Manager. nil everywhere else and for
	// rewritten creation entries.
	OriginalTargetAddress *common.Address

	// IsCompiled marks Code as a precompile rather than byte-code.
	IsCompiled bool

	precompile PrecompiledContract
}

// NewMessage returns a message with the zero-value niceties filled in.
func NewMessage(caller common.Address, to *common.Address, value *uint256.Int, data []byte, gasLimit *uint256.Int) *Message {
	if value == nil {
		value = new(uint256.Int)
	}
	if gasLimit == nil {
		gasLimit = new(uint256.Int)
	}
	return &Message{
		Caller:   caller,
		To:       to,
		Value:    value,
		Data:     data,
		GasLimit: gasLimit,
	}
}

// codeTarget returns the address whose code should be resolved for this
// message.
func (m *Message) codeTarget() common.Address {
	if m.CodeAddress != nil {
		return *m.CodeAddress
	}
	if m.To != nil {
		return *m.To
	}
	return common.Address{}
}

// IsCreate reports whether the message creates a contract.
func (m *Message) IsCreate() bool {
	return m.To == nil
}

// IsTargetMessage reports whether this message is the user-visible target of
// a rewritten entry: the first message the Execution Manager issues against
// the address the outside caller originally addressed (or the first creation
// it issues, when the entry was a creation). The executor latches the first
// match.
func (m *Message) IsTargetMessage(executionManager common.Address, originalTarget *common.Address) bool {
	if m.Depth == 0 || m.Caller != executionManager {
		return false
	}
	if originalTarget == nil {
		return m.To == nil
	}
	return m.To != nil && *m.To == *originalTarget
}
