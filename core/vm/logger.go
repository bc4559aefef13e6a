// Copyright 2015 The go-ethereum Authors
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
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/core/state"
)

// StepEvent is emitted before every opcode executes.
type StepEvent struct {
	PC          uint64
	Op          OpCode
	OpName      string
	Fee         uint64
	GasLeft     *uint256.Int
	Stack       []uint256.Int
	MemorySize  int
	Depth       int
	Address     common.Address
	CodeAddress common.Address
	Account     *state.Account
}

// Observer receives execution events. Events are advisory: implementations
// must not influence execution, and no delivery guarantee exists beyond
// in-order-per-message.
type Observer interface {
	BeforeMessage(msg *Message)
	AfterMessage(msg *Message, result *Result)
	NewContract(addr common.Address, code []byte)
	Step(ev *StepEvent)
}

// NoopObserver is the default observer.
type NoopObserver struct{}

func (NoopObserver) BeforeMessage(*Message)                 {}
func (NoopObserver) AfterMessage(*Message, *Result)         {}
func (NoopObserver) NewContract(common.Address, []byte)     {}
func (NoopObserver) Step(*StepEvent)                        {}

// LogObserver writes every event to the structured log: message and contract
// events at debug level, step events at trace level.
type LogObserver struct{}

func (LogObserver) BeforeMessage(msg *Message) {
	to := "create"
	if msg.To != nil {
		to = msg.To.Hex()
	}
	log.Debug("Message enter", "caller", msg.Caller, "to", to, "depth", msg.Depth,
		"value", msg.Value, "gasLimit", msg.GasLimit, "static", msg.IsStatic)
}

func (LogObserver) AfterMessage(msg *Message, result *Result) {
	log.Debug("Message exit", "depth", msg.Depth, "gasUsed", result.GasUsed,
		"err", result.ExecResult.Err, "returnLen", len(result.ExecResult.ReturnValue))
}

func (LogObserver) NewContract(addr common.Address, code []byte) {
	log.Debug("New contract", "addr", addr, "codeLen", len(code))
}

func (LogObserver) Step(ev *StepEvent) {
	log.Trace("Step", "pc", ev.PC, "op", ev.OpName, "gas", ev.GasLeft,
		"stack", len(ev.Stack), "mem", ev.MemorySize, "depth", ev.Depth)
}
