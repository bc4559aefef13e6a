// Copyright 2014 The go-ethereum Authors
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
	"github.com/holiman/uint256"
)

// RunState is the mutable interpreter state of one run.
type RunState struct {
	ProgramCounter  uint64
	OpCode          OpCode
	Stack           *Stack
	Memory          *Memory
	MemoryWordCount uint64
	HighestMemCost  uint64
	Code            []byte
	ValidJumps      map[uint64]struct{}
	EEI             *EEI
}

// Interpreter drives one byte-code run against an EEI.
type Interpreter struct {
	evm   *EVM
	eei   *EEI
	table JumpTable
}

// NewInterpreter returns an interpreter bound to the executor's fork rules.
func NewInterpreter(evm *EVM, eei *EEI) *Interpreter {
	return &Interpreter{
		evm:   evm,
		eei:   eei,
		table: newInstructionSet(evm.rules, evm.gasTable),
	}
}

// scanJumps walks the code once and records every JUMPDEST offset that is not
// buried inside a PUSH immediate. Jump targets outside this set are invalid.
func scanJumps(code []byte) map[uint64]struct{} {
	jumps := make(map[uint64]struct{})
	for pc := uint64(0); pc < uint64(len(code)); pc++ {
		op := OpCode(code[pc])
		if op.IsPush() {
			pc += uint64(op - PUSH1 + 1)
			continue
		}
		if op == JUMPDEST {
			jumps[pc] = struct{}{}
		}
	}
	return jumps
}

// Run executes code from pc until the program counter walks off the end, a
// handler stops the loop, or a typed error unwinds it. The returned error is
// the run's exceptionError; internal faults come back unwrapped as non-VM
// errors and must abort the transaction.
func (in *Interpreter) Run(code []byte, pc uint64) (*RunState, error) {
	rs := &RunState{
		ProgramCounter: pc,
		Stack:          newstack(),
		Memory:         NewMemory(),
		Code:           code,
		ValidJumps:     scanJumps(code),
		EEI:            in.eei,
	}
	for rs.ProgramCounter < uint64(len(rs.Code)) {
		opCode := OpCode(rs.Code[rs.ProgramCounter])
		rs.OpCode = opCode

		in.emitStep(rs)

		op := in.table[opCode]
		if op == nil {
			return rs, &ErrInvalidOpCode{opcode: opCode}
		}
		if sLen := rs.Stack.len(); sLen < op.minStack {
			return rs, &ErrStackUnderflow{stackLen: sLen, required: op.minStack}
		} else if sLen > op.maxStack {
			return rs, &ErrStackOverflow{stackLen: sLen, limit: op.maxStack}
		}
		if err := in.eei.useGasUint64(op.constantGas); err != nil {
			return rs, err
		}
		rs.ProgramCounter++

		if err := op.execute(rs); err != nil {
			if err == errStopToken {
				return rs, nil
			}
			return rs, err
		}
	}
	return rs, nil
}

func (in *Interpreter) emitStep(rs *RunState) {
	observer := in.evm.ctx.Observer
	if _, ok := observer.(NoopObserver); ok {
		return
	}
	name := rs.OpCode.String()
	var fee uint64
	if op := in.table[rs.OpCode]; op != nil {
		fee = op.constantGas
	}
	stack := make([]uint256.Int, rs.Stack.len())
	copy(stack, rs.Stack.Data())
	observer.Step(&StepEvent{
		PC:          rs.ProgramCounter,
		Op:          rs.OpCode,
		OpName:      name,
		Fee:         fee,
		GasLeft:     in.eei.GasLeft(),
		Stack:       stack,
		MemorySize:  rs.Memory.Len(),
		Depth:       in.eei.env.Depth,
		Address:     in.eei.env.Address,
		CodeAddress: in.eei.env.CodeAddress,
		Account:     in.eei.env.ContractAccount,
	})
}
