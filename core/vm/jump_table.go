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
	"github.com/bleached/go-ovm/params"
)

type executionFunc func(rs *RunState) error

// operation is one jump-table entry: the handler, the base fee charged by the
// step loop before the handler runs, and the stack height window validated
// before the fee is charged.
type operation struct {
	execute     executionFunc
	constantGas uint64
	minStack    int
	maxStack    int
}

// JumpTable maps opcodes to operations for one fork.
type JumpTable [256]*operation

func minStack(pops, push int) int {
	return pops
}

func maxStack(pops, push int) int {
	return int(params.StackLimit) + pops - push
}

// Gas cost tiers, following the yellow-paper naming.
const (
	gasZero    uint64 = 0
	gasBase    uint64 = 2
	gasVeryLow uint64 = 3
	gasLow     uint64 = 5
	gasMid     uint64 = 8
	gasHigh    uint64 = 10
)

// newInstructionSet builds the jump table for the given rule snapshot.
func newInstructionSet(rules params.Rules, gt params.GasTable) JumpTable {
	tbl := newFrontierInstructionSet(gt)
	if rules.IsHomestead {
		tbl[DELEGATECALL] = &operation{
			execute:     opDelegateCall,
			constantGas: gt.Calls,
			minStack:    minStack(6, 1),
			maxStack:    maxStack(6, 1),
		}
	}
	if rules.IsByzantium {
		tbl[STATICCALL] = &operation{
			execute:     opStaticCall,
			constantGas: gt.Calls,
			minStack:    minStack(6, 1),
			maxStack:    maxStack(6, 1),
		}
		tbl[RETURNDATASIZE] = &operation{
			execute:     opReturnDataSize,
			constantGas: gasBase,
			minStack:    minStack(0, 1),
			maxStack:    maxStack(0, 1),
		}
		tbl[RETURNDATACOPY] = &operation{
			execute:     opReturnDataCopy,
			constantGas: gasVeryLow,
			minStack:    minStack(3, 0),
			maxStack:    maxStack(3, 0),
		}
		tbl[REVERT] = &operation{
			execute:     opRevert,
			constantGas: gasZero,
			minStack:    minStack(2, 0),
			maxStack:    maxStack(2, 0),
		}
	}
	if rules.IsConstantinople {
		tbl[SHL] = &operation{
			execute:     opSHL,
			constantGas: gasVeryLow,
			minStack:    minStack(2, 1),
			maxStack:    maxStack(2, 1),
		}
		tbl[SHR] = &operation{
			execute:     opSHR,
			constantGas: gasVeryLow,
			minStack:    minStack(2, 1),
			maxStack:    maxStack(2, 1),
		}
		tbl[SAR] = &operation{
			execute:     opSAR,
			constantGas: gasVeryLow,
			minStack:    minStack(2, 1),
			maxStack:    maxStack(2, 1),
		}
		tbl[EXTCODEHASH] = &operation{
			execute:     opExtCodeHash,
			constantGas: gt.ExtcodeHash,
			minStack:    minStack(1, 1),
			maxStack:    maxStack(1, 1),
		}
		tbl[CREATE2] = &operation{
			execute:     opCreate2,
			constantGas: params.CreateGas,
			minStack:    minStack(4, 1),
			maxStack:    maxStack(4, 1),
		}
	}
	if rules.IsIstanbul {
		tbl[CHAINID] = &operation{
			execute:     opChainID,
			constantGas: gasBase,
			minStack:    minStack(0, 1),
			maxStack:    maxStack(0, 1),
		}
		tbl[SELFBALANCE] = &operation{
			execute:     opSelfBalance,
			constantGas: gasLow,
			minStack:    minStack(0, 1),
			maxStack:    maxStack(0, 1),
		}
	}
	return tbl
}

func newFrontierInstructionSet(gt params.GasTable) JumpTable {
	tbl := JumpTable{
		STOP:       {execute: opStop, constantGas: gasZero, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},
		ADD:        {execute: opAdd, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		MUL:        {execute: opMul, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SUB:        {execute: opSub, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		DIV:        {execute: opDiv, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SDIV:       {execute: opSdiv, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		MOD:        {execute: opMod, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SMOD:       {execute: opSmod, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		ADDMOD:     {execute: opAddmod, constantGas: gasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)},
		MULMOD:     {execute: opMulmod, constantGas: gasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)},
		EXP:        {execute: opExp, constantGas: params.ExpGas, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SIGNEXTEND: {execute: opSignExtend, constantGas: gasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		LT:     {execute: opLt, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		GT:     {execute: opGt, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SLT:    {execute: opSlt, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SGT:    {execute: opSgt, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		EQ:     {execute: opEq, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		ISZERO: {execute: opIszero, constantGas: gasVeryLow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		AND:    {execute: opAnd, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		OR:     {execute: opOr, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		XOR:    {execute: opXor, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		NOT:    {execute: opNot, constantGas: gasVeryLow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		BYTE:   {execute: opByte, constantGas: gasVeryLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		SHA3: {execute: opSha3, constantGas: params.Sha3Gas, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		ADDRESS:      {execute: opAddress, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		BALANCE:      {execute: opBalance, constantGas: gt.Balance, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		ORIGIN:       {execute: opOrigin, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLER:       {execute: opCaller, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLVALUE:    {execute: opCallValue, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLDATALOAD: {execute: opCallDataLoad, constantGas: gasVeryLow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		CALLDATASIZE: {execute: opCallDataSize, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLDATACOPY: {execute: opCallDataCopy, constantGas: gasVeryLow, minStack: minStack(3, 0), maxStack: maxStack(3, 0)},
		CODESIZE:     {execute: opCodeSize, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CODECOPY:     {execute: opCodeCopy, constantGas: gasVeryLow, minStack: minStack(3, 0), maxStack: maxStack(3, 0)},
		GASPRICE:     {execute: opGasprice, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		EXTCODESIZE:  {execute: opExtCodeSize, constantGas: gt.ExtcodeSize, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		EXTCODECOPY:  {execute: opExtCodeCopy, constantGas: gt.ExtcodeCopy, minStack: minStack(4, 0), maxStack: maxStack(4, 0)},

		BLOCKHASH:  {execute: opBlockhash, constantGas: 20, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		COINBASE:   {execute: opCoinbase, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		TIMESTAMP:  {execute: opTimestamp, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		NUMBER:     {execute: opNumber, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		DIFFICULTY: {execute: opDifficulty, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		GASLIMIT:   {execute: opGasLimit, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},

		POP:      {execute: opPop, constantGas: gasBase, minStack: minStack(1, 0), maxStack: maxStack(1, 0)},
		MLOAD:    {execute: opMload, constantGas: gasVeryLow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		MSTORE:   {execute: opMstore, constantGas: gasVeryLow, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		MSTORE8:  {execute: opMstore8, constantGas: gasVeryLow, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		SLOAD:    {execute: opSload, constantGas: gt.SLoad, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		SSTORE:   {execute: opSstore, constantGas: gasZero, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		JUMP:     {execute: opJump, constantGas: gasMid, minStack: minStack(1, 0), maxStack: maxStack(1, 0)},
		JUMPI:    {execute: opJumpi, constantGas: gasHigh, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		PC:       {execute: opPc, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		MSIZE:    {execute: opMsize, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		GAS:      {execute: opGas, constantGas: gasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		JUMPDEST: {execute: opJumpdest, constantGas: 1, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},

		CREATE: {execute: opCreate, constantGas: params.CreateGas, minStack: minStack(3, 1), maxStack: maxStack(3, 1)},
		CALL:   {execute: opCall, constantGas: gt.Calls, minStack: minStack(7, 1), maxStack: maxStack(7, 1)},
		CALLCODE: {execute: opCallCode, constantGas: gt.Calls, minStack: minStack(7, 1), maxStack: maxStack(7, 1)},
		RETURN: {execute: opReturn, constantGas: gasZero, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		INVALID: {execute: opInvalid, constantGas: gasZero, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},
		SELFDESTRUCT: {execute: opSelfdestruct, constantGas: gt.Suicide, minStack: minStack(1, 0), maxStack: maxStack(1, 0)},
	}
	for i := 0; i < 32; i++ {
		op := PUSH1 + OpCode(i)
		tbl[op] = &operation{
			execute:     makePush(uint64(i + 1)),
			constantGas: gasVeryLow,
			minStack:    minStack(0, 1),
			maxStack:    maxStack(0, 1),
		}
	}
	for i := 0; i < 16; i++ {
		tbl[DUP1+OpCode(i)] = &operation{
			execute:     makeDup(i + 1),
			constantGas: gasVeryLow,
			minStack:    minStack(i+1, i+2),
			maxStack:    maxStack(i+1, i+2),
		}
		tbl[SWAP1+OpCode(i)] = &operation{
			execute:     makeSwap(i + 1),
			constantGas: gasVeryLow,
			minStack:    minStack(i+2, i+2),
			maxStack:    maxStack(i+2, i+2),
		}
	}
	for i := 0; i < 5; i++ {
		tbl[LOG0+OpCode(i)] = &operation{
			execute:     makeLog(i),
			constantGas: params.LogGas,
			minStack:    minStack(i+2, 0),
			maxStack:    maxStack(i+2, 0),
		}
	}
	return tbl
}
