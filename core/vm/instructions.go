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
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/params"
)

func opStop(rs *RunState) error {
	return errStopToken
}

func opAdd(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Add(&x, y)
	return nil
}

func opMul(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Mul(&x, y)
	return nil
}

func opSub(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Sub(&x, y)
	return nil
}

func opDiv(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Div(&x, y)
	return nil
}

func opSdiv(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.SDiv(&x, y)
	return nil
}

func opMod(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Mod(&x, y)
	return nil
}

func opSmod(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.SMod(&x, y)
	return nil
}

func opAddmod(rs *RunState) error {
	x, y, z := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(&x, &y, z)
	}
	return nil
}

func opMulmod(rs *RunState) error {
	x, y, z := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.MulMod(&x, &y, z)
	}
	return nil
}

func opExp(rs *RunState) error {
	base, exponent := rs.Stack.pop(), rs.Stack.peek()
	expByteLen := uint64((exponent.BitLen() + 7) / 8)
	if err := rs.EEI.useGasUint64(expByteLen * rs.EEI.evm.gasTable.ExpByte); err != nil {
		return err
	}
	exponent.Exp(&base, exponent)
	return nil
}

func opSignExtend(rs *RunState) error {
	back, num := rs.Stack.pop(), rs.Stack.peek()
	num.ExtendSign(num, &back)
	return nil
}

func opLt(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opGt(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSlt(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSgt(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opEq(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opIszero(rs *RunState) error {
	x := rs.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil
}

func opAnd(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.And(&x, y)
	return nil
}

func opOr(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Or(&x, y)
	return nil
}

func opXor(rs *RunState) error {
	x, y := rs.Stack.pop(), rs.Stack.peek()
	y.Xor(&x, y)
	return nil
}

func opNot(rs *RunState) error {
	x := rs.Stack.peek()
	x.Not(x)
	return nil
}

func opByte(rs *RunState) error {
	th, val := rs.Stack.pop(), rs.Stack.peek()
	val.Byte(&th)
	return nil
}

func opSHL(rs *RunState) error {
	shift, value := rs.Stack.pop(), rs.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opSHR(rs *RunState) error {
	shift, value := rs.Stack.pop(), rs.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opSAR(rs *RunState) error {
	shift, value := rs.Stack.pop(), rs.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil
}

func opSha3(rs *RunState) error {
	offsetW, sizeW := rs.Stack.pop(), rs.Stack.peek()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	size, err := memOffset(sizeW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, size); err != nil {
		return err
	}
	if err := rs.EEI.useGasUint64(toWordSize(size) * params.Sha3WordGas); err != nil {
		return err
	}
	hash := crypto.Keccak256(rs.Memory.GetPtr(offset, size))
	sizeW.SetBytes(hash)
	return nil
}

func opAddress(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).SetBytes(rs.EEI.env.Address.Bytes()))
	return nil
}

func opBalance(rs *RunState) error {
	slot := rs.Stack.peek()
	addr := common.Address(slot.Bytes20())
	balance, err := rs.EEI.GetBalance(addr)
	if err != nil {
		return err
	}
	slot.Set(balance)
	return nil
}

func opOrigin(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).SetBytes(rs.EEI.env.Origin.Bytes()))
	return nil
}

func opCaller(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).SetBytes(rs.EEI.env.Caller.Bytes()))
	return nil
}

func opCallValue(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.CallValue))
	return nil
}

func opCallDataLoad(rs *RunState) error {
	x := rs.Stack.peek()
	offset := dataOffset(x)
	x.SetBytes(getData(rs.EEI.env.CallData, offset, 32))
	return nil
}

func opCallDataSize(rs *RunState) error {
	rs.Stack.push(uint256.NewInt(uint64(len(rs.EEI.env.CallData))))
	return nil
}

func opCallDataCopy(rs *RunState) error {
	memOff, dataOff, length := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	mOff, err := memOffset(&memOff)
	if err != nil {
		return err
	}
	size, err := memOffset(&length)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, mOff, size); err != nil {
		return err
	}
	if err := copyGas(rs, size); err != nil {
		return err
	}
	rs.Memory.Set(mOff, size, getData(rs.EEI.env.CallData, dataOffset(&dataOff), size))
	return nil
}

func opCodeSize(rs *RunState) error {
	rs.Stack.push(uint256.NewInt(uint64(len(rs.Code))))
	return nil
}

func opCodeCopy(rs *RunState) error {
	memOff, codeOff, length := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	mOff, err := memOffset(&memOff)
	if err != nil {
		return err
	}
	size, err := memOffset(&length)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, mOff, size); err != nil {
		return err
	}
	if err := copyGas(rs, size); err != nil {
		return err
	}
	rs.Memory.Set(mOff, size, getData(rs.Code, dataOffset(&codeOff), size))
	return nil
}

func opGasprice(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.GasPrice))
	return nil
}

func opExtCodeSize(rs *RunState) error {
	slot := rs.Stack.peek()
	addr := common.Address(slot.Bytes20())
	size, err := rs.EEI.GetExternalCodeSize(addr)
	if err != nil {
		return err
	}
	slot.SetUint64(size)
	return nil
}

func opExtCodeCopy(rs *RunState) error {
	addrW, memOff, codeOff, length := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	mOff, err := memOffset(&memOff)
	if err != nil {
		return err
	}
	size, err := memOffset(&length)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, mOff, size); err != nil {
		return err
	}
	if err := copyGas(rs, size); err != nil {
		return err
	}
	code, err := rs.EEI.GetExternalCode(common.Address(addrW.Bytes20()))
	if err != nil {
		return err
	}
	rs.Memory.Set(mOff, size, getData(code, dataOffset(&codeOff), size))
	return nil
}

func opExtCodeHash(rs *RunState) error {
	slot := rs.Stack.peek()
	hash, err := rs.EEI.GetExternalCodeHash(common.Address(slot.Bytes20()))
	if err != nil {
		return err
	}
	slot.SetBytes(hash.Bytes())
	return nil
}

func opReturnDataSize(rs *RunState) error {
	rs.Stack.push(uint256.NewInt(uint64(len(rs.EEI.lastReturned))))
	return nil
}

func opReturnDataCopy(rs *RunState) error {
	memOff, dataOff, length := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	mOff, err := memOffset(&memOff)
	if err != nil {
		return err
	}
	size, err := memOffset(&length)
	if err != nil {
		return err
	}
	if !dataOff.IsUint64() {
		return ErrReturnDataOutOfBounds
	}
	end := dataOff.Uint64() + size
	if end < size || end > uint64(len(rs.EEI.lastReturned)) {
		return ErrReturnDataOutOfBounds
	}
	if err := subMemUsage(rs, mOff, size); err != nil {
		return err
	}
	if err := copyGas(rs, size); err != nil {
		return err
	}
	rs.Memory.Set(mOff, size, rs.EEI.lastReturned[dataOff.Uint64():end])
	return nil
}

func opBlockhash(rs *RunState) error {
	num := rs.Stack.peek()
	block := rs.EEI.env.Block
	if block.GetHash == nil || !num.IsUint64() {
		num.Clear()
		return nil
	}
	wanted, current := num.Uint64(), block.Number.Uint64()
	if wanted >= current || wanted+256 < current {
		num.Clear()
		return nil
	}
	num.SetBytes(block.GetHash(wanted).Bytes())
	return nil
}

func opCoinbase(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).SetBytes(rs.EEI.env.Block.Coinbase.Bytes()))
	return nil
}

func opTimestamp(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.Block.Timestamp))
	return nil
}

func opNumber(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.Block.Number))
	return nil
}

func opDifficulty(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.Block.Difficulty))
	return nil
}

func opGasLimit(rs *RunState) error {
	rs.Stack.push(new(uint256.Int).Set(rs.EEI.env.Block.GasLimit))
	return nil
}

func opChainID(rs *RunState) error {
	rs.Stack.push(uint256.NewInt(rs.EEI.evm.rules.ChainID))
	return nil
}

func opSelfBalance(rs *RunState) error {
	balance, err := rs.EEI.GetSelfBalance()
	if err != nil {
		return err
	}
	rs.Stack.push(new(uint256.Int).Set(balance))
	return nil
}

func opPop(rs *RunState) error {
	rs.Stack.pop()
	return nil
}

func opMload(rs *RunState) error {
	v := rs.Stack.peek()
	offset, err := memOffset(v)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, 32); err != nil {
		return err
	}
	v.SetBytes(rs.Memory.GetPtr(offset, 32))
	return nil
}

func opMstore(rs *RunState) error {
	offsetW, val := rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, 32); err != nil {
		return err
	}
	rs.Memory.Set32(offset, &val)
	return nil
}

func opMstore8(rs *RunState) error {
	offsetW, val := rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, 1); err != nil {
		return err
	}
	rs.Memory.Set(offset, 1, []byte{byte(val.Uint64())})
	return nil
}

func opSload(rs *RunState) error {
	loc := rs.Stack.peek()
	val, err := rs.EEI.StorageLoad(common.Hash(loc.Bytes32()))
	if err != nil {
		return err
	}
	loc.SetBytes(val.Bytes())
	return nil
}

func opSstore(rs *RunState) error {
	loc, val := rs.Stack.pop(), rs.Stack.pop()
	return rs.EEI.StorageStore(common.Hash(loc.Bytes32()), common.Hash(val.Bytes32()))
}

func opJump(rs *RunState) error {
	pos := rs.Stack.pop()
	if !pos.IsUint64() {
		return ErrInvalidJump
	}
	dest := pos.Uint64()
	if _, ok := rs.ValidJumps[dest]; !ok {
		return ErrInvalidJump
	}
	rs.ProgramCounter = dest
	return nil
}

func opJumpi(rs *RunState) error {
	pos, cond := rs.Stack.pop(), rs.Stack.pop()
	if cond.IsZero() {
		return nil
	}
	if !pos.IsUint64() {
		return ErrInvalidJump
	}
	dest := pos.Uint64()
	if _, ok := rs.ValidJumps[dest]; !ok {
		return ErrInvalidJump
	}
	rs.ProgramCounter = dest
	return nil
}

func opPc(rs *RunState) error {
	// The counter was already advanced past this opcode.
	rs.Stack.push(uint256.NewInt(rs.ProgramCounter - 1))
	return nil
}

func opMsize(rs *RunState) error {
	rs.Stack.push(uint256.NewInt(uint64(rs.Memory.Len())))
	return nil
}

func opGas(rs *RunState) error {
	rs.Stack.push(rs.EEI.GasLeft())
	return nil
}

func opJumpdest(rs *RunState) error {
	return nil
}

func makePush(size uint64) executionFunc {
	return func(rs *RunState) error {
		value := new(uint256.Int).SetBytes(getData(rs.Code, rs.ProgramCounter, size))
		rs.Stack.push(value)
		rs.ProgramCounter += size
		return nil
	}
}

func makeDup(size int) executionFunc {
	return func(rs *RunState) error {
		rs.Stack.dup(size)
		return nil
	}
}

func makeSwap(size int) executionFunc {
	return func(rs *RunState) error {
		rs.Stack.swap(size + 1)
		return nil
	}
}

func makeLog(size int) executionFunc {
	return func(rs *RunState) error {
		memOff, length := rs.Stack.pop(), rs.Stack.pop()
		topics := make([]common.Hash, size)
		for i := 0; i < size; i++ {
			t := rs.Stack.pop()
			topics[i] = common.Hash(t.Bytes32())
		}
		mOff, err := memOffset(&memOff)
		if err != nil {
			return err
		}
		sz, err := memOffset(&length)
		if err != nil {
			return err
		}
		if err := subMemUsage(rs, mOff, sz); err != nil {
			return err
		}
		fee := uint64(size)*params.LogTopicGas + sz*params.LogDataGas
		if err := rs.EEI.useGasUint64(fee); err != nil {
			return err
		}
		return rs.EEI.Log(topics, rs.Memory.GetCopy(mOff, sz))
	}
}

func opCreate(rs *RunState) error {
	value, offsetW, sizeW := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	size, err := memOffset(&sizeW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, size); err != nil {
		return err
	}
	code := rs.Memory.GetCopy(offset, size)
	gas := rs.EEI.GasLeft()
	if rs.EEI.evm.rules.IsEIP150 {
		gas = allButOne64th(gas)
	}
	addr, ok, err := rs.EEI.create(&value, code, gas, nil)
	if err != nil {
		return err
	}
	if ok {
		rs.Stack.push(new(uint256.Int).SetBytes(addr.Bytes()))
	} else {
		rs.Stack.push(new(uint256.Int))
	}
	return nil
}

func opCreate2(rs *RunState) error {
	value, offsetW, sizeW, salt := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	size, err := memOffset(&sizeW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, size); err != nil {
		return err
	}
	if err := rs.EEI.useGasUint64(toWordSize(size) * params.Sha3WordGas); err != nil {
		return err
	}
	code := rs.Memory.GetCopy(offset, size)
	gas := allButOne64th(rs.EEI.GasLeft())
	saltBytes := salt.Bytes32()
	addr, ok, err := rs.EEI.create(&value, code, gas, saltBytes[:])
	if err != nil {
		return err
	}
	if ok {
		rs.Stack.push(new(uint256.Int).SetBytes(addr.Bytes()))
	} else {
		rs.Stack.push(new(uint256.Int))
	}
	return nil
}

// callSetup pops and charges the parts every CALL-family opcode shares: the
// two memory regions and the EIP-150 gas cap.
type callRegions struct {
	in, inSize, ret, retSize uint64
	gas                      *uint256.Int
}

func callSetup(rs *RunState, requested *uint256.Int, extraGas uint64) (callRegions, error) {
	var r callRegions
	inOff, inSize := rs.Stack.pop(), rs.Stack.pop()
	retOff, retSize := rs.Stack.pop(), rs.Stack.pop()
	var err error
	if r.in, err = memOffset(&inOff); err != nil {
		return r, err
	}
	if r.inSize, err = memOffset(&inSize); err != nil {
		return r, err
	}
	if r.ret, err = memOffset(&retOff); err != nil {
		return r, err
	}
	if r.retSize, err = memOffset(&retSize); err != nil {
		return r, err
	}
	if err = subMemUsage(rs, r.in, r.inSize); err != nil {
		return r, err
	}
	if err = subMemUsage(rs, r.ret, r.retSize); err != nil {
		return r, err
	}
	if extraGas > 0 {
		if err = rs.EEI.useGasUint64(extraGas); err != nil {
			return r, err
		}
	}
	r.gas = callGas(rs.EEI.evm.rules, rs.EEI.GasLeft(), requested)
	return r, nil
}

func finishCall(rs *RunState, r callRegions, ok bool) {
	ret := rs.EEI.lastReturned
	if n := uint64(len(ret)); n > 0 && r.retSize > 0 {
		if n > r.retSize {
			n = r.retSize
		}
		rs.Memory.Set(r.ret, n, ret[:n])
	}
	if ok {
		rs.Stack.push(new(uint256.Int).SetOne())
	} else {
		rs.Stack.push(new(uint256.Int))
	}
}

// transferSurcharge computes the value-transfer and new-account surcharges of
// CALL (and the transfer part of CALLCODE).
func transferSurcharge(rs *RunState, to common.Address, value *uint256.Int, newAccountCheck bool) (uint64, error) {
	if value.IsZero() {
		return 0, nil
	}
	extra := params.CallValueTransferGas
	if !newAccountCheck {
		return extra, nil
	}
	if rs.EEI.evm.rules.IsEIP158 {
		empty, err := rs.EEI.IsAccountEmpty(to)
		if err != nil {
			return 0, err
		}
		if empty {
			extra += params.CallNewAccountGas
		}
	} else {
		exists, err := rs.EEI.AccountExists(to)
		if err != nil {
			return 0, err
		}
		if !exists {
			extra += params.CallNewAccountGas
		}
	}
	return extra, nil
}

func opCall(rs *RunState) error {
	requested, addrW, value := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	to := common.Address(addrW.Bytes20())
	if !value.IsZero() && rs.EEI.env.IsStatic {
		return ErrWriteProtection
	}
	extra, err := transferSurcharge(rs, to, &value, true)
	if err != nil {
		return err
	}
	r, err := callSetup(rs, &requested, extra)
	if err != nil {
		return err
	}
	ok, err := rs.EEI.call(callParams{
		to:     to,
		value:  &value,
		input:  rs.Memory.GetCopy(r.in, r.inSize),
		gas:    r.gas,
		caller: rs.EEI.env.Address,
	})
	if err != nil {
		return err
	}
	finishCall(rs, r, ok)
	return nil
}

func opCallCode(rs *RunState) error {
	requested, addrW, value := rs.Stack.pop(), rs.Stack.pop(), rs.Stack.pop()
	codeAddr := common.Address(addrW.Bytes20())
	extra, err := transferSurcharge(rs, rs.EEI.env.Address, &value, false)
	if err != nil {
		return err
	}
	r, err := callSetup(rs, &requested, extra)
	if err != nil {
		return err
	}
	ok, err := rs.EEI.call(callParams{
		to:          rs.EEI.env.Address,
		codeAddress: &codeAddr,
		value:       &value,
		input:       rs.Memory.GetCopy(r.in, r.inSize),
		gas:         r.gas,
		caller:      rs.EEI.env.Address,
	})
	if err != nil {
		return err
	}
	finishCall(rs, r, ok)
	return nil
}

func opDelegateCall(rs *RunState) error {
	requested, addrW := rs.Stack.pop(), rs.Stack.pop()
	codeAddr := common.Address(addrW.Bytes20())
	r, err := callSetup(rs, &requested, 0)
	if err != nil {
		return err
	}
	ok, err := rs.EEI.call(callParams{
		to:          rs.EEI.env.Address,
		codeAddress: &codeAddr,
		value:       rs.EEI.env.CallValue,
		input:       rs.Memory.GetCopy(r.in, r.inSize),
		gas:         r.gas,
		caller:      rs.EEI.env.Caller,
		delegate:    true,
	})
	if err != nil {
		return err
	}
	finishCall(rs, r, ok)
	return nil
}

func opStaticCall(rs *RunState) error {
	requested, addrW := rs.Stack.pop(), rs.Stack.pop()
	to := common.Address(addrW.Bytes20())
	r, err := callSetup(rs, &requested, 0)
	if err != nil {
		return err
	}
	ok, err := rs.EEI.call(callParams{
		to:       to,
		value:    new(uint256.Int),
		input:    rs.Memory.GetCopy(r.in, r.inSize),
		gas:      r.gas,
		caller:   rs.EEI.env.Address,
		isStatic: true,
	})
	if err != nil {
		return err
	}
	finishCall(rs, r, ok)
	return nil
}

func opReturn(rs *RunState) error {
	offsetW, sizeW := rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	size, err := memOffset(&sizeW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, size); err != nil {
		return err
	}
	rs.EEI.returnData = rs.Memory.GetCopy(offset, size)
	return errStopToken
}

func opRevert(rs *RunState) error {
	offsetW, sizeW := rs.Stack.pop(), rs.Stack.pop()
	offset, err := memOffset(&offsetW)
	if err != nil {
		return err
	}
	size, err := memOffset(&sizeW)
	if err != nil {
		return err
	}
	if err := subMemUsage(rs, offset, size); err != nil {
		return err
	}
	rs.EEI.returnData = rs.Memory.GetCopy(offset, size)
	return ErrExecutionReverted
}

func opInvalid(rs *RunState) error {
	return &ErrInvalidOpCode{opcode: INVALID}
}

func opSelfdestruct(rs *RunState) error {
	beneficiaryW := rs.Stack.pop()
	beneficiary := common.Address(beneficiaryW.Bytes20())
	if rs.EEI.evm.rules.IsEIP158 {
		balance, err := rs.EEI.GetSelfBalance()
		if err != nil {
			return err
		}
		empty, err := rs.EEI.IsAccountEmpty(beneficiary)
		if err != nil {
			return err
		}
		if empty && !balance.IsZero() {
			if err := rs.EEI.useGasUint64(params.CallNewAccountGas); err != nil {
				return err
			}
		}
	}
	if err := rs.EEI.Selfdestruct(beneficiary); err != nil {
		return err
	}
	return errStopToken
}
