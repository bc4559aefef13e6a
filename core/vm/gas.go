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
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/params"
)

// toWordSize returns the ceiled word count of a byte size.
func toWordSize(size uint64) uint64 {
	if size > (1<<64)-31 {
		return (1<<64)/32 + 1
	}
	return (size + 31) / 32
}

// memoryCost is the total memory fee for the given word count:
// 3*words + words²/512.
func memoryCost(words uint64) uint64 {
	return words*params.MemoryGas + words*words/params.QuadCoeffDiv
}

// subMemUsage expands memory to cover [offset, offset+length) and charges the
// incremental expansion fee. The fee is monotonic: RunState tracks the highest
// cost already paid and only the delta is deducted.
func subMemUsage(rs *RunState, offset, length uint64) error {
	if length == 0 {
		return nil
	}
	newSize := offset + length
	if newSize < offset { // overflow
		return ErrOutOfGas
	}
	newWords := toWordSize(newSize)
	if newWords > rs.MemoryWordCount {
		cost := memoryCost(newWords)
		if cost > rs.HighestMemCost {
			if err := rs.EEI.useGasUint64(cost - rs.HighestMemCost); err != nil {
				return err
			}
			rs.HighestMemCost = cost
		}
		rs.MemoryWordCount = newWords
	}
	rs.Memory.Resize(newWords * 32)
	return nil
}

// copyGas charges the per-word fee of a *COPY operation.
func copyGas(rs *RunState, length uint64) error {
	return rs.EEI.useGasUint64(toWordSize(length) * params.CopyGas)
}

// allButOne64th implements the EIP-150 gas forwarding cap.
func allButOne64th(gas *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Set(gas)
	return out.Sub(out, new(uint256.Int).Div(gas, uint256.NewInt(64)))
}

// callGas caps the requested child gas at the EIP-150 limit of the gas still
// available after the call's fixed costs were charged.
func callGas(rules params.Rules, available, requested *uint256.Int) *uint256.Int {
	if !rules.IsEIP150 {
		return new(uint256.Int).Set(requested)
	}
	max := allButOne64th(available)
	if requested.Gt(max) {
		return max
	}
	return new(uint256.Int).Set(requested)
}

// sstoreGas charges the storage-write fee and books the matching refund for
// one SSTORE under the active fork rules. original is the slot value at the
// start of the transaction, current the value before this write.
func sstoreGas(eei *EEI, original, current, value common.Hash) error {
	if eei.evm.rules.IsIstanbul {
		return sstoreGasEIP2200(eei, original, current, value)
	}
	zero := common.Hash{}
	switch {
	case current == zero && value != zero:
		return eei.useGasUint64(params.SstoreSetGas)
	case current != zero && value == zero:
		eei.RefundGas(uint256.NewInt(params.SstoreRefundGas))
		return eei.useGasUint64(params.SstoreClearGas)
	default:
		return eei.useGasUint64(params.SstoreResetGas)
	}
}

// sstoreGasEIP2200 implements Istanbul net gas metering over the
// original-storage cache.
func sstoreGasEIP2200(eei *EEI, original, current, value common.Hash) error {
	// The sentry check makes SSTORE unusable from within the call stipend.
	if eei.gasLeft.LtUint64(params.SstoreSentryGasEIP2200 + 1) {
		return ErrOutOfGas
	}
	zero := common.Hash{}
	if current == value { // noop
		return eei.useGasUint64(params.SloadGasEIP2200)
	}
	if original == current {
		if original == zero { // create slot
			return eei.useGasUint64(params.SstoreSetGasEIP2200)
		}
		if value == zero { // delete slot
			eei.RefundGas(uint256.NewInt(params.SstoreClearsScheduleRefundEIP2200))
		}
		return eei.useGasUint64(params.SstoreResetGasEIP2200)
	}
	// Dirty slot: charge the cheap rate and settle the refund counter.
	if original != zero {
		if current == zero { // recreated: undo the earlier clear refund
			eei.SubRefund(uint256.NewInt(params.SstoreClearsScheduleRefundEIP2200))
		} else if value == zero { // delete after dirty write
			eei.RefundGas(uint256.NewInt(params.SstoreClearsScheduleRefundEIP2200))
		}
	}
	if original == value {
		if original == zero { // reset to original empty slot
			eei.RefundGas(uint256.NewInt(params.SstoreSetGasEIP2200 - params.SloadGasEIP2200))
		} else { // reset to original non-empty slot
			eei.RefundGas(uint256.NewInt(params.SstoreResetGasEIP2200 - params.SloadGasEIP2200))
		}
	}
	return eei.useGasUint64(params.SloadGasEIP2200)
}
