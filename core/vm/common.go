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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// getData returns a right-padded slice of data[start:start+size]; offsets past
// the end read as zeros.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

// memOffset converts a stack word into a memory offset. Offsets that do not
// fit a uint64 can never be paid for, so they surface as ErrOutOfGas.
func memOffset(word *uint256.Int) (uint64, error) {
	if !word.IsUint64() {
		return 0, ErrOutOfGas
	}
	return word.Uint64(), nil
}

// dataOffset converts a stack word into a read offset into an existing byte
// slice; anything oversized clamps to "past the end".
func dataOffset(word *uint256.Int) uint64 {
	if !word.IsUint64() {
		return ^uint64(0)
	}
	return word.Uint64()
}
