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

	"github.com/bleached/go-ovm/params"
)

// Stack is the 256-bit word stack of one interpreter run. Capacity is bounded
// by params.StackLimit; the bound is enforced by the jump table's min/max
// stack heights before every step.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return &Stack{data: make([]uint256.Int, 0, 16)}
}

// Data returns the underlying slice, bottom first. Callers must not mutate it.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

func (st *Stack) push(d *uint256.Int) {
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) len() int {
	return len(st.data)
}

func (st *Stack) swap(n int) {
	st.data[st.len()-n], st.data[st.len()-1] = st.data[st.len()-1], st.data[st.len()-n]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[st.len()-n])
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[st.len()-1]
}

// Back returns the n'th item from the top of the stack.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.len()-n-1]
}

// require reports ErrStackUnderflow/ErrStackOverflow for a step that pops
// `pop` items and leaves the stack `grow` items taller. The interpreter
// normally enforces this through the jump table; the helper exists for direct
// stack users such as tests.
func (st *Stack) require(pop, grow int) error {
	if st.len() < pop {
		return &ErrStackUnderflow{stackLen: st.len(), required: pop}
	}
	if st.len()+grow > int(params.StackLimit) {
		return &ErrStackOverflow{stackLen: st.len() + grow, limit: int(params.StackLimit)}
	}
	return nil
}
