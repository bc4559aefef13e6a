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

package params

const (
	StackLimit      uint64 = 1024 // Maximum size of the VM stack
	CallCreateDepth uint64 = 1024 // Maximum depth of call/create stack

	MaxCodeSize = 24576 // EIP-170: maximum deployed bytecode size

	CreateDataGas uint64 = 200 // Per byte of deployed code charged after CREATE

	MemoryGas     uint64 = 3   // Per-word price of the linear memory cost term
	QuadCoeffDiv  uint64 = 512 // Divisor of the quadratic memory cost term
	CopyGas       uint64 = 3   // Per-word price of *COPY operations
	Sha3Gas       uint64 = 30  // Base price of SHA3
	Sha3WordGas   uint64 = 6   // Per-word price of SHA3 input
	LogGas        uint64 = 375 // Base price of a LOG operation
	LogTopicGas   uint64 = 375 // Per-topic price of a LOG operation
	LogDataGas    uint64 = 8   // Per-byte price of LOG data
	ExpGas        uint64 = 10  // Base price of EXP
	KeccakPadding uint64 = 32

	CallValueTransferGas  uint64 = 9000  // Surcharge for a non-zero value transfer
	CallNewAccountGas     uint64 = 25000 // Surcharge when the callee did not previously exist
	CallStipend           uint64 = 2300  // Stipend forwarded with a non-zero value transfer
	CreateGas             uint64 = 32000 // Base price of CREATE/CREATE2
	SelfdestructRefundGas uint64 = 24000 // Refund for a first-time SELFDESTRUCT

	SstoreSetGas    uint64 = 20000 // SSTORE zero -> non-zero
	SstoreResetGas  uint64 = 5000  // SSTORE non-zero -> non-zero
	SstoreClearGas  uint64 = 5000  // SSTORE non-zero -> zero
	SstoreRefundGas uint64 = 15000 // Refund for clearing a storage slot

	// EIP-2200 net gas metering (Istanbul).
	SstoreSentryGasEIP2200 uint64 = 2300
	SloadGasEIP2200        uint64 = 800
	SstoreSetGasEIP2200    uint64 = 20000
	SstoreResetGasEIP2200  uint64 = 5000
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000

	// Precompile prices.
	EcrecoverGas        uint64 = 3000
	Sha256BaseGas       uint64 = 60
	Sha256PerWordGas    uint64 = 12
	Ripemd160BaseGas    uint64 = 600
	Ripemd160PerWordGas uint64 = 120
	IdentityBaseGas     uint64 = 15
	IdentityPerWordGas  uint64 = 3
)
