package vm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/bleached/go-ovm/params"
)

func TestScanJumps(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want []uint64
	}{
		{
			name: "plain jumpdest",
			code: common.FromHex("0x005b00"),
			want: []uint64{1},
		},
		{
			name: "jumpdest inside push immediate is skipped",
			code: common.FromHex("0x615b5b5b"), // PUSH2 0x5b5b; JUMPDEST
			want: []uint64{3},
		},
		{
			name: "push32 swallows a full word",
			code: append(append([]byte{byte(PUSH32)}, make([]byte, 32)...), byte(JUMPDEST)),
			want: []uint64{33},
		},
		{
			name: "truncated push",
			code: []byte{byte(PUSH2), 0x5b},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jumps := scanJumps(tt.code)
			require.Len(t, jumps, len(tt.want))
			for _, off := range tt.want {
				_, ok := jumps[off]
				require.True(t, ok, "offset %d", off)
			}
		})
	}
}

func TestAddStopTerminatesCleanly(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)
	rec := &stepRecorder{}
	evm.ctx.Observer = rec

	// PUSH1 1; PUSH1 2; ADD; STOP
	require.NoError(t, db.PutContractCode(contractAddr, common.FromHex("0x600160020100")))

	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, 100000))
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)
	require.Empty(t, res.ExecResult.ReturnValue)
	require.Equal(t, uint64(9), res.GasUsed.Uint64())

	// The step before STOP must see the folded sum on the stack.
	last := rec.steps[len(rec.steps)-1]
	require.Equal(t, STOP, last.Op)
	require.Len(t, last.Stack, 1)
	require.Equal(t, uint64(3), last.Stack[0].Uint64())
}

func TestJumpToNonJumpdest(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)

	// PUSH1 3; JUMP; STOP; JUMPDEST -- the target is the STOP byte, not the
	// JUMPDEST, so the jump must fail and burn the whole limit.
	require.NoError(t, db.PutContractCode(contractAddr, common.FromHex("0x600356005b")))

	const gasLimit = 50000
	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, gasLimit))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, ErrInvalidJump)
	require.Equal(t, uint64(gasLimit), res.GasUsed.Uint64())
}

func TestJumpToValidJumpdest(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)

	// PUSH1 4; JUMP; INVALID; JUMPDEST; STOP
	require.NoError(t, db.PutContractCode(contractAddr, common.FromHex("0x600456fe5b00")))

	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, 50000))
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)
}

func TestRevertReturnsRemainingGas(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)

	// PUSH1 0; PUSH1 0; REVERT
	require.NoError(t, db.PutContractCode(contractAddr, common.FromHex("0x60006000fd")))

	const gasLimit = 30000
	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, gasLimit))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, ErrExecutionReverted)
	require.Empty(t, res.ExecResult.ReturnValue)

	require.Equal(t, uint64(6), res.GasUsed.Uint64())
	require.NotNil(t, res.ExecResult.Gas)
	require.Equal(t, uint64(gasLimit-6), res.ExecResult.Gas.Uint64())
}

func TestUnknownOpcode(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)

	// 0x21 is undefined.
	require.NoError(t, db.PutContractCode(contractAddr, []byte{0x21}))

	const gasLimit = 10000
	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, gasLimit))
	require.NoError(t, err)
	require.IsType(t, &ErrInvalidOpCode{}, res.ExecResult.Err)
	require.Equal(t, uint64(gasLimit), res.GasUsed.Uint64())
}

func TestOutOfGasBurnsLimit(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)

	// An MSTORE far out in memory cannot be paid for with a tiny limit.
	require.NoError(t, db.PutContractCode(contractAddr, common.FromHex("0x6001620f424052")))

	const gasLimit = 100
	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, gasLimit))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, ErrOutOfGas)
	require.Equal(t, uint64(gasLimit), res.GasUsed.Uint64())
}

func TestMemoryExpansionIsMonotonic(t *testing.T) {
	evm, db := newTestEVM(t, params.TestChainConfig)
	rec := &stepRecorder{}
	evm.ctx.Observer = rec

	// Touch 64 bytes, then 32 (already paid), then 96.
	// MSTORE 32; MSTORE 0; MSTORE 64; STOP
	require.NoError(t, db.PutContractCode(contractAddr,
		common.FromHex("0x60016020526001600052600160405200")))

	res, err := evm.ExecuteMessage(callMessage(contractAddr, nil, 0, 100000))
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)

	// Base fees 3*(3+3+3)=27; expansion to 2 words costs 6, the second store
	// is already paid for, the third adds one word for 3 more.
	require.Equal(t, uint64(36), res.GasUsed.Uint64())
}
