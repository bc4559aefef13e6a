package ovm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/core/vm"
	"github.com/bleached/go-ovm/params"
)

var (
	eoaAddr    = common.HexToAddress("0x3000000000000000000000000000000000000001")
	targetAddr = common.HexToAddress("0x3000000000000000000000000000000000000002")
	helperAddr = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func newOVMVM(t *testing.T) (*vm.EVM, *state.MemDB) {
	t.Helper()
	db := state.NewMemDB()
	evm := vm.NewEVM(vm.Context{
		State:     db,
		Config:    params.TestChainConfig,
		Contracts: NewRegistry(),
		Bridge:    NewStateManager(db),
	})
	return evm, db
}

// callOp assembles byte-code that CALLs target with no calldata,
// drops the success word, and leaves the 32-byte return region at memory 0.
func callOp(target common.Address) []byte {
	var code []byte
	code = append(code, byte(vm.PUSH1), 0x20, byte(vm.PUSH1), 0x00) // retSize, retOffset
	code = append(code, byte(vm.PUSH1), 0x00, byte(vm.PUSH1), 0x00) // inSize, inOffset
	code = append(code, byte(vm.PUSH1), 0x00)                       // value
	code = append(code, byte(vm.PUSH20))
	code = append(code, target.Bytes()...)
	code = append(code, byte(vm.PUSH2), 0xff, 0xff)
	code = append(code, byte(vm.CALL), byte(vm.POP))
	return code
}

func returnMem32() []byte {
	return []byte{byte(vm.PUSH1), 0x20, byte(vm.PUSH1), 0x00, byte(vm.RETURN)}
}

func logEmpty() []byte {
	return []byte{byte(vm.PUSH1), 0x00, byte(vm.PUSH1), 0x00, byte(vm.LOG0)}
}

func entryMessage(to *common.Address, gas uint64) *vm.Message {
	return &vm.Message{
		Caller:   eoaAddr,
		To:       to,
		Value:    new(uint256.Int),
		GasLimit: uint256.NewInt(gas),
	}
}

func TestEntryRewriteLatchesTarget(t *testing.T) {
	evm, db := newOVMVM(t)

	// The Execution Manager calls the target, logs once itself, and returns
	// the target's 32-byte result.
	emCode := append(callOp(targetAddr), logEmpty()...)
	emCode = append(emCode, returnMem32()...)
	require.NoError(t, db.PutContractCode(ExecutionManagerAddress, emCode))

	// The target logs once and returns 42.
	targetCode := common.FromHex("0x60006000a0602a60005260206000f3")
	require.NoError(t, db.PutContractCode(targetAddr, targetCode))

	to := targetAddr
	res, err := evm.ExecuteMessage(entryMessage(&to, 1_000_000))
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)

	// The outer result is the target's result.
	require.Len(t, res.ExecResult.ReturnValue, 32)
	require.Equal(t, byte(42), res.ExecResult.ReturnValue[31])

	// The Execution Manager's own log is filtered, the target's survives.
	require.Len(t, res.ExecResult.Logs, 1)
	require.Equal(t, targetAddr, res.ExecResult.Logs[0].Address)

	// The entry rewrite installed the wrapper at the EOA.
	code, err := db.GetContractCode(eoaAddr)
	require.NoError(t, err)
	require.Equal(t, MockECDSAContractAccountCode, code)

	require.Equal(t, 0, db.CheckpointDepth())
}

func TestEntryWithoutTargetIsOVMError(t *testing.T) {
	evm, db := newOVMVM(t)

	// The Execution Manager never reaches the target.
	require.NoError(t, db.PutContractCode(ExecutionManagerAddress, []byte{byte(vm.STOP)}))

	to := targetAddr
	res, err := evm.ExecuteMessage(entryMessage(&to, 1_000_000))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, vm.ErrOVM)
}

func TestRevertPrefixIsStripped(t *testing.T) {
	evm, db := newOVMVM(t)

	emCode := append(callOp(targetAddr), returnMem32()...)
	require.NoError(t, db.PutContractCode(ExecutionManagerAddress, emCode))

	// The target reverts with a 192-byte payload whose last word is 42: the
	// first 160 bytes are the sandbox flag prefix.
	targetCode := common.FromHex("0x602a60a05260c06000fd")
	require.NoError(t, db.PutContractCode(targetAddr, targetCode))

	to := targetAddr
	res, err := evm.ExecuteMessage(entryMessage(&to, 1_000_000))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, vm.ErrExecutionReverted)
	require.Len(t, res.ExecResult.ReturnValue, 32)
	require.Equal(t, byte(42), res.ExecResult.ReturnValue[31])
}

func TestDeployExceptionHeuristic(t *testing.T) {
	evm, db := newOVMVM(t)

	// The first account-level call returns a 32-byte zero word, the signal
	// the wrapper uses for a failed deployment.
	require.NoError(t, db.PutContractCode(helperAddr, common.FromHex("0x600060005260206000f3")))
	// The target itself succeeds.
	require.NoError(t, db.PutContractCode(targetAddr, common.FromHex("0x602a60005260206000f3")))

	emCode := append(callOp(helperAddr), callOp(targetAddr)...)
	emCode = append(emCode, returnMem32()...)
	require.NoError(t, db.PutContractCode(ExecutionManagerAddress, emCode))

	to := targetAddr
	res, err := evm.ExecuteMessage(entryMessage(&to, 1_000_000))
	require.NoError(t, err)
	require.ErrorIs(t, res.ExecResult.Err, vm.ErrExecutionReverted)
}

func TestStateManagerDispatchThroughExecutor(t *testing.T) {
	evm, db := newOVMVM(t)

	// Depth-1 messages model the Execution Manager's calls into the bridge.
	set := &vm.Message{
		Caller:   ExecutionManagerAddress,
		To:       &StateManagerAddress,
		Value:    new(uint256.Int),
		Data:     mustPack(t, "setStorage", userContract, [32]byte(slotKey), [32]byte(slotValue)),
		GasLimit: uint256.NewInt(100000),
		Depth:    1,
	}
	res, err := evm.ExecuteMessage(set)
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)
	require.True(t, res.GasUsed.IsZero())
	require.Empty(t, res.ExecResult.ReturnValue)

	got, err := db.GetContractStorage(userContract, slotKey)
	require.NoError(t, err)
	require.Equal(t, slotValue, got)

	get := &vm.Message{
		Caller:   ExecutionManagerAddress,
		To:       &StateManagerAddress,
		Value:    new(uint256.Int),
		Data:     mustPack(t, "getStorage", userContract, [32]byte(slotKey)),
		GasLimit: uint256.NewInt(100000),
		Depth:    1,
	}
	res, err = evm.ExecuteMessage(get)
	require.NoError(t, err)
	require.NoError(t, res.ExecResult.Err)
	require.Equal(t, slotValue.Bytes(), res.ExecResult.ReturnValue)
}

func mustPack(t *testing.T, method string, args ...interface{}) []byte {
	t.Helper()
	data, err := stateManagerABI.Pack(method, args...)
	require.NoError(t, err)
	return data
}
