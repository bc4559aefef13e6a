package ovm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/core/vm"
)

var (
	userContract = common.HexToAddress("0x4000000000000000000000000000000000000001")
	slotKey      = common.HexToHash("0x11")
	slotValue    = common.HexToHash("0x22")
)

func pack(t *testing.T, method string, args ...interface{}) []byte {
	t.Helper()
	data, err := stateManagerABI.Pack(method, args...)
	require.NoError(t, err)
	return data
}

func bridgeCall(t *testing.T, sm *StateManager, data []byte) []byte {
	t.Helper()
	ret, err := sm.HandleCall(&vm.Message{Data: data})
	require.NoError(t, err)
	return ret
}

func TestSetAndGetStorage(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)

	ret := bridgeCall(t, sm, pack(t, "setStorage", userContract, [32]byte(slotKey), [32]byte(slotValue)))
	require.Empty(t, ret)

	// The write must have gone through the host state.
	got, err := db.GetContractStorage(userContract, slotKey)
	require.NoError(t, err)
	require.Equal(t, slotValue, got)

	ret = bridgeCall(t, sm, pack(t, "getStorage", userContract, [32]byte(slotKey)))
	require.Equal(t, slotValue.Bytes(), ret)

	ret = bridgeCall(t, sm, pack(t, "getStorageView", userContract, [32]byte(slotKey)))
	require.Equal(t, slotValue.Bytes(), ret)
}

func TestGetStorageUnsetIsZero(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)

	ret := bridgeCall(t, sm, pack(t, "getStorage", userContract, [32]byte(slotKey)))
	require.Equal(t, make([]byte, 32), ret)
}

func TestNonceHandlers(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)

	ret := bridgeCall(t, sm, pack(t, "getOvmContractNonce", userContract))
	require.Equal(t, make([]byte, 32), ret)

	bridgeCall(t, sm, pack(t, "incrementOvmContractNonce", userContract))
	bridgeCall(t, sm, pack(t, "incrementOvmContractNonce", userContract))

	ret = bridgeCall(t, sm, pack(t, "getOvmContractNonce", userContract))
	require.Equal(t, byte(2), ret[31])

	acc, err := db.GetAccount(userContract)
	require.NoError(t, err)
	require.Equal(t, uint64(2), acc.Nonce)
}

func TestGetCodeContractBytecode(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)
	code := common.FromHex("0x600160020100")
	require.NoError(t, db.PutContractCode(userContract, code))

	ret := bridgeCall(t, sm, pack(t, "getCodeContractBytecode", userContract))
	// ABI-encoded dynamic bytes: offset word, length word, padded payload.
	require.Equal(t, byte(32), ret[31])
	require.Equal(t, byte(len(code)), ret[63])
	require.Equal(t, code, ret[64:64+len(code)])
}

func TestAddressTranslationIsIdentity(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)

	ret := bridgeCall(t, sm, pack(t, "getCodeContractAddressFromOvmAddress", userContract))
	require.Equal(t, userContract.Bytes(), ret[12:])
}

func TestNoopHandlers(t *testing.T) {
	db := state.NewMemDB()
	sm := NewStateManager(db)

	require.Empty(t, bridgeCall(t, sm, pack(t, "registerCreatedContract", userContract)))
	require.Empty(t, bridgeCall(t, sm, pack(t, "associateCodeContract", userContract, userContract)))
}

func TestUnknownSelectorIsError(t *testing.T) {
	sm := NewStateManager(state.NewMemDB())

	_, err := sm.HandleCall(&vm.Message{Data: []byte{0xde, 0xad, 0xbe, 0xef, 0x00}})
	require.Error(t, err)

	_, err = sm.HandleCall(&vm.Message{Data: []byte{0x01}})
	require.Error(t, err)
}

func TestEncodeEntryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	target := userContract
	data, err := reg.EncodeEntry(&target, []byte{0xca, 0xfe}, uint256.NewInt(500000))
	require.NoError(t, err)

	method, err := executionManagerABI.MethodById(data[:4])
	require.NoError(t, err)
	require.Equal(t, "executeTransaction", method.Name)

	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, target, args[0].(common.Address))
	require.Equal(t, []byte{0xca, 0xfe}, args[1].([]byte))
	require.Equal(t, uint64(500000), args[2].(*big.Int).Uint64())
}
