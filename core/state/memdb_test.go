package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	addrB = common.HexToAddress("0x1000000000000000000000000000000000000002")
	key1  = common.HexToHash("0x01")
	val1  = common.HexToHash("0xaa")
	val2  = common.HexToHash("0xbb")
)

func TestStorageRoundTrip(t *testing.T) {
	db := NewMemDB()

	require.NoError(t, db.PutContractStorage(addrA, key1, val1))
	got, err := db.GetContractStorage(addrA, key1)
	require.NoError(t, err)
	require.Equal(t, val1, got)

	// Missing slots read as the zero hash.
	got, err = db.GetContractStorage(addrA, common.HexToHash("0x02"))
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, got)
}

func TestCheckpointRevertIsNoop(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.PutContractStorage(addrA, key1, val1))

	db.Checkpoint()
	require.Equal(t, 1, db.CheckpointDepth())
	require.NoError(t, db.PutContractStorage(addrA, key1, val2))
	require.NoError(t, db.PutContractStorage(addrB, key1, val1))

	acc := NewAccount()
	acc.Balance = uint256.NewInt(77)
	require.NoError(t, db.PutAccount(addrB, acc))

	require.NoError(t, db.Revert())
	require.Equal(t, 0, db.CheckpointDepth())

	got, err := db.GetContractStorage(addrA, key1)
	require.NoError(t, err)
	require.Equal(t, val1, got)

	got, err = db.GetContractStorage(addrB, key1)
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, got)

	b, err := db.GetAccount(addrB)
	require.NoError(t, err)
	require.True(t, b.Balance.IsZero())
}

func TestCheckpointCommitFolds(t *testing.T) {
	db := NewMemDB()

	db.Checkpoint()
	require.NoError(t, db.PutContractStorage(addrA, key1, val2))
	require.NoError(t, db.Commit())
	require.Equal(t, 0, db.CheckpointDepth())

	got, err := db.GetContractStorage(addrA, key1)
	require.NoError(t, err)
	require.Equal(t, val2, got)
}

func TestNestedCheckpoints(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.PutContractStorage(addrA, key1, val1))

	db.Checkpoint()
	require.NoError(t, db.PutContractStorage(addrA, key1, val2))

	db.Checkpoint()
	require.NoError(t, db.PutContractStorage(addrA, key1, common.HexToHash("0xcc")))
	require.NoError(t, db.Revert())

	got, _ := db.GetContractStorage(addrA, key1)
	require.Equal(t, val2, got)

	require.NoError(t, db.Commit())
	got, _ = db.GetContractStorage(addrA, key1)
	require.Equal(t, val2, got)
}

func TestClearContractStorage(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.PutContractStorage(addrA, key1, val1))

	db.Checkpoint()
	require.NoError(t, db.ClearContractStorage(addrA))
	got, _ := db.GetContractStorage(addrA, key1)
	require.Equal(t, common.Hash{}, got)

	// The wipe survives a commit.
	require.NoError(t, db.Commit())
	got, _ = db.GetContractStorage(addrA, key1)
	require.Equal(t, common.Hash{}, got)
}

func TestCodeRoundTrip(t *testing.T) {
	db := NewMemDB()
	code := common.FromHex("0x6001600201")

	require.NoError(t, db.PutContractCode(addrA, code))
	got, err := db.GetContractCode(addrA)
	require.NoError(t, err)
	require.Equal(t, code, got)

	acc, err := db.GetAccount(addrA)
	require.NoError(t, err)
	require.True(t, acc.IsContract())

	// A second load hits the hash cache and must return the same bytes.
	got, err = db.GetContractCode(addrA)
	require.NoError(t, err)
	require.Equal(t, code, got)
}

func TestAccountCopyIsolation(t *testing.T) {
	db := NewMemDB()
	acc := NewAccount()
	acc.Balance = uint256.NewInt(10)
	require.NoError(t, db.PutAccount(addrA, acc))

	// Mutating the caller's copy must not leak into the stored account.
	acc.Balance.SetUint64(999)
	got, err := db.GetAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, uint64(10), got.Balance.Uint64())

	// Nor must mutating a read copy.
	got.Nonce = 42
	again, err := db.GetAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, uint64(0), again.Nonce)
}

func TestCommitWithoutCheckpointErrors(t *testing.T) {
	db := NewMemDB()
	require.Error(t, db.Commit())
	require.Error(t, db.Revert())
}
