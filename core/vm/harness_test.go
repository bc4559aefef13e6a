package vm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/params"
)

var (
	testEMAddr = common.HexToAddress("0x00000000000000000000000000000000dead0000")
	testSMAddr = common.HexToAddress("0x00000000000000000000000000000000dead0001")

	callerAddr   = common.HexToAddress("0x2000000000000000000000000000000000000001")
	contractAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
	otherAddr    = common.HexToAddress("0x2000000000000000000000000000000000000003")
)

// fixedRegistry is a minimal in-package stand-in for the OVM contract
// registry; the real one lives in core/vm/ovm.
type fixedRegistry struct{}

func (fixedRegistry) ExecutionManagerAddress() common.Address { return testEMAddr }
func (fixedRegistry) StateManagerAddress() common.Address     { return testSMAddr }
func (fixedRegistry) ECDSAContractAccountCode() []byte {
	return common.FromHex("0x600160005260206000f3")
}
func (fixedRegistry) EncodeEntry(target *common.Address, data []byte, _ *uint256.Int) ([]byte, error) {
	out := make([]byte, 0, 20+len(data))
	if target != nil {
		out = append(out, target.Bytes()...)
	}
	return append(out, data...), nil
}

type nopBridge struct{}

func (nopBridge) HandleCall(*Message) ([]byte, error) { return nil, nil }

func newTestEVM(t *testing.T, cfg *params.ChainConfig) (*EVM, *state.MemDB) {
	t.Helper()
	db := state.NewMemDB()
	evm := NewEVM(Context{
		State:     db,
		Config:    cfg,
		Contracts: fixedRegistry{},
		Bridge:    nopBridge{},
	})
	return evm, db
}

func setBalance(t *testing.T, db *state.MemDB, addr common.Address, amount uint64) {
	t.Helper()
	acc, err := db.GetAccount(addr)
	require.NoError(t, err)
	acc.Balance = uint256.NewInt(amount)
	require.NoError(t, db.PutAccount(addr, acc))
}

// callMessage builds a depth-1 call message, below the OVM entry rewrite.
func callMessage(to common.Address, data []byte, value, gas uint64) *Message {
	toCopy := to
	return &Message{
		Caller:   callerAddr,
		To:       &toCopy,
		Value:    uint256.NewInt(value),
		Data:     data,
		GasLimit: uint256.NewInt(gas),
		Depth:    1,
	}
}

// stepRecorder captures step events for assertions on mid-run state.
type stepRecorder struct {
	NoopObserver
	steps []StepEvent
}

func (r *stepRecorder) Step(ev *StepEvent) {
	r.steps = append(r.steps, *ev)
}
