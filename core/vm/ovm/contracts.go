package ovm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Well-known addresses of the OVM pseudo-contracts. Their storage represents
// the sandbox's logical state; calls to the State Manager never execute
// byte-code.
var (
	ExecutionManagerAddress = common.HexToAddress("0x00000000000000000000000000000000dead0000")
	StateManagerAddress     = common.HexToAddress("0x00000000000000000000000000000000dead0001")
)

// MockECDSAContractAccountCode is the wrapper byte-code installed at
// externally-owned entry accounts. The wrapper reports success by returning a
// non-zero word.
var MockECDSAContractAccountCode = common.FromHex("0x600160005260206000f3")

const executionManagerABIJSON = `[
	{"type":"function","name":"executeTransaction","inputs":[
		{"name":"_target","type":"address"},
		{"name":"_calldata","type":"bytes"},
		{"name":"_gasLimit","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes"}]}
]`

const stateManagerABIJSON = `[
	{"type":"function","name":"setStorage","inputs":[
		{"name":"_contract","type":"address"},
		{"name":"_key","type":"bytes32"},
		{"name":"_value","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"getStorage","inputs":[
		{"name":"_contract","type":"address"},
		{"name":"_key","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getStorageView","inputs":[
		{"name":"_contract","type":"address"},
		{"name":"_key","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getOvmContractNonce","inputs":[
		{"name":"_contract","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCodeContractBytecode","inputs":[
		{"name":"_codeContract","type":"address"}],
	 "outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"incrementOvmContractNonce","inputs":[
		{"name":"_contract","type":"address"}],"outputs":[]},
	{"type":"function","name":"registerCreatedContract","inputs":[
		{"name":"_contract","type":"address"}],"outputs":[]},
	{"type":"function","name":"associateCodeContract","inputs":[
		{"name":"_ovmAddress","type":"address"},
		{"name":"_codeAddress","type":"address"}],"outputs":[]},
	{"type":"function","name":"getCodeContractAddressFromOvmAddress","inputs":[
		{"name":"_ovmAddress","type":"address"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

var (
	executionManagerABI = mustParseABI(executionManagerABIJSON)
	stateManagerABI     = mustParseABI(stateManagerABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Registry resolves the pseudo-contracts for the executor.
type Registry struct {
	executionManager common.Address
	stateManager     common.Address
	wrapperCode      []byte
}

// NewRegistry returns the default registry with the well-known addresses.
func NewRegistry() *Registry {
	return &Registry{
		executionManager: ExecutionManagerAddress,
		stateManager:     StateManagerAddress,
		wrapperCode:      MockECDSAContractAccountCode,
	}
}

func (r *Registry) ExecutionManagerAddress() common.Address { return r.executionManager }
func (r *Registry) StateManagerAddress() common.Address     { return r.stateManager }
func (r *Registry) ECDSAContractAccountCode() []byte        { return r.wrapperCode }

// EncodeEntry builds the Execution Manager entry call for the given original
// target. A nil target encodes the zero address and marks a creation entry.
func (r *Registry) EncodeEntry(target *common.Address, data []byte, gasLimit *uint256.Int) ([]byte, error) {
	var t common.Address
	if target != nil {
		t = *target
	}
	limit := new(big.Int)
	if gasLimit != nil {
		limit = gasLimit.ToBig()
	}
	return executionManagerABI.Pack("executeTransaction", t, data, limit)
}
