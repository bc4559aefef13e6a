package ovm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/bleached/go-ovm/core/vm"
)

// StateManager serves calls routed to the State Manager pseudo-address out of
// the host state. It is the in-process half of the sandbox: the Execution
// Manager's byte-code addresses it like any other contract, but the executor
// intercepts the call and dispatches here by method selector.
type StateManager struct {
	state vm.StateView
}

// NewStateManager returns a bridge over the given state view.
func NewStateManager(state vm.StateView) *StateManager {
	return &StateManager{state: state}
}

// HandleCall decodes the calldata against the State Manager interface and
// dispatches to the matching handler. An unknown or truncated selector is a
// hard error: the trace addressed a method this build does not carry, and
// guessing would corrupt the replay.
func (s *StateManager) HandleCall(msg *vm.Message) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("ovm: state manager calldata too short (%d bytes)", len(msg.Data))
	}
	method, err := stateManagerABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("ovm: unknown state manager selector %#x", msg.Data[:4])
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("ovm: decode %s: %w", method.Name, err)
	}
	log.Debug("State manager call", "method", method.Name, "caller", msg.Caller, "depth", msg.Depth)

	switch method.Name {
	case "setStorage":
		contract := args[0].(common.Address)
		key := common.Hash(args[1].([32]byte))
		value := common.Hash(args[2].([32]byte))
		if err := s.state.PutContractStorage(contract, key, value); err != nil {
			return nil, err
		}
		return method.Outputs.Pack()

	case "getStorage", "getStorageView":
		contract := args[0].(common.Address)
		key := common.Hash(args[1].([32]byte))
		value, err := s.state.GetContractStorage(contract, key)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack([32]byte(value))

	case "getOvmContractNonce":
		acct, err := s.state.GetAccount(args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(acct.Nonce))

	case "getCodeContractBytecode":
		code, err := s.state.GetContractCode(args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(code)

	case "incrementOvmContractNonce":
		addr := args[0].(common.Address)
		acct, err := s.state.GetAccount(addr)
		if err != nil {
			return nil, err
		}
		acct.Nonce++
		if err := s.state.PutAccount(addr, acct); err != nil {
			return nil, err
		}
		return method.Outputs.Pack()

	case "registerCreatedContract", "associateCodeContract":
		// Hooks for extended builds; nothing to record here.
		return method.Outputs.Pack()

	case "getCodeContractAddressFromOvmAddress":
		// Identity in this build: logical and code addresses coincide.
		return method.Outputs.Pack(args[0].(common.Address))

	default:
		return nil, fmt.Errorf("ovm: unhandled state manager method %s", method.Name)
	}
}
