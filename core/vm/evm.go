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
	"bytes"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/params"
)

// ovmRevertPrefixLength is the size of the flag prefix the Execution Manager
// prepends to revert payloads crossing the sandbox boundary.
const ovmRevertPrefixLength = 160

// ovmCreatedContractSlot is the Execution Manager storage slot holding the
// address assigned to the next contract created inside the sandbox.
var ovmCreatedContractSlot = common.HexToHash("0x000000000000000000000000000000000000000000000000000000000000000f")

// ExecResult is the outcome of running one message's code.
type ExecResult struct {
	ReturnValue []byte
	GasUsed     *uint256.Int
	Gas         *uint256.Int // remaining gas handed back to the caller on REVERT
	GasRefund   *uint256.Int
	Logs        []*types.Log
	Selfdestruct mapset.Set[common.Address]
	Err         error
}

// Result is what ExecuteMessage hands back for one message.
type Result struct {
	GasUsed        *uint256.Int
	CreatedAddress *common.Address
	ExecResult     ExecResult
}

// EVM is the recursive message executor. One instance drives one transaction
// trace: the refund counter, the original-storage cache and the OVM latches
// all live for the outer message.
type EVM struct {
	ctx      Context
	rules    params.Rules
	gasTable params.GasTable

	precompiles map[common.Address]PrecompiledContract

	refund      *uint256.Int
	origStorage map[common.Address]map[common.Hash]common.Hash

	// OVM entry bookkeeping, populated by the depth-0 rewrite.
	ovmEntry             bool
	entryTarget          *common.Address
	targetMessage        *Message
	targetMessageResult  *Result
	accountMessageResult *ExecResult
	initialEMState       *state.Account
	initialSMState       *state.Account
}

// NewEVM returns an executor borrowing the given context. The observer
// defaults to a no-op.
func NewEVM(ctx Context) *EVM {
	if ctx.Observer == nil {
		ctx.Observer = NoopObserver{}
	}
	if ctx.Block.Number == nil {
		ctx.Block.Number = new(uint256.Int)
	}
	if ctx.Block.Timestamp == nil {
		ctx.Block.Timestamp = new(uint256.Int)
	}
	if ctx.Block.Difficulty == nil {
		ctx.Block.Difficulty = new(uint256.Int)
	}
	if ctx.Block.GasLimit == nil {
		ctx.Block.GasLimit = new(uint256.Int)
	}
	if ctx.Tx.GasPrice == nil {
		ctx.Tx.GasPrice = new(uint256.Int)
	}
	rules := ctx.Config.Rules()
	return &EVM{
		ctx:         ctx,
		rules:       rules,
		gasTable:    params.GasTableFor(rules),
		precompiles: activePrecompiles(rules),
		refund:      new(uint256.Int),
		origStorage: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

// Refund returns the accumulated refund counter.
func (evm *EVM) Refund() *uint256.Int {
	return new(uint256.Int).Set(evm.refund)
}

// ExecuteMessage runs one message to completion: it opens a state checkpoint,
// applies the depth-0 OVM entry rewrite, dispatches to call/create (or the
// StateManager bridge), and reconciles the checkpoint and the OVM exit with
// the outcome.
func (evm *EVM) ExecuteMessage(msg *Message) (*Result, error) {
	evm.ctx.Observer.BeforeMessage(msg)
	st := evm.ctx.State
	st.Checkpoint()

	if msg.Depth == 0 {
		if err := evm.rewriteEntry(msg); err != nil {
			st.Revert()
			return nil, err
		}
	}
	if evm.targetMessage == nil &&
		msg.IsTargetMessage(evm.ctx.Contracts.ExecutionManagerAddress(), evm.entryTarget) {
		evm.targetMessage = msg
		log.Debug("Target message latched", "depth", msg.Depth, "to", msg.To)
	}

	savedRefund := new(uint256.Int).Set(evm.refund)

	var (
		result *Result
		err    error
	)
	switch {
	case msg.To != nil && *msg.To == evm.ctx.Contracts.StateManagerAddress():
		// The StateManager pseudo-contract is served by the host, not
		// interpreted. Zero gas used.
		var ret []byte
		ret, err = evm.ctx.Bridge.HandleCall(msg)
		if err == nil {
			result = &Result{
				GasUsed:    new(uint256.Int),
				ExecResult: ExecResult{ReturnValue: ret, GasUsed: new(uint256.Int)},
			}
		}
	case msg.To != nil:
		result, err = evm.executeCall(msg)
	default:
		result, err = evm.executeCreate(msg)
	}
	if err != nil {
		st.Revert()
		return nil, err
	}

	if result.ExecResult.Err != nil {
		result.ExecResult.Logs = nil
		evm.refund.Set(savedRefund)
		if rerr := st.Revert(); rerr != nil {
			return nil, rerr
		}
	} else if cerr := st.Commit(); cerr != nil {
		return nil, cerr
	}
	result.ExecResult.GasRefund = new(uint256.Int).Set(evm.refund)

	if evm.targetMessage == msg {
		evm.targetMessageResult = result
	}
	if msg.Depth == 1 && evm.accountMessageResult == nil &&
		(msg.To == nil || *msg.To != evm.ctx.Contracts.StateManagerAddress()) {
		evm.accountMessageResult = &result.ExecResult
	}

	if msg.Depth == 0 {
		result = evm.finishEntry(result)
	}
	evm.ctx.Observer.AfterMessage(msg, result)
	return result, nil
}

// rewriteEntry turns the outside world's message into its OVM form: the
// caller gets the ECDSA wrapper code if it has none, the message is
// re-targeted to the Execution Manager, and the calldata becomes an
// Execution Manager entry call. The original target is kept as an explicit
// sentinel for the target-message latch.
func (evm *EVM) rewriteEntry(msg *Message) error {
	st := evm.ctx.State
	em := evm.ctx.Contracts.ExecutionManagerAddress()
	sm := evm.ctx.Contracts.StateManagerAddress()

	var err error
	if evm.initialEMState, err = st.GetAccount(em); err != nil {
		return err
	}
	if evm.initialSMState, err = st.GetAccount(sm); err != nil {
		return err
	}

	code, err := st.GetContractCode(msg.Caller)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		if err := st.PutContractCode(msg.Caller, evm.ctx.Contracts.ECDSAContractAccountCode()); err != nil {
			return err
		}
		log.Debug("Installed ECDSA wrapper at entry account", "caller", msg.Caller)
	}

	evm.entryTarget = msg.To
	msg.OriginalTargetAddress = msg.To
	data, err := evm.ctx.Contracts.EncodeEntry(msg.To, msg.Data, msg.GasLimit)
	if err != nil {
		return fmt.Errorf("ovm entry encode: %w", err)
	}
	msg.Data = data
	emAddr := em
	msg.To = &emAddr
	evm.ovmEntry = true
	return nil
}

// finishEntry reconciles the depth-0 result with the latched target message:
// Execution Manager log noise is dropped, the OVM revert prefix is stripped,
// the target's outcome replaces the wrapper's, and the Execution Manager and
// State Manager accounts go back to their pre-trace shape.
func (evm *EVM) finishEntry(result *Result) *Result {
	st := evm.ctx.State
	em := evm.ctx.Contracts.ExecutionManagerAddress()
	sm := evm.ctx.Contracts.StateManagerAddress()
	if evm.initialEMState != nil {
		if err := st.PutAccount(em, evm.initialEMState); err != nil {
			log.Warn("Failed to restore Execution Manager account", "err", err)
		}
	}
	if evm.initialSMState != nil {
		if err := st.PutAccount(sm, evm.initialSMState); err != nil {
			log.Warn("Failed to restore State Manager account", "err", err)
		}
	}

	if evm.targetMessage == nil {
		result.ExecResult.Err = ErrOVM
		return result
	}

	target := evm.targetMessageResult
	out := *result
	out.CreatedAddress = target.CreatedAddress

	logs := make([]*types.Log, 0, len(result.ExecResult.Logs))
	for _, l := range result.ExecResult.Logs {
		if l.Address != em {
			logs = append(logs, l)
		}
	}
	out.ExecResult.Logs = logs

	ret := target.ExecResult.ReturnValue
	terr := target.ExecResult.Err
	if errors.Is(terr, ErrExecutionReverted) {
		// The sandbox prefixes revert payloads with its flag block.
		if len(ret) > ovmRevertPrefixLength {
			ret = ret[ovmRevertPrefixLength:]
		} else {
			ret = nil
		}
	}

	// The wrapper account signals a failed deployment by returning a zero
	// word even though the creation itself did not error.
	if terr == nil && evm.accountMessageResult != nil &&
		len(evm.accountMessageResult.ReturnValue) == 32 &&
		allZero(evm.accountMessageResult.ReturnValue) {
		terr = ErrExecutionReverted
	}

	out.ExecResult.ReturnValue = ret
	out.ExecResult.Err = terr
	out.ExecResult.Gas = target.ExecResult.Gas
	return &out
}

// executeCall handles a message with a recipient: value transfer, code
// resolution and the precompile-or-interpreter run.
func (evm *EVM) executeCall(msg *Message) (*Result, error) {
	st := evm.ctx.State

	if !msg.DelegateCall {
		caller, err := st.GetAccount(msg.Caller)
		if err != nil {
			return nil, err
		}
		if caller.Balance.Lt(msg.Value) {
			return emptyResult(ErrInsufficientBalance), nil
		}
		caller.Balance.Sub(caller.Balance, msg.Value)
		if err := st.PutAccount(msg.Caller, caller); err != nil {
			return nil, err
		}
	}

	var creditErr error
	if !msg.DelegateCall {
		to, err := st.GetAccount(*msg.To)
		if err != nil {
			return nil, err
		}
		if _, overflow := to.Balance.AddOverflow(to.Balance, msg.Value); overflow {
			creditErr = ErrValueOverflow
		} else if err := st.PutAccount(*msg.To, to); err != nil {
			return nil, err
		}
	}

	if msg.Code == nil && !msg.IsCompiled {
		if err := evm.loadCode(msg); err != nil {
			return nil, err
		}
	}
	if wrapper := evm.ctx.Contracts.ECDSAContractAccountCode(); len(msg.Code) > 0 && bytes.Equal(msg.Code, wrapper) {
		log.Debug("Callee is ECDSA wrapper account", "to", msg.To, "depth", msg.Depth)
	}

	if creditErr != nil || (len(msg.Code) == 0 && !msg.IsCompiled) {
		return emptyResult(creditErr), nil
	}
	if msg.IsCompiled {
		return evm.runPrecompile(msg)
	}
	return evm.runInterpreter(msg, *msg.To)
}

// executeCreate handles a contract-creation message.
func (evm *EVM) executeCreate(msg *Message) (*Result, error) {
	st := evm.ctx.State

	caller, err := st.GetAccount(msg.Caller)
	if err != nil {
		return nil, err
	}
	if caller.Balance.Lt(msg.Value) {
		return emptyResult(ErrInsufficientBalance), nil
	}
	caller.Balance.Sub(caller.Balance, msg.Value)

	msg.Code = msg.Data
	msg.Data = nil

	addr, err := evm.newContractAddress(msg, caller.Nonce)
	if err != nil {
		return nil, err
	}
	caller.Nonce++
	if err := st.PutAccount(msg.Caller, caller); err != nil {
		return nil, err
	}

	acct, err := st.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct.Nonce > 0 || acct.IsContract() {
		res := emptyResult(ErrContractAddressCollision)
		res.GasUsed.Set(msg.GasLimit)
		res.ExecResult.GasUsed.Set(msg.GasLimit)
		return res, nil
	}

	if err := st.ClearContractStorage(addr); err != nil {
		return nil, err
	}
	evm.ctx.Observer.NewContract(addr, msg.Code)

	if evm.rules.IsEIP158 {
		acct.Nonce = 1
	}
	if _, overflow := acct.Balance.AddOverflow(acct.Balance, msg.Value); overflow {
		return emptyResult(ErrValueOverflow), nil
	}
	if err := st.PutAccount(addr, acct); err != nil {
		return nil, err
	}

	res, err := evm.runInterpreter(msg, addr)
	if err != nil {
		return nil, err
	}
	res.CreatedAddress = &addr

	if res.ExecResult.Err == nil {
		ret := res.ExecResult.ReturnValue
		storeGas := uint256.NewInt(uint64(len(ret)) * params.CreateDataGas)
		remaining := new(uint256.Int).Sub(msg.GasLimit, res.GasUsed)
		switch {
		case remaining.Lt(storeGas):
			res.ExecResult.Err = ErrCodeStoreOutOfGas
			res.GasUsed.Set(msg.GasLimit)
			res.ExecResult.GasUsed.Set(msg.GasLimit)
		case len(ret) > params.MaxCodeSize && !evm.rules.AllowUnlimitedContractSize:
			res.ExecResult.Err = ErrMaxCodeSizeExceeded
			res.GasUsed.Set(msg.GasLimit)
			res.ExecResult.GasUsed.Set(msg.GasLimit)
		default:
			res.GasUsed.Add(res.GasUsed, storeGas)
			res.ExecResult.GasUsed.Set(res.GasUsed)
			if err := st.PutContractCode(addr, ret); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// newContractAddress derives the address of a new contract. Under the OVM
// entry path the Execution Manager dictates it through its storage; otherwise
// the standard CREATE2/CREATE derivations apply. nonce is the creator's
// pre-bump nonce.
func (evm *EVM) newContractAddress(msg *Message, nonce uint64) (common.Address, error) {
	if evm.ovmEntry {
		em := evm.ctx.Contracts.ExecutionManagerAddress()
		raw, err := evm.ctx.State.GetContractStorage(em, ovmCreatedContractSlot)
		if err != nil {
			return common.Address{}, err
		}
		return common.BytesToAddress(raw[12:]), nil
	}
	if msg.Salt != nil {
		return crypto.CreateAddress2(msg.Caller, common.BytesToHash(msg.Salt), crypto.Keccak256(msg.Code)), nil
	}
	return crypto.CreateAddress(msg.Caller, nonce), nil
}

// loadCode resolves the message's code: the precompile registry wins over
// deployed byte-code.
func (evm *EVM) loadCode(msg *Message) error {
	codeAddr := msg.codeTarget()
	if p, ok := evm.precompiles[codeAddr]; ok {
		msg.precompile = p
		msg.IsCompiled = true
		return nil
	}
	code, err := evm.ctx.State.GetContractCode(codeAddr)
	if err != nil {
		return err
	}
	msg.Code = code
	return nil
}

// runPrecompile executes a native contract synchronously.
func (evm *EVM) runPrecompile(msg *Message) (*Result, error) {
	required := msg.precompile.RequiredGas(msg.Data)
	if msg.GasLimit.LtUint64(required) {
		res := emptyResult(ErrOutOfGas)
		res.GasUsed.Set(msg.GasLimit)
		res.ExecResult.GasUsed.Set(msg.GasLimit)
		return res, nil
	}
	ret, perr := msg.precompile.Run(msg.Data)
	if perr != nil {
		res := emptyResult(perr)
		res.GasUsed.Set(msg.GasLimit)
		res.ExecResult.GasUsed.Set(msg.GasLimit)
		return res, nil
	}
	gasUsed := uint256.NewInt(required)
	return &Result{
		GasUsed: gasUsed,
		ExecResult: ExecResult{
			ReturnValue: ret,
			GasUsed:     new(uint256.Int).Set(gasUsed),
		},
	}, nil
}

// runInterpreter drives the byte-code loop and settles the message's gas:
// a non-REVERT failure burns the whole limit, REVERT hands the remainder
// back to the caller.
func (evm *EVM) runInterpreter(msg *Message, addr common.Address) (*Result, error) {
	acct, err := evm.ctx.State.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	env := Env{
		Address:               addr,
		Caller:                msg.Caller,
		CallData:              msg.Data,
		CallValue:             msg.Value,
		Code:                  msg.Code,
		IsStatic:              msg.IsStatic,
		Depth:                 msg.Depth,
		Origin:                evm.ctx.Tx.Origin,
		GasPrice:              evm.ctx.Tx.GasPrice,
		Block:                 evm.ctx.Block,
		ContractAccount:       acct,
		CodeAddress:           msg.codeTarget(),
		OriginalTargetAddress: msg.OriginalTargetAddress,
	}
	eei := NewEEI(evm, env, msg.GasLimit)
	in := NewInterpreter(evm, eei)

	_, rerr := in.Run(msg.Code, 0)
	if rerr != nil && !IsVMError(rerr) {
		return nil, rerr
	}

	gasUsed := new(uint256.Int).Sub(msg.GasLimit, &eei.gasLeft)
	res := &Result{
		GasUsed: gasUsed,
		ExecResult: ExecResult{
			ReturnValue:  eei.returnData,
			GasUsed:      new(uint256.Int).Set(gasUsed),
			Logs:         eei.logs,
			Selfdestruct: eei.selfdestruct,
			Err:          rerr,
		},
	}
	if rerr != nil {
		if errors.Is(rerr, ErrExecutionReverted) {
			res.ExecResult.Gas = eei.GasLeft()
		} else {
			res.GasUsed.Set(msg.GasLimit)
			res.ExecResult.GasUsed.Set(msg.GasLimit)
		}
	}
	return res, nil
}

// originalStorage returns the slot value at the start of the transaction,
// memoizing the first observation.
func (evm *EVM) originalStorage(addr common.Address, key common.Hash, current common.Hash) (common.Hash, error) {
	slots, ok := evm.origStorage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		evm.origStorage[addr] = slots
	}
	if orig, ok := slots[key]; ok {
		return orig, nil
	}
	slots[key] = current
	return current, nil
}

func emptyResult(err error) *Result {
	return &Result{
		GasUsed: new(uint256.Int),
		ExecResult: ExecResult{
			GasUsed: new(uint256.Int),
			Err:     err,
		},
	}
}
