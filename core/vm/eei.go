package vm

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/bleached/go-ovm/core/state"
	"github.com/bleached/go-ovm/params"
)

// Env is the immutable per-call environment of one interpreter run.
type Env struct {
	Address   common.Address
	Caller    common.Address
	CallData  []byte
	CallValue *uint256.Int
	Code      []byte
	IsStatic  bool
	Depth     int
	Origin    common.Address
	GasPrice  *uint256.Int
	Block     BlockContext

	ContractAccount *state.Account
	CodeAddress     common.Address

	OriginalTargetAddress *common.Address
}

// EEI is the execution environment interface: the only surface through which
// an opcode handler reaches the host. It owns the gas meter and the
// accumulated result of one interpreter run; the refund counter is shared
// with the executor by reference.
type EEI struct {
	evm   *EVM
	env   Env
	state StateView

	gasLeft uint256.Int

	logs         []*types.Log
	selfdestruct mapset.Set[common.Address]
	returnData   []byte // bytes produced by RETURN/REVERT
	lastReturned []byte // child return-data buffer (RETURNDATASIZE/COPY)
}

// NewEEI returns an EEI for one run with the full gas limit available.
func NewEEI(evm *EVM, env Env, gasLimit *uint256.Int) *EEI {
	eei := &EEI{
		evm:          evm,
		env:          env,
		state:        evm.ctx.State,
		selfdestruct: mapset.NewThreadUnsafeSet[common.Address](),
	}
	eei.gasLeft.Set(gasLimit)
	return eei
}

// Env returns the immutable call environment.
func (e *EEI) Env() *Env { return &e.env }

// ---------------------------------------------------------------------------
// Gas
// ---------------------------------------------------------------------------

// UseGas deducts amount from the remaining gas, raising ErrOutOfGas (and
// zeroing the meter) when it does not fit.
func (e *EEI) UseGas(amount *uint256.Int) error {
	if e.gasLeft.Lt(amount) {
		e.gasLeft.Clear()
		return ErrOutOfGas
	}
	e.gasLeft.Sub(&e.gasLeft, amount)
	return nil
}

func (e *EEI) useGasUint64(amount uint64) error {
	return e.UseGas(uint256.NewInt(amount))
}

// returnGas credits unspent child gas back to the meter.
func (e *EEI) returnGas(amount *uint256.Int) {
	e.gasLeft.Add(&e.gasLeft, amount)
}

// RefundGas books a gas refund redeemed at transaction end.
func (e *EEI) RefundGas(amount *uint256.Int) {
	e.evm.refund.Add(e.evm.refund, amount)
}

// SubRefund removes previously booked refund. The counter is an invariantly
// non-negative accumulator; driving it below zero is an implementation bug.
func (e *EEI) SubRefund(amount *uint256.Int) {
	if e.evm.refund.Lt(amount) {
		panic("refund counter below zero")
	}
	e.evm.refund.Sub(e.evm.refund, amount)
}

// GasLeft returns the remaining gas.
func (e *EEI) GasLeft() *uint256.Int {
	return new(uint256.Int).Set(&e.gasLeft)
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// GetBalance returns the balance of addr.
func (e *EEI) GetBalance(addr common.Address) (*uint256.Int, error) {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// GetSelfBalance returns the executing account's balance.
func (e *EEI) GetSelfBalance() (*uint256.Int, error) {
	return e.GetBalance(e.env.Address)
}

// AccountExists reports whether addr has ever been touched.
func (e *EEI) AccountExists(addr common.Address) (bool, error) {
	return e.state.AccountExists(addr)
}

// IsAccountEmpty reports the fork-aware emptiness predicate of addr. Before
// Spurious Dragon every existing account counts as non-empty.
func (e *EEI) IsAccountEmpty(addr common.Address) (bool, error) {
	if !e.evm.rules.IsEIP158 {
		exists, err := e.state.AccountExists(addr)
		return !exists, err
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return false, err
	}
	return acc.IsEmpty(), nil
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

// StorageLoad returns the 32-byte value at key of the executing account.
func (e *EEI) StorageLoad(key common.Hash) (common.Hash, error) {
	return e.state.GetContractStorage(e.env.Address, key)
}

// StorageStore writes value at key, charging the fork's SSTORE schedule and
// booking refunds against the original-storage cache.
func (e *EEI) StorageStore(key, value common.Hash) error {
	if e.env.IsStatic {
		return ErrWriteProtection
	}
	current, err := e.state.GetContractStorage(e.env.Address, key)
	if err != nil {
		return err
	}
	original, err := e.evm.originalStorage(e.env.Address, key, current)
	if err != nil {
		return err
	}
	if err := sstoreGas(e, original, current, value); err != nil {
		return err
	}
	return e.state.PutContractStorage(e.env.Address, key, value)
}

// ---------------------------------------------------------------------------
// Code
// ---------------------------------------------------------------------------

// GetCode returns the running code.
func (e *EEI) GetCode() []byte { return e.env.Code }

// GetExternalCode returns the deployed code of addr.
func (e *EEI) GetExternalCode(addr common.Address) ([]byte, error) {
	return e.state.GetContractCode(addr)
}

// GetExternalCodeSize returns the deployed code size of addr.
func (e *EEI) GetExternalCodeSize(addr common.Address) (uint64, error) {
	code, err := e.state.GetContractCode(addr)
	if err != nil {
		return 0, err
	}
	return uint64(len(code)), nil
}

// GetExternalCodeHash returns the code hash of addr, the zero hash for
// accounts that are empty under the fork rules.
func (e *EEI) GetExternalCodeHash(addr common.Address) (common.Hash, error) {
	empty, err := e.IsAccountEmpty(addr)
	if err != nil {
		return common.Hash{}, err
	}
	if empty {
		return common.Hash{}, nil
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return common.Hash{}, err
	}
	return acc.CodeHash, nil
}

// ---------------------------------------------------------------------------
// Logging and selfdestruct
// ---------------------------------------------------------------------------

// Log appends a log record to the run's result.
func (e *EEI) Log(topics []common.Hash, data []byte) error {
	if e.env.IsStatic {
		return ErrWriteProtection
	}
	e.logs = append(e.logs, &types.Log{
		Address: e.env.Address,
		Topics:  topics,
		Data:    append([]byte(nil), data...),
	})
	return nil
}

// Selfdestruct records the executing account for destruction and moves its
// balance to the beneficiary.
func (e *EEI) Selfdestruct(beneficiary common.Address) error {
	if e.env.IsStatic {
		return ErrWriteProtection
	}
	self, err := e.state.GetAccount(e.env.Address)
	if err != nil {
		return err
	}
	if !e.selfdestruct.Contains(e.env.Address) {
		e.RefundGas(uint256.NewInt(params.SelfdestructRefundGas))
	}
	e.selfdestruct.Add(e.env.Address)
	if !self.Balance.IsZero() {
		ben, err := e.state.GetAccount(beneficiary)
		if err != nil {
			return err
		}
		if _, overflow := ben.Balance.AddOverflow(ben.Balance, self.Balance); overflow {
			return ErrValueOverflow
		}
		if err := e.state.PutAccount(beneficiary, ben); err != nil {
			return err
		}
		self.Balance.Clear()
		if err := e.state.PutAccount(e.env.Address, self); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Calls and creates
// ---------------------------------------------------------------------------

// callParams captures one CALL-family invocation.
type callParams struct {
	to          common.Address
	codeAddress *common.Address // set for CALLCODE/DELEGATECALL
	value       *uint256.Int
	input       []byte
	gas         *uint256.Int
	isStatic    bool
	delegate    bool
	caller      common.Address
}

// call executes a child message and reports its success. The forwarded gas
// is deducted up front and the child's unspent remainder is credited back.
func (e *EEI) call(p callParams) (bool, error) {
	if uint64(e.env.Depth)+1 > params.CallCreateDepth {
		e.lastReturned = nil
		return false, nil
	}
	if err := e.UseGas(p.gas); err != nil {
		return false, err
	}
	childGas := new(uint256.Int).Set(p.gas)
	if p.value != nil && !p.value.IsZero() && !p.delegate {
		childGas.Add(childGas, uint256.NewInt(params.CallStipend))
	}
	to := p.to
	msg := &Message{
		Caller:       p.caller,
		To:           &to,
		Value:        p.value,
		Data:         p.input,
		GasLimit:     childGas,
		Depth:        e.env.Depth + 1,
		IsStatic:     e.env.IsStatic || p.isStatic,
		DelegateCall: p.delegate,
		CodeAddress:  p.codeAddress,
	}
	res, err := e.evm.ExecuteMessage(msg)
	if err != nil {
		return false, err
	}
	remaining := new(uint256.Int).Sub(childGas, res.GasUsed)
	e.returnGas(remaining)

	vmerr := res.ExecResult.Err
	if vmerr == nil || vmerr == ErrExecutionReverted {
		e.lastReturned = res.ExecResult.ReturnValue
	} else {
		e.lastReturned = nil
	}
	if vmerr == nil {
		e.absorbChild(&res.ExecResult)
		return true, nil
	}
	return false, nil
}

// create executes a child creation and returns the created address, or the
// zero address on failure.
func (e *EEI) create(value *uint256.Int, code []byte, gas *uint256.Int, salt []byte) (common.Address, bool, error) {
	if e.env.IsStatic {
		return common.Address{}, false, ErrWriteProtection
	}
	if uint64(e.env.Depth)+1 > params.CallCreateDepth {
		e.lastReturned = nil
		return common.Address{}, false, nil
	}
	if err := e.UseGas(gas); err != nil {
		return common.Address{}, false, err
	}
	msg := &Message{
		Caller:   e.env.Address,
		To:       nil,
		Value:    value,
		Data:     code,
		GasLimit: new(uint256.Int).Set(gas),
		Depth:    e.env.Depth + 1,
		Salt:     salt,
	}
	res, err := e.evm.ExecuteMessage(msg)
	if err != nil {
		return common.Address{}, false, err
	}
	remaining := new(uint256.Int).Sub(msg.GasLimit, res.GasUsed)
	e.returnGas(remaining)

	vmerr := res.ExecResult.Err
	if vmerr == ErrExecutionReverted {
		e.lastReturned = res.ExecResult.ReturnValue
	} else {
		e.lastReturned = nil
	}
	if vmerr != nil {
		return common.Address{}, false, nil
	}
	e.absorbChild(&res.ExecResult)
	if res.CreatedAddress == nil {
		return common.Address{}, false, nil
	}
	return *res.CreatedAddress, true, nil
}

// absorbChild splices a successful child's logs and selfdestruct set into
// this run's result. A reverted child's side effects never reach the parent.
func (e *EEI) absorbChild(res *ExecResult) {
	e.logs = append(e.logs, res.Logs...)
	if res.Selfdestruct != nil {
		for _, addr := range res.Selfdestruct.ToSlice() {
			e.selfdestruct.Add(addr)
		}
	}
}
