// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
	"github.com/lutfi-haslab/haschain/vm"
)

// Context is the block context transactions execute under.
type Context struct {
	ChainID  uint64
	Number   uint32
	Time     uint64
	Coinbase has.Address
	GasLimit uint64
}

// Runtime executes transactions against the world state. It's stateless
// apart from its context; the state is owned by the caller.
type Runtime struct {
	state *state.State
	ctx   *Context
}

// New create a Runtime object.
func New(st *state.State, ctx *Context) *Runtime {
	return &Runtime{
		state: st,
		ctx:   ctx,
	}
}

// State returns the world state the runtime operates on.
func (rt *Runtime) State() *state.State {
	return rt.state
}

// Context returns the block context.
func (rt *Runtime) Context() *Context {
	return rt.ctx
}

func (rt *Runtime) newEVM(txCtx *ResolvedTransaction) *vm.EVM {
	return vm.New(vm.Context{
		Origin:      txCtx.Origin,
		GasPrice:    txCtx.tx.GasPrice(),
		ChainID:     rt.ctx.ChainID,
		BlockNumber: rt.ctx.Number,
		Time:        rt.ctx.Time,
		Coinbase:    rt.ctx.Coinbase,
		GasLimit:    rt.ctx.GasLimit,
	}, rt.state)
}

// ExecuteTransaction executes a single transaction.
// A validation error (nonce, balance, intrinsic gas) is returned as error
// and leaves the state untouched. Execution failures (revert, out of gas,
// collision) produce a receipt with failed status: the gas debit and nonce
// increment stick, everything else is unwound.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	resolved, err := ResolveTransaction(trx)
	if err != nil {
		return nil, err
	}
	if err := resolved.CheckState(rt.state); err != nil {
		return nil, err
	}

	checkpoint := rt.state.NewCheckpoint()
	commit := func() error { return rt.state.Commit(checkpoint) }

	// nonce before increment seeds the contract address for creations
	nonceBefore, err := rt.state.GetNonce(resolved.Origin)
	if err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}

	// debit the full gas provision; unused gas is refunded after execution
	if err := rt.state.SubBalance(resolved.Origin, resolved.GasCost()); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}
	if err := rt.state.IncrementNonce(resolved.Origin); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}

	var (
		evm             = rt.newEVM(resolved)
		gasLeft         = trx.Gas() - resolved.IntrinsicGas
		vmErr           error
		contractAddress *has.Address
		logs            []*tx.Log
	)

	if resolved.To != nil {
		value, _ := uint256.FromBig(resolved.Value)
		_, gasLeft, vmErr = evm.Call(resolved.Origin, *resolved.To, resolved.Data, gasLeft, value)
		if vmErr == nil {
			logs = evm.Logs()
		}
	} else {
		contractAddress, gasLeft, vmErr = rt.create(evm, resolved, nonceBefore, gasLeft)
		if vmErr == nil {
			logs = evm.Logs()
		}
	}

	// refund unused gas
	refund := new(big.Int).SetUint64(gasLeft)
	refund.Mul(refund, trx.GasPrice())
	if err := rt.state.AddBalance(resolved.Origin, refund); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}

	receipt := &tx.Receipt{
		TxHash:          trx.Hash(),
		BlockNumber:     rt.ctx.Number,
		GasUsed:         trx.Gas() - gasLeft,
		ContractAddress: contractAddress,
		Logs:            logs,
		Status:          tx.StatusSucceeded,
	}
	if vmErr != nil {
		receipt.Status = tx.StatusFailed
	}
	return receipt, nil
}

// create materializes a new contract account and runs its init code.
// The new account address is derived from (sender, nonce before increment),
// so two nodes executing the same transaction agree on it.
func (rt *Runtime) create(evm *vm.EVM, resolved *ResolvedTransaction, nonceBefore uint64, gas uint64) (*has.Address, uint64, error) {
	contractAddr := has.CreateContractAddress(resolved.Origin, nonceBefore)

	exists, err := rt.state.Exists(contractAddr)
	if err != nil {
		return nil, 0, err
	}
	if exists {
		// collision burns the intrinsic gas only
		return nil, gas, errAccountCollision
	}

	checkpoint := rt.state.NewCheckpoint()

	if err := rt.state.SetNonce(contractAddr, 1); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, 0, err
	}
	if resolved.Value.Sign() > 0 {
		if err := rt.state.SubBalance(resolved.Origin, resolved.Value); err != nil {
			rt.state.RevertTo(checkpoint)
			return nil, gas, err
		}
		if err := rt.state.AddBalance(contractAddr, resolved.Value); err != nil {
			rt.state.RevertTo(checkpoint)
			return nil, 0, err
		}
	}

	value, _ := uint256.FromBig(resolved.Value)
	contract := vm.NewContract(resolved.Origin, contractAddr, value, gas, resolved.Data)
	ret, vmErr := evm.Run(contract, nil)
	if vmErr != nil {
		rt.state.RevertTo(checkpoint)
		gasLeft := contract.Gas
		if vmErr != vm.ErrExecutionReverted {
			gasLeft = 0
		}
		return nil, gasLeft, vmErr
	}

	// the init code's return data becomes the runtime code
	if err := rt.state.SetCode(contractAddr, ret); err != nil {
		rt.state.RevertTo(checkpoint)
		return nil, 0, err
	}
	if err := rt.state.Commit(checkpoint); err != nil {
		return nil, 0, err
	}
	return &contractAddr, contract.Gas, nil
}
