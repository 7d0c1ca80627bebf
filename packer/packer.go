// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/runtime"
	"github.com/lutfi-haslab/haschain/state"
)

// Packer assembles pooled transactions into new blocks. It's stateless
// apart from its configuration; state and parent are passed per flow.
type Packer struct {
	chain     *chain.Chain
	authority *poa.Authority

	chainID   uint64
	blockTime uint64
	gasLimit  uint64
}

// New create a new Packer instance.
func New(c *chain.Chain, authority *poa.Authority, chainID, blockTime, gasLimit uint64) *Packer {
	return &Packer{
		chain:     c,
		authority: authority,
		chainID:   chainID,
		blockTime: blockTime,
		gasLimit:  gasLimit,
	}
}

// Prepare starts a packing flow on top of the given parent header. It
// schedules the producing validator and the new block's timestamp, and
// snapshots the state so the whole flow can be aborted.
func (p *Packer) Prepare(st *state.State, parent *block.Header, nowTimestamp uint64) (*Flow, error) {
	sched := poa.NewScheduler(p.authority, parent.Number(), parent.Timestamp(), p.blockTime)

	validator, ok := sched.NextValidator()
	if !ok {
		return nil, errors.New("no eligible validator")
	}
	targetTime := sched.Schedule(nowTimestamp)

	rt := runtime.New(st, &runtime.Context{
		ChainID:  p.chainID,
		Number:   parent.Number() + 1,
		Time:     targetTime,
		Coinbase: validator,
		GasLimit: p.gasLimit,
	})

	return &Flow{
		packer:       p,
		parentHeader: parent,
		runtime:      rt,
		validator:    validator,
		checkpoint:   st.NewCheckpoint(),
		processed:    make(map[has.Bytes32]bool),
	}, nil
}
