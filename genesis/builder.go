// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64
	gasLimit  uint64
	validator has.Address
	extraData []byte

	stateProcs []func(state *state.State) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// GasLimit set gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.gasLimit = limit
	return b
}

// Validator set the validator recorded in the genesis header,
// conventionally the first configured authority.
func (b *Builder) Validator(addr has.Address) *Builder {
	b.validator = addr
	return b
}

// ExtraData set extra data.
func (b *Builder) ExtraData(data []byte) *Builder {
	b.extraData = append([]byte(nil), data...)
	return b
}

// State add a state process.
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build builds the genesis block on the given state: block 0 with zero
// parent hash and no signature. The state changes are staged but not
// committed; the caller persists them together with the block.
func (b *Builder) Build(st *state.State) (*block.Block, *state.Stage, error) {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, errors.Wrap(err, "genesis state process")
		}
	}

	stage := st.Stage()
	stateRoot := stage.Hash()

	blk := new(block.Builder).
		ParentHash(has.Bytes32{}).
		Number(0).
		Timestamp(b.timestamp).
		Validator(b.validator).
		GasLimit(b.gasLimit).
		StateRoot(stateRoot).
		ExtraData(b.extraData).
		Build()

	return blk, stage, nil
}
