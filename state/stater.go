// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/lutfi-haslab/haschain/kv"
)

// Stater is the factory of state instances.
// A fresh state per block keeps the journal scoped to that block, which is
// what the state root commitment is computed over.
type Stater struct {
	db kv.GetPutter
}

// NewStater create a Stater object.
func NewStater(db kv.GetPutter) *Stater {
	return &Stater{db: db}
}

// NewState create a state instance on top of the committed store.
func (s *Stater) NewState() *State {
	return New(s.db)
}

// DB returns the backing store.
func (s *Stater) DB() kv.GetPutter {
	return s.db
}
