// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poa

import (
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/has"
)

// Validator is an authority with its liveness status.
type Validator struct {
	Address         has.Address
	Active          bool
	MissedBlocks    uint32
	LastBlockNumber uint32
}

// Authority maintains the ordered validator set.
// Order is insertion order and is part of consensus: round-robin rotation
// indexes into the eligible subset of this list.
type Authority struct {
	validators []*Validator
	threshold  uint32 // missed block count that deactivates a validator
}

// NewAuthority creates the authority set with the given initial validators,
// all active.
func NewAuthority(addrs []has.Address, inactivityThreshold uint32) *Authority {
	if inactivityThreshold == 0 {
		inactivityThreshold = has.InactivityThreshold
	}
	a := &Authority{threshold: inactivityThreshold}
	for _, addr := range addrs {
		a.validators = append(a.validators, &Validator{Address: addr, Active: true})
	}
	return a
}

// Threshold returns the inactivity threshold.
func (a *Authority) Threshold() uint32 {
	return a.threshold
}

// All returns a copy of all validators in order.
func (a *Authority) All() []Validator {
	all := make([]Validator, 0, len(a.validators))
	for _, v := range a.validators {
		all = append(all, *v)
	}
	return all
}

// Get returns the validator with the given address.
func (a *Authority) Get(addr has.Address) (Validator, bool) {
	for _, v := range a.validators {
		if v.Address == addr {
			return *v, true
		}
	}
	return Validator{}, false
}

// Add appends a validator to the set. Duplicates are refused.
func (a *Authority) Add(addr has.Address) error {
	for _, v := range a.validators {
		if v.Address == addr {
			return errors.New("validator already listed")
		}
	}
	a.validators = append(a.validators, &Validator{Address: addr, Active: true})
	return nil
}

// Remove removes a validator from the set.
// Removing an unknown address is an error.
func (a *Authority) Remove(addr has.Address) error {
	for i, v := range a.validators {
		if v.Address == addr {
			a.validators = append(a.validators[:i], a.validators[i+1:]...)
			return nil
		}
	}
	return errors.New("unknown validator")
}

// eligible returns validators that can be scheduled: active and under the
// inactivity threshold.
func (a *Authority) eligible() []*Validator {
	actives := make([]*Validator, 0, len(a.validators))
	for _, v := range a.validators {
		if v.Active && v.MissedBlocks < a.threshold {
			actives = append(actives, v)
		}
	}
	return actives
}

// Update accounts the observation of a new block at the given height,
// produced by producer. The producer's liveness counters reset. The
// validator that was scheduled for the height but didn't produce gets a
// missed block, and is deactivated once it crosses the threshold.
func (a *Authority) Update(number uint32, producer has.Address) {
	expected, scheduled := a.Expected(number)

	for _, v := range a.validators {
		if v.Address == producer {
			v.LastBlockNumber = number
			v.MissedBlocks = 0
			v.Active = true
		}
	}

	if !scheduled || expected == producer {
		return
	}
	for _, v := range a.validators {
		if v.Address == expected {
			v.MissedBlocks++
			if v.MissedBlocks >= a.threshold {
				v.Active = false
			}
		}
	}
}

// Expected returns the validator scheduled to produce the block at the
// given height: round-robin over eligible validators by number mod count.
// The second return value is false when no validator is eligible.
func (a *Authority) Expected(number uint32) (has.Address, bool) {
	actives := a.eligible()
	if len(actives) == 0 {
		return has.Address{}, false
	}
	return actives[number%uint32(len(actives))].Address, true
}
