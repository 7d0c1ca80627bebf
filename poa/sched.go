// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poa

import (
	"github.com/lutfi-haslab/haschain/has"
)

// Scheduler schedules the production of the block following a given parent.
type Scheduler struct {
	authority    *Authority
	parentNumber uint32
	parentTime   uint64
	blockTime    uint64
}

// NewScheduler create a Scheduler object.
// blockTime is the minimum parent-child timestamp spacing in seconds.
func NewScheduler(authority *Authority, parentNumber uint32, parentTime, blockTime uint64) *Scheduler {
	if blockTime == 0 {
		blockTime = has.BlockInterval
	}
	return &Scheduler{
		authority:    authority,
		parentNumber: parentNumber,
		parentTime:   parentTime,
		blockTime:    blockTime,
	}
}

// NextValidator returns the validator scheduled to produce the next block.
// The second return value is false when the whole set is inactive.
func (s *Scheduler) NextValidator() (has.Address, bool) {
	return s.authority.Expected(s.parentNumber + 1)
}

// Schedule determines the timestamp of the next block according to nowTime.
// The returned time is promised to be >= nowTime and >= parentTime + blockTime.
func (s *Scheduler) Schedule(nowTime uint64) uint64 {
	newBlockTime := s.parentTime + s.blockTime
	if nowTime > newBlockTime {
		newBlockTime = nowTime
	}
	return newBlockTime
}

// IsTheTime returns if newBlockTime keeps the minimum spacing from the parent.
func (s *Scheduler) IsTheTime(newBlockTime uint64) bool {
	return newBlockTime >= s.parentTime+s.blockTime
}
