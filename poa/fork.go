// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poa

import (
	"github.com/lutfi-haslab/haschain/block"
)

// ForkDecision is the outcome of fork choice for a newly seen block.
type ForkDecision int

const (
	// ForkIgnore the block doesn't beat the current tip, drop it.
	ForkIgnore ForkDecision = iota
	// ForkExtend the block directly extends the current tip.
	ForkExtend
	// ForkReorg the block belongs to a strictly longer side chain; the
	// caller must locate the common ancestor and switch over.
	ForkReorg
)

func (d ForkDecision) String() string {
	switch d {
	case ForkIgnore:
		return "ignore"
	case ForkExtend:
		return "extend"
	case ForkReorg:
		return "reorg"
	}
	return "unknown"
}

// ShouldReorg decides what to do with a new block relative to the current tip:
//
//	number <= tip          -> ignore
//	parent == tip          -> extend
//	number == tip+1, other parent -> ignore (ambiguous, same height race)
//	number > tip+1         -> reorg
func ShouldReorg(newHeader, tipHeader *block.Header) ForkDecision {
	switch {
	case newHeader.Number() <= tipHeader.Number():
		return ForkIgnore
	case newHeader.ParentHash() == tipHeader.Hash():
		return ForkExtend
	case newHeader.Number() == tipHeader.Number()+1:
		// a competing block at the same height; keep the incumbent
		return ForkIgnore
	default:
		return ForkReorg
	}
}
