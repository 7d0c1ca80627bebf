// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poa

import (
	"bytes"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
)

// Sign produces a signed copy of the header. The signature is
// deterministically derived from the signing hash and the validator
// address, so it's always non-empty and a pure function of the header.
func Sign(header *block.Header) *block.Header {
	return header.WithSignature(Signature(header))
}

// Signature computes the signature the given header should carry.
func Signature(header *block.Header) []byte {
	return signature(header)
}

// ValidSignature reports whether the header carries the signature Sign
// would have produced. Genesis headers (number 0) are exempt and carry
// no signature.
func ValidSignature(header *block.Header) bool {
	if header.Number() == 0 {
		return true
	}
	sig := header.Signature()
	if len(sig) == 0 {
		return false
	}
	return bytes.Equal(sig, signature(header))
}

func signature(header *block.Header) []byte {
	signingHash := header.SigningHash()
	validator := header.Validator()
	return has.Blake2b(signingHash.Bytes(), validator.Bytes()).Bytes()
}
