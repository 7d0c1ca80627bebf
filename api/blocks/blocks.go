// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/api/utils"
	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/has"
)

// JSONBlock is the JSON presentation of a block.
type JSONBlock struct {
	Number       uint32        `json:"number"`
	Hash         has.Bytes32   `json:"hash"`
	ParentHash   has.Bytes32   `json:"parentHash"`
	Timestamp    uint64        `json:"timestamp"`
	GasLimit     uint64        `json:"gasLimit"`
	GasUsed      uint64        `json:"gasUsed"`
	Validator    has.Address   `json:"validator"`
	StateRoot    has.Bytes32   `json:"stateRoot"`
	TxsRoot      has.Bytes32   `json:"txsRoot"`
	ReceiptsRoot has.Bytes32   `json:"receiptsRoot"`
	Transactions []has.Bytes32 `json:"transactions"`
}

func convertBlock(blk *block.Block) *JSONBlock {
	header := blk.Header()
	txs := blk.Transactions()
	hashes := make([]has.Bytes32, 0, len(txs))
	for _, trx := range txs {
		hashes = append(hashes, trx.Hash())
	}
	return &JSONBlock{
		Number:       header.Number(),
		Hash:         header.Hash(),
		ParentHash:   header.ParentHash(),
		Timestamp:    header.Timestamp(),
		GasLimit:     header.GasLimit(),
		GasUsed:      header.GasUsed(),
		Validator:    header.Validator(),
		StateRoot:    header.StateRoot(),
		TxsRoot:      header.TxsRoot(),
		ReceiptsRoot: header.ReceiptsRoot(),
		Transactions: hashes,
	}
}

// Blocks serves block reads.
type Blocks struct {
	chain *chain.Chain
}

// New create a Blocks endpoint group.
func New(c *chain.Chain) *Blocks {
	return &Blocks{chain: c}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	revision := mux.Vars(req)["revision"]

	var (
		blk *block.Block
		err error
	)
	switch {
	case revision == "best":
		blk = b.chain.BestBlock()
		if blk == nil {
			return utils.NotFound(errors.New("no best block"))
		}
	case len(revision) == 64 || len(revision) == 66:
		hash, parseErr := has.ParseBytes32(revision)
		if parseErr != nil {
			return utils.BadRequest(errors.WithMessage(parseErr, "revision"))
		}
		blk, err = b.chain.GetBlock(hash)
	default:
		num, parseErr := strconv.ParseUint(revision, 10, 32)
		if parseErr != nil {
			return utils.BadRequest(errors.WithMessage(parseErr, "revision"))
		}
		blk, err = b.chain.GetBlockByNumber(uint32(num))
	}

	if err != nil {
		if b.chain.IsNotFound(err) {
			return utils.NotFound(errors.New("block not found"))
		}
		return err
	}
	return utils.WriteJSON(w, convertBlock(blk))
}

// Mount attaches the endpoints to the router.
func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{revision}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
