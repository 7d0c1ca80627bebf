// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/api/utils"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/tx"
	"github.com/lutfi-haslab/haschain/txpool"
)

// JSONTransaction is the JSON presentation of a transaction.
type JSONTransaction struct {
	Hash     has.Bytes32  `json:"hash"`
	From     has.Address  `json:"from"`
	To       *has.Address `json:"to"`
	Value    string       `json:"value"`
	Gas      uint64       `json:"gas"`
	GasPrice string       `json:"gasPrice"`
	Nonce    uint64       `json:"nonce"`
	Data     string       `json:"data"`
}

// JSONReceipt is the JSON presentation of a receipt.
type JSONReceipt struct {
	TxHash            has.Bytes32  `json:"txHash"`
	BlockNumber       uint32       `json:"blockNumber"`
	GasUsed           uint64       `json:"gasUsed"`
	CumulativeGasUsed uint64       `json:"cumulativeGasUsed"`
	ContractAddress   *has.Address `json:"contractAddress"`
	Status            uint64       `json:"status"`
}

// RawTx carries a submitted raw transaction.
type RawTx struct {
	Raw string `json:"raw"`
}

func convertTx(trx *tx.Transaction) *JSONTransaction {
	return &JSONTransaction{
		Hash:     trx.Hash(),
		From:     trx.From(),
		To:       trx.To(),
		Value:    "0x" + trx.Value().Text(16),
		Gas:      trx.Gas(),
		GasPrice: "0x" + trx.GasPrice().Text(16),
		Nonce:    trx.Nonce(),
		Data:     "0x" + hex.EncodeToString(trx.Data()),
	}
}

// Transactions serves transaction reads and raw submissions.
type Transactions struct {
	chain *chain.Chain
	pool  *txpool.TxPool
}

// New create a Transactions endpoint group.
func New(c *chain.Chain, pool *txpool.TxPool) *Transactions {
	return &Transactions{chain: c, pool: pool}
}

func (t *Transactions) handleGetTransaction(w http.ResponseWriter, req *http.Request) error {
	hash, err := has.ParseBytes32(mux.Vars(req)["hash"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "hash"))
	}

	if pooled := t.pool.Get(hash); pooled != nil {
		return utils.WriteJSON(w, convertTx(pooled))
	}

	trx, _, _, err := t.chain.GetTransaction(hash)
	if err != nil {
		if t.chain.IsNotFound(err) {
			return utils.NotFound(errors.New("transaction not found"))
		}
		return err
	}
	return utils.WriteJSON(w, convertTx(trx))
}

func (t *Transactions) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	hash, err := has.ParseBytes32(mux.Vars(req)["hash"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "hash"))
	}

	receipt, err := t.chain.GetTransactionReceipt(hash)
	if err != nil {
		if t.chain.IsNotFound(err) {
			return utils.NotFound(errors.New("receipt not found"))
		}
		return err
	}
	return utils.WriteJSON(w, &JSONReceipt{
		TxHash:            receipt.TxHash,
		BlockNumber:       receipt.BlockNumber,
		GasUsed:           receipt.GasUsed,
		CumulativeGasUsed: receipt.CumulativeGasUsed,
		ContractAddress:   receipt.ContractAddress,
		Status:            receipt.Status,
	})
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw RawTx
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	data, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(raw.Raw), "0x"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	var trx tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	if err := t.pool.Add(&trx); err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, map[string]interface{}{
		"admitted": true,
		"hash":     trx.Hash(),
	})
}

// Mount attaches the endpoints to the router.
func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{hash}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransaction))
	sub.Path("/{hash}/receipt").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetReceipt))
}
