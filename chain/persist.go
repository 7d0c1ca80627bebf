// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
	"github.com/lutfi-haslab/haschain/tx"
)

// Storage key layout. All keys are ASCII prefixed so the store can be
// inspected and iterated by concern.
func blockKey(hash has.Bytes32) []byte {
	return []byte("block:" + hash.String()[2:])
}

func blockByNumberKey(num uint32) []byte {
	return []byte("blockByNumber:" + strconv.FormatUint(uint64(num), 10))
}

func headerKey(hash has.Bytes32) []byte {
	return []byte("header:" + hash.String()[2:])
}

func metadataKey(hash has.Bytes32) []byte {
	return []byte("metadata:" + hash.String()[2:])
}

func transactionKey(hash has.Bytes32) []byte {
	return []byte("transaction:" + hash.String()[2:])
}

func txBlockKey(hash has.Bytes32) []byte {
	return []byte("txBlock:" + hash.String()[2:])
}

func txIndexKey(hash has.Bytes32) []byte {
	return []byte("txIndex:" + hash.String()[2:])
}

var (
	chainTipKey       = []byte("chainTip")
	chainTipNumberKey = []byte("chainTipNumber")
)

func saveRLP(w kv.Putter, key []byte, val interface{}) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val interface{}) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

// saveBlock writes the block and its header. The number index is written
// separately, only for canonical blocks.
func saveBlock(w kv.Putter, blk *block.Block) error {
	hash := blk.Header().Hash()
	if err := saveRLP(w, blockKey(hash), blk); err != nil {
		return err
	}
	return saveRLP(w, headerKey(hash), blk.Header())
}

// saveBlockNumberIndex marks the block canonical at its height.
func saveBlockNumberIndex(w kv.Putter, blk *block.Block) error {
	return w.Put(blockByNumberKey(blk.Header().Number()), blk.Header().Hash().Bytes())
}

func loadBlock(r kv.Getter, hash has.Bytes32) (*block.Block, error) {
	var blk block.Block
	if err := loadRLP(r, blockKey(hash), &blk); err != nil {
		return nil, err
	}
	return &blk, nil
}

func loadHeader(r kv.Getter, hash has.Bytes32) (*block.Header, error) {
	var header block.Header
	if err := loadRLP(r, headerKey(hash), &header); err != nil {
		return nil, err
	}
	return &header, nil
}

func loadBlockHashByNumber(r kv.Getter, num uint32) (has.Bytes32, error) {
	data, err := r.Get(blockByNumberKey(num))
	if err != nil {
		return has.Bytes32{}, err
	}
	return has.BytesToBytes32(data), nil
}

// saveTransactions indexes every tx of the block: the raw tx, the including
// block's hash and the in-block index.
func saveTransactions(w kv.Putter, blk *block.Block) error {
	blockHash := blk.Header().Hash()
	for i, trx := range blk.Transactions() {
		txHash := trx.Hash()
		if err := saveRLP(w, transactionKey(txHash), trx); err != nil {
			return err
		}
		if err := w.Put(txBlockKey(txHash), blockHash.Bytes()); err != nil {
			return err
		}
		var index [8]byte
		binary.BigEndian.PutUint64(index[:], uint64(i))
		if err := w.Put(txIndexKey(txHash), index[:]); err != nil {
			return err
		}
	}
	return nil
}

func loadTransaction(r kv.Getter, hash has.Bytes32) (*tx.Transaction, error) {
	var trx tx.Transaction
	if err := loadRLP(r, transactionKey(hash), &trx); err != nil {
		return nil, err
	}
	return &trx, nil
}

// saveReceipts stores the block's receipts under the block's metadata key.
func saveReceipts(w kv.Putter, blockHash has.Bytes32, receipts tx.Receipts) error {
	return saveRLP(w, metadataKey(blockHash), receipts)
}

func loadReceipts(r kv.Getter, blockHash has.Bytes32) (tx.Receipts, error) {
	var receipts tx.Receipts
	if err := loadRLP(r, metadataKey(blockHash), &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

func saveTip(w kv.Putter, hash has.Bytes32, num uint32) error {
	if err := w.Put(chainTipKey, hash.Bytes()); err != nil {
		return err
	}
	return w.Put(chainTipNumberKey, []byte(strconv.FormatUint(uint64(num), 10)))
}

func loadTip(r kv.Getter) (has.Bytes32, error) {
	data, err := r.Get(chainTipKey)
	if err != nil {
		return has.Bytes32{}, err
	}
	return has.BytesToBytes32(data), nil
}
