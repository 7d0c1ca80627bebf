// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
	"github.com/lutfi-haslab/haschain/metrics"
	"github.com/lutfi-haslab/haschain/tx"
)

const (
	blockCacheLimit  = 512
	headerCacheLimit = 2048
)

var (
	errNotFound = errors.New("not found")

	metricBestBlockNumber = metrics.LazyLoadGauge("chain_best_block_number")
)

// Chain stores blocks, headers, transactions and receipts, and tracks the
// chain tip. It doesn't decide fork choice; callers re-point the tip.
type Chain struct {
	db kv.GetPutter

	bestBlock   *block.Block
	blockCache  *lru.Cache
	headerCache *lru.Cache
}

// New create an instance of Chain. If the store already holds a chain tip,
// the best block is loaded from it.
func New(db kv.GetPutter) (*Chain, error) {
	blockCache, _ := lru.New(blockCacheLimit)
	headerCache, _ := lru.New(headerCacheLimit)

	c := &Chain{
		db:          db,
		blockCache:  blockCache,
		headerCache: headerCache,
	}

	tipHash, err := loadTip(db)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, errors.Wrap(err, "load chain tip")
		}
		return c, nil
	}
	best, err := loadBlock(db, tipHash)
	if err != nil {
		return nil, errors.Wrap(err, "load best block")
	}
	c.bestBlock = best
	return c, nil
}

// IsNotFound returns if an error means not found.
func (c *Chain) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound) || c.db.IsNotFound(err)
}

// AddBlock persists the block with its receipts and indexes its
// transactions. The chain tip is not moved; see SetBestBlock.
func (c *Chain) AddBlock(blk *block.Block, receipts tx.Receipts) error {
	batch := c.db.NewBatch()
	if err := saveBlock(batch, blk); err != nil {
		return err
	}
	if err := saveTransactions(batch, blk); err != nil {
		return err
	}
	if err := saveReceipts(batch, blk.Header().Hash(), receipts); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	c.blockCache.Add(blk.Header().Hash(), blk)
	c.headerCache.Add(blk.Header().Hash(), blk.Header())
	return nil
}

// SetBestBlock points the chain tip at the given, already stored, block
// and marks it canonical at its height.
func (c *Chain) SetBestBlock(hash has.Bytes32) error {
	blk, err := c.GetBlock(hash)
	if err != nil {
		return err
	}
	if err := saveBlockNumberIndex(c.db, blk); err != nil {
		return err
	}
	if err := saveTip(c.db, hash, blk.Header().Number()); err != nil {
		return err
	}
	c.bestBlock = blk
	metricBestBlockNumber().Set(int64(blk.Header().Number()))
	return nil
}

// BestBlock returns the chain tip. Nil until a tip was set.
func (c *Chain) BestBlock() *block.Block {
	return c.bestBlock
}

// HasBlock reports whether the block with the given hash is stored.
func (c *Chain) HasBlock(hash has.Bytes32) (bool, error) {
	if c.blockCache.Contains(hash) {
		return true, nil
	}
	return c.db.Has(blockKey(hash))
}

// GetBlock returns the block with the given hash.
func (c *Chain) GetBlock(hash has.Bytes32) (*block.Block, error) {
	if cached, ok := c.blockCache.Get(hash); ok {
		return cached.(*block.Block), nil
	}
	blk, err := loadBlock(c.db, hash)
	if err != nil {
		if c.db.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	c.blockCache.Add(hash, blk)
	return blk, nil
}

// GetHeader returns the block header with the given hash.
func (c *Chain) GetHeader(hash has.Bytes32) (*block.Header, error) {
	if cached, ok := c.headerCache.Get(hash); ok {
		return cached.(*block.Header), nil
	}
	header, err := loadHeader(c.db, hash)
	if err != nil {
		if c.db.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	c.headerCache.Add(hash, header)
	return header, nil
}

// GetBlockByNumber returns the canonical block at the given height.
func (c *Chain) GetBlockByNumber(num uint32) (*block.Block, error) {
	hash, err := loadBlockHashByNumber(c.db, num)
	if err != nil {
		if c.db.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	return c.GetBlock(hash)
}

// GetTransaction returns a stored transaction with the hash of its
// including block and its in-block index.
func (c *Chain) GetTransaction(txHash has.Bytes32) (*tx.Transaction, has.Bytes32, uint64, error) {
	trx, err := loadTransaction(c.db, txHash)
	if err != nil {
		if c.db.IsNotFound(err) {
			return nil, has.Bytes32{}, 0, errNotFound
		}
		return nil, has.Bytes32{}, 0, err
	}
	blockHashData, err := c.db.Get(txBlockKey(txHash))
	if err != nil {
		return nil, has.Bytes32{}, 0, err
	}
	indexData, err := c.db.Get(txIndexKey(txHash))
	if err != nil {
		return nil, has.Bytes32{}, 0, err
	}
	return trx, has.BytesToBytes32(blockHashData), binary.BigEndian.Uint64(indexData), nil
}

// HasTransaction reports whether a transaction is included in a stored block.
func (c *Chain) HasTransaction(txHash has.Bytes32) (bool, error) {
	return c.db.Has(txBlockKey(txHash))
}

// GetReceipts returns the receipts of the block with the given hash.
func (c *Chain) GetReceipts(blockHash has.Bytes32) (tx.Receipts, error) {
	receipts, err := loadReceipts(c.db, blockHash)
	if err != nil {
		if c.db.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	return receipts, nil
}

// GetTransactionReceipt returns the receipt of the given transaction.
func (c *Chain) GetTransactionReceipt(txHash has.Bytes32) (*tx.Receipt, error) {
	_, blockHash, index, err := c.GetTransaction(txHash)
	if err != nil {
		return nil, err
	}
	receipts, err := c.GetReceipts(blockHash)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(receipts)) {
		return nil, errNotFound
	}
	return receipts[index], nil
}
