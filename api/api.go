// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lutfi-haslab/haschain/api/accounts"
	"github.com/lutfi-haslab/haschain/api/blocks"
	"github.com/lutfi-haslab/haschain/api/pool"
	"github.com/lutfi-haslab/haschain/api/transactions"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/metrics"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/txpool"
)

// Options options for the api server.
type Options struct {
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return the api router.
func New(c *chain.Chain, stater *state.Stater, txPool *txpool.TxPool, opts Options) http.Handler {
	router := mux.NewRouter()

	accounts.New(stater).Mount(router, "/accounts")
	blocks.New(c).Mount(router, "/blocks")
	transactions.New(c, txPool).Mount(router, "/transactions")
	pool.New(txPool).Mount(router, "/pool")

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	if opts.EnableReqLogger {
		handler = handlers.CombinedLoggingHandler(os.Stdout, handler)
	}
	return handler
}
