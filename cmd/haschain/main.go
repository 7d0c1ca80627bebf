// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	isatty "github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lutfi-haslab/haschain/api"
	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/metrics"
	"github.com/lutfi-haslab/haschain/node"
)

var (
	version   string
	gitCommit string
	logger    = log15.New()
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "HasChain",
		Usage:     "Single node proof-of-authority chain with an EVM-style execution stack",
		Copyright: "2024 The HasChain developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			verbosityFlag,
			enableMetricsFlag,
			enableReqLoggerFlag,
			onDemandFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) {
	logLevel := ctx.Int(verbosityFlag.Name)
	format := log15.LogfmtFormat()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		format = log15.TerminalFormat()
	}
	handler := log15.LvlFilterHandler(log15.Lvl(logLevel), log15.StreamHandler(os.Stderr, format))
	log15.Root().SetHandler(handler)
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.NewCustomNet(path)
	}
	return genesis.NewDevnet(), nil
}

func run(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	dataDir := ctx.String(dataDirFlag.Name)
	db, err := lvldb.New(filepath.Join(dataDir, "chain.db"), lvldb.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := node.New(db, gene)
	if err != nil {
		return err
	}

	handler := api.New(n.Chain(), n.Stater(), n.Pool(), api.Options{
		EnableReqLogger: ctx.Bool(enableReqLoggerFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	srv := &http.Server{Addr: ctx.String(apiAddrFlag.Name), Handler: handler}
	go func() {
		logger.Info("API server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server stopped", "err", err)
		}
	}()
	defer srv.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	blockTime := time.Duration(n.Config().BlockTime) * time.Second
	ticker := time.NewTicker(blockTime)
	defer ticker.Stop()

	onDemand := ctx.Bool(onDemandFlag.Name)
	logger.Info("node started", "chainId", n.Config().ChainID, "blockTime", blockTime)

	for {
		select {
		case <-quit:
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if onDemand && n.Pool().Len() == 0 {
				continue
			}
			blk, err := n.PackBlock(uint64(time.Now().Unix()))
			if err != nil {
				logger.Error("failed to pack block", "err", err)
				continue
			}
			logger.Info("new block", "number", blk.Header().Number(),
				"txs", len(blk.Transactions()), "hash", blk.Header().Hash().AbbrevString())
			n.Housekeep()
		}
	}
}
