// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for block-chain databases",
		Value: "data",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a custom genesis file (YAML); the built-in devnet is used when omitted",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Usage: "API service listening address",
		Value: "localhost:8669",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity (0-9)",
		Value: 3,
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "expose prometheus metrics at /metrics",
	}
	enableReqLoggerFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "log API requests",
	}
	onDemandFlag = cli.BoolFlag{
		Name:  "on-demand",
		Usage: "skip the interval's block while the pool is empty",
	}
)
