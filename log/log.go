// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the project-wide structured logger.
// It's a thin shim over log15, so packages hold loggers like:
//
//	var logger = log.WithContext("pkg", "txpool")
package log

import (
	"github.com/inconshreveable/log15"
)

// Logger is the structured logger handle.
type Logger = log15.Logger

// Lvl is a log level.
type Lvl = log15.Lvl

// Log levels.
const (
	LvlCrit  = log15.LvlCrit
	LvlError = log15.LvlError
	LvlWarn  = log15.LvlWarn
	LvlInfo  = log15.LvlInfo
	LvlDebug = log15.LvlDebug
)

// WithContext creates a logger carrying the given context key/value pairs.
func WithContext(ctx ...interface{}) Logger {
	return log15.New(ctx...)
}

// Root returns the root logger.
func Root() Logger {
	return log15.Root()
}

// SetRootHandler replaces the root logger's handler.
func SetRootHandler(h log15.Handler) {
	log15.Root().SetHandler(h)
}

// FilteredStreamHandler builds a level-filtered handler on top of h.
func FilteredStreamHandler(lvl Lvl, h log15.Handler) log15.Handler {
	return log15.LvlFilterHandler(lvl, h)
}
