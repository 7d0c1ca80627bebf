// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopMetrics implements a no operations metrics service.
type noopMetrics struct{}

func (n noopMetrics) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }

func (n noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }

func (n noopMetrics) GetOrCreateHandler() http.Handler { return http.NotFoundHandler() }

type noopMeter struct{}

func (n noopMeter) Add(int64) {}
func (n noopMeter) Set(int64) {}
