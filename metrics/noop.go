// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopBackend struct{}

func (noopBackend) counter(string) CountMeter                 { return noopMeter{} }
func (noopBackend) counterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopBackend) gaugeVec(string, []string) GaugeVecMeter   { return noopMeter{} }
func (noopBackend) histogram(string, []int64) HistogramMeter  { return noopMeter{} }
func (noopBackend) handler() http.Handler                     { return nil }

// noopMeter discards every observation.
type noopMeter struct{}

func (noopMeter) Add(int64)                             {}
func (noopMeter) AddWithLabel(int64, map[string]string) {}
func (noopMeter) SetWithLabel(int64, map[string]string) {}
func (noopMeter) Observe(int64)                         {}
