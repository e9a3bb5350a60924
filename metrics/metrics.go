// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a small facade over the meters used by the accounting engine.
// Until InitializePrometheusMetrics is called every meter is a no-op.
package metrics

import (
	"net/http"
	"sync"
)

// backend creates named meters. Asking twice for a name returns the same meter.
type backend interface {
	counter(name string) CountMeter
	counterVec(name string, labels []string) CountVecMeter
	gaugeVec(name string, labels []string) GaugeVecMeter
	histogram(name string, buckets []int64) HistogramMeter
	handler() http.Handler
}

var metrics backend = noopBackend{}

// HTTPHandler serves the collected metrics, nil while metrics are disabled.
func HTTPHandler() http.Handler {
	return metrics.handler()
}

var (
	// BucketMicros covers call latencies from 1µs to 50ms.
	BucketMicros = []int64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10_000, 50_000}
	// BucketWeights covers effective weights up to the saturation value.
	BucketWeights = []int64{0, 10, 25, 50, 75, 100, 150, 200, 500, 1000, 2000, 10_000, 65_535}
)

type (
	CountMeter interface{ Add(int64) }

	CountVecMeter interface {
		AddWithLabel(int64, map[string]string)
	}

	GaugeVecMeter interface {
		AddWithLabel(int64, map[string]string)
		SetWithLabel(int64, map[string]string)
	}

	HistogramMeter interface{ Observe(int64) }
)

func Counter(name string) CountMeter { return metrics.counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.counterVec(name, labels)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return metrics.gaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.histogram(name, buckets)
}

// LazyLoad resolves f on the first call and caches the result, so meters
// declared at package level bind to the backend selected at startup.
func LazyLoad[T any](f func() T) func() T {
	return sync.OnceValue(f)
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}
