// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/bitvote/contract"
)

type metrics struct {
	transactions *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bitvote",
			Subsystem: "gateway",
			Name:      "transactions_total",
			Help:      "Transactions processed, by function and outcome",
		}, []string{"fn", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bitvote",
			Subsystem: "gateway",
			Name:      "transaction_seconds",
			Help:      "Time spent executing a transaction",
			Buckets:   prometheus.DefBuckets,
		}, []string{"fn"}),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.transactions, m.latency} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) observe(fn string, err error, d time.Duration) {
	m.transactions.WithLabelValues(fn, outcome(err)).Inc()
	m.latency.WithLabelValues(fn).Observe(d.Seconds())
}

// outcome buckets an error into a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, contract.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, contract.ErrNotFound):
		return "not_found"
	case errors.Is(err, contract.ErrAlreadyExists), errors.Is(err, contract.ErrAlreadyVoted):
		return "conflict"
	case errors.Is(err, contract.ErrInvalidArgument),
		errors.Is(err, contract.ErrInvalidSelection),
		errors.Is(err, contract.ErrPollNotOpen),
		errors.Is(err, contract.ErrPollClosed):
		return "rejected"
	}
	return "error"
}
