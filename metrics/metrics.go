// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus collectors reported by training,
// graph building and decoding. Collectors are registered on a caller
// supplied registry; every method is safe to call on a nil receiver so that
// components can treat metrics as optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hmmalign"

// Training tracks Baum-Welch epochs.
type Training struct {
	Epochs        prometheus.Counter
	Graphs        prometheus.Counter
	Skipped       prometheus.Counter
	LogLikelihood prometheus.Gauge
	EpochDuration prometheus.Histogram
}

// NewTraining registers the training collectors on reg.
func NewTraining(reg prometheus.Registerer) *Training {
	f := promauto.With(reg)

	return &Training{
		Epochs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_epochs_total",
			Help:      "Completed Baum-Welch epochs",
		}),
		Graphs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_graphs_total",
			Help:      "Graphs whose expected counts were accumulated",
		}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_graphs_skipped_total",
			Help:      "Graphs skipped because their likelihood underflowed to zero",
		}),
		LogLikelihood: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_log_likelihood",
			Help:      "Mean per-graph log-likelihood of the last epoch",
		}),
		EpochDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_epoch_duration_seconds",
			Help:      "Wall time of one epoch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}),
	}
}

// ObserveEpoch records one finished epoch.
func (t *Training) ObserveEpoch(graphs, skipped int, meanLL float64, d time.Duration) {
	if t == nil {
		return
	}
	t.Epochs.Inc()
	t.Graphs.Add(float64(graphs))
	t.Skipped.Add(float64(skipped))
	t.LogLikelihood.Set(meanLL)
	t.EpochDuration.Observe(d.Seconds())
}

// Alignment tracks graph construction over a corpus.
type Alignment struct {
	Pairs    *prometheus.CounterVec
	Edges    prometheus.Histogram
	Alphabet prometheus.Gauge
}

// Pair results.
const (
	ResultAligned      = "aligned"
	ResultNotAlignable = "not_alignable"
	ResultRejected     = "rejected"
)

// NewAlignment registers the alignment collectors on reg.
func NewAlignment(reg prometheus.Registerer) *Alignment {
	f := promauto.With(reg)

	return &Alignment{
		Pairs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_pairs_total",
			Help:      "Sequence pairs processed by the graph factory, by result",
		}, []string{"result"}),
		Edges: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "alignment_graph_edges",
			Help:      "Surviving edges per alignment graph",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
		}),
		Alphabet: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alphabet_size",
			Help:      "Number of chunk codes in the current alphabet",
		}),
	}
}

// ObservePair records the outcome of one pair; edges is ignored unless the
// pair aligned.
func (a *Alignment) ObservePair(result string, edges int) {
	if a == nil {
		return
	}
	a.Pairs.WithLabelValues(result).Inc()
	if result == ResultAligned {
		a.Edges.Observe(float64(edges))
	}
}

// SetAlphabet records the alphabet size.
func (a *Alignment) SetAlphabet(n int) {
	if a == nil {
		return
	}
	a.Alphabet.Set(float64(n))
}

// Decoding tracks Viterbi decoding.
type Decoding struct {
	Sequences      *prometheus.CounterVec
	UnknownSymbols *prometheus.CounterVec
}

// NewDecoding registers the decoding collectors on reg.
func NewDecoding(reg prometheus.Registerer) *Decoding {
	f := promauto.With(reg)

	return &Decoding{
		Sequences: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_sequences_total",
			Help:      "Decoded above-sequences, by result",
		}, []string{"result"}),
		UnknownSymbols: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_unknown_symbols_total",
			Help:      "Above-symbols absent from the alphabet, by policy",
		}, []string{"policy"}),
	}
}

// ObserveSequence records one decode outcome ("ok" or "error").
func (d *Decoding) ObserveSequence(err error) {
	if d == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	d.Sequences.WithLabelValues(result).Inc()
}

// ObserveUnknown records one unknown above-symbol handled under policy.
func (d *Decoding) ObserveUnknown(policy string) {
	if d == nil {
		return
	}
	d.UnknownSymbols.WithLabelValues(policy).Inc()
}
