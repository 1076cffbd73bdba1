package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Write path metrics
	EntriesRecorded   prometheus.Counter
	TransfersRecorded prometheus.Counter
	EntryReplays      prometheus.Counter
	DuplicateWrites   *prometheus.CounterVec
	VersionConflicts  prometheus.Counter
	WriteErrors       *prometheus.CounterVec
	EntryAmount       prometheus.Histogram

	// Queue metrics
	MessagesConsumed *prometheus.CounterVec
	DeadLetters      prometheus.Counter

	// Cache metrics
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_recorded_total",
			Help: "Total number of ledger entries recorded",
		}),
		TransfersRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_recorded_total",
			Help: "Total number of transfer pairs recorded",
		}),
		EntryReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entry_replays_total",
			Help: "Total number of idempotent entry replays answered from the store",
		}),
		DuplicateWrites: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_duplicate_writes_total",
				Help: "Total number of rejected duplicate writes by kind",
			},
			[]string{"kind"},
		),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_version_conflicts_total",
			Help: "Total number of version fence conflicts observed",
		}),
		WriteErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_write_errors_total",
				Help: "Total number of failed writes by error type",
			},
			[]string{"error_type"},
		),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_entry_amount",
			Help:    "Recorded entry amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		MessagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_queue_messages_total",
				Help: "Total queue messages consumed by topic and outcome",
			},
			[]string{"topic", "outcome"},
		),
		DeadLetters: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_dead_letters_total",
			Help: "Total messages routed to the dead letter topic",
		}),

		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_hits_total",
			Help: "Total balance reads served from cache",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_misses_total",
			Help: "Total balance reads that fell through to the store",
		}),
	}
}
