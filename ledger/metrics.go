package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_events_total",
		Help: "Committed ledger events by type.",
	}, []string{"type"})

	imbalanceRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_imbalance_rollbacks_total",
		Help: "Transactions rolled back because active balances did not sum to zero.",
	})
)
