package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "memberships"

const (
	LabelOperation = "operation"
	LabelType      = "type"
)

var Mutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "mutations_total",
		Help:      "Membership record mutations applied by the record store",
		Namespace: Namespace,
	},
	[]string{LabelOperation},
)

var PersistenceFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "persistence_failures_total",
		Help:      "Failed reads or writes of the durable membership list",
		Namespace: Namespace,
	},
	[]string{LabelOperation},
)

var Records = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name:      "records",
		Help:      "Current membership records by type",
		Namespace: Namespace,
	},
	[]string{LabelType},
)

var IdempotencyPurged = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      "idempotency_records_purged_total",
		Help:      "Expired idempotency records removed by the purge loop",
		Namespace: Namespace,
	},
)
