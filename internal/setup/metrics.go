package setup

import (
	"context"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/metrics"
)

// ObserveStore keeps the mutation counter and the per-type record gauge in
// sync with store. The returned function stops observing.
func ObserveStore(ctx context.Context, store *memberships.Store) func() {
	refreshRecordGauge(ctx, store)
	return store.Subscribe(func(e memberships.Event) {
		metrics.Mutations.WithLabelValues(string(e.Kind)).Inc()
		refreshRecordGauge(ctx, store)
	})
}

func refreshRecordGauge(ctx context.Context, store *memberships.Store) {
	counts := make(map[domain.MembershipType]int, len(domain.MembershipTypes()))
	for _, m := range store.List(ctx) {
		counts[m.Type]++
	}
	for _, t := range domain.MembershipTypes() {
		metrics.Records.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
}

func recordPersistenceFailure(op string, _ error) {
	metrics.PersistenceFailures.WithLabelValues(op).Inc()
}
