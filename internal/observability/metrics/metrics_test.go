package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingsTotal.WithLabelValues("ok").Inc()
	m.BookingConflictsTotal.Inc()
	m.ChatTurnsTotal.WithLabelValues("general").Inc()

	if got := testutil.ToFloat64(m.BookingsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("bookings_total{outcome=ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BookingConflictsTotal); got != 1 {
		t.Errorf("booking_conflicts_total = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}
}
