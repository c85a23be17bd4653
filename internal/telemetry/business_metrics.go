// Package telemetry exposes Prometheus metrics for the order pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics counts the business-level events operators alert on.
type BusinessMetrics struct {
	CheckoutsSubmitted   prometheus.Counter
	CheckoutsRejected    *prometheus.CounterVec
	PaymentsVerified     prometheus.Counter
	PaymentsFailed       prometheus.Counter
	OrdersCancelled      *prometheus.CounterVec
	ReservationConflicts prometheus.Counter
	NotificationFailures *prometheus.CounterVec
}

// NewBusinessMetrics registers the order pipeline metrics on reg.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CheckoutsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aurum_checkouts_submitted_total",
			Help: "Checkouts that produced a pending order.",
		}),
		CheckoutsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_checkouts_rejected_total",
			Help: "Checkouts rejected before an order was created.",
		}, []string{"reason"}),
		PaymentsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "aurum_payments_verified_total",
			Help: "Payment results with a valid signature.",
		}),
		PaymentsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "aurum_payments_failed_total",
			Help: "Payment results rejected for an invalid signature.",
		}),
		OrdersCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_orders_cancelled_total",
			Help: "Orders cancelled, by the status they held.",
		}, []string{"from_status"}),
		ReservationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "aurum_reservation_conflicts_total",
			Help: "Checkouts that lost an inventory race.",
		}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aurum_notification_failures_total",
			Help: "Notification dispatches that failed, by event kind.",
		}, []string{"kind"}),
	}
}

// NewNopBusinessMetrics returns metrics registered on a throwaway registry.
// Used by tests and wiring paths that don't scrape.
func NewNopBusinessMetrics() *BusinessMetrics {
	return NewBusinessMetrics(prometheus.NewRegistry())
}
