package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxstay",
			Name:      "remote_requests_total",
			Help:      "Calls made to the marketplace API by operation and status code.",
		},
		[]string{"op", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxstay",
			Name:      "booking_transitions_total",
			Help:      "Booking status changes confirmed by re-read.",
		},
		[]string{"from", "to"},
	)

	rejectedOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxstay",
			Name:      "rejected_operations_total",
			Help:      "Operations refused before or by the remote call, by error kind.",
		},
		[]string{"op", "kind"},
	)

	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luxstay",
			Name:      "payments_total",
			Help:      "Payment attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(remoteRequests, bookingTransitions, rejectedOperations, paymentsTotal)
	})
}

// ObserveRemote counts a remote call. status 0 means the call never got a response.
func ObserveRemote(op string, status int) {
	remoteRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}

func IncTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

func IncRejected(op, kind string) {
	rejectedOperations.WithLabelValues(op, kind).Inc()
}

func IncPayment(outcome string) {
	paymentsTotal.WithLabelValues(outcome).Inc()
}
