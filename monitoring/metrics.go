package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_client_api_requests_total",
			Help: "Requests sent to the booking API",
		},
		[]string{"endpoint", "outcome"},
	)

	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_client_api_request_duration_seconds",
			Help:    "Latency of booking API requests",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"endpoint"},
	)

	endpointFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_client_endpoint_fallbacks_total",
			Help: "Alternate endpoints tried after the preferred one failed",
		},
		[]string{"operation"},
	)

	snapshotReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_client_snapshot_reads_total",
			Help: "Read-path results by source (live, cache, empty)",
		},
		[]string{"resource", "source"},
	)

	bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_client_bookings_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"outcome"},
	)

	fareQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_client_fare_quotes_total",
			Help: "Fare quotes by promo outcome",
		},
		[]string{"reason"},
	)

	seatMapRenders = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_client_seatmap_renders_total",
			Help: "Seat map rebuilds",
		},
	)

	staleFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_client_stale_fetches_total",
			Help: "Reservation fetches discarded because a newer schedule was selected",
		},
	)

	selectedSeats = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_client_selected_seats",
			Help: "Seats currently selected on the active seat map",
		},
	)
)

// Monitor records client-side metrics. A nil *Monitor is valid and records
// nothing, so components can be built without metrics in tests.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
	apiLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Monitor) TrackFallback(operation string) {
	if m == nil {
		return
	}
	endpointFallbacks.WithLabelValues(operation).Inc()
}

func (m *Monitor) TrackSnapshot(resource, source string) {
	if m == nil {
		return
	}
	snapshotReads.WithLabelValues(resource, source).Inc()
}

func (m *Monitor) TrackBooking(outcome string) {
	if m == nil {
		return
	}
	bookings.WithLabelValues(outcome).Inc()
}

func (m *Monitor) TrackQuote(reason string) {
	if m == nil {
		return
	}
	fareQuotes.WithLabelValues(reason).Inc()
}

func (m *Monitor) TrackRender() {
	if m == nil {
		return
	}
	seatMapRenders.Inc()
}

func (m *Monitor) TrackStaleFetch() {
	if m == nil {
		return
	}
	staleFetches.Inc()
}

func (m *Monitor) SetSelectedSeats(n int) {
	if m == nil {
		return
	}
	selectedSeats.Set(float64(n))
}
