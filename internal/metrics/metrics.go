package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mta"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method and status code.",
		},
		[]string{"endpoint", "method", "code"},
	)

	bookingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking lifecycle operations by kind and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	availabilityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_rejections_total",
			Help:      "Booking writes rejected for insufficient availability.",
		},
	)

	bookingsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_swept_total",
			Help:      "Active bookings closed because their end date passed.",
		},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_sync_tasks_total",
			Help:      "Spreadsheet sync tasks by type and result.",
		},
		[]string{"type", "result"},
	)

	reportCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingOps, availabilityRejections, bookingsSwept, syncTasks, reportCache)
	})
}

// IncHTTP counts a served request.
func IncHTTP(endpoint, method string, code int) {
	httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(code)).Inc()
}

// IncBookingOp counts a booking operation; outcome is "ok" or an error class.
func IncBookingOp(operation, outcome string) {
	bookingOps.WithLabelValues(operation, outcome).Inc()
}

func IncAvailabilityRejection() {
	availabilityRejections.Inc()
}

func AddBookingsSwept(n int) {
	if n > 0 {
		bookingsSwept.Add(float64(n))
	}
}

func IncSyncTask(taskType, result string) {
	syncTasks.WithLabelValues(taskType, result).Inc()
}

func IncReportCache(hit bool) {
	if hit {
		reportCache.WithLabelValues("hit").Inc()
		return
	}
	reportCache.WithLabelValues("miss").Inc()
}
