package models

const (
	StatusActive    = "active"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// DateLayout is the storage and wire layout for booking dates.
const DateLayout = "2006-01-02"

const (
	// DefaultReportCacheTTL время жизни кэша отчётов в секундах
	DefaultReportCacheTTL = 5 * 60

	// TopItemsLimit количество позиций в рейтинге выручки
	TopItemsLimit = 20

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// MinCustomerAge минимальный возраст клиента
	MinCustomerAge = 18
)

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	return status == StatusClosed || status == StatusCancelled
}

// CanTransition encodes the booking state machine: active -> {closed, cancelled}.
func CanTransition(from, to string) bool {
	return from == StatusActive && (to == StatusClosed || to == StatusCancelled)
}
