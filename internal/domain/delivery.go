package domain

// DeliveryOutcome классифицирует исход одной попытки доставки на webhook.
// Исходы взаимоисключающие: каждая попытка завершается ровно одним из них.
type DeliveryOutcome int

const (
	// DeliveryDelivered — сервер ответил статусом 200.
	DeliveryDelivered DeliveryOutcome = iota
	// DeliveryRejected — получен ответ со статусом, отличным от 200.
	DeliveryRejected
	// DeliveryTimedOut — бюджет времени доставки исчерпан до получения ответа.
	DeliveryTimedOut
	// DeliveryTransportFailed — сетевая ошибка уровня соединения.
	DeliveryTransportFailed
	// DeliveryUnknownFailure — любая другая неожиданная ошибка.
	DeliveryUnknownFailure
)

// String возвращает строковое представление исхода для логов.
func (o DeliveryOutcome) String() string {
	switch o {
	case DeliveryDelivered:
		return "delivered"
	case DeliveryRejected:
		return "rejected"
	case DeliveryTimedOut:
		return "timed_out"
	case DeliveryTransportFailed:
		return "transport_failed"
	default:
		return "unknown_failure"
	}
}

// DeliveryResult содержит исход попытки доставки и сопутствующие детали.
// Повторная доставка не выполняется ни при каком исходе.
type DeliveryResult struct {
	Outcome DeliveryOutcome
	// StatusCode заполняется, только если ответ был получен.
	StatusCode int
	// BodyExcerpt — усеченный фрагмент тела ответа (не более 200 символов),
	// заполняется для исхода DeliveryRejected.
	BodyExcerpt string
	// Err — причина неуспеха для исходов, вызванных ошибкой.
	Err error
}
