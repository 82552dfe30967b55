package sequencer

import "errors"

var (
	// ErrSequencerUnavailable возвращается, когда счетчик недоступен
	// Номер бронирования НЕ генерируется локально - создание бронирования падает,
	// переиспользование или пропуск в нумерации недопустимы
	ErrSequencerUnavailable = errors.New("sequencer: sequence counter unavailable")
)
