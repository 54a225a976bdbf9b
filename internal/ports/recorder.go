package ports

import "github.com/Birgenshire/homink/internal/domain"

// Recorder persists accepted readings for history display. It is optional;
// the refresh core never depends on it.
type Recorder interface {
	Record(readings []domain.Reading) error
	Name() string
}
