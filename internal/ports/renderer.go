package ports

import "github.com/Birgenshire/homink/internal/domain"

// Renderer performs the physical display redraw. A nil error acknowledges
// completion and releases the pending-redraw latch; an error leaves the
// redraw owed.
type Renderer interface {
	Redraw(views []domain.SensorView) error
	Name() string
}
