package ports

import "github.com/Birgenshire/homink/internal/domain"

// Collector delivers push notifications from the host sensing platform and
// owns the Source handle for every monitored quantity.
type Collector interface {
	Start(out chan<- domain.Event) error
	Stop() error

	// Source returns the accessor for a source ID. The handle is valid
	// before the first reading arrives; it reports HasValue() == false
	// until then.
	Source(id string) Source

	// Poll asks the platform to re-deliver current state for the given
	// externally-polled source IDs.
	Poll(ids []string) error
}
