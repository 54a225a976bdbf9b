package ports

// Source is the pull-style accessor for one monitored quantity, owned by the
// host platform. Both methods must be callable synchronously and repeatedly
// without side effects.
type Source interface {
	HasValue() bool
	State() string
}
