package immersed

import "errors"

// Domain errors for body-flow coupling.
var (
	// ErrConfiguration indicates coupling parameters that violate the
	// penalty-forcing sign convention or basic validity checks.
	ErrConfiguration = errors.New("immersed: invalid coupling configuration")

	// ErrInvalidGeometry indicates a forcing grid that cannot be built
	// from the given body (wrong dimension, empty discretization).
	ErrInvalidGeometry = errors.New("immersed: forcing grid geometry incompatible with body")
)
