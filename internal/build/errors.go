package build

import "abb/internal/services"

var (
	// ErrOutputExists reports an existing output when overwrite is off.
	ErrOutputExists = services.Mark("output already exists", services.ErrConflict)
	// ErrBuildLocked reports another build writing the same output.
	ErrBuildLocked = services.Mark("another build is writing this output", services.ErrConflict)
)
