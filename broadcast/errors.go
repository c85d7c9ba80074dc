package broadcast

import "errors"

var (
	// ErrEmitterNotFound is returned when an owner has no live record.
	ErrEmitterNotFound = errors.New("broadcast: emitter not found")

	// ErrDuplicatedEmitter is returned when an owner already has a record.
	ErrDuplicatedEmitter = errors.New("broadcast: emitter already registered")
)
