// FILE: lixenwraith/nvconfig/errors.go
package nvconfig

import "errors"

var (
	// ErrImageSize is returned when a byte image does not have the expected length.
	ErrImageSize = errors.New("image size mismatch")
	// ErrInvalidMark is returned when a record does not carry the PWI mark.
	ErrInvalidMark = errors.New("invalid record mark")
	// ErrUnsupportedVersion is returned for record or profile versions this build cannot interpret.
	ErrUnsupportedVersion = errors.New("unsupported record version")
	// ErrProfileConflict is returned when a profile sets the same field under its current and legacy names.
	ErrProfileConflict = errors.New("conflicting profile keys")
	// ErrUnknownFormat is returned when a profile format cannot be determined.
	ErrUnknownFormat = errors.New("unknown profile format")
	// ErrCapacity is returned when the record does not fit the configured store capacity.
	ErrCapacity = errors.New("record exceeds store capacity")
	// ErrMigration is returned when a migration step is missing or fails.
	ErrMigration = errors.New("record migration failed")
)
