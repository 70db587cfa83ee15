// FILE: lixenwraith/nvconfig/store.go
package nvconfig

import (
	"fmt"
	"log/slog"
)

// ReadByteFunc returns the byte currently stored at addr.
type ReadByteFunc func(addr uint8) byte

// WriteByteFunc stores value at addr.
type WriteByteFunc func(addr uint8, value byte)

// ConfigStore maps a Record to and from a byte-addressable store through a pair of
// caller-supplied accessors. A ConfigStore holds no record state and is not safe for
// concurrent use on the same record; callers serialize Load, Reset and Store.
type ConfigStore struct {
	logger     *slog.Logger
	policy     VersionPolicy
	migrations map[uint8]Migration
	capacity   int
}

// New creates a ConfigStore with the default settings: diagnostics discarded,
// VersionIgnore policy, no migrations and the full 256-byte capacity.
func New() *ConfigStore {
	return &ConfigStore{
		logger:     slog.New(slog.DiscardHandler),
		policy:     VersionIgnore,
		migrations: make(map[uint8]Migration),
		capacity:   Capacity,
	}
}

// Policy returns the version policy applied on Load.
func (s *ConfigStore) Policy() VersionPolicy { return s.policy }

// Capacity returns the store size the ConfigStore was built for.
func (s *ConfigStore) Capacity() int { return s.capacity }

// Load fills rec from the store, reading offsets [0, RecordSize) in ascending order.
// If the mark is missing the record is reset to defaults and persisted through write.
// The record is always left in a usable state.
func (s *ConfigStore) Load(rec *Record, read ReadByteFunc, write WriteByteFunc) {
	img := readImage(read, 0, RecordSize)
	rec.decode(img)

	if !rec.Marked() {
		s.logger.Info("record mark not found, resetting to defaults", "mark", fmt.Sprintf("% x", rec.Mark))
		s.Reset(rec, write)
		return
	}

	s.logger.Debug("record loaded", "version", rec.Version, "bytes", RecordSize)
	s.applyVersionPolicy(rec, img, read, write)
}

// Reset overwrites rec with the canonical defaults and persists it immediately.
func (s *ConfigStore) Reset(rec *Record, write WriteByteFunc) {
	s.logger.Info("resetting record to defaults", "version", CurrentVersion)
	*rec = Defaults()
	s.Store(rec, write)
}

// Store writes the record image, calling write exactly once per offset in
// [0, RecordSize) in ascending order.
func (s *ConfigStore) Store(rec *Record, write WriteByteFunc) {
	s.logger.Debug("writing record", "bytes", RecordSize)
	img := make([]byte, RecordSize)
	rec.encode(img)
	for i, b := range img {
		write(uint8(i), b)
	}
}

// readImage reads n bytes starting at start, in ascending address order.
func readImage(read ReadByteFunc, start, n int) []byte {
	img := make([]byte, n)
	for i := range img {
		img[i] = read(uint8(start + i))
	}
	return img
}
