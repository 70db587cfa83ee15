// FILE: lixenwraith/nvconfig/builder.go
package nvconfig

import (
	"errors"
	"fmt"
	"log/slog"
)

// ValidatorFunc defines the signature for a function that can validate a record.
// Validators registered on the Builder run against Defaults() during Build, so a
// build that would reset stores to an unacceptable record fails early.
type ValidatorFunc func(r Record) error

// Builder provides a fluent interface for building a ConfigStore
type Builder struct {
	store      *ConfigStore
	migrations []Migration
	errs       []error
	validators []ValidatorFunc
}

// NewBuilder creates a new store builder with the defaults of New
func NewBuilder() *Builder {
	return &Builder{
		store:      New(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithLogger sets the diagnostics logger. A nil logger keeps diagnostics discarded.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.store.logger = logger
	}
	return b
}

// WithVersionPolicy sets what Load does with records of another version
func (b *Builder) WithVersionPolicy(p VersionPolicy) *Builder {
	if p < VersionIgnore || p > VersionStrict {
		b.errs = append(b.errs, fmt.Errorf("unsupported version policy %d", int(p)))
		return b
	}
	b.store.policy = p
	return b
}

// WithMigration registers a migration step. Steps are only used under VersionMigrate.
func (b *Builder) WithMigration(m Migration) *Builder {
	b.migrations = append(b.migrations, m)
	return b
}

// WithCapacity sets the size of the store region reserved for the record
func (b *Builder) WithCapacity(n int) *Builder {
	b.store.capacity = n
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the ConfigStore with all specified options
func (b *Builder) Build() (*ConfigStore, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	// Later With* calls on the builder do not reach stores already built
	built := *b.store
	s := &built
	if s.capacity < RecordSize || s.capacity > Capacity {
		return nil, fmt.Errorf("%w: capacity %d, record needs %d of at most %d", ErrCapacity, s.capacity, RecordSize, Capacity)
	}

	migrations := make(map[uint8]Migration, len(b.migrations))
	for _, m := range b.migrations {
		if m.Apply == nil {
			return nil, fmt.Errorf("migration from version %d has no apply function", m.From)
		}
		if m.From >= CurrentVersion {
			return nil, fmt.Errorf("migration from version %d: must start below current version %d", m.From, CurrentVersion)
		}
		if size := m.size(); size < 5 || size > s.capacity {
			return nil, fmt.Errorf("migration from version %d: image size %d outside [5, %d]", m.From, size, s.capacity)
		}
		if _, dup := migrations[m.From]; dup {
			return nil, fmt.Errorf("duplicate migration from version %d", m.From)
		}
		migrations[m.From] = m
	}

	// Run validators
	defaults := Defaults()
	for _, validator := range b.validators {
		if err := validator(defaults); err != nil {
			return nil, fmt.Errorf("default record validation failed: %w", err)
		}
	}

	s.migrations = migrations
	return s, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *ConfigStore {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("store build failed: %v", err))
	}
	return s
}
