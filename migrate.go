// FILE: lixenwraith/nvconfig/migrate.go
package nvconfig

import (
	"fmt"
	"strings"
)

// VersionPolicy decides what Load does with a marked record whose version differs
// from CurrentVersion.
type VersionPolicy int

const (
	// VersionIgnore keeps the record verbatim whatever its version. Only the mark gates reset.
	VersionIgnore VersionPolicy = iota

	// VersionMigrate upgrades older records through the registered migrations and
	// resets records it cannot interpret (newer versions, missing or failing steps).
	VersionMigrate

	// VersionStrict resets any record whose version is not CurrentVersion.
	VersionStrict
)

func (p VersionPolicy) String() string {
	switch p {
	case VersionIgnore:
		return "ignore"
	case VersionMigrate:
		return "migrate"
	case VersionStrict:
		return "strict"
	default:
		return fmt.Sprintf("VersionPolicy(%d)", int(p))
	}
}

// ParseVersionPolicy converts "ignore", "migrate" or "strict" into a VersionPolicy.
func ParseVersionPolicy(s string) (VersionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "":
		return VersionIgnore, nil
	case "migrate":
		return VersionMigrate, nil
	case "strict":
		return VersionStrict, nil
	default:
		return VersionIgnore, fmt.Errorf("unsupported version policy: %q", s)
	}
}

// MigrateFunc converts the image of one format version into the image of the next.
type MigrateFunc func(old []byte) ([]byte, error)

// Migration upgrades records of version From to version From+1.
// Size is the length of a version From image; zero means RecordSize.
// The final step of a chain must produce a RecordSize image carrying the mark
// and CurrentVersion.
type Migration struct {
	From  uint8
	Size  int
	Apply MigrateFunc
}

func (m Migration) size() int {
	if m.Size == 0 {
		return RecordSize
	}
	return m.Size
}

func (s *ConfigStore) applyVersionPolicy(rec *Record, img []byte, read ReadByteFunc, write WriteByteFunc) {
	v := rec.Version
	if v == CurrentVersion || s.policy == VersionIgnore {
		return
	}

	switch {
	case s.policy == VersionStrict:
		s.logger.Warn("record version mismatch, resetting", "version", v, "want", CurrentVersion)
		s.Reset(rec, write)

	case v > CurrentVersion:
		s.logger.Warn("record version is newer than this build, resetting", "version", v, "want", CurrentVersion)
		s.Reset(rec, write)

	default:
		migrated, err := s.migrate(img, v, read)
		if err != nil {
			s.logger.Warn("record migration failed, resetting", "version", v, "error", err)
			s.Reset(rec, write)
			return
		}
		rec.decode(migrated)
		s.logger.Info("record migrated", "from", v, "to", CurrentVersion)
		s.Store(rec, write)
	}
}

// migrate walks the chain from version from up to CurrentVersion.
// Only the first step reads from the store; its image is extended or trimmed to the
// declared size.
func (s *ConfigStore) migrate(img []byte, from uint8, read ReadByteFunc) ([]byte, error) {
	cur := img
	for v := from; v < CurrentVersion; v++ {
		m, ok := s.migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no step from version %d", ErrMigration, v)
		}

		size := m.size()
		if v == from {
			switch {
			case size > len(cur):
				cur = append(cur[:len(cur):len(cur)], readImage(read, len(cur), size-len(cur))...)
			case size < len(cur):
				cur = cur[:size]
			}
		}
		if len(cur) != size {
			return nil, fmt.Errorf("%w: version %d image is %d bytes, step expects %d", ErrMigration, v, len(cur), size)
		}

		next, err := m.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: version %d: %w", ErrMigration, v, err)
		}
		cur = next
	}

	if len(cur) != RecordSize {
		return nil, fmt.Errorf("%w: migrated image is %d bytes, want %d", ErrMigration, len(cur), RecordSize)
	}

	var check Record
	check.decode(cur)
	if !check.Marked() || check.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: migrated image has mark % x version %d", ErrMigration, check.Mark, check.Version)
	}
	return cur, nil
}
