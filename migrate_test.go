// FILE: lixenwraith/nvconfig/migrate_test.go
package nvconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v0Size is the length of a version 0 image, which predates auto_dump_timeout
const v0Size = 63

func upgradeV0(old []byte) ([]byte, error) {
	next := make([]byte, RecordSize)
	copy(next, old)
	next[4] = 1
	byteOrder.PutUint32(next[63:], uint32(DefaultAutoDumpTimeout))
	return next, nil
}

// v0Store holds a version 0 record followed by erased cells
func v0Store(t *testing.T) (*recorder, Record) {
	t.Helper()
	old := Defaults()
	old.Version = 0
	old.Rain.MinPeriod = 30_000
	old.Door.Armed = FlagOff

	mem := newRecorder(ErasedByte)
	img, err := old.MarshalBinary()
	require.NoError(t, err)
	copy(mem.mem[:], img[:v0Size])
	mem.reset()

	var want Record
	require.NoError(t, want.UnmarshalBinary(img))
	return mem, want
}

func TestVersionPolicy(t *testing.T) {
	t.Run("IgnoreKeepsOldRecord", func(t *testing.T) {
		mem, _ := v0Store(t)

		var rec Record
		New().Load(&rec, mem.read, mem.write)
		assert.Equal(t, uint8(0), rec.Version)
		assert.Equal(t, Millis(0xFFFFFFFF), rec.AutoDumpTimeout)
		assert.Empty(t, mem.writes)
	})

	t.Run("MigrateUpgradesAndPersists", func(t *testing.T) {
		mem, want := v0Store(t)
		want.Version = CurrentVersion
		want.AutoDumpTimeout = DefaultAutoDumpTimeout

		s, err := NewBuilder().
			WithVersionPolicy(VersionMigrate).
			WithMigration(Migration{From: 0, Size: v0Size, Apply: upgradeV0}).
			Build()
		require.NoError(t, err)

		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, want, rec)
		assert.Equal(t, Millis(30_000), rec.Rain.MinPeriod)
		assert.Equal(t, FlagOff, rec.Door.Armed)

		img, err := want.MarshalBinary()
		require.NoError(t, err)
		assertFullWrite(t, mem, img)

		// Upgraded store loads without further writes
		mem.reset()
		var again Record
		s.Load(&again, mem.read, mem.write)
		assert.Equal(t, want, again)
		assert.Empty(t, mem.writes)
	})

	t.Run("MigrateReadsOversizeImage", func(t *testing.T) {
		old := Defaults()
		old.Version = 0
		old.Hum.MinPeriod = 15_000

		mem := newRecorder(ErasedByte)
		mem.put(old)
		copy(mem.mem[RecordSize:], []byte{0xAA, 0xBB, 0xCC})

		var got []byte
		s := NewBuilder().
			WithVersionPolicy(VersionMigrate).
			WithMigration(Migration{From: 0, Size: RecordSize + 3, Apply: func(img []byte) ([]byte, error) {
				got = append([]byte(nil), img...)
				next := append([]byte(nil), img[:RecordSize]...)
				next[4] = 1
				return next, nil
			}}).
			MustBuild()

		var rec Record
		s.Load(&rec, mem.read, mem.write)

		require.Len(t, got, RecordSize+3)
		assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, got[RecordSize:])
		require.Len(t, mem.reads, RecordSize+3)
		for i, a := range mem.reads {
			assert.Equal(t, uint8(i), a, "read order")
		}

		want := old
		want.Version = CurrentVersion
		assert.Equal(t, want, rec)
		img, err := want.MarshalBinary()
		require.NoError(t, err)
		assertFullWrite(t, mem, img)
		assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, mem.mem[RecordSize:RecordSize+3])
	})

	t.Run("MigrateWithoutStepResets", func(t *testing.T) {
		mem, _ := v0Store(t)
		s := NewBuilder().WithVersionPolicy(VersionMigrate).MustBuild()

		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, Defaults(), rec)
		assertFullWrite(t, mem, defaultsImage(t))
	})

	t.Run("MigrateFailingStepResets", func(t *testing.T) {
		mem, _ := v0Store(t)
		s := NewBuilder().
			WithVersionPolicy(VersionMigrate).
			WithMigration(Migration{From: 0, Apply: func([]byte) ([]byte, error) {
				return nil, errors.New("corrupt")
			}}).
			MustBuild()

		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, Defaults(), rec)
	})

	t.Run("MigrateRejectsBadResult", func(t *testing.T) {
		mem, _ := v0Store(t)
		s := NewBuilder().
			WithVersionPolicy(VersionMigrate).
			WithMigration(Migration{From: 0, Size: v0Size, Apply: func(old []byte) ([]byte, error) {
				// Forgets to bump the version
				next := make([]byte, RecordSize)
				copy(next, old)
				return next, nil
			}}).
			MustBuild()

		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, Defaults(), rec)
	})

	t.Run("MigrateResetsNewerVersion", func(t *testing.T) {
		stored := Defaults()
		stored.Version = CurrentVersion + 1
		mem := newRecorder(ErasedByte)
		mem.put(stored)

		s := NewBuilder().WithVersionPolicy(VersionMigrate).MustBuild()
		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, Defaults(), rec)
	})

	t.Run("MigrateKeepsCurrentVersion", func(t *testing.T) {
		stored := Defaults()
		stored.Hum.MaxPeriod = 1
		mem := newRecorder(ErasedByte)
		mem.put(stored)

		s := NewBuilder().WithVersionPolicy(VersionMigrate).MustBuild()
		var rec Record
		s.Load(&rec, mem.read, mem.write)
		assert.Equal(t, stored, rec)
		assert.Empty(t, mem.writes)
	})

	t.Run("StrictResetsOtherVersions", func(t *testing.T) {
		for _, v := range []uint8{0, CurrentVersion + 1, 0xFF} {
			stored := Defaults()
			stored.Version = v
			mem := newRecorder(ErasedByte)
			mem.put(stored)

			s := NewBuilder().WithVersionPolicy(VersionStrict).MustBuild()
			var rec Record
			s.Load(&rec, mem.read, mem.write)
			assert.Equal(t, Defaults(), rec, "version %d", v)
			assert.Len(t, mem.writes, RecordSize)
		}
	})
}

func TestParseVersionPolicy(t *testing.T) {
	cases := map[string]VersionPolicy{
		"":         VersionIgnore,
		"ignore":   VersionIgnore,
		"Migrate":  VersionMigrate,
		" STRICT ": VersionStrict,
	}
	for in, want := range cases {
		got, err := ParseVersionPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, want.String(), got.String())
		}
	}

	_, err := ParseVersionPolicy("always")
	assert.Error(t, err)
	assert.Equal(t, "VersionPolicy(7)", VersionPolicy(7).String())
}
