// FILE: lixenwraith/nvconfig/store_test.go
package nvconfig

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cellWrite struct {
	addr  uint8
	value byte
}

// recorder is an accessor pair over a 256-byte store that logs every access
type recorder struct {
	mem    [Capacity]byte
	reads  []uint8
	writes []cellWrite
}

func newRecorder(fill byte) *recorder {
	r := &recorder{}
	for i := range r.mem {
		r.mem[i] = fill
	}
	return r
}

func (r *recorder) read(addr uint8) byte {
	r.reads = append(r.reads, addr)
	return r.mem[addr]
}

func (r *recorder) write(addr uint8, value byte) {
	r.writes = append(r.writes, cellWrite{addr, value})
	r.mem[addr] = value
}

func (r *recorder) reset() {
	r.reads = nil
	r.writes = nil
}

func (r *recorder) put(rec Record) {
	img, _ := rec.MarshalBinary()
	copy(r.mem[:], img)
}

func defaultsImage(t *testing.T) []byte {
	t.Helper()
	img, err := Defaults().MarshalBinary()
	require.NoError(t, err)
	return img
}

func assertFullWrite(t *testing.T, r *recorder, img []byte) {
	t.Helper()
	require.Len(t, r.writes, RecordSize)
	for i, w := range r.writes {
		assert.Equal(t, uint8(i), w.addr, "write order")
		assert.Equal(t, img[i], w.value, "byte %d", i)
	}
}

func TestLoad(t *testing.T) {
	t.Run("ErasedStoreIsInitialized", func(t *testing.T) {
		mem := newRecorder(ErasedByte)
		var rec Record
		New().Load(&rec, mem.read, mem.write)

		assert.Equal(t, Defaults(), rec)
		assertFullWrite(t, mem, defaultsImage(t))
		for i := RecordSize; i < Capacity; i++ {
			assert.Equal(t, ErasedByte, mem.mem[i], "byte %d beyond the record", i)
		}
	})

	t.Run("ZeroedStoreIsInitialized", func(t *testing.T) {
		mem := newRecorder(0x00)
		var rec Record
		New().Load(&rec, mem.read, mem.write)

		assert.Equal(t, Defaults(), rec)
		assertFullWrite(t, mem, defaultsImage(t))
	})

	t.Run("ReadsAscending", func(t *testing.T) {
		mem := newRecorder(ErasedByte)
		mem.put(Defaults())
		var rec Record
		New().Load(&rec, mem.read, mem.write)

		require.Len(t, mem.reads, RecordSize)
		for i, a := range mem.reads {
			assert.Equal(t, uint8(i), a)
		}
	})

	t.Run("MarkedRecordIsVerbatim", func(t *testing.T) {
		stored := Defaults()
		stored.Version = 0xEE
		stored.Flood.Armed = 0x07
		stored.Temp.MinPeriod = 9_000_000
		stored.Temp.MaxPeriod = 5
		stored.AutoDumpTimeout = 0xFFFFFFFF

		mem := newRecorder(ErasedByte)
		mem.put(stored)

		var rec Record
		New().Load(&rec, mem.read, mem.write)
		assert.Equal(t, stored, rec)
		assert.Empty(t, mem.writes)
	})

	t.Run("PreviousContentsIgnored", func(t *testing.T) {
		mem := newRecorder(ErasedByte)
		mem.put(Defaults())

		rec := Record{Version: 9, AutoDumpTimeout: 1}
		rec.Rain.MinPeriod = 77
		New().Load(&rec, mem.read, mem.write)
		assert.Equal(t, Defaults(), rec)
	})

	t.Run("InvalidMarks", func(t *testing.T) {
		marks := map[string][4]byte{
			"Lowercase":    {'p', 'w', 'i', 0},
			"NoTerminator": {'P', 'W', 'I', 'X'},
			"OtherProduct": {'A', 'B', 'C', 0},
			"ShiftedByOne": {0, 'P', 'W', 'I'},
			"PrefixOnly":   {'P', 0xFF, 0xFF, 0xFF},
		}
		for name, mark := range marks {
			t.Run(name, func(t *testing.T) {
				stored := Defaults()
				stored.Mark = mark
				stored.Door.MinPeriod = 1234

				mem := newRecorder(ErasedByte)
				mem.put(stored)

				var rec Record
				New().Load(&rec, mem.read, mem.write)
				assert.Equal(t, Defaults(), rec)
				assertFullWrite(t, mem, defaultsImage(t))
			})
		}
	})

	t.Run("InitializedStoreIsStable", func(t *testing.T) {
		mem := newRecorder(ErasedByte)
		s := New()

		var first Record
		s.Load(&first, mem.read, mem.write)
		mem.reset()

		var second Record
		s.Load(&second, mem.read, mem.write)
		assert.Equal(t, first, second)
		assert.Empty(t, mem.writes)
	})
}

func TestStore(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		rec := Defaults()
		rec.Door.Armed = FlagOff
		rec.Rain.MaxPeriod = 42
		rec.Flood.AdvertPeriod = 3_600_000

		mem := newRecorder(ErasedByte)
		s := New()
		s.Store(&rec, mem.write)

		want, err := rec.MarshalBinary()
		require.NoError(t, err)
		assertFullWrite(t, mem, want)

		var got Record
		s.Load(&got, mem.read, mem.write)
		assert.Equal(t, rec, got)
	})

	t.Run("UnmarkedRecordIsWrittenAsIs", func(t *testing.T) {
		var rec Record
		rec.Hum.MinPeriod = 5

		mem := newRecorder(ErasedByte)
		New().Store(&rec, mem.write)
		require.Len(t, mem.writes, RecordSize)
		assert.Equal(t, byte(0), mem.mem[0])

		// The next load sees no mark and repairs the store
		var got Record
		New().Load(&got, mem.read, mem.write)
		assert.Equal(t, Defaults(), got)
	})
}

func TestReset(t *testing.T) {
	mem := newRecorder(ErasedByte)
	s := New()

	rec := Defaults()
	rec.Flood.Armed = FlagOff
	s.Reset(&rec, mem.write)
	first := mem.mem

	assert.Equal(t, Defaults(), rec)
	assertFullWrite(t, mem, defaultsImage(t))

	mem.reset()
	s.Reset(&rec, mem.write)
	assert.Equal(t, first, mem.mem)
	assert.Len(t, mem.writes, RecordSize)
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewBuilder().WithLogger(logger).MustBuild()

	rec := Defaults()
	before := rec
	s.Dump(&rec)
	assert.Equal(t, before, rec)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(fieldDefs))
	assert.Contains(t, lines[0], `field=mark`)
	assert.Contains(t, buf.String(), "field=door.min_period value=200")
	assert.Contains(t, buf.String(), "field=flood.armed value=True")

	t.Run("DiscardedByDefault", func(t *testing.T) {
		rec := Defaults()
		Dump(&rec)
		assert.Equal(t, Defaults(), rec)
	})
}

func TestWriteTo(t *testing.T) {
	rec := Defaults()
	rec.Door.Armed = FlagOff

	var buf bytes.Buffer
	n, err := rec.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "mark=\"PWI\"\nversion=1\n"))
	assert.Contains(t, out, "door.armed=False\n")
	assert.Contains(t, out, "auto_dump_timeout=86400000\n")
	assert.Equal(t, len(fieldDefs), strings.Count(out, "\n"))
}

func TestConvenience(t *testing.T) {
	dev := NewMemoryDevice()
	read, write := Accessors(dev)

	var rec Record
	Load(&rec, read, write)
	assert.Equal(t, Defaults(), rec)
	assert.Equal(t, RecordSize, dev.Writes())

	rec.Temp.MinPeriod = 1
	Store(&rec, write)

	var got Record
	LoadDevice(&got, dev)
	assert.Equal(t, rec, got)

	Reset(&got, write)
	assert.Equal(t, Defaults(), got)
	assert.Equal(t, 3*RecordSize, dev.Writes())
}
