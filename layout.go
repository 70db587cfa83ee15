// FILE: lixenwraith/nvconfig/layout.go
package nvconfig

import (
	"encoding/binary"
	"fmt"
)

// Persisted layout constants. These define the on-store format and MUST NOT be configurable.
const (
	// RecordSize is the length in bytes of the encoded record.
	RecordSize = 67

	// Capacity is the size of the 8-bit addressable store.
	Capacity = 256

	// CurrentVersion is the format version written by Reset.
	CurrentVersion uint8 = 1
)

// Mark identifies a record written by this software: "PWI" plus terminator.
var Mark = [4]byte{'P', 'W', 'I', 0}

// byteOrder matches the image produced by the AVR firmware.
var byteOrder = binary.LittleEndian

// The record must fit the address space.
var _ [Capacity - RecordSize]struct{}

// fieldDef names one persisted field and locates it inside a Record.
// ref returns a pointer to the field: *[4]byte, *uint8, *Flag or *Millis.
type fieldDef struct {
	path string
	ref  func(r *Record) any
}

// slot is a fieldDef with its resolved position in the image.
type slot struct {
	fieldDef
	offset int
	width  int
}

// fieldDefs lists the persisted fields in image order.
var fieldDefs = []fieldDef{
	{"mark", func(r *Record) any { return &r.Mark }},
	{"version", func(r *Record) any { return &r.Version }},

	{"flood.armed", func(r *Record) any { return &r.Flood.Armed }},
	{"flood.min_period", func(r *Record) any { return &r.Flood.MinPeriod }},
	{"flood.max_period", func(r *Record) any { return &r.Flood.MaxPeriod }},
	{"flood.grace_delay", func(r *Record) any { return &r.Flood.GraceDelay }},
	{"flood.advert_period", func(r *Record) any { return &r.Flood.AdvertPeriod }},

	{"rain.min_period", func(r *Record) any { return &r.Rain.MinPeriod }},
	{"rain.max_period", func(r *Record) any { return &r.Rain.MaxPeriod }},

	{"temp.min_period", func(r *Record) any { return &r.Temp.MinPeriod }},
	{"temp.max_period", func(r *Record) any { return &r.Temp.MaxPeriod }},

	{"hum.min_period", func(r *Record) any { return &r.Hum.MinPeriod }},
	{"hum.max_period", func(r *Record) any { return &r.Hum.MaxPeriod }},

	{"door.armed", func(r *Record) any { return &r.Door.Armed }},
	{"door.min_period", func(r *Record) any { return &r.Door.MinPeriod }},
	{"door.max_period", func(r *Record) any { return &r.Door.MaxPeriod }},
	{"door.grace_delay", func(r *Record) any { return &r.Door.GraceDelay }},
	{"door.advert_period", func(r *Record) any { return &r.Door.AdvertPeriod }},

	{"auto_dump_timeout", func(r *Record) any { return &r.AutoDumpTimeout }},
}

var layout = buildLayout(fieldDefs)

func buildLayout(defs []fieldDef) []slot {
	var probe Record
	slots := make([]slot, 0, len(defs))
	offset := 0
	for _, d := range defs {
		w := widthOf(d.ref(&probe))
		slots = append(slots, slot{fieldDef: d, offset: offset, width: w})
		offset += w
	}
	if offset != RecordSize {
		panic(fmt.Sprintf("nvconfig: field table spans %d bytes, RecordSize is %d", offset, RecordSize))
	}
	return slots
}

func widthOf(p any) int {
	switch p.(type) {
	case *[4]byte:
		return 4
	case *uint8, *Flag:
		return 1
	case *Millis:
		return 4
	default:
		panic(fmt.Sprintf("nvconfig: unsupported field type %T", p))
	}
}

// Field describes one persisted field of a record.
type Field struct {
	Path   string
	Offset int
	Width  int
	Value  any
}

// Fields returns the record's fields in image order.
func (r *Record) Fields() []Field {
	out := make([]Field, 0, len(layout))
	for _, s := range layout {
		var v any
		switch p := s.ref(r).(type) {
		case *[4]byte:
			v = *p
		case *uint8:
			v = *p
		case *Flag:
			v = *p
		case *Millis:
			v = *p
		}
		out = append(out, Field{Path: s.path, Offset: s.offset, Width: s.width, Value: v})
	}
	return out
}
