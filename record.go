// FILE: lixenwraith/nvconfig/record.go
package nvconfig

import (
	"strconv"
	"time"
)

// Flag is a persisted on/off switch. The raw byte is kept as read from the store,
// zero means off and any other value means on.
type Flag uint8

const (
	FlagOff Flag = 0
	FlagOn  Flag = 1
)

// FlagOf converts a bool into the canonical Flag value.
func FlagOf(on bool) Flag {
	if on {
		return FlagOn
	}
	return FlagOff
}

// On reports whether the flag is set.
func (f Flag) On() bool { return f != FlagOff }

func (f Flag) String() string {
	if f.On() {
		return "True"
	}
	return "False"
}

// Millis is a period or timeout in milliseconds, stored as an unsigned 32-bit integer.
type Millis uint32

// Duration converts the value into a time.Duration.
func (m Millis) Duration() time.Duration { return time.Duration(m) * time.Millisecond }

func (m Millis) String() string { return strconv.FormatUint(uint64(m), 10) }

// AlarmChannel holds the timing parameters of a channel that can trip an alarm (flood, door).
type AlarmChannel struct {
	Armed        Flag   `toml:"armed"`
	MinPeriod    Millis `toml:"min_period"`
	MaxPeriod    Millis `toml:"max_period"`
	GraceDelay   Millis `toml:"grace_delay"`
	AdvertPeriod Millis `toml:"advert_period"`
}

// MeasureChannel holds the reporting periods of a measured channel (rain, temperature, humidity).
type MeasureChannel struct {
	MinPeriod Millis `toml:"min_period"`
	MaxPeriod Millis `toml:"max_period"`
}

// Record is the configuration persisted in the node's EEPROM.
// It is a flat value type; its byte image is defined by the field table in layout.go,
// not by the Go memory layout.
type Record struct {
	// Mark is the 'PWI' null-terminated tag written by this software.
	Mark    [4]byte `toml:"-"`
	Version uint8   `toml:"version"`

	Flood AlarmChannel   `toml:"flood"`
	Rain  MeasureChannel `toml:"rain"`
	Temp  MeasureChannel `toml:"temp"`
	Hum   MeasureChannel `toml:"hum"`
	Door  AlarmChannel   `toml:"door"`

	// AutoDumpTimeout is the interval of the automatic full configuration report.
	AutoDumpTimeout Millis `toml:"auto_dump_timeout"`
}

// Marked reports whether the record carries the expected mark.
func (r *Record) Marked() bool { return r.Mark == Mark }
