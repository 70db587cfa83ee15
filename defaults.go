// FILE: lixenwraith/nvconfig/defaults.go
package nvconfig

// Canonical default values applied by Reset.
const (
	DefaultMinPeriod       Millis = 120000   // 2 min
	DefaultMaxPeriod       Millis = 3600000  // 1 h
	DefaultDoorMinPeriod   Millis = 200      // door contact debounce
	DefaultAutoDumpTimeout Millis = 86400000 // 24 h
)

// Defaults returns the canonical default record: mark and current version set,
// both alarm channels armed, grace delays and advert periods disabled.
func Defaults() Record {
	var r Record
	r.Mark = Mark
	r.Version = CurrentVersion

	r.Flood = AlarmChannel{
		Armed:     FlagOn,
		MinPeriod: DefaultMinPeriod,
		MaxPeriod: DefaultMaxPeriod,
	}

	r.Rain = MeasureChannel{MinPeriod: DefaultMinPeriod, MaxPeriod: DefaultMaxPeriod}
	r.Temp = MeasureChannel{MinPeriod: DefaultMinPeriod, MaxPeriod: DefaultMaxPeriod}
	r.Hum = MeasureChannel{MinPeriod: DefaultMinPeriod, MaxPeriod: DefaultMaxPeriod}

	r.Door = AlarmChannel{
		Armed:     FlagOn,
		MinPeriod: DefaultDoorMinPeriod,
		MaxPeriod: DefaultMaxPeriod,
	}

	r.AutoDumpTimeout = DefaultAutoDumpTimeout
	return r
}
