// FILE: lixenwraith/nvconfig/validate.go
package nvconfig

import (
	"errors"
	"fmt"
)

// Validate checks a record for values the node firmware cannot work with.
// All problems are reported together. Load never validates: a marked record is
// always kept as stored.
func Validate(r Record) error {
	var errs []error

	if !r.Marked() {
		errs = append(errs, fmt.Errorf("%w: % x", ErrInvalidMark, r.Mark))
	}
	if r.Version == 0 || r.Version > CurrentVersion {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnsupportedVersion, r.Version))
	}

	periods := []struct {
		channel  string
		min, max Millis
	}{
		{"flood", r.Flood.MinPeriod, r.Flood.MaxPeriod},
		{"rain", r.Rain.MinPeriod, r.Rain.MaxPeriod},
		{"temp", r.Temp.MinPeriod, r.Temp.MaxPeriod},
		{"hum", r.Hum.MinPeriod, r.Hum.MaxPeriod},
		{"door", r.Door.MinPeriod, r.Door.MaxPeriod},
	}
	for _, p := range periods {
		if p.min != 0 && p.max != 0 && p.min > p.max {
			errs = append(errs, fmt.Errorf("%s: min_period %d exceeds max_period %d", p.channel, p.min, p.max))
		}
	}

	return errors.Join(errs...)
}
