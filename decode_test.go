// FILE: lixenwraith/nvconfig/decode_test.go
package nvconfig

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUint(t *testing.T) {
	valid := map[string]any{
		"int":         int(7),
		"int64":       int64(7),
		"uint8":       uint8(7),
		"float":       float64(7),
		"string":      " 7 ",
		"json.Number": json.Number("7"),
	}
	for name, in := range valid {
		n, ok, err := toUint(in, math.MaxUint8)
		require.NoError(t, err, name)
		assert.True(t, ok, name)
		assert.Equal(t, uint64(7), n, name)
	}

	invalid := map[string]any{
		"negative":   int64(-1),
		"fraction":   0.5,
		"tooLarge":   uint64(math.MaxUint8 + 1),
		"hugeFloat":  1e12,
		"notNumeric": "seven",
	}
	for name, in := range invalid {
		_, ok, err := toUint(in, math.MaxUint8)
		assert.True(t, ok, name)
		assert.Error(t, err, name)
	}

	_, ok, err := toUint(true, math.MaxUint8)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestDecodeRecord(t *testing.T) {
	t.Run("PartialUpdate", func(t *testing.T) {
		rec := Defaults()
		err := decodeRecord(map[string]any{
			"door": map[string]any{"grace_delay": "5s", "armed": false},
		}, &rec)
		require.NoError(t, err)
		assert.Equal(t, Millis(5000), rec.Door.GraceDelay)
		assert.Equal(t, FlagOff, rec.Door.Armed)
		assert.Equal(t, DefaultDoorMinPeriod, rec.Door.MinPeriod)
		assert.Equal(t, Mark, rec.Mark)
	})

	t.Run("VersionRange", func(t *testing.T) {
		rec := Defaults()
		assert.Error(t, decodeRecord(map[string]any{"version": 300}, &rec))
	})

	t.Run("WrongShape", func(t *testing.T) {
		rec := Defaults()
		assert.Error(t, decodeRecord(map[string]any{"rain": []any{1, 2}}, &rec))
	})
}
