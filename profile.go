// FILE: lixenwraith/nvconfig/profile.go
package nvconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Profile formats
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// legacyKeys maps channel keys used by earlier firmware to their current names
var legacyKeys = map[string]string{
	"max_frequency_timeout": "min_period",
	"unchanged_timeout":     "max_period",
}

// MarshalProfile renders the record as an editable profile. The mark is omitted,
// flags are booleans and periods are integer milliseconds.
func MarshalProfile(rec Record, format string) ([]byte, error) {
	data := profileMap(rec)

	switch strings.ToLower(format) {
	case FormatTOML, "":
		var buf bytes.Buffer
		encoder := toml.NewEncoder(&buf)
		if err := encoder.Encode(data); err != nil {
			return nil, fmt.Errorf("failed to marshal profile to TOML: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile to YAML: %w", err)
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile to JSON: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// UnmarshalProfile parses a profile onto Defaults(). Keys the profile omits keep
// their default values. The result carries the mark and CurrentVersion and has
// passed Validate.
func UnmarshalProfile(data []byte, format string) (Record, error) {
	raw, err := parseProfile(data, format)
	if err != nil {
		return Record{}, err
	}

	if v, ok := raw["version"]; ok {
		n, numeric, err := toUint(v, 255)
		if !numeric || err != nil {
			return Record{}, fmt.Errorf("%w: profile version %v", ErrUnsupportedVersion, v)
		}
		if n == 0 || n > uint64(CurrentVersion) {
			return Record{}, fmt.Errorf("%w: profile version %d, current is %d", ErrUnsupportedVersion, n, CurrentVersion)
		}
	}

	raw, err = normalizeLegacyKeys(raw)
	if err != nil {
		return Record{}, err
	}

	rec := Defaults()
	if err := decodeRecord(raw, &rec); err != nil {
		return Record{}, err
	}
	rec.Mark = Mark
	rec.Version = CurrentVersion

	if err := Validate(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ExportProfile writes the record to path atomically. The format follows the
// file extension and falls back to TOML.
func ExportProfile(rec Record, path string) error {
	format := detectFileFormat(path)
	if format == "" {
		format = FormatTOML
	}

	data, err := MarshalProfile(rec, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory '%s': %w", dir, err)
	}
	return atomicWriteFile(path, data)
}

// ImportProfile reads a profile from path. The format follows the file extension,
// then the content.
func ImportProfile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read profile '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return Record{}, fmt.Errorf("%w: cannot detect format of '%s'", ErrUnknownFormat, path)
		}
	}

	rec, err := UnmarshalProfile(data, format)
	if err != nil {
		return Record{}, fmt.Errorf("profile '%s': %w", path, err)
	}
	return rec, nil
}

// parseProfile decodes raw profile text into a nested map
func parseProfile(data []byte, format string) (map[string]any, error) {
	raw := make(map[string]any)

	switch strings.ToLower(format) {
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML profile: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve integer precision for uint32 periods
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
		if raw == nil {
			// Empty document
			raw = make(map[string]any)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return raw, nil
}

// normalizeLegacyKeys renames legacy channel keys to their current names.
// A table holding both the legacy and the current name is a conflict.
func normalizeLegacyKeys(raw map[string]any) (map[string]any, error) {
	flat := flattenMap(raw, "")

	var errs []error
	out := make(map[string]any, len(raw))
	for path, value := range flat {
		parent, last := lastSegment(path)
		current, legacy := legacyKeys[last]
		if !legacy || parent == "" {
			setNestedValue(out, path, value)
			continue
		}

		target := parent + "." + current
		if _, clash := flat[target]; clash {
			errs = append(errs, fmt.Errorf("%w: %s and %s", ErrProfileConflict, path, target))
			continue
		}
		setNestedValue(out, target, value)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// profileMap builds the nested profile view of a record from the field table
func profileMap(rec Record) map[string]any {
	data := make(map[string]any)
	for _, f := range rec.Fields() {
		var v any
		switch fv := f.Value.(type) {
		case [4]byte:
			continue
		case Flag:
			v = fv.On()
		case Millis:
			v = int64(fv)
		case uint8:
			v = int64(fv)
		default:
			v = fv
		}
		setNestedValue(data, f.Path, v)
	}
	return data
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// key: value YAML is never valid TOML
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
