package preprocessors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"valgate/internal/core/preprocessing"
)

// TrimStrings removes leading and trailing whitespace from the string fields at Paths.
type TrimStrings struct {
	Paths []string
}

func NewTrimStrings(paths ...string) *TrimStrings {
	return &TrimStrings{Paths: paths}
}

func (t *TrimStrings) Name() string {
	return "trim-strings"
}

func (t *TrimStrings) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(t.Name(), target)
	if err != nil {
		return false, err
	}

	for _, path := range t.Paths {
		v := gjson.GetBytes(req.Body, path)
		if v.Type != gjson.String {
			continue
		}
		trimmed := strings.TrimSpace(v.Str)
		if trimmed == v.Str {
			continue
		}
		body, err := sjson.SetBytes(req.Body, path, trimmed)
		if err != nil {
			return false, fmt.Errorf("%s: failed to set %s: %w", t.Name(), path, err)
		}
		req.Body = body
	}
	return true, nil
}

// FieldMap copies values from source paths to target paths.
// Mapping keys are target paths, values are source paths, e.g. "inputs.query": "messages.0.content".
type FieldMap struct {
	mapping map[string]string
	targets []string
}

func NewFieldMap(mapping map[string]string) *FieldMap {
	f := &FieldMap{mapping: make(map[string]string, len(mapping))}
	for target, source := range mapping {
		f.mapping[target] = source
		f.targets = append(f.targets, target)
	}
	sort.Strings(f.targets)
	return f
}

func (f *FieldMap) Name() string {
	return "field-map"
}

func (f *FieldMap) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(f.Name(), target)
	if err != nil {
		return false, err
	}

	// sources are read from the original body so mappings do not chain
	source := req.Body
	result := req.Body
	for _, targetPath := range f.targets {
		value := gjson.GetBytes(source, f.mapping[targetPath])
		if !value.Exists() {
			continue
		}

		switch value.Type {
		case gjson.String:
			result, err = sjson.SetBytes(result, targetPath, value.String())
		case gjson.Number:
			result, err = sjson.SetRawBytes(result, targetPath, []byte(value.Raw))
		case gjson.True, gjson.False:
			result, err = sjson.SetBytes(result, targetPath, value.Bool())
		default:
			// objects, arrays and null keep their raw form
			result, err = sjson.SetRawBytes(result, targetPath, []byte(value.Raw))
		}
		if err != nil {
			return false, fmt.Errorf("%s: failed to set field %s: %w", f.Name(), targetPath, err)
		}
	}
	req.Body = result
	return true, nil
}

// Defaults fills absent fields with raw JSON values.
type Defaults struct {
	values map[string]string
	paths  []string
}

func NewDefaults(values map[string]string) (*Defaults, error) {
	d := &Defaults{values: make(map[string]string, len(values))}
	for path, raw := range values {
		if !gjson.Valid(raw) {
			return nil, fmt.Errorf("default for %s is not valid JSON: %s", path, raw)
		}
		d.values[path] = raw
		d.paths = append(d.paths, path)
	}
	sort.Strings(d.paths)
	return d, nil
}

func (d *Defaults) Name() string {
	return "defaults"
}

func (d *Defaults) Process(target any, _ preprocessing.Config) (bool, error) {
	req, err := requestOf(d.Name(), target)
	if err != nil {
		return false, err
	}

	for _, path := range d.paths {
		if gjson.GetBytes(req.Body, path).Exists() {
			continue
		}
		body, err := sjson.SetRawBytes(req.Body, path, []byte(d.values[path]))
		if err != nil {
			return false, fmt.Errorf("%s: failed to set %s: %w", d.Name(), path, err)
		}
		req.Body = body
	}
	return true, nil
}
