package zonemerge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// GlobalZoneName is the input zone name whose keys become document-wide globals.
const GlobalZoneName = "global"

// Input field names.
const (
	fieldZones      = "zones"
	fieldZoneName   = "zonename"
	fieldZoneKeys   = "zonekeys"
	fieldZoneArray  = "zonearray"
	fieldZoneDelete = "zonedelete"
)

// ZoneDirective is the merge data for one zone.
type ZoneDirective struct {
	// Keys are substituted in the zone's own text.
	Keys map[string]string
	// Array holds one entry per repetition of the zone's rows. A nil Array
	// means the zone has no array; a non-nil empty Array renders zero rows.
	Array []map[string]string
	// Delete removes the zone from the output entirely.
	Delete bool
}

// HasArray reports whether the directive carries a row array, even an empty one.
func (d ZoneDirective) HasArray() bool {
	return d.Array != nil
}

// MergeInput is validated merge data: document-wide globals plus per-zone
// directives. The engine never modifies it.
type MergeInput struct {
	Globals map[string]string
	Zones   map[string]ZoneDirective
}

// NewMergeInput returns an empty input ready to be filled in.
func NewMergeInput() *MergeInput {
	return &MergeInput{
		Globals: make(map[string]string),
		Zones:   make(map[string]ZoneDirective),
	}
}

// Directive returns the directive for a zone, or an empty one when the input
// has none.
func (in *MergeInput) Directive(name string) (ZoneDirective, bool) {
	d, ok := in.Zones[name]
	return d, ok
}

// ReadInput decodes a JSON document from r and validates it into a MergeInput.
func ReadInput(r io.Reader) (*MergeInput, error) {
	return DefaultEngine.ReadInput(r)
}

// DecodeInput validates an already-decoded JSON or YAML value into a MergeInput.
func DecodeInput(v interface{}) (*MergeInput, error) {
	return DefaultEngine.DecodeInput(v)
}

func readInput(r io.Reader, strict bool, logger *Logger) (*MergeInput, error) {
	v, err := decodeJSON(r)
	if err != nil {
		return nil, NewIOError("decode input", "", err)
	}
	return decodeInput(v, strict, logger)
}

// decodeJSON reads exactly one JSON value from r, keeping numbers in their
// source form. Anything but whitespace after the value is an error.
func decodeJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return nil, err
	}
	return v, nil
}

// decodeInput checks the whole document and reports every problem it finds in
// a single *ValidationError.
func decodeInput(v interface{}, strict bool, logger *Logger) (*MergeInput, error) {
	verr := &ValidationError{}
	in := NewMergeInput()

	root, ok := asObject(v)
	if !ok {
		verr.add("input", "must be an object, got %s", describe(v))
		return nil, verr
	}
	if strict {
		checkUnknown(verr, "input", root, fieldZones)
	}

	rawZones, present := root[fieldZones]
	if !present {
		verr.add(fieldZones, "is required")
		return nil, verr
	}
	zones, ok := rawZones.([]interface{})
	if !ok {
		verr.add(fieldZones, "must be a list, got %s", describe(rawZones))
		return nil, verr
	}

	for i, raw := range zones {
		decodeZone(verr, in, fmt.Sprintf("zones[%d]", i), raw, strict, logger)
	}

	if err := verr.err(); err != nil {
		return nil, err
	}

	if logger.Enabled(LogDebug) {
		logger.WithFields(Fields{
			"globals": len(in.Globals),
			"zones":   len(in.Zones),
		}).Debug("Merge input decoded")
	}
	return in, nil
}

func decodeZone(verr *ValidationError, in *MergeInput, path string, raw interface{}, strict bool, logger *Logger) {
	entry, ok := asObject(raw)
	if !ok {
		verr.add(path, "must be an object, got %s", describe(raw))
		return
	}
	if strict {
		checkUnknown(verr, path, entry, fieldZoneName, fieldZoneKeys, fieldZoneArray, fieldZoneDelete)
	}

	before := len(verr.Issues)

	name, ok := entry[fieldZoneName].(string)
	switch {
	case entry[fieldZoneName] == nil:
		verr.add(path+"."+fieldZoneName, "is required")
	case !ok:
		verr.add(path+"."+fieldZoneName, "must be a string, got %s", describe(entry[fieldZoneName]))
	case name == "":
		verr.add(path+"."+fieldZoneName, "must not be empty")
	}

	var directive ZoneDirective

	if rawKeys, present := entry[fieldZoneKeys]; present && rawKeys != nil {
		directive.Keys = decodeScalarMap(verr, path+"."+fieldZoneKeys, rawKeys)
	}

	if rawArray, present := entry[fieldZoneArray]; present && rawArray != nil {
		items, ok := rawArray.([]interface{})
		if !ok {
			verr.add(path+"."+fieldZoneArray, "must be a list, got %s", describe(rawArray))
		} else {
			directive.Array = make([]map[string]string, 0, len(items))
			for j, item := range items {
				directive.Array = append(directive.Array,
					decodeScalarMap(verr, fmt.Sprintf("%s.%s[%d]", path, fieldZoneArray, j), item))
			}
		}
	}

	if rawDelete, present := entry[fieldZoneDelete]; present && rawDelete != nil {
		del, ok := rawDelete.(bool)
		if !ok {
			verr.add(path+"."+fieldZoneDelete, "must be a boolean, got %s", describe(rawDelete))
		}
		directive.Delete = del
	}

	if len(verr.Issues) > before {
		return
	}

	if name == GlobalZoneName {
		if directive.Array != nil || directive.Delete {
			logger.WithField("entry", path).Warn("zonearray and zonedelete are ignored on the global zone")
		}
		for k, v := range directive.Keys {
			if _, exists := in.Globals[k]; !exists {
				in.Globals[k] = v
			}
		}
		return
	}

	if _, exists := in.Zones[name]; exists {
		logger.WithFields(Fields{"zone": name, "entry": path}).Debug("Duplicate zone entry ignored")
		return
	}
	if directive.Keys == nil {
		directive.Keys = map[string]string{}
	}
	in.Zones[name] = directive
}

// decodeScalarMap converts an object of scalar values into a string map.
func decodeScalarMap(verr *ValidationError, path string, raw interface{}) map[string]string {
	obj, ok := asObject(raw)
	if !ok {
		verr.add(path, "must be an object, got %s", describe(raw))
		return nil
	}

	out := make(map[string]string, len(obj))
	for _, k := range sortedKeys(obj) {
		s, ok := scalarString(obj[k])
		if !ok {
			verr.add(path+"."+k, "must be a string, number or boolean, got %s", describe(obj[k]))
			continue
		}
		out[k] = s
	}
	return out
}

// scalarString renders a decoded JSON/YAML scalar as substitution text.
func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	default:
		return "", false
	}
}

// asObject accepts both JSON-style and YAML-style decoded mappings.
func asObject(v interface{}) (map[string]interface{}, bool) {
	switch obj := v.(type) {
	case map[string]interface{}:
		return obj, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(obj))
		for k, val := range obj {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func checkUnknown(verr *ValidationError, path string, obj map[string]interface{}, allowed ...string) {
	for _, k := range sortedKeys(obj) {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			verr.add(path+"."+k, "unknown field")
		}
	}
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describe names the JSON type of v for error messages.
func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32, uint, uint64, uint32:
		return "number"
	case []interface{}:
		return "list"
	case map[string]interface{}, map[interface{}]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
