package helm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chartutil"
)

// Values represents helm chart values as a map.
type Values map[string]any

// DeepMerge merges override into base and returns a new tree.
//
// Keys present on one side only are copied from that side. When both sides
// hold a map at the same key the maps are merged recursively; in every other
// case the override value replaces the base value in full, so lists are
// replaced rather than concatenated. Neither input is modified and the result
// shares no map or slice with them.
func DeepMerge(base, override Values) Values {
	result := make(Values, len(base)+len(override))
	for k, v := range base {
		result[k] = deepCopyValue(v)
	}

	for k, ov := range override {
		bv, exists := result[k]
		if !exists {
			result[k] = deepCopyValue(ov)
			continue
		}

		baseMap, baseIsMap := asValues(bv)
		overrideMap, overrideIsMap := asValues(ov)
		if baseIsMap && overrideIsMap {
			result[k] = map[string]any(DeepMerge(baseMap, overrideMap))
			continue
		}

		result[k] = deepCopyValue(ov)
	}

	return result
}

// MergeAll folds the given layers with DeepMerge, later layers taking precedence.
func MergeAll(layers ...Values) Values {
	result := Values{}
	for _, layer := range layers {
		result = DeepMerge(result, layer)
	}
	return result
}

// DeepCopy returns a structural copy of v. Nested trees are copied as
// map[string]any.
func (v Values) DeepCopy() Values {
	if v == nil {
		return nil
	}
	out, _ := deepCopyValue(v).(map[string]any)
	return Values(out)
}

// ToMap converts v into plain nested map[string]any values, which is the
// shape the Helm SDK expects for chart values.
func (v Values) ToMap() map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = toPlain(val)
	}
	return out
}

// SetPath sets value at a dot separated path, creating intermediate maps as
// needed. An existing non-map value along the path is replaced by a map.
func (v Values) SetPath(path string, value any) {
	parts := strings.Split(path, ".")
	current := v
	for _, part := range parts[:len(parts)-1] {
		next, ok := asValues(current[part])
		if !ok {
			next = Values{}
			current[part] = map[string]any(next)
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Lookup returns the value at a dot separated path.
func (v Values) Lookup(path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := v
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		current, ok = asValues(val)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// Keys returns the top-level keys of v in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToYAML converts values to YAML bytes. Map keys are emitted in sorted order.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v.ToMap()); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON converts values to JSON bytes. Map keys are emitted in sorted order.
func (v Values) ToJSON() ([]byte, error) {
	data, err := json.Marshal(v.ToMap())
	if err != nil {
		return nil, fmt.Errorf("failed to encode values to JSON: %w", err)
	}
	return data, nil
}

// FromYAML parses YAML bytes into Values. An empty document yields an empty map.
func FromYAML(data []byte) (Values, error) {
	var values Values
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML values: %w", err)
	}
	if values == nil {
		values = Values{}
	}
	return values, nil
}

// asValues reports whether v is a nested tree and returns it as Values.
func asValues(v any) (Values, bool) {
	switch m := v.(type) {
	case Values:
		return m, true
	case map[string]any:
		return Values(m), true
	case chartutil.Values:
		return Values(m), true
	default:
		return nil, false
	}
}

// deepCopyValue copies trees and lists recursively. Trees of any map flavour
// come back as map[string]any; scalars are returned as is.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Values, map[string]any, chartutil.Values:
		m, _ := asValues(val)
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []Values:
		out := make([]Values, len(val))
		for i, item := range val {
			out[i] = item.DeepCopy()
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = Values(item).DeepCopy().ToMap()
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return copyTyped(val)
	}
}

// copyTyped copies slices and maps of any other type, e.g. []int or
// map[string][]string, keeping their type. Scalars are returned as is.
func copyTyped(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		if isScalarKind(rv.Type().Elem().Kind()) {
			reflect.Copy(out, rv)
			return out.Interface()
		}
		for i := range rv.Len() {
			out.Index(i).Set(copyElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyElem(iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	default:
		return v
	}
}

// copyElem deep copies one element of a typed slice or map. Trees come back
// from deepCopyValue as map[string]any; the original element is kept when
// the container type cannot hold that.
func copyElem(elem reflect.Value, typ reflect.Type) reflect.Value {
	if elem.Kind() == reflect.Interface && elem.IsNil() {
		return reflect.Zero(typ)
	}
	copied := deepCopyValue(elem.Interface())
	if copied == nil {
		return reflect.Zero(typ)
	}
	cv := reflect.ValueOf(copied)
	if cv.Type().AssignableTo(typ) {
		return cv
	}
	return elem
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// toPlain converts nested Values into map[string]any recursively.
func toPlain(v any) any {
	switch val := v.(type) {
	case Values, map[string]any, chartutil.Values:
		m, _ := asValues(val)
		return m.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toPlain(item)
		}
		return out
	case []Values:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item.ToMap()
		}
		return out
	default:
		return val
	}
}
