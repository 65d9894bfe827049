package tx

import (
	"reflect"
	"strings"
	"sync"
)

// flattenField holds pre-computed metadata for a single struct field.
type flattenField struct {
	index     []int
	name      string
	omitempty bool
}

// flattenInfo holds cached flatten metadata for a struct type.
type flattenInfo struct {
	fields []flattenField
}

// flattenCache stores pre-computed flattenInfo per type to avoid repeated reflection.
var flattenCache sync.Map // map[reflect.Type]*flattenInfo

// parseJSONTag parses a json struct tag.
// Returns skip=true for tags that should be skipped ("-" or missing).
func parseJSONTag(tag string) (name string, omitempty bool, skip bool) {
	if tag == "" || tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// getFlattenInfo returns the cached flattenInfo for a struct type.
func getFlattenInfo(t reflect.Type) *flattenInfo {
	if cached, ok := flattenCache.Load(t); ok {
		return cached.(*flattenInfo)
	}

	info := &flattenInfo{}
	collectFields(t, nil, info)

	flattenCache.Store(t, info)
	return info
}

var baseTxType = reflect.TypeOf(BaseTx{})

// collectFields walks t, descending into embedded structs other than BaseTx
// whose fields come from Common.ToMap.
func collectFields(t reflect.Type, prefix []int, info *flattenInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous {
			if field.Type.Kind() == reflect.Struct && field.Type != baseTxType {
				collectFields(field.Type, index, info)
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, omitempty, skip := parseJSONTag(field.Tag.Get("json"))
		if skip {
			continue
		}

		info.fields = append(info.fields, flattenField{
			index:     index,
			name:      name,
			omitempty: omitempty,
		})
	}
}

// isEmptyValue returns true if the reflect.Value should be considered empty for omitempty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.String() == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Bool:
		return !v.Bool()
	default:
		return false
	}
}

// ReflectFlatten generates a flat map from a Transaction using its json tags.
// It starts with Common.ToMap() and adds type-specific fields. Pointer
// fields are dereferenced; nil pointers are left out.
func ReflectFlatten(tx Transaction) (map[string]any, error) {
	m := tx.GetCommon().ToMap()

	v := reflect.ValueOf(tx)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	info := getFlattenInfo(v.Type())

	for _, f := range info.fields {
		val := v.FieldByIndex(f.index)

		if f.omitempty && isEmptyValue(val) {
			continue
		}

		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				continue
			}
			m[f.name] = val.Elem().Interface()
		} else {
			m[f.name] = val.Interface()
		}
	}

	return m, nil
}
