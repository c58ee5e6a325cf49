// httpclient/params.go
package httpclient

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ParamsSerializer turns request params into a query string without the leading "?".
type ParamsSerializer func(params map[string]any) string

// SerializeParams encodes params the way jQuery's $.param does: nested maps become a[b]=c,
// slices of scalars become a[]=1&a[]=2, slices of maps or slices become a[0][b]=c, nil becomes
// an empty value and spaces are encoded as "+". Map keys are emitted in sorted order.
func SerializeParams(params map[string]any) string {
	var pairs []string
	add := func(key string, value reflect.Value) {
		pairs = append(pairs, encodeURIComponent(key)+"="+encodeURIComponent(scalarString(value)))
	}

	var build func(prefix string, value reflect.Value)
	build = func(prefix string, value reflect.Value) {
		value = indirect(value)
		switch {
		case !value.IsValid():
			add(prefix, value)
		case value.Kind() == reflect.Slice && value.Type().Elem().Kind() != reflect.Uint8, value.Kind() == reflect.Array:
			for i := 0; i < value.Len(); i++ {
				elem := indirect(value.Index(i))
				if strings.HasSuffix(prefix, "[]") {
					// The key already names a list.
					add(prefix, elem)
					continue
				}
				if isComposite(elem) {
					build(prefix+"["+strconv.Itoa(i)+"]", elem)
				} else {
					build(prefix+"[]", elem)
				}
			}
		case value.Kind() == reflect.Map:
			for _, key := range sortedKeys(value) {
				build(prefix+"["+key.String()+"]", value.MapIndex(key.value))
			}
		default:
			add(prefix, value)
		}
	}

	root := reflect.ValueOf(params)
	for _, key := range sortedKeys(root) {
		build(key.String(), root.MapIndex(key.value))
	}

	return strings.ReplaceAll(strings.Join(pairs, "&"), "%20", "+")
}

type mapKey struct {
	value reflect.Value
	text  string
}

func (k mapKey) String() string { return k.text }

func sortedKeys(m reflect.Value) []mapKey {
	if !m.IsValid() || m.Kind() != reflect.Map {
		return nil
	}
	keys := make([]mapKey, 0, m.Len())
	for _, key := range m.MapKeys() {
		keys = append(keys, mapKey{value: key, text: fmt.Sprint(key.Interface())})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].text < keys[j].text })
	return keys
}

// indirect unwraps interfaces and pointers. A nil pointer or interface yields the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isComposite(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Map, reflect.Array:
		return true
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func scalarString(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
	}
	return fmt.Sprint(v.Interface())
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponentByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func isUnreservedComponentByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
