// Package env renders config structs back into .env form: the inverse of
// caarlos0/env parsing. Fields tagged `env:"KEY"` become KEY=value lines;
// zero values are left out so defaults stay implicit in the file.
package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv writes one KEY=value line per populated exported field of the
// struct c points to. Tag options after the key (required, notEmpty) only
// matter to the parser and are ignored here.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	var b strings.Builder
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			continue
		}
		val := v.Field(i)
		if val.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", key, render(val))
	}
	return b.String(), nil
}

func render(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
