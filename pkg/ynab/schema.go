package ynab

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Struct fields tagged schema:"required" must be present and non-null in
// every response. Unknown members are only reported in strict mode.

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

type schemaChecker struct {
	strict bool
	err    *SchemaError
}

// ValidateSchema checks raw against the shape of v without decoding it
func ValidateSchema(raw []byte, v interface{}, strict bool) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}
	c := &schemaChecker{strict: strict}
	c.check("", t, raw)
	if c.err != nil {
		return c.err
	}
	return nil
}

// decodeStrict validates raw and then unmarshals it into v
func decodeStrict(raw []byte, v interface{}, strict bool) error {
	if err := ValidateSchema(raw, v, strict); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *schemaChecker) check(path string, t reflect.Type, raw json.RawMessage) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if isNull(raw) || reflect.PtrTo(t).Implements(unmarshalerType) {
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		c.checkStruct(path, t, raw)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return
		}
		for i, item := range items {
			c.check(path+"["+strconv.Itoa(i)+"]", t.Elem(), item)
		}
	}
}

func (c *schemaChecker) checkStruct(path string, t reflect.Type, raw json.RawMessage) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		// the decoder reports malformed input
		return
	}

	known := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name := jsonName(field)
		if name == "" {
			continue
		}
		known[name] = true

		value, ok := members[name]
		if field.Tag.Get("schema") == "required" && (!ok || isNull(value)) {
			c.missing(t, join(path, name))
			continue
		}
		if ok {
			c.check(join(path, name), field.Type, value)
		}
	}

	if !c.strict {
		return
	}
	var extra []string
	for name := range members {
		if !known[name] {
			extra = append(extra, join(path, name))
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		c.unexpected(t, name)
	}
}

func (c *schemaChecker) missing(t reflect.Type, path string) {
	c.ensure(t)
	c.err.Missing = append(c.err.Missing, path)
}

func (c *schemaChecker) unexpected(t reflect.Type, path string) {
	c.ensure(t)
	c.err.Unexpected = append(c.err.Unexpected, path)
}

func (c *schemaChecker) ensure(t reflect.Type) {
	if c.err == nil {
		c.err = &SchemaError{Type: t.Name()}
	}
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return field.Name
	}
	return name
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
