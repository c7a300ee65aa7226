// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bigquery

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Literal is implemented by values that know how to render themselves
// inside a SQL template. *Table, *DataSet and *Query implement it; Table,
// DataSet and Query values bound without a pointer render the same way.
type Literal interface {
	SQLLiteral(d Dialect) (string, error)
}

// A Formatter replaces named placeholders in SQL templates. The zero value
// uses the ANSI dialect. A Formatter holds no mutable state and is safe for
// concurrent use.
type Formatter struct {
	Dialect Dialect
}

var defaultFormatter = &Formatter{Dialect: ANSI{}}

// Sql formats a SQL template by replacing placeholders with values from args,
// using the ANSI dialect.
//
// Placeholders are written as $name, where name starts with a letter or an
// underscore followed by letters, digits or underscores. A literal '$' is
// written as '$$'. Every placeholder must have an entry in args; entries
// that are not referenced are ignored.
func Sql(template string, args map[string]interface{}) (string, error) {
	return defaultFormatter.Format(template, args)
}

// Format formats template with the values in args. On failure it returns
// one of *MalformedTemplateError, *UnboundPlaceholderError or
// *UnsupportedValueTypeError, and no partial output.
func (f *Formatter) Format(template string, args map[string]interface{}) (string, error) {
	d := f.dialect()
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); {
		j := strings.IndexByte(template[i:], '$')
		if j < 0 {
			b.WriteString(template[i:])
			break
		}
		b.WriteString(template[i : i+j])
		start := i + j
		i = start + 1
		if i < len(template) && template[i] == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		n := identLen(template[i:])
		if n == 0 {
			return "", &MalformedTemplateError{Template: template, Offset: start}
		}
		name := template[i : i+n]
		i += n
		v, ok := args[name]
		if !ok {
			return "", &UnboundPlaceholderError{Name: name, Template: template}
		}
		lit, err := literal(d, v)
		if err != nil {
			if e, ok := err.(*UnsupportedValueTypeError); ok {
				e.Name = name
			}
			return "", err
		}
		b.WriteString(lit)
	}
	return b.String(), nil
}

// Literal returns the SQL literal form of v.
func (f *Formatter) Literal(v interface{}) (string, error) {
	return literal(f.dialect(), v)
}

func (f *Formatter) dialect() Dialect {
	if f == nil || f.Dialect == nil {
		return ANSI{}
	}
	return f.Dialect
}

// identLen returns the length of the identifier at the start of s, or 0 if s
// does not start with one.
func identLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return 0
			}
		default:
			return i
		}
	}
	return len(s)
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateType     = reflect.TypeOf(civil.Date{})
	civilTime    = reflect.TypeOf(civil.Time{})
	dateTimeType = reflect.TypeOf(civil.DateTime{})
	literalType  = reflect.TypeOf((*Literal)(nil)).Elem()
)

func literal(d Dialect, v interface{}) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	e := &literalState{d: d}
	return e.value(reflect.ValueOf(v))
}

// literalState carries the dialect and the references on the current
// rendering path, so that a value containing itself is reported instead of
// recursing forever.
type literalState struct {
	d    Dialect
	seen map[refKey]struct{}
}

type refKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

func (e *literalState) value(v reflect.Value) (string, error) {
	if !v.IsValid() {
		return "NULL", nil
	}
	d := e.d
	t := v.Type()
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return "NULL", nil
		}
	}
	if t.Implements(literalType) {
		return v.Interface().(Literal).SQLLiteral(d)
	}
	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(literalType) {
		p := reflect.New(t)
		p.Elem().Set(v)
		return p.Interface().(Literal).SQLLiteral(d)
	}
	switch t {
	case timeType:
		return d.Timestamp(v.Interface().(time.Time)), nil
	case dateType:
		return d.Date(v.Interface().(civil.Date)), nil
	case civilTime:
		return d.Time(v.Interface().(civil.Time)), nil
	case dateTimeType:
		return d.DateTime(v.Interface().(civil.DateTime)), nil
	}
	if r, ok := v.Interface().(*big.Rat); ok {
		return ratString(r), nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		key := refKey{ptr: v.Pointer(), typ: t}
		if v.Kind() == reflect.Slice {
			key.len = v.Len()
		}
		if _, ok := e.seen[key]; ok {
			return "", &UnsupportedValueTypeError{Type: t, Cyclic: true}
		}
		if e.seen == nil {
			e.seen = make(map[refKey]struct{})
		}
		e.seen[key] = struct{}{}
		defer delete(e.seen, key)
	}

	switch v.Kind() {
	case reflect.String:
		return d.QuoteString(v.String()), nil

	case reflect.Bool:
		if v.Bool() {
			return "TRUE", nil
		}
		return "FALSE", nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return d.SpecialFloat(f), nil
		}
		return formatFloat(f, t.Bits()), nil

	case reflect.Ptr, reflect.Interface:
		return e.value(v.Elem())

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return d.Bytes(v.Bytes()), nil
		}
		fallthrough

	case reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			s, err := e.value(v.Index(i))
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, ", ") + ")", nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		fields := make([]StructField, len(keys))
		for i, k := range keys {
			s, err := e.value(v.MapIndex(k))
			if err != nil {
				return "", err
			}
			fields[i] = StructField{Name: k.String(), Value: s}
		}
		return e.structLiteral(t, fields)

	case reflect.Struct:
		var fields []StructField
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup("bigquery"); ok {
				tag, _, _ = strings.Cut(tag, ",")
				if tag == "-" {
					continue
				}
				if tag != "" {
					name = tag
				}
			}
			s, err := e.value(v.Field(i))
			if err != nil {
				return "", err
			}
			fields = append(fields, StructField{Name: name, Value: s})
		}
		return e.structLiteral(t, fields)
	}
	return "", &UnsupportedValueTypeError{Type: t}
}

func (e *literalState) structLiteral(t reflect.Type, fields []StructField) (string, error) {
	s, err := e.d.Struct(fields)
	if err != nil {
		return "", &UnsupportedValueTypeError{Type: t}
	}
	return s, nil
}

// ratString renders r with the nine fractional digits of BigQuery's
// NUMERIC type, dropping trailing zeros.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := strings.TrimRight(r.FloatString(9), "0")
	return strings.TrimSuffix(s, ".")
}

// MalformedTemplateError is returned when a '$' is neither part of a "$$"
// escape nor followed by a placeholder name.
type MalformedTemplateError struct {
	Template string
	// Offset is the byte offset of the offending '$'.
	Offset int
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("bigquery: malformed SQL template: '$' at offset %d is not followed by a placeholder name (use '$$' for a literal '$'): %q",
		e.Offset, e.Template)
}

// UnboundPlaceholderError is returned when a template references a name that
// has no value.
type UnboundPlaceholderError struct {
	Name     string
	Template string
}

func (e *UnboundPlaceholderError) Error() string {
	return fmt.Sprintf("bigquery: invalid SQL template: no value for placeholder $%s in %q", e.Name, e.Template)
}

// UnsupportedValueTypeError is returned when a value has no SQL literal form.
type UnsupportedValueTypeError struct {
	// Name is the placeholder the value was bound to. It is empty when the
	// error comes from Formatter.Literal.
	Name string
	Type reflect.Type
	// Cyclic is set when the value of Type contains itself.
	Cyclic bool
}

func (e *UnsupportedValueTypeError) Error() string {
	what := fmt.Sprintf("Go type %s", e.Type)
	if e.Cyclic {
		what = fmt.Sprintf("cyclic value of Go type %s", e.Type)
	}
	if e.Name == "" {
		return fmt.Sprintf("bigquery: %s cannot be represented as a SQL literal", what)
	}
	return fmt.Sprintf("bigquery: value for placeholder $%s: %s cannot be represented as a SQL literal", e.Name, what)
}
