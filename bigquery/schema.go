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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	bq "google.golang.org/api/bigquery/v2"
)

// FieldType is the type of a BigQuery column.
type FieldType string

const (
	StringFieldType    FieldType = "STRING"
	BytesFieldType     FieldType = "BYTES"
	IntegerFieldType   FieldType = "INTEGER"
	FloatFieldType     FieldType = "FLOAT"
	NumericFieldType   FieldType = "NUMERIC"
	BooleanFieldType   FieldType = "BOOLEAN"
	TimestampFieldType FieldType = "TIMESTAMP"
	DateFieldType      FieldType = "DATE"
	TimeFieldType      FieldType = "TIME"
	DateTimeFieldType  FieldType = "DATETIME"
	GeographyFieldType FieldType = "GEOGRAPHY"
	JSONFieldType      FieldType = "JSON"
	RecordFieldType    FieldType = "RECORD"
)

// Standard SQL spellings accepted on input and mapped to the names above.
var fieldTypeAliases = map[string]FieldType{
	"INT64":   IntegerFieldType,
	"FLOAT64": FloatFieldType,
	"BOOL":    BooleanFieldType,
	"STRUCT":  RecordFieldType,
}

var knownFieldTypes = map[FieldType]bool{
	StringFieldType: true, BytesFieldType: true, IntegerFieldType: true,
	FloatFieldType: true, NumericFieldType: true, BooleanFieldType: true,
	TimestampFieldType: true, DateFieldType: true, TimeFieldType: true,
	DateTimeFieldType: true, GeographyFieldType: true, JSONFieldType: true,
	RecordFieldType: true, "BIGNUMERIC": true,
}

// Field modes.
const (
	NullableMode = "NULLABLE"
	RequiredMode = "REQUIRED"
	RepeatedMode = "REPEATED"
)

// Field describes a single column.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Mode        string    `json:"mode,omitempty"`
	Description string    `json:"description,omitempty"`
	// Fields holds the nested fields of a RECORD.
	Fields []*Field `json:"fields,omitempty"`
}

// Repeated reports whether the field holds an array.
func (f *Field) Repeated() bool { return f.Mode == RepeatedMode }

// A TableSchema describes the fields of a table or of a query result.
type TableSchema struct {
	fields []*Field
	index  map[string]int
}

// NewTableSchema creates a schema from its JSON representation. data may be
// JSON text ([]byte or string) holding either a list of fields or an object
// with a "fields" list, already decoded JSON ([]interface{} or
// map[string]interface{}), []*Field, or the generated API's *bq.TableSchema
// or []*bq.TableFieldSchema.
func NewTableSchema(data interface{}) (*TableSchema, error) {
	var fields []*Field
	switch d := data.(type) {
	case nil:
		return nil, errors.New("bigquery: nil schema data")
	case []*Field:
		fields = copyFields(d)
	case *bq.TableSchema:
		if d == nil {
			return nil, errors.New("bigquery: nil schema data")
		}
		fields = bqToFields(d.Fields)
	case []*bq.TableFieldSchema:
		fields = bqToFields(d)
	case string:
		return NewTableSchema([]byte(d))
	case []byte:
		var err error
		if fields, err = decodeFields(d); err != nil {
			return nil, err
		}
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("bigquery: schema data of type %T: %w", data, err)
		}
		if fields, err = decodeFields(b); err != nil {
			return nil, err
		}
	}
	return newSchema(fields)
}

func decodeFields(b []byte) ([]*Field, error) {
	b = []byte(strings.TrimSpace(string(b)))
	if len(b) > 0 && b[0] == '{' {
		var wrapper struct {
			Fields []*Field `json:"fields"`
		}
		if err := json.Unmarshal(b, &wrapper); err != nil {
			return nil, fmt.Errorf("bigquery: decoding schema: %w", err)
		}
		return wrapper.Fields, nil
	}
	var fields []*Field
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("bigquery: decoding schema: %w", err)
	}
	return fields, nil
}

func newSchema(fields []*Field) (*TableSchema, error) {
	if err := normalizeFields(fields, ""); err != nil {
		return nil, err
	}
	s := &TableSchema{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s, nil
}

// normalizeFields upper-cases types and modes, maps aliases, fills in the
// default mode and rejects unnamed, duplicate or unknown fields.
func normalizeFields(fields []*Field, prefix string) error {
	seen := map[string]bool{}
	for _, f := range fields {
		if f == nil || f.Name == "" {
			return fmt.Errorf("bigquery: schema field in %q has no name", prefix)
		}
		path := prefix + f.Name
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("bigquery: duplicate schema field %q", path)
		}
		seen[key] = true
		t := FieldType(strings.ToUpper(string(f.Type)))
		if a, ok := fieldTypeAliases[string(t)]; ok {
			t = a
		}
		if !knownFieldTypes[t] {
			return fmt.Errorf("bigquery: schema field %q has unknown type %q", path, f.Type)
		}
		f.Type = t
		f.Mode = strings.ToUpper(f.Mode)
		switch f.Mode {
		case "":
			f.Mode = NullableMode
		case NullableMode, RequiredMode, RepeatedMode:
		default:
			return fmt.Errorf("bigquery: schema field %q has unknown mode %q", path, f.Mode)
		}
		if t == RecordFieldType {
			if len(f.Fields) == 0 {
				return fmt.Errorf("bigquery: record field %q has no fields", path)
			}
			if err := normalizeFields(f.Fields, path+"."); err != nil {
				return err
			}
		} else if len(f.Fields) > 0 {
			return fmt.Errorf("bigquery: field %q of type %s cannot have nested fields", path, t)
		}
	}
	return nil
}

// Fields returns the top-level fields in order.
func (s *TableSchema) Fields() []*Field {
	if s == nil {
		return nil
	}
	return s.fields
}

// Len returns the number of top-level fields.
func (s *TableSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Field returns the top-level field with the given name.
func (s *TableSchema) Field(name string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// MarshalJSON encodes the schema in the same list-of-fields form that
// NewTableSchema accepts.
func (s *TableSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

func (s *TableSchema) toBQ() *bq.TableSchema {
	if s == nil {
		return nil
	}
	return &bq.TableSchema{Fields: fieldsToBQ(s.fields)}
}

func copyFields(fields []*Field) []*Field {
	var out []*Field
	for _, f := range fields {
		if f == nil {
			out = append(out, nil)
			continue
		}
		c := *f
		c.Fields = copyFields(f.Fields)
		out = append(out, &c)
	}
	return out
}

func fieldsToBQ(fields []*Field) []*bq.TableFieldSchema {
	var out []*bq.TableFieldSchema
	for _, f := range fields {
		out = append(out, &bq.TableFieldSchema{
			Name:        f.Name,
			Type:        string(f.Type),
			Mode:        f.Mode,
			Description: f.Description,
			Fields:      fieldsToBQ(f.Fields),
		})
	}
	return out
}

func bqToFields(fields []*bq.TableFieldSchema) []*Field {
	var out []*Field
	for _, f := range fields {
		out = append(out, &Field{
			Name:        f.Name,
			Type:        FieldType(f.Type),
			Mode:        f.Mode,
			Description: f.Description,
			Fields:      bqToFields(f.Fields),
		})
	}
	return out
}

// bqToSchema converts a schema returned by the API. The API is trusted to
// return valid schemas, so normalization failures are not expected; an
// unknown new type is kept as is.
func bqToSchema(ts *bq.TableSchema) *TableSchema {
	if ts == nil {
		return nil
	}
	fields := bqToFields(ts.Fields)
	if s, err := newSchema(fields); err == nil {
		return s
	}
	s := &TableSchema{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}
