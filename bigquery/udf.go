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
)

// Function is a legacy SQL user-defined function written in JavaScript.
//
// The implementation has the form
//
//	function(row, emit) { ... }
//
// where row has the fields of the inputs, and emit is called with objects
// that have the fields of the outputs.
type Function struct {
	c              *Client
	name           string
	inputs         []string
	outputs        []*Field
	implementation string
}

// UDF creates a user-defined function. inputs names the columns passed to
// the function; their types are not needed. outputs describes the emitted
// columns and must not be empty.
func (c *Client) UDF(inputs, outputs []*Field, implementation string) (*Function, error) {
	if len(outputs) == 0 {
		return nil, errors.New("bigquery: function has no outputs")
	}
	if strings.TrimSpace(implementation) == "" {
		return nil, errors.New("bigquery: function has no implementation")
	}
	f := &Function{c: c, name: "udf", implementation: implementation}
	for _, in := range inputs {
		if in == nil || in.Name == "" {
			return nil, errors.New("bigquery: function input has no name")
		}
		f.inputs = append(f.inputs, in.Name)
	}
	outs := copyFields(outputs)
	if err := normalizeFields(outs, ""); err != nil {
		return nil, fmt.Errorf("bigquery: function outputs: %w", err)
	}
	f.outputs = outs
	return f, nil
}

// Named returns a copy of the function that is registered under name.
func (f *Function) Named(name string) (*Function, error) {
	if identLen(name) != len(name) || name == "" {
		return nil, &InvalidNameError{Kind: "function name", Name: name}
	}
	g := *f
	g.name = name
	return &g, nil
}

// Name returns the name the function is registered under.
func (f *Function) Name() string {
	return f.name
}

type udfOutput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Code returns the JavaScript that registers the function with BigQuery.
func (f *Function) Code() string {
	outs := make([]udfOutput, len(f.outputs))
	for i, o := range f.outputs {
		outs[i] = udfOutput{Name: o.Name, Type: udfType(o.Type)}
	}
	name, _ := json.Marshal(f.name)
	ins, _ := json.Marshal(f.inputs)
	if f.inputs == nil {
		ins = []byte("[]")
	}
	out, _ := json.Marshal(outs)
	return fmt.Sprintf("bigquery.defineFunction(%s, %s, %s, %s);", name, ins, out, f.implementation)
}

// udfType maps a column type to the names defineFunction accepts.
func udfType(t FieldType) string {
	switch t {
	case IntegerFieldType:
		return "integer"
	case FloatFieldType:
		return "float"
	case BooleanFieldType:
		return "boolean"
	case TimestampFieldType:
		return "timestamp"
	case RecordFieldType:
		return "record"
	}
	return "string"
}

// Query returns a query that applies the function to source, which is a
// table reference or a parenthesized sub-select in legacy SQL syntax.
func (f *Function) Query(source string) *Query {
	cols := make([]string, len(f.outputs))
	for i, o := range f.outputs {
		cols[i] = o.Name
	}
	sql := fmt.Sprintf("SELECT %s FROM %s(%s)", strings.Join(cols, ", "), f.name, source)
	return &Query{c: f.c, sql: sql, udf: f}
}
