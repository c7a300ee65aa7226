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
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	bq "google.golang.org/api/bigquery/v2"
)

// Value stores the contents of a single cell from a BigQuery result.
type Value interface{}

// A RowPage is a single page of rows read from a table or query result.
type RowPage struct {
	Schema *TableSchema
	Rows   [][]Value
	// TotalRows is the number of rows in the whole table or result, not
	// just this page.
	TotalRows uint64
	// PageToken, if non-empty, can be passed in ReadOptions to read the
	// following page.
	PageToken string
}

func convertRows(rows []*bq.TableRow, schema *TableSchema) ([][]Value, error) {
	var rs [][]Value
	for _, r := range rows {
		row, err := convertRow(r, schema.Fields())
		if err != nil {
			return nil, err
		}
		rs = append(rs, row)
	}
	return rs, nil
}

func convertRow(r *bq.TableRow, fields []*Field) ([]Value, error) {
	if len(fields) != len(r.F) {
		return nil, errors.New("bigquery: schema length does not match row length")
	}
	var values []Value
	for i, cell := range r.F {
		fs := fields[i]
		v, err := convertValue(cell.V, fs)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func convertValue(val interface{}, f *Field) (Value, error) {
	switch val := val.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return convertRepeatedRecord(val, f)
	case map[string]interface{}:
		return convertNestedRecord(val, f.Fields)
	case string:
		return convertBasicType(val, f.Type)
	default:
		return nil, fmt.Errorf("bigquery: got value %v; expected a value of type %s", val, f.Type)
	}
}

func convertRepeatedRecord(vals []interface{}, f *Field) (Value, error) {
	var values []Value
	elem := *f
	elem.Mode = NullableMode
	for _, cell := range vals {
		val, err := cellValue(cell)
		if err != nil {
			return nil, err
		}
		v, err := convertValue(val, &elem)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// cellValue unwraps a repeated or nested cell, which holds a single entry
// keyed by "v".
func cellValue(cell interface{}) (interface{}, error) {
	m, ok := cell.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("bigquery: got cell %v of type %T; expected an object", cell, cell)
	}
	return m["v"], nil
}

func convertNestedRecord(val map[string]interface{}, fields []*Field) (Value, error) {
	// convertNestedRecord is similar to convertRow, as a record has the same structure as a row.

	// Nested records are wrapped in a map with a single key, "f".
	record, ok := val["f"].([]interface{})
	if !ok {
		return nil, errors.New("bigquery: nested record is not of type []interface{}")
	}
	if len(record) != len(fields) {
		return nil, errors.New("bigquery: schema length does not match record length")
	}

	var values []Value
	for i, cell := range record {
		val, err := cellValue(cell)
		if err != nil {
			return nil, err
		}
		v, err := convertValue(val, fields[i])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// convertBasicType returns val as an interface with a concrete type specified by typ.
func convertBasicType(val string, typ FieldType) (Value, error) {
	switch typ {
	case StringFieldType, GeographyFieldType, JSONFieldType, NumericFieldType, "BIGNUMERIC":
		return val, nil
	case BytesFieldType:
		return base64.StdEncoding.DecodeString(val)
	case IntegerFieldType:
		return strconv.ParseInt(val, 10, 64)
	case FloatFieldType:
		return strconv.ParseFloat(val, 64)
	case BooleanFieldType:
		return strconv.ParseBool(val)
	case TimestampFieldType:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, err
		}
		secs := int64(f)
		micros := int64(math.Round((f - float64(secs)) * 1e6))
		return time.Unix(secs, micros*1000).UTC(), nil
	case DateFieldType:
		return civil.ParseDate(val)
	case TimeFieldType:
		return civil.ParseTime(val)
	case DateTimeFieldType:
		return civil.ParseDateTime(val)
	default:
		return val, nil
	}
}
