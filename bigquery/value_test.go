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
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	bq "google.golang.org/api/bigquery/v2"
)

func TestConvertBasicValues(t *testing.T) {
	schema := []*Field{
		{Type: StringFieldType},
		{Type: IntegerFieldType},
		{Type: FloatFieldType},
		{Type: BooleanFieldType},
		{Type: BytesFieldType},
		{Type: TimestampFieldType},
		{Type: DateFieldType},
		{Type: TimeFieldType},
		{Type: DateTimeFieldType},
		{Type: NumericFieldType},
	}
	row := &bq.TableRow{
		F: []*bq.TableCell{
			{V: "a"},
			{V: "1"},
			{V: "1.2"},
			{V: "true"},
			{V: "Zm9v"},
			{V: "1.4569728001234E9"},
			{V: "2016-03-20"},
			{V: "04:05:06.789"},
			{V: "2016-03-20T04:05:06"},
			{V: "12.5"},
		},
	}
	got, err := convertRow(row, schema)
	if err != nil {
		t.Fatalf("error converting: %v", err)
	}
	want := []Value{
		"a",
		int64(1),
		1.2,
		true,
		[]byte("foo"),
		time.Date(2016, 3, 3, 2, 40, 0, 123400000, time.UTC),
		civil.Date{Year: 2016, Month: 3, Day: 20},
		civil.Time{Hour: 4, Minute: 5, Second: 6, Nanosecond: 789000000},
		civil.DateTime{
			Date: civil.Date{Year: 2016, Month: 3, Day: 20},
			Time: civil.Time{Hour: 4, Minute: 5, Second: 6},
		},
		"12.5",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("converting basic values: -want +got:\n%s", diff)
	}
}

func TestConvertNullValues(t *testing.T) {
	schema := []*Field{{Type: StringFieldType}, {Type: IntegerFieldType}}
	row := &bq.TableRow{F: []*bq.TableCell{{V: nil}, {V: nil}}}
	got, err := convertRow(row, schema)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Value{nil, nil}, got); diff != "" {
		t.Errorf("-want +got:\n%s", diff)
	}
}

func TestConvertRepeatedAndNested(t *testing.T) {
	schema := []*Field{
		{Name: "tags", Type: StringFieldType, Mode: RepeatedMode},
		{Name: "rec", Type: RecordFieldType, Fields: []*Field{
			{Name: "x", Type: IntegerFieldType},
			{Name: "y", Type: BooleanFieldType},
		}},
		{Name: "recs", Type: RecordFieldType, Mode: RepeatedMode, Fields: []*Field{
			{Name: "x", Type: IntegerFieldType},
		}},
	}
	row := &bq.TableRow{F: []*bq.TableCell{
		{V: []interface{}{
			map[string]interface{}{"v": "a"},
			map[string]interface{}{"v": "b"},
		}},
		{V: map[string]interface{}{"f": []interface{}{
			map[string]interface{}{"v": "1"},
			map[string]interface{}{"v": "false"},
		}}},
		{V: []interface{}{
			map[string]interface{}{"v": map[string]interface{}{"f": []interface{}{
				map[string]interface{}{"v": "2"},
			}}},
		}},
	}}
	got, err := convertRow(row, schema)
	if err != nil {
		t.Fatal(err)
	}
	want := []Value{
		[]Value{"a", "b"},
		[]Value{int64(1), false},
		[]Value{[]Value{int64(2)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("-want +got:\n%s", diff)
	}
}

func TestConvertErrors(t *testing.T) {
	for _, test := range []struct {
		desc   string
		fields []*Field
		row    *bq.TableRow
	}{
		{"length mismatch", []*Field{{Type: StringFieldType}}, &bq.TableRow{}},
		{"bad integer", []*Field{{Type: IntegerFieldType}}, &bq.TableRow{F: []*bq.TableCell{{V: "x"}}}},
		{"bad type", []*Field{{Type: StringFieldType}}, &bq.TableRow{F: []*bq.TableCell{{V: 3.0}}}},
		{"bad record", []*Field{{Type: RecordFieldType, Fields: []*Field{{Type: StringFieldType}}}},
			&bq.TableRow{F: []*bq.TableCell{{V: map[string]interface{}{"f": "oops"}}}}},
		{"repeated cell not an object", []*Field{{Type: StringFieldType, Mode: RepeatedMode}},
			&bq.TableRow{F: []*bq.TableCell{{V: []interface{}{"bare"}}}}},
		{"nested cell not an object", []*Field{{Type: RecordFieldType, Fields: []*Field{{Type: StringFieldType}}}},
			&bq.TableRow{F: []*bq.TableCell{{V: map[string]interface{}{"f": []interface{}{"bare"}}}}}},
	} {
		if _, err := convertRow(test.row, test.fields); err == nil {
			t.Errorf("%s: got nil, want error", test.desc)
		}
	}
}
