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
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// A Dialect supplies the literal syntax of a SQL variant. The Formatter
// handles NULL, booleans, finite numbers and sequences itself and asks the
// Dialect for everything whose spelling differs between variants.
type Dialect interface {
	// QuoteString returns s as a quoted string literal.
	QuoteString(s string) string
	// Bytes returns b as a bytes literal.
	Bytes(b []byte) string
	// SpecialFloat returns a literal for NaN and the infinities.
	SpecialFloat(f float64) string
	Timestamp(t time.Time) string
	Date(d civil.Date) string
	Time(t civil.Time) string
	DateTime(dt civil.DateTime) string
	// Struct returns a struct literal built from already rendered fields,
	// or an error if the dialect has no struct literals.
	Struct(fields []StructField) (string, error)
	// TableName returns a reference to a table usable in a FROM clause.
	TableName(projectID, datasetID, tableID string) string
}

// StructField is a single rendered field of a struct literal.
type StructField struct {
	Name  string
	Value string
}

// ANSI is the default dialect. Embedded single quotes are doubled, time
// values are quoted ISO-8601 strings, and struct literals are written as
// {name:value, ...}.
type ANSI struct {
	// CastTimes prefixes time values with the matching SQL type keyword,
	// e.g. TIMESTAMP '2015-01-02T03:04:05Z'.
	CastTimes bool
}

func (ANSI) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (ANSI) Bytes(b []byte) string {
	return fmt.Sprintf("X'%X'", b)
}

func (ANSI) SpecialFloat(f float64) string {
	return fmt.Sprintf("CAST('%s' AS DOUBLE PRECISION)", specialFloatName(f))
}

func (a ANSI) Timestamp(t time.Time) string {
	return a.cast("TIMESTAMP", t.Format(time.RFC3339Nano))
}

func (a ANSI) Date(d civil.Date) string {
	return a.cast("DATE", d.String())
}

func (a ANSI) Time(t civil.Time) string {
	return a.cast("TIME", t.String())
}

func (a ANSI) DateTime(dt civil.DateTime) string {
	return a.cast("TIMESTAMP", dt.String())
}

func (ANSI) Struct(fields []StructField) (string, error) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ":" + f.Value
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func (ANSI) TableName(projectID, datasetID, tableID string) string {
	var parts []string
	for _, p := range []string{projectID, datasetID, tableID} {
		if p != "" {
			parts = append(parts, `"`+strings.ReplaceAll(p, `"`, `""`)+`"`)
		}
	}
	return strings.Join(parts, ".")
}

func (a ANSI) cast(typ, s string) string {
	q := "'" + s + "'"
	if a.CastTimes {
		return typ + " " + q
	}
	return q
}

// StandardSQL is the BigQuery standard SQL dialect. Strings use backslash
// escapes, time values are always typed literals, and struct literals are
// written as STRUCT(value AS name, ...).
type StandardSQL struct{}

// See https://cloud.google.com/bigquery/docs/reference/standard-sql/data-types#timestamp-type.
const timestampFormat = "2006-01-02 15:04:05.999999-07:00"

func (StandardSQL) QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func (StandardSQL) Bytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 3)
	sb.WriteString("b'")
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	sb.WriteByte('\'')
	return sb.String()
}

func (StandardSQL) SpecialFloat(f float64) string {
	return fmt.Sprintf("CAST('%s' AS FLOAT64)", specialFloatName(f))
}

func (StandardSQL) Timestamp(t time.Time) string {
	return "TIMESTAMP '" + t.Format(timestampFormat) + "'"
}

func (StandardSQL) Date(d civil.Date) string {
	return "DATE '" + d.String() + "'"
}

func (StandardSQL) Time(t civil.Time) string {
	return "TIME '" + civilTimeString(t) + "'"
}

func (StandardSQL) DateTime(dt civil.DateTime) string {
	return "DATETIME '" + dt.Date.String() + " " + civilTimeString(dt.Time) + "'"
}

func (StandardSQL) Struct(fields []StructField) (string, error) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Value + " AS " + quoteIdentifier(f.Name)
	}
	return "STRUCT(" + strings.Join(parts, ", ") + ")", nil
}

func (StandardSQL) TableName(projectID, datasetID, tableID string) string {
	var parts []string
	for _, p := range []string{projectID, datasetID, tableID} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "`" + strings.Join(parts, ".") + "`"
}

// LegacySQL is the BigQuery legacy SQL dialect, the default of a Client
// whose queries run as legacy SQL. Timestamps go through the TIMESTAMP
// function in UTC, civil values are plain strings, bytes are decoded with
// FROM_BASE64, and tables are written as [project:dataset.table]. Legacy SQL
// has no struct literals, so mappings cannot be rendered.
type LegacySQL struct{}

const legacyTimestampFormat = "2006-01-02 15:04:05.999999"

var errNoStructLiterals = errors.New("bigquery: legacy SQL has no struct literals")

func (LegacySQL) QuoteString(s string) string {
	return StandardSQL{}.QuoteString(s)
}

func (LegacySQL) Bytes(b []byte) string {
	return "FROM_BASE64('" + base64.StdEncoding.EncodeToString(b) + "')"
}

func (LegacySQL) SpecialFloat(f float64) string {
	return fmt.Sprintf("FLOAT('%s')", specialFloatName(f))
}

func (LegacySQL) Timestamp(t time.Time) string {
	return `TIMESTAMP("` + t.UTC().Format(legacyTimestampFormat) + `")`
}

func (l LegacySQL) Date(d civil.Date) string {
	return l.QuoteString(d.String())
}

func (l LegacySQL) Time(t civil.Time) string {
	return l.QuoteString(civilTimeString(t))
}

func (l LegacySQL) DateTime(dt civil.DateTime) string {
	return l.QuoteString(dt.Date.String() + " " + civilTimeString(dt.Time))
}

func (LegacySQL) Struct([]StructField) (string, error) {
	return "", errNoStructLiterals
}

func (LegacySQL) TableName(projectID, datasetID, tableID string) string {
	name := datasetID
	if tableID != "" {
		name += "." + tableID
	}
	if projectID != "" {
		name = projectID + ":" + name
	}
	return "[" + name + "]"
}

// civilTimeString renders t truncated to microseconds, the finest precision
// BigQuery accepts.
func civilTimeString(t civil.Time) string {
	micro := t.Nanosecond / 1000
	t.Nanosecond = 0
	if micro == 0 {
		return t.String()
	}
	return t.String() + fmt.Sprintf(".%06d", micro)
}

func specialFloatName(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return "NaN"
}

// quoteIdentifier backquotes name unless it is a plain identifier.
func quoteIdentifier(name string) string {
	if name != "" && identLen(name) == len(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func formatFloat(f float64, bitSize int) string {
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}
