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
	"strconv"
	"strings"
)

// A Sampling rewrites a SQL statement into one that returns a sample of its
// rows. legacySQL selects the SQL flavour of the generated statement.
type Sampling func(sql string, legacySQL bool) string

func projection(fields []string) string {
	if len(fields) == 0 {
		return "*"
	}
	return strings.Join(fields, ", ")
}

// DefaultSampling returns the first count rows. fields restricts the
// columns; nil means all columns.
func DefaultSampling(fields []string, count int) Sampling {
	return func(sql string, _ bool) string {
		return fmt.Sprintf("SELECT %s FROM (%s) LIMIT %d", projection(fields), sql, count)
	}
}

// SortedSampling returns the first count rows ordered by field.
func SortedSampling(field string, ascending bool, fields []string, count int) Sampling {
	direction := ""
	if !ascending {
		direction = " DESC"
	}
	return func(sql string, _ bool) string {
		return fmt.Sprintf("SELECT %s FROM (%s) ORDER BY %s%s LIMIT %d", projection(fields), sql, field, direction, count)
	}
}

// HashedSampling returns the rows whose hashed field value falls in the
// given percentage, so the same rows are picked on every run. A count of 0
// means no limit.
func HashedSampling(field string, percent int, fields []string, count int) Sampling {
	return func(sql string, legacySQL bool) string {
		hash := fmt.Sprintf("ABS(HASH(%s))", field)
		if !legacySQL {
			hash = fmt.Sprintf("ABS(FARM_FINGERPRINT(CAST(%s AS STRING)))", field)
		}
		s := fmt.Sprintf("SELECT %s FROM (%s) WHERE MOD(%s, 100) < %d", projection(fields), sql, hash, percent)
		return withLimit(s, count)
	}
}

// RandomSampling returns roughly percent percent of the rows, picked at
// random on every run. A count of 0 means no limit.
func RandomSampling(percent float64, fields []string, count int) Sampling {
	return func(sql string, _ bool) string {
		s := fmt.Sprintf("SELECT %s FROM (%s) WHERE RAND() < %s", projection(fields), sql,
			strconv.FormatFloat(percent/100, 'f', -1, 64))
		return withLimit(s, count)
	}
}

func withLimit(sql string, count int) string {
	if count <= 0 {
		return sql
	}
	return fmt.Sprintf("%s LIMIT %d", sql, count)
}
