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
	"google.golang.org/api/option"
	"google.golang.org/api/option/internaloption"
)

type customClientConfig struct {
	// dialect is the formatter dialect used by Client.Sql. When no
	// WithDialect option is given it follows legacySQL.
	dialect Dialect

	// legacySQL is the default SQL flavour of queries issued by the client.
	legacySQL bool
}

type customClientOption interface {
	option.ClientOption
	ApplyCustomClientOpt(*customClientConfig)
}

func newCustomClientConfig(opts ...option.ClientOption) *customClientConfig {
	conf := &customClientConfig{legacySQL: true}
	for _, opt := range opts {
		if cOpt, ok := opt.(customClientOption); ok {
			cOpt.ApplyCustomClientOpt(conf)
		}
	}
	if conf.dialect == nil {
		conf.dialect = defaultDialect(conf.legacySQL)
	}
	return conf
}

// WithDialect sets the dialect that Client.Sql renders literals in.
// The default is LegacySQL when queries run as legacy SQL and StandardSQL
// otherwise.
func WithDialect(d Dialect) option.ClientOption {
	return &applierDialect{dialect: d}
}

type applierDialect struct {
	internaloption.EmbeddableAdapter
	dialect Dialect
}

func (s *applierDialect) ApplyCustomClientOpt(c *customClientConfig) {
	if s.dialect != nil {
		c.dialect = s.dialect
	}
}

// WithLegacySQL sets whether queries default to BigQuery legacy SQL. The
// default is true; individual queries can override it with
// QueryOptions.UseLegacySQL.
func WithLegacySQL(legacy bool) option.ClientOption {
	return &applierLegacySQL{legacy: legacy}
}

type applierLegacySQL struct {
	internaloption.EmbeddableAdapter
	legacy bool
}

func (s *applierLegacySQL) ApplyCustomClientOpt(c *customClientConfig) {
	c.legacySQL = s.legacy
}

func defaultDialect(legacySQL bool) Dialect {
	if legacySQL {
		return LegacySQL{}
	}
	return StandardSQL{}
}
