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

	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/option"
)

func TestCustomClientOptions(t *testing.T) {
	testCases := []struct {
		desc    string
		options []option.ClientOption
		want    *customClientConfig
	}{
		{
			desc: "no options",
			want: &customClientConfig{
				dialect:   LegacySQL{},
				legacySQL: true,
			},
		},
		{
			desc: "ansi dialect",
			options: []option.ClientOption{
				WithDialect(ANSI{CastTimes: true}),
			},
			want: &customClientConfig{
				dialect:   ANSI{CastTimes: true},
				legacySQL: true,
			},
		},
		{
			desc: "nil dialect keeps default",
			options: []option.ClientOption{
				WithDialect(nil),
			},
			want: &customClientConfig{
				dialect:   LegacySQL{},
				legacySQL: true,
			},
		},
		{
			desc: "standard sql",
			options: []option.ClientOption{
				option.WithEndpoint("http://localhost"),
				WithLegacySQL(false),
			},
			want: &customClientConfig{
				dialect:   StandardSQL{},
				legacySQL: false,
			},
		},
		{
			desc: "explicit dialect wins over legacy sql",
			options: []option.ClientOption{
				WithDialect(StandardSQL{}),
			},
			want: &customClientConfig{
				dialect:   StandardSQL{},
				legacySQL: true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gotCfg := newCustomClientConfig(tc.options...)
			if diff := cmp.Diff(gotCfg, tc.want, cmp.AllowUnexported(customClientConfig{})); diff != "" {
				t.Errorf("diff in case (%s):\n%v", tc.desc, diff)
			}
		})
	}
}
