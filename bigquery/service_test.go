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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bbenabbes-sentelis/datalab/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"
)

// newServerClient returns a client whose generated service talks to an
// httptest server running handler.
func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), &Context{ProjectID: "proj"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestServiceRequests(t *testing.T) {
	ctx := context.Background()
	te := testutil.NewOpenTelemetryTestExporter()
	t.Cleanup(func() { te.Unregister(ctx) })

	var paths, headers []string
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		headers = append(headers, r.Header.Get("x-goog-api-client"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/jobs/j1"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jobReference": map[string]interface{}{"projectId": "proj", "jobId": "j1"},
				"status":       map[string]interface{}{"state": "RUNNING"},
			})
		case strings.HasSuffix(r.URL.Path, "/tables/missing"):
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": 404, "message": "Not found: Table proj:d.missing"},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	j, err := c.Job("j1")
	if err != nil {
		t.Fatal(err)
	}
	st, err := j.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Running {
		t.Errorf("state = %v, want RUNNING", st.State)
	}

	tbl, err := c.Table("d.missing")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := tbl.Exists(ctx)
	if err != nil || ok {
		t.Errorf("Exists() = %t, %v; want false, nil", ok, err)
	}

	wantPaths := []string{
		"GET /projects/proj/jobs/j1",
		"GET /projects/proj/datasets/d/tables/missing",
	}
	if diff := cmp.Diff(wantPaths, paths); diff != "" {
		t.Errorf("paths: -want +got:\n%s", diff)
	}
	for _, h := range headers {
		if h != xGoogHeader {
			t.Errorf("x-goog-api-client = %q, want %q", h, xGoogHeader)
		}
	}

	spans := te.Spans()
	if diff := cmp.Diff([]string{"bigquery.jobs.get", "bigquery.tables.get"}, te.SpanNames()); diff != "" {
		t.Fatalf("spans: -want +got:\n%s", diff)
	}
	if spans[0].Status.Code == codes.Error {
		t.Errorf("jobs.get span has error status %q", spans[0].Status.Description)
	}
	if got, want := spans[1].Status.Description, "Not found: Table proj:d.missing"; spans[1].Status.Code != codes.Error || got != want {
		t.Errorf("tables.get span status = %v %q, want Error %q", spans[1].Status.Code, got, want)
	}
}
