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
	"errors"
	"testing"
	"time"

	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// fakeService answers every call from canned responses and records the
// requests it was given.
type fakeService struct {
	err error

	job           *bq.Job
	queryRes      *bq.QueryResponse
	results       *bq.GetQueryResultsResponse
	table         *bq.Table
	tableData     *bq.TableDataList
	tableList     *bq.TableList
	insertAllRes  *bq.TableDataInsertAllResponse
	dataset       *bq.Dataset
	notFoundTable bool

	calls          []string
	insertedJob    *bq.Job
	queryReq       *bq.QueryRequest
	conf           *readConf
	insertedTable  *bq.Table
	insertAllReq   *bq.TableDataInsertAllRequest
	insertedDS     *bq.Dataset
	patchedDS      *bq.Dataset
	deleteContents bool
	location       string
}

func (s *fakeService) record(method string) error {
	s.calls = append(s.calls, method)
	return s.err
}

func (s *fakeService) insertJob(_ context.Context, _ string, job *bq.Job) (*bq.Job, error) {
	s.insertedJob = job
	if err := s.record("jobs.insert"); err != nil {
		return nil, err
	}
	if s.job != nil {
		return s.job, nil
	}
	return &bq.Job{JobReference: job.JobReference}, nil
}

func (s *fakeService) query(_ context.Context, _ string, req *bq.QueryRequest) (*bq.QueryResponse, error) {
	s.queryReq = req
	if err := s.record("jobs.query"); err != nil {
		return nil, err
	}
	return s.queryRes, nil
}

func (s *fakeService) getJob(_ context.Context, _, _, location string) (*bq.Job, error) {
	s.location = location
	if err := s.record("jobs.get"); err != nil {
		return nil, err
	}
	return s.job, nil
}

func (s *fakeService) cancelJob(_ context.Context, _, _, location string) (*bq.Job, error) {
	s.location = location
	if err := s.record("jobs.cancel"); err != nil {
		return nil, err
	}
	return s.job, nil
}

func (s *fakeService) getQueryResults(_ context.Context, _, _, location string, conf *readConf) (*bq.GetQueryResultsResponse, error) {
	s.location = location
	s.conf = conf
	if err := s.record("jobs.getQueryResults"); err != nil {
		return nil, err
	}
	return s.results, nil
}

func (s *fakeService) getTable(context.Context, string, string, string) (*bq.Table, error) {
	if err := s.record("tables.get"); err != nil {
		return nil, err
	}
	if s.notFoundTable {
		return nil, &googleapi.Error{Code: 404, Message: "Not found: Table"}
	}
	return s.table, nil
}

func (s *fakeService) insertTable(_ context.Context, _, _ string, t *bq.Table) (*bq.Table, error) {
	s.insertedTable = t
	if err := s.record("tables.insert"); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *fakeService) deleteTable(context.Context, string, string, string) error {
	if err := s.record("tables.delete"); err != nil {
		return err
	}
	if s.notFoundTable {
		return &googleapi.Error{Code: 404}
	}
	return nil
}

func (s *fakeService) listTables(_ context.Context, _, _ string, conf *readConf) (*bq.TableList, error) {
	s.conf = conf
	if err := s.record("tables.list"); err != nil {
		return nil, err
	}
	return s.tableList, nil
}

func (s *fakeService) listTabledata(_ context.Context, _, _, _ string, conf *readConf) (*bq.TableDataList, error) {
	s.conf = conf
	if err := s.record("tabledata.list"); err != nil {
		return nil, err
	}
	return s.tableData, nil
}

func (s *fakeService) insertAll(_ context.Context, _, _, _ string, req *bq.TableDataInsertAllRequest) (*bq.TableDataInsertAllResponse, error) {
	s.insertAllReq = req
	if err := s.record("tabledata.insertAll"); err != nil {
		return nil, err
	}
	if s.insertAllRes == nil {
		return &bq.TableDataInsertAllResponse{}, nil
	}
	return s.insertAllRes, nil
}

func (s *fakeService) getDataset(context.Context, string, string) (*bq.Dataset, error) {
	if err := s.record("datasets.get"); err != nil {
		return nil, err
	}
	return s.dataset, nil
}

func (s *fakeService) insertDataset(_ context.Context, _ string, ds *bq.Dataset) (*bq.Dataset, error) {
	s.insertedDS = ds
	if err := s.record("datasets.insert"); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *fakeService) patchDataset(_ context.Context, _, _ string, ds *bq.Dataset) (*bq.Dataset, error) {
	s.patchedDS = ds
	if err := s.record("datasets.patch"); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *fakeService) deleteDataset(_ context.Context, _, _ string, deleteContents bool) error {
	s.deleteContents = deleteContents
	return s.record("datasets.delete")
}

func newTestClient(s *fakeService) *Client {
	return &Client{
		projectID: "client-project",
		service:   s,
		formatter: &Formatter{Dialect: StandardSQL{}},
		legacySQL: true,
	}
}

// fixRandomID makes generated IDs predictable until the returned function
// is called.
func fixRandomID(s string) func() {
	prev := randomIDFn
	randomIDFn = func() string { return s }
	return func() { randomIDFn = prev }
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	c, err := NewClient(ctx, &Context{ProjectID: "proj"}, option.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if got := c.Project(); got != "proj" {
		t.Errorf("Project() = %q, want %q", got, "proj")
	}
	if !c.legacySQL {
		t.Error("queries should default to legacy SQL")
	}
	got, err := c.Sql("$s", map[string]interface{}{"s": "a'b"})
	if err != nil {
		t.Fatal(err)
	}
	if want := `'a\'b'`; got != want {
		t.Errorf("Client.Sql = %s, want %s", got, want)
	}
}

func TestNewClientOptions(t *testing.T) {
	ctx := context.Background()
	c, err := NewClient(ctx, &Context{ProjectID: "proj"},
		option.WithoutAuthentication(), WithDialect(ANSI{}), WithLegacySQL(false))
	if err != nil {
		t.Fatal(err)
	}
	if c.legacySQL {
		t.Error("WithLegacySQL(false) was not applied")
	}
	got, err := c.Sql("$s", map[string]interface{}{"s": "a'b"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "'a''b'"; got != want {
		t.Errorf("Client.Sql = %s, want %s", got, want)
	}
}

func TestNewClientErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, nil); err == nil {
		t.Error("nil Context: got nil, want error")
	}
	if _, err := NewClient(ctx, &Context{}); err == nil {
		t.Error("empty project: got nil, want error")
	}
}

func TestNewClientDialectFollowsLegacySQL(t *testing.T) {
	ctx := context.Background()
	args := map[string]interface{}{
		"t":  &Table{ProjectID: "p", DatasetID: "d", TableID: "t"},
		"ts": time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for _, test := range []struct {
		desc   string
		opts   []option.ClientOption
		legacy bool
		want   string
	}{
		{
			desc:   "default",
			legacy: true,
			want:   `SELECT * FROM [p:d.t] WHERE ts > TIMESTAMP("2015-01-02 00:00:00")`,
		},
		{
			desc:   "standard SQL",
			opts:   []option.ClientOption{WithLegacySQL(false)},
			legacy: false,
			want:   "SELECT * FROM `p.d.t` WHERE ts > TIMESTAMP '2015-01-02 00:00:00+00:00'",
		},
	} {
		opts := append([]option.ClientOption{option.WithoutAuthentication()}, test.opts...)
		c, err := NewClient(ctx, &Context{ProjectID: "proj"}, opts...)
		if err != nil {
			t.Fatal(err)
		}
		sql, err := c.Sql("SELECT * FROM $t WHERE ts > $ts", args)
		if err != nil {
			t.Fatalf("%s: %v", test.desc, err)
		}
		if sql != test.want {
			t.Errorf("%s: Client.Sql =\n%s\nwant\n%s", test.desc, sql, test.want)
		}
		job, err := c.Query(sql).newJob(nil)
		if err != nil {
			t.Fatalf("%s: %v", test.desc, err)
		}
		if got := *job.Configuration.Query.UseLegacySql; got != test.legacy {
			t.Errorf("%s: UseLegacySql = %t, want %t", test.desc, got, test.legacy)
		}
	}
}

// A Client built without NewClient runs standard SQL and formats to match.
func TestClientSqlDefaultsToStandardSQL(t *testing.T) {
	c := &Client{projectID: "p"}
	got, err := c.Sql("$b", map[string]interface{}{"b": []byte("A")})
	if err != nil {
		t.Fatal(err)
	}
	if want := `b'\x41'`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	_, err = c.Sql("$missing", nil)
	var e *UnboundPlaceholderError
	if !errors.As(err, &e) {
		t.Errorf("got %v, want UnboundPlaceholderError", err)
	}
}
