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
	"log/slog"

	"github.com/bbenabbes-sentelis/datalab/internal/trace"
	"go.opentelemetry.io/otel/attribute"
	bq "google.golang.org/api/bigquery/v2"
)

// service provides an internal abstraction to isolate the generated
// BigQuery API; most of this package uses this interface instead.
// The single implementation, *bigqueryService, contains all the knowledge
// of the generated BigQuery API. Each method makes exactly one API call.
type service interface {
	// Jobs
	insertJob(ctx context.Context, projectID string, job *bq.Job) (*bq.Job, error)
	query(ctx context.Context, projectID string, req *bq.QueryRequest) (*bq.QueryResponse, error)
	getJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error)
	cancelJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error)
	getQueryResults(ctx context.Context, projectID, jobID, location string, conf *readConf) (*bq.GetQueryResultsResponse, error)

	// Tables
	getTable(ctx context.Context, projectID, datasetID, tableID string) (*bq.Table, error)
	insertTable(ctx context.Context, projectID, datasetID string, t *bq.Table) (*bq.Table, error)
	deleteTable(ctx context.Context, projectID, datasetID, tableID string) error
	listTables(ctx context.Context, projectID, datasetID string, conf *readConf) (*bq.TableList, error)

	// Table data
	listTabledata(ctx context.Context, projectID, datasetID, tableID string, conf *readConf) (*bq.TableDataList, error)
	insertAll(ctx context.Context, projectID, datasetID, tableID string, req *bq.TableDataInsertAllRequest) (*bq.TableDataInsertAllResponse, error)

	// Datasets
	getDataset(ctx context.Context, projectID, datasetID string) (*bq.Dataset, error)
	insertDataset(ctx context.Context, projectID string, ds *bq.Dataset) (*bq.Dataset, error)
	patchDataset(ctx context.Context, projectID, datasetID string, ds *bq.Dataset) (*bq.Dataset, error)
	deleteDataset(ctx context.Context, projectID, datasetID string, deleteContents bool) error
}

// readConf selects a single page of a listing.
type readConf struct {
	pageToken  string
	startIndex uint64
	maxResults int64
	timeoutMs  int64
}

type bigqueryService struct {
	s      *bq.Service
	logger *slog.Logger
}

// call runs f inside a span named after the API method and logs it.
func (s *bigqueryService) call(ctx context.Context, method string, attrs []attribute.KeyValue, f func(ctx context.Context) error) (err error) {
	ctx = trace.StartSpan(ctx, "bigquery."+method, attrs...)
	defer func() { trace.EndSpan(ctx, err) }()
	if s.logger != nil {
		s.logger.DebugContext(ctx, "bigquery request", "method", method, "resource", resourceAttr(attrs))
	}
	err = f(ctx)
	if err != nil && s.logger != nil {
		s.logger.DebugContext(ctx, "bigquery request failed", "method", method, "error", err)
	}
	return err
}

func resourceAttr(attrs []attribute.KeyValue) slog.Value {
	var as []slog.Attr
	for _, a := range attrs {
		as = append(as, slog.String(string(a.Key), a.Value.Emit()))
	}
	return slog.GroupValue(as...)
}

func projectAttrs(projectID string, more ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{attribute.String("bigquery.project", projectID)}, more...)
}

func (s *bigqueryService) insertJob(ctx context.Context, projectID string, job *bq.Job) (*bq.Job, error) {
	var res *bq.Job
	attrs := projectAttrs(projectID)
	if job.JobReference != nil {
		attrs = append(attrs, attribute.String("bigquery.job", job.JobReference.JobId))
	}
	err := s.call(ctx, "jobs.insert", attrs, func(ctx context.Context) (err error) {
		call := s.s.Jobs.Insert(projectID, job).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) query(ctx context.Context, projectID string, req *bq.QueryRequest) (*bq.QueryResponse, error) {
	var res *bq.QueryResponse
	err := s.call(ctx, "jobs.query", projectAttrs(projectID), func(ctx context.Context) (err error) {
		call := s.s.Jobs.Query(projectID, req).Context(ctx)
		setClientHeader(call.Header())
		if res, err = call.Do(); err != nil {
			return err
		}
		trace.TracePrintf(ctx, map[string]interface{}{"job_complete": res.JobComplete, "cache_hit": res.CacheHit}, "jobs.query answered")
		return nil
	})
	return res, err
}

func (s *bigqueryService) getJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error) {
	var res *bq.Job
	err := s.call(ctx, "jobs.get", projectAttrs(projectID, attribute.String("bigquery.job", jobID)), func(ctx context.Context) (err error) {
		call := s.s.Jobs.Get(projectID, jobID).Context(ctx)
		setClientHeader(call.Header())
		if location != "" {
			call = call.Location(location)
		}
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) cancelJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error) {
	var res *bq.Job
	err := s.call(ctx, "jobs.cancel", projectAttrs(projectID, attribute.String("bigquery.job", jobID)), func(ctx context.Context) error {
		call := s.s.Jobs.Cancel(projectID, jobID).Context(ctx)
		setClientHeader(call.Header())
		if location != "" {
			call = call.Location(location)
		}
		r, err := call.Do()
		if err != nil {
			return err
		}
		res = r.Job
		return nil
	})
	return res, err
}

func (s *bigqueryService) getQueryResults(ctx context.Context, projectID, jobID, location string, conf *readConf) (*bq.GetQueryResultsResponse, error) {
	var res *bq.GetQueryResultsResponse
	err := s.call(ctx, "jobs.getQueryResults", projectAttrs(projectID, attribute.String("bigquery.job", jobID)), func(ctx context.Context) (err error) {
		call := s.s.Jobs.GetQueryResults(projectID, jobID).Context(ctx)
		setClientHeader(call.Header())
		if location != "" {
			call = call.Location(location)
		}
		if conf.pageToken != "" {
			call = call.PageToken(conf.pageToken)
		} else if conf.startIndex > 0 {
			call = call.StartIndex(conf.startIndex)
		}
		if conf.maxResults > 0 {
			call = call.MaxResults(conf.maxResults)
		}
		if conf.timeoutMs > 0 {
			call = call.TimeoutMs(conf.timeoutMs)
		}
		if res, err = call.Do(); err != nil {
			return err
		}
		trace.TracePrintf(ctx, map[string]interface{}{"job_complete": res.JobComplete, "rows": len(res.Rows)}, "jobs.getQueryResults answered")
		return nil
	})
	return res, err
}

func (s *bigqueryService) getTable(ctx context.Context, projectID, datasetID, tableID string) (*bq.Table, error) {
	var res *bq.Table
	err := s.call(ctx, "tables.get", tableAttrs(projectID, datasetID, tableID), func(ctx context.Context) (err error) {
		call := s.s.Tables.Get(projectID, datasetID, tableID).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) insertTable(ctx context.Context, projectID, datasetID string, t *bq.Table) (*bq.Table, error) {
	var res *bq.Table
	var tableID string
	if t.TableReference != nil {
		tableID = t.TableReference.TableId
	}
	err := s.call(ctx, "tables.insert", tableAttrs(projectID, datasetID, tableID), func(ctx context.Context) (err error) {
		call := s.s.Tables.Insert(projectID, datasetID, t).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) deleteTable(ctx context.Context, projectID, datasetID, tableID string) error {
	return s.call(ctx, "tables.delete", tableAttrs(projectID, datasetID, tableID), func(ctx context.Context) error {
		call := s.s.Tables.Delete(projectID, datasetID, tableID).Context(ctx)
		setClientHeader(call.Header())
		return call.Do()
	})
}

func (s *bigqueryService) listTables(ctx context.Context, projectID, datasetID string, conf *readConf) (*bq.TableList, error) {
	var res *bq.TableList
	err := s.call(ctx, "tables.list", projectAttrs(projectID, attribute.String("bigquery.dataset", datasetID)), func(ctx context.Context) (err error) {
		call := s.s.Tables.List(projectID, datasetID).Context(ctx)
		setClientHeader(call.Header())
		if conf.pageToken != "" {
			call = call.PageToken(conf.pageToken)
		}
		if conf.maxResults > 0 {
			call = call.MaxResults(conf.maxResults)
		}
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) listTabledata(ctx context.Context, projectID, datasetID, tableID string, conf *readConf) (*bq.TableDataList, error) {
	var res *bq.TableDataList
	err := s.call(ctx, "tabledata.list", tableAttrs(projectID, datasetID, tableID), func(ctx context.Context) (err error) {
		call := s.s.Tabledata.List(projectID, datasetID, tableID).Context(ctx)
		setClientHeader(call.Header())
		if conf.pageToken != "" {
			call = call.PageToken(conf.pageToken)
		} else if conf.startIndex > 0 {
			call = call.StartIndex(conf.startIndex)
		}
		if conf.maxResults > 0 {
			call = call.MaxResults(conf.maxResults)
		}
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) insertAll(ctx context.Context, projectID, datasetID, tableID string, req *bq.TableDataInsertAllRequest) (*bq.TableDataInsertAllResponse, error) {
	var res *bq.TableDataInsertAllResponse
	err := s.call(ctx, "tabledata.insertAll", tableAttrs(projectID, datasetID, tableID), func(ctx context.Context) (err error) {
		call := s.s.Tabledata.InsertAll(projectID, datasetID, tableID, req).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) getDataset(ctx context.Context, projectID, datasetID string) (*bq.Dataset, error) {
	var res *bq.Dataset
	err := s.call(ctx, "datasets.get", projectAttrs(projectID, attribute.String("bigquery.dataset", datasetID)), func(ctx context.Context) (err error) {
		call := s.s.Datasets.Get(projectID, datasetID).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) insertDataset(ctx context.Context, projectID string, ds *bq.Dataset) (*bq.Dataset, error) {
	var res *bq.Dataset
	var datasetID string
	if ds.DatasetReference != nil {
		datasetID = ds.DatasetReference.DatasetId
	}
	err := s.call(ctx, "datasets.insert", projectAttrs(projectID, attribute.String("bigquery.dataset", datasetID)), func(ctx context.Context) (err error) {
		call := s.s.Datasets.Insert(projectID, ds).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) patchDataset(ctx context.Context, projectID, datasetID string, ds *bq.Dataset) (*bq.Dataset, error) {
	var res *bq.Dataset
	err := s.call(ctx, "datasets.patch", projectAttrs(projectID, attribute.String("bigquery.dataset", datasetID)), func(ctx context.Context) (err error) {
		call := s.s.Datasets.Patch(projectID, datasetID, ds).Context(ctx)
		setClientHeader(call.Header())
		res, err = call.Do()
		return err
	})
	return res, err
}

func (s *bigqueryService) deleteDataset(ctx context.Context, projectID, datasetID string, deleteContents bool) error {
	return s.call(ctx, "datasets.delete", projectAttrs(projectID, attribute.String("bigquery.dataset", datasetID)), func(ctx context.Context) error {
		call := s.s.Datasets.Delete(projectID, datasetID).Context(ctx).DeleteContents(deleteContents)
		setClientHeader(call.Header())
		return call.Do()
	})
}

func tableAttrs(projectID, datasetID, tableID string) []attribute.KeyValue {
	return projectAttrs(projectID,
		attribute.String("bigquery.dataset", datasetID),
		attribute.String("bigquery.table", tableID))
}
