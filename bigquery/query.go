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
	"fmt"
	"time"

	"github.com/bbenabbes-sentelis/datalab/internal/optional"
	bq "google.golang.org/api/bigquery/v2"
)

// A Query is a SQL statement that can be run against BigQuery. Build the
// statement with Sql or Client.Sql when it takes values, then create the
// handle with Client.Query.
type Query struct {
	c   *Client
	sql string
	udf *Function
}

// Query creates a query handle for sql. The statement is not validated until
// it is run.
func (c *Client) Query(sql string) *Query {
	return &Query{c: c, sql: sql}
}

// SQL returns the query statement.
func (q *Query) SQL() string {
	return q.sql
}

// Function returns the user-defined function the query depends on, if any.
func (q *Query) Function() *Function {
	return q.udf
}

// SQLLiteral renders the query as a parenthesized sub-select so that it can
// be bound to a template placeholder.
func (q *Query) SQLLiteral(Dialect) (string, error) {
	if q.sql == "" {
		return "", errors.New("bigquery: empty query cannot be used as a sub-select")
	}
	return "(" + q.sql + ")", nil
}

// QueryOptions control how a query job is run.
type QueryOptions struct {
	// JobID names the job. If empty, a random ID is generated.
	JobID string
	// Location is the location the job runs in, e.g. "US" or "EU".
	Location string

	// Destination receives the results. If nil, BigQuery writes them to an
	// anonymous temporary table.
	Destination *Table
	// Append adds the results to an existing Destination table.
	Append bool
	// Overwrite replaces the contents of an existing Destination table.
	// Append and Overwrite are mutually exclusive.
	Overwrite bool

	// DisableQueryCache stops BigQuery from answering from cached results.
	DisableQueryCache bool
	// Batch runs the query at batch priority instead of interactive.
	Batch bool
	// AllowLargeResults permits results larger than the response limit.
	// Requires a Destination when using legacy SQL.
	AllowLargeResults bool
	// DryRun validates the query and estimates its cost without running it.
	DryRun bool

	// UseLegacySQL overrides the client's default SQL flavour when set to
	// a bool.
	UseLegacySQL optional.Bool
}

// ReadOptions select the single page returned by a read.
type ReadOptions struct {
	// MaxResults caps the number of rows in the page.
	MaxResults int64
	// StartIndex is the zero-based row to start at. Ignored when PageToken
	// is set.
	StartIndex uint64
	// PageToken continues from a previous page.
	PageToken string
	// Timeout is how long the server may wait for a query job to complete
	// before answering.
	Timeout time.Duration
}

func (o *ReadOptions) toConf() *readConf {
	if o == nil {
		return &readConf{}
	}
	return &readConf{
		pageToken:  o.PageToken,
		startIndex: o.StartIndex,
		maxResults: o.MaxResults,
		timeoutMs:  int64(o.Timeout / time.Millisecond),
	}
}

// QueryResults holds one page of a query result.
type QueryResults struct {
	RowPage

	// Job is the query job that produced the results.
	Job *QueryJob
	// Complete reports whether the job had finished. If false, the page is
	// empty.
	Complete bool
	// Errors holds non-fatal errors reported for the job.
	Errors []*Error

	CacheHit            bool
	TotalBytesProcessed int64
}

func (q *Query) useLegacySQL(opts *QueryOptions) bool {
	if opts != nil && opts.UseLegacySQL != nil {
		return optional.ToBool(opts.UseLegacySQL)
	}
	return q.c.legacySQL
}

// newJob builds the job configuration for the query. The returned job always
// carries a JobReference.
func (q *Query) newJob(opts *QueryOptions) (*bq.Job, error) {
	if q.sql == "" {
		return nil, errors.New("bigquery: query has no SQL")
	}
	if opts == nil {
		opts = &QueryOptions{}
	}
	if opts.Append && opts.Overwrite {
		return nil, errors.New("bigquery: Append and Overwrite are mutually exclusive")
	}
	if (opts.Append || opts.Overwrite) && opts.Destination == nil {
		return nil, errors.New("bigquery: Append and Overwrite require a Destination table")
	}
	jobID := opts.JobID
	if jobID == "" {
		jobID = newJobID("query")
	} else if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	legacy := q.useLegacySQL(opts)
	conf := &bq.JobConfigurationQuery{
		Query:             q.sql,
		UseLegacySql:      &legacy,
		AllowLargeResults: opts.AllowLargeResults,
		ForceSendFields:   []string{"UseLegacySql"},
	}
	if opts.DisableQueryCache {
		f := false
		conf.UseQueryCache = &f
	}
	if opts.Batch {
		conf.Priority = "BATCH"
	} else {
		conf.Priority = "INTERACTIVE"
	}
	if opts.Destination != nil {
		conf.DestinationTable = opts.Destination.toBQ()
		switch {
		case opts.Append:
			conf.WriteDisposition = "WRITE_APPEND"
		case opts.Overwrite:
			conf.WriteDisposition = "WRITE_TRUNCATE"
		default:
			conf.WriteDisposition = "WRITE_EMPTY"
		}
	}
	if q.udf != nil {
		if !legacy {
			return nil, errors.New("bigquery: JavaScript functions require legacy SQL")
		}
		conf.UserDefinedFunctionResources = []*bq.UserDefinedFunctionResource{
			{InlineCode: q.udf.Code()},
		}
	}
	return &bq.Job{
		JobReference: &bq.JobReference{
			ProjectId: q.c.projectID,
			JobId:     jobID,
			Location:  opts.Location,
		},
		Configuration: &bq.JobConfiguration{
			Query:  conf,
			DryRun: opts.DryRun,
		},
	}, nil
}

// ExecuteAsync starts the query as a job and returns without waiting for
// it to finish.
func (q *Query) ExecuteAsync(ctx context.Context, opts *QueryOptions) (*QueryJob, error) {
	job, err := q.newJob(opts)
	if err != nil {
		return nil, err
	}
	j, err := q.c.insertJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("bigquery: starting query: %w", err)
	}
	var dst *Table
	if opts != nil {
		dst = opts.Destination
	}
	q.c.log().DebugContext(ctx, "bigquery query job started", "job", j.String())
	return &QueryJob{Job: j, table: dst}, nil
}

// DryRun validates the query and returns the statistics BigQuery estimates
// for it, without running it.
func (q *Query) DryRun(ctx context.Context, opts *QueryOptions) (*JobStatistics, error) {
	o := QueryOptions{}
	if opts != nil {
		o = *opts
	}
	o.DryRun = true
	job, err := q.newJob(&o)
	if err != nil {
		return nil, err
	}
	res, err := q.c.service.insertJob(ctx, q.c.projectID, job)
	if err != nil {
		return nil, fmt.Errorf("bigquery: dry run: %w", err)
	}
	if st := bqToJobStatistics(res.Statistics); st != nil {
		return st, nil
	}
	return &JobStatistics{}, nil
}

// Results runs the query and returns the first page of its results. The
// server waits up to opts.Timeout for the query to finish; if it does not,
// the returned QueryResults is incomplete and its Job can be read later.
func (q *Query) Results(ctx context.Context, opts *ReadOptions) (*QueryResults, error) {
	if q.udf != nil {
		// jobs.query cannot carry function resources.
		j, err := q.ExecuteAsync(ctx, nil)
		if err != nil {
			return nil, err
		}
		return j.Results(ctx, opts)
	}
	if q.sql == "" {
		return nil, errors.New("bigquery: query has no SQL")
	}
	conf := opts.toConf()
	legacy := q.c.legacySQL
	req := &bq.QueryRequest{
		Query:           q.sql,
		UseLegacySql:    &legacy,
		MaxResults:      conf.maxResults,
		TimeoutMs:       conf.timeoutMs,
		RequestId:       newJobID("request"),
		ForceSendFields: []string{"UseLegacySql"},
	}
	res, err := q.c.service.query(ctx, q.c.projectID, req)
	if err != nil {
		return nil, fmt.Errorf("bigquery: running query: %w", err)
	}
	qr := &QueryResults{
		Job:                 &QueryJob{Job: q.c.bqToJob(nil, res.JobReference)},
		Complete:            res.JobComplete,
		CacheHit:            res.CacheHit,
		TotalBytesProcessed: res.TotalBytesProcessed,
	}
	for _, ep := range res.Errors {
		qr.Errors = append(qr.Errors, bqToError(ep))
	}
	if !res.JobComplete {
		return qr, nil
	}
	qr.Schema = bqToSchema(res.Schema)
	qr.TotalRows = res.TotalRows
	qr.PageToken = res.PageToken
	if qr.Rows, err = convertRows(res.Rows, qr.Schema); err != nil {
		return nil, err
	}
	return qr, nil
}

// Sample runs the query rewritten by s and returns the first page of the
// sampled rows. A nil Sampling uses DefaultSampling(nil, 5).
func (q *Query) Sample(ctx context.Context, s Sampling, opts *ReadOptions) (*QueryResults, error) {
	if s == nil {
		s = DefaultSampling(nil, 5)
	}
	sampled := &Query{c: q.c, sql: s(q.sql, q.c.legacySQL), udf: q.udf}
	return sampled.Results(ctx, opts)
}
