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
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	bq "google.golang.org/api/bigquery/v2"
)

// A Job represents an operation which has been submitted to BigQuery for
// processing. A Job is a handle: every method makes a single API call, and
// nothing waits for the job to finish.
type Job struct {
	c         *Client
	projectID string
	jobID     string
	location  string
}

// Job IDs may contain letters, numbers, underscores and dashes, up to 1024
// characters.
var jobIDRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Job returns a handle to the job with the given ID in the client's project.
// The job need not have been created by this package. For example, the job
// may have been created in the BigQuery console.
func (c *Client) Job(jobID string) (*Job, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	return &Job{c: c, projectID: c.projectID, jobID: jobID}, nil
}

func validateJobID(jobID string) error {
	if len(jobID) > maxIDLength || !jobIDRegexp.MatchString(jobID) {
		return &InvalidNameError{Kind: "job ID", Name: jobID}
	}
	return nil
}

// ID returns the job's ID.
func (j *Job) ID() string {
	return j.jobID
}

// ProjectID returns the project the job runs in.
func (j *Job) ProjectID() string {
	return j.projectID
}

// Location returns the location of the job, if known.
func (j *Job) Location() string {
	return j.location
}

func (j *Job) String() string {
	return j.projectID + ":" + j.jobID
}

// State is one of a sequence of states that a Job progresses through as it is processed.
type State int

const (
	// StateUnspecified is the default JobIterator state.
	StateUnspecified State = iota
	// Pending is a state that describes that the job is pending.
	Pending
	// Running is a state that describes that the job is running.
	Running
	// Done is a state that describes that the job is done.
	Done
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case Done:
		return "DONE"
	}
	return "STATE_UNSPECIFIED"
}

// JobStatus contains the current State of a job, and errors encountered while processing that job.
type JobStatus struct {
	State State

	err error

	// All errors encountered during the running of the job.
	// Not all Errors are fatal, so errors here do not necessarily mean that the job has completed or was unsuccessful.
	Errors []*Error

	// Statistics about the job.
	Statistics *JobStatistics
}

// Done reports whether the job has completed.
// After Done returns true, the Err method will return an error if the job completed unsuccessfully.
func (s *JobStatus) Done() bool {
	return s.State == Done
}

// Err returns the error that caused the job to complete unsuccessfully (if any).
func (s *JobStatus) Err() error {
	return s.err
}

// JobStatistics contains statistics about a job.
type JobStatistics struct {
	CreationTime        time.Time
	StartTime           time.Time
	EndTime             time.Time
	TotalBytesProcessed int64

	// Set for query jobs only.
	CacheHit         bool
	TotalBytesBilled int64
	StatementType    string
}

// Status retrieves the current status of the job from BigQuery.
func (j *Job) Status(ctx context.Context) (*JobStatus, error) {
	job, err := j.c.service.getJob(ctx, j.projectID, j.jobID, j.location)
	if err != nil {
		return nil, fmt.Errorf("bigquery: job %s status: %w", j, err)
	}
	return bqToJobStatus(job)
}

// Cancel requests that a job be cancelled. This method returns without
// waiting for cancellation to take effect. To check whether the job has
// terminated, use Job.Status. Cancelled jobs may still incur costs.
func (j *Job) Cancel(ctx context.Context) error {
	if _, err := j.c.service.cancelJob(ctx, j.projectID, j.jobID, j.location); err != nil {
		return fmt.Errorf("bigquery: cancelling job %s: %w", j, err)
	}
	j.c.log().DebugContext(ctx, "bigquery job cancel requested", "job", j.String())
	return nil
}

var stateMap = map[string]State{"PENDING": Pending, "RUNNING": Running, "DONE": Done}

func bqToJobStatus(job *bq.Job) (*JobStatus, error) {
	if job.Status == nil {
		return nil, errors.New("bigquery: job has no status")
	}
	state, ok := stateMap[job.Status.State]
	if !ok {
		return nil, fmt.Errorf("bigquery: unexpected job state: %q", job.Status.State)
	}
	st := &JobStatus{State: state}
	if err := bqToError(job.Status.ErrorResult); state == Done && err != nil {
		st.err = err
	}
	for _, ep := range job.Status.Errors {
		st.Errors = append(st.Errors, bqToError(ep))
	}
	st.Statistics = bqToJobStatistics(job.Statistics)
	return st, nil
}

func bqToJobStatistics(s *bq.JobStatistics) *JobStatistics {
	if s == nil {
		return nil
	}
	js := &JobStatistics{
		CreationTime:        unixMillisToTime(s.CreationTime),
		StartTime:           unixMillisToTime(s.StartTime),
		EndTime:             unixMillisToTime(s.EndTime),
		TotalBytesProcessed: s.TotalBytesProcessed,
	}
	if s.Query != nil {
		js.CacheHit = s.Query.CacheHit
		js.TotalBytesBilled = s.Query.TotalBytesBilled
		js.StatementType = s.Query.StatementType
	}
	return js
}

// randomIDFn returns a random identifier made of letters and digits.
// Tests replace it.
var randomIDFn = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// newJobID returns a fresh job ID. Client-generated IDs make job insertion
// idempotent.
func newJobID(prefix string) string {
	if prefix == "" {
		prefix = "job"
	}
	return prefix + "_" + randomIDFn()
}

func (c *Client) insertJob(ctx context.Context, job *bq.Job) (*Job, error) {
	res, err := c.service.insertJob(ctx, c.projectID, job)
	if err != nil {
		return nil, err
	}
	return c.bqToJob(res, job.JobReference), nil
}

// bqToJob builds a handle from an API response, falling back to the
// reference that was sent when the response does not carry one (dry runs).
func (c *Client) bqToJob(res *bq.Job, sent *bq.JobReference) *Job {
	ref := sent
	if res != nil && res.JobReference != nil {
		ref = res.JobReference
	}
	j := &Job{c: c, projectID: c.projectID}
	if ref != nil {
		j.jobID = ref.JobId
		j.location = ref.Location
		if ref.ProjectId != "" {
			j.projectID = ref.ProjectId
		}
	}
	return j
}

// A QueryJob is a Job that runs a query and writes its results to a table.
type QueryJob struct {
	*Job
	table *Table
}

// QueryJob returns a handle to an existing query job whose results are
// written to table. table may be nil if the destination is unknown.
func (c *Client) QueryJob(jobID string, table *Table) (*QueryJob, error) {
	j, err := c.Job(jobID)
	if err != nil {
		return nil, err
	}
	return &QueryJob{Job: j, table: table}, nil
}

// Table returns the destination table of the query, if known.
func (j *QueryJob) Table() *Table {
	return j.table
}

// Results reads one page of the query results. If the job has not finished
// within the read timeout, the returned QueryResults has Complete set to
// false and no rows; call Results again later.
func (j *QueryJob) Results(ctx context.Context, opts *ReadOptions) (*QueryResults, error) {
	conf := opts.toConf()
	res, err := j.c.service.getQueryResults(ctx, j.projectID, j.jobID, j.location, conf)
	if err != nil {
		return nil, fmt.Errorf("bigquery: reading results of job %s: %w", j, err)
	}
	qr := &QueryResults{Job: j, Complete: res.JobComplete}
	if !res.JobComplete {
		return qr, nil
	}
	if len(res.Errors) > 0 {
		for _, ep := range res.Errors {
			qr.Errors = append(qr.Errors, bqToError(ep))
		}
	}
	qr.Schema = bqToSchema(res.Schema)
	qr.TotalRows = res.TotalRows
	qr.PageToken = res.PageToken
	qr.CacheHit = res.CacheHit
	qr.TotalBytesProcessed = res.TotalBytesProcessed
	if qr.Rows, err = convertRows(res.Rows, qr.Schema); err != nil {
		return nil, err
	}
	return qr, nil
}
