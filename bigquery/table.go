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
	"fmt"
	"regexp"
	"strings"
	"time"

	bq "google.golang.org/api/bigquery/v2"
)

// A Table is a reference to a BigQuery table.
type Table struct {
	// ProjectID, DatasetID and TableID may be omitted if the Table is the destination for a query.
	// In this case the result will be stored in an ephemeral table.
	ProjectID string
	DatasetID string
	// TableID must contain only letters (a-z, A-Z), numbers (0-9), or underscores (_).
	// The maximum length is 1,024 characters.
	TableID string

	c *Client
}

// InvalidNameError is returned when a table, dataset or job name cannot be
// parsed.
type InvalidNameError struct {
	Kind string
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("bigquery: invalid %s %q", e.Kind, e.Name)
}

// maxIDLength is the longest table or job ID BigQuery accepts.
const maxIDLength = 1024

var (
	// [project:]dataset.table, where the project may be domain scoped
	// (example.com:project).
	legacyTableName = regexp.MustCompile(`^(?:([a-zA-Z0-9.\-_]+(?::[a-zA-Z0-9\-_]+)?):)?([a-zA-Z0-9_]+)\.([a-zA-Z0-9_$]+)$`)

	// project.dataset.table
	standardTableName = regexp.MustCompile(`^([a-zA-Z0-9\-_]+)\.([a-zA-Z0-9_]+)\.([a-zA-Z0-9_$]+)$`)

	tableIDRegexp = regexp.MustCompile(`^[a-zA-Z0-9_$]+$`)

	legacyDatasetName   = regexp.MustCompile(`^(?:([a-zA-Z0-9.\-_]+(?::[a-zA-Z0-9\-_]+)?):)?([a-zA-Z0-9_]+)$`)
	standardDatasetName = regexp.MustCompile(`^([a-zA-Z0-9\-_]+)\.([a-zA-Z0-9_]+)$`)
)

// unwrapName strips the [..] or `..` quoting of a table reference.
func unwrapName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 {
		if (name[0] == '[' && name[len(name)-1] == ']') || (name[0] == '`' && name[len(name)-1] == '`') {
			return name[1 : len(name)-1]
		}
	}
	return name
}

func parseTableName(name, defaultProject string) (projectID, datasetID, tableID string, err error) {
	n := unwrapName(name)
	if m := standardTableName.FindStringSubmatch(n); m != nil && validTableID(m[3]) {
		return m[1], m[2], m[3], nil
	}
	if m := legacyTableName.FindStringSubmatch(n); m != nil && validTableID(m[3]) {
		projectID = m[1]
		if projectID == "" {
			projectID = defaultProject
		}
		return projectID, m[2], m[3], nil
	}
	return "", "", "", &InvalidNameError{Kind: "table name", Name: name}
}

func validTableID(id string) bool {
	return len(id) <= maxIDLength && tableIDRegexp.MatchString(id)
}

// Table returns a handle to the table with the given name. The name must be
// a valid BigQuery table name, either [<project>:]<dataset>.<table> or
// <project>.<dataset>.<table>, optionally enclosed in [] or backquotes. The
// client's project is used when the name has none.
func (c *Client) Table(name string) (*Table, error) {
	p, d, t, err := parseTableName(name, c.projectID)
	if err != nil {
		return nil, err
	}
	return &Table{ProjectID: p, DatasetID: d, TableID: t, c: c}, nil
}

// FullyQualifiedName returns the ID of the table in projectID:datasetID.tableID format.
func (t *Table) FullyQualifiedName() string {
	return fmt.Sprintf("%s:%s.%s", t.ProjectID, t.DatasetID, t.TableID)
}

func (t *Table) String() string {
	return t.FullyQualifiedName()
}

// LegacyName returns the table reference as written in legacy SQL:
// [project:dataset.table].
func (t *Table) LegacyName() string {
	return "[" + t.FullyQualifiedName() + "]"
}

// StandardName returns the table reference as written in standard SQL:
// `project.dataset.table`.
func (t *Table) StandardName() string {
	return StandardSQL{}.TableName(t.ProjectID, t.DatasetID, t.TableID)
}

// SQLLiteral renders the table as a reference in the dialect's syntax.
func (t *Table) SQLLiteral(d Dialect) (string, error) {
	return d.TableName(t.ProjectID, t.DatasetID, t.TableID), nil
}

// DataSet returns the dataset the table belongs to.
func (t *Table) DataSet() *DataSet {
	return &DataSet{ProjectID: t.ProjectID, DatasetID: t.DatasetID, c: t.c}
}

func (t *Table) toBQ() *bq.TableReference {
	if t.TableID == "" {
		return nil
	}
	return &bq.TableReference{
		ProjectId: t.ProjectID,
		DatasetId: t.DatasetID,
		TableId:   t.TableID,
	}
}

// TableMetadata contains information about a BigQuery table.
type TableMetadata struct {
	FullID         string
	Type           string // "TABLE", "VIEW", ...
	Name           string // The user-friendly name for this table.
	Description    string
	Location       string
	Schema         *TableSchema
	NumBytes       int64
	NumRows        uint64
	CreationTime   time.Time
	LastModified   time.Time
	ExpirationTime time.Time // zero if the table never expires.
	ETag           string
}

func bqToTableMetadata(t *bq.Table) *TableMetadata {
	return &TableMetadata{
		FullID:         t.Id,
		Type:           t.Type,
		Name:           t.FriendlyName,
		Description:    t.Description,
		Location:       t.Location,
		Schema:         bqToSchema(t.Schema),
		NumBytes:       t.NumBytes,
		NumRows:        t.NumRows,
		CreationTime:   unixMillisToTime(t.CreationTime),
		LastModified:   unixMillisToTime(int64(t.LastModifiedTime)),
		ExpirationTime: unixMillisToTime(t.ExpirationTime),
		ETag:           t.Etag,
	}
}

// Metadata fetches the metadata for the table.
func (t *Table) Metadata(ctx context.Context) (*TableMetadata, error) {
	res, err := t.c.service.getTable(ctx, t.ProjectID, t.DatasetID, t.TableID)
	if err != nil {
		return nil, fmt.Errorf("bigquery: table %s metadata: %w", t, err)
	}
	return bqToTableMetadata(res), nil
}

// Exists reports whether the table exists.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	_, err := t.c.service.getTable(ctx, t.ProjectID, t.DatasetID, t.TableID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("bigquery: table %s: %w", t, err)
}

// Schema fetches the schema of the table.
func (t *Table) Schema(ctx context.Context) (*TableSchema, error) {
	md, err := t.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return md.Schema, nil
}

// Create creates the table with the given schema. If overwrite is true, an
// existing table of the same name is deleted first.
func (t *Table) Create(ctx context.Context, schema *TableSchema, overwrite bool) error {
	if schema.Len() == 0 {
		return fmt.Errorf("bigquery: creating table %s: schema has no fields", t)
	}
	if overwrite {
		if err := t.c.service.deleteTable(ctx, t.ProjectID, t.DatasetID, t.TableID); err != nil && !isNotFound(err) {
			return fmt.Errorf("bigquery: replacing table %s: %w", t, err)
		}
	}
	table := &bq.Table{
		TableReference: t.toBQ(),
		Schema:         schema.toBQ(),
	}
	if _, err := t.c.service.insertTable(ctx, t.ProjectID, t.DatasetID, table); err != nil {
		return fmt.Errorf("bigquery: creating table %s: %w", t, err)
	}
	t.c.log().DebugContext(ctx, "bigquery table created", "table", t.String())
	return nil
}

// Delete deletes the table.
func (t *Table) Delete(ctx context.Context) error {
	if err := t.c.service.deleteTable(ctx, t.ProjectID, t.DatasetID, t.TableID); err != nil {
		return fmt.Errorf("bigquery: deleting table %s: %w", t, err)
	}
	return nil
}

// Rows reads one page of the table's rows. The schema is fetched first so
// that cell values can be typed.
func (t *Table) Rows(ctx context.Context, opts *ReadOptions) (*RowPage, error) {
	schema, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	res, err := t.c.service.listTabledata(ctx, t.ProjectID, t.DatasetID, t.TableID, opts.toConf())
	if err != nil {
		return nil, fmt.Errorf("bigquery: reading table %s: %w", t, err)
	}
	rows, err := convertRows(res.Rows, schema)
	if err != nil {
		return nil, err
	}
	return &RowPage{
		Schema:    schema,
		Rows:      rows,
		TotalRows: uint64(res.TotalRows),
		PageToken: res.PageToken,
	}, nil
}

// Insert streams rows into the table, keyed by column name. Each row gets a
// generated insert ID so that BigQuery can de-duplicate a resent request.
// Rows that BigQuery rejects are reported in a PutMultiError.
func (t *Table) Insert(ctx context.Context, rows []map[string]Value) error {
	if len(rows) == 0 {
		return nil
	}
	req := &bq.TableDataInsertAllRequest{}
	for _, r := range rows {
		m := make(map[string]bq.JsonValue, len(r))
		for k, v := range r {
			m[k] = v
		}
		req.Rows = append(req.Rows, &bq.TableDataInsertAllRequestRows{
			InsertId: randomIDFn(),
			Json:     m,
		})
	}
	res, err := t.c.service.insertAll(ctx, t.ProjectID, t.DatasetID, t.TableID, req)
	if err != nil {
		return fmt.Errorf("bigquery: inserting into table %s: %w", t, err)
	}
	return handleInsertErrors(res.InsertErrors, req.Rows)
}

func handleInsertErrors(ierrs []*bq.TableDataInsertAllResponseInsertErrors, rows []*bq.TableDataInsertAllRequestRows) error {
	if len(ierrs) == 0 {
		return nil
	}
	var errs PutMultiError
	for _, e := range ierrs {
		if int(e.Index) >= len(rows) {
			return fmt.Errorf("bigquery: internal error: unexpected row index: %v", e.Index)
		}
		rie := RowInsertionError{
			InsertID: rows[e.Index].InsertId,
			RowIndex: int(e.Index),
		}
		for _, errp := range e.Errors {
			rie.Errors = append(rie.Errors, bqToError(errp))
		}
		errs = append(errs, rie)
	}
	return errs
}

// ExtractOptions control the output of Table.Extract.
type ExtractOptions struct {
	// Format is one of "CSV" (the default), "NEWLINE_DELIMITED_JSON" or "AVRO".
	Format string
	// Compress writes gzip-compressed files.
	Compress bool
	// FieldDelimiter separates CSV fields. The default is a comma.
	FieldDelimiter string
	// NoHeader omits the CSV header row.
	NoHeader bool
	// JobID names the job. If empty, a random ID is generated.
	JobID string
}

// Extract starts a job that exports the table to Cloud Storage. Each
// destination is a gs:// URI, optionally containing a single '*' wildcard.
func (t *Table) Extract(ctx context.Context, destinations []string, opts *ExtractOptions) (*Job, error) {
	if len(destinations) == 0 {
		return nil, fmt.Errorf("bigquery: extracting table %s: no destination URIs", t)
	}
	for _, d := range destinations {
		if !strings.HasPrefix(d, "gs://") {
			return nil, fmt.Errorf("bigquery: extract destination %q is not a gs:// URI", d)
		}
	}
	if opts == nil {
		opts = &ExtractOptions{}
	}
	jobID := opts.JobID
	if jobID == "" {
		jobID = newJobID("extract")
	} else if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	conf := &bq.JobConfigurationExtract{
		SourceTable:       t.toBQ(),
		DestinationUris:   destinations,
		DestinationFormat: opts.Format,
		FieldDelimiter:    opts.FieldDelimiter,
	}
	if opts.Compress {
		conf.Compression = "GZIP"
	}
	if opts.NoHeader {
		f := false
		conf.PrintHeader = &f
	}
	job := &bq.Job{
		JobReference:  &bq.JobReference{ProjectId: t.c.projectID, JobId: jobID},
		Configuration: &bq.JobConfiguration{Extract: conf},
	}
	j, err := t.c.insertJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("bigquery: extracting table %s: %w", t, err)
	}
	return j, nil
}

// Sample returns a sample of the table's rows, selected by s. A nil
// Sampling uses DefaultSampling(nil, 5).
func (t *Table) Sample(ctx context.Context, s Sampling, opts *ReadOptions) (*QueryResults, error) {
	name := t.StandardName()
	if t.c.legacySQL {
		name = t.LegacyName()
	}
	return t.c.Query("SELECT * FROM " + name).Sample(ctx, s, opts)
}
