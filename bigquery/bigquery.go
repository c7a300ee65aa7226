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
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bbenabbes-sentelis/datalab/bigquery/internal"
	"github.com/bbenabbes-sentelis/datalab/internal/detect"
	"github.com/googleapis/gax-go/v2/internallog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"
)

const (
	// Scope is the Oauth2 scope for the service.
	// For relevant BigQuery scopes, see:
	// https://developers.google.com/identity/protocols/googlescopes#bigqueryv2
	Scope           = "https://www.googleapis.com/auth/bigquery"
	userAgentPrefix = "datalab-bigquery"
)

var xGoogHeader = fmt.Sprintf("gl-go/%s gccl/%s", strings.TrimPrefix(runtime.Version(), "go"), internal.Version)

func setClientHeader(headers http.Header) {
	headers.Set("x-goog-api-client", xGoogHeader)
}

// A Context carries the project and credentials that API calls are made
// with. It is resolved once, usually at program start, and handed to
// NewClient; nothing in this package falls back to a global default.
type Context struct {
	// ProjectID is the project that queries and jobs are billed to, and the
	// default project for table and dataset names.
	ProjectID string

	// Credentials, if set, authorize requests. Otherwise TokenSource is
	// used, and if that is nil too, Application Default Credentials.
	Credentials *google.Credentials
	TokenSource oauth2.TokenSource

	// Logger receives debug logs of API requests. If nil, logging is
	// configured from the GOOGLE_SDK_GO_LOGGING_LEVEL environment variable.
	Logger *slog.Logger
}

// DefaultContext builds a Context from the environment: the project comes
// from GOOGLE_CLOUD_PROJECT or the Application Default Credentials, and the
// credentials are the Application Default Credentials.
func DefaultContext(ctx context.Context) (*Context, error) {
	creds, err := detect.Credentials(ctx, Scope)
	if err != nil {
		return nil, fmt.Errorf("bigquery: default context: %w", err)
	}
	projectID, err := detect.ProjectID(ctx, detect.ProjectIDSentinel, "", Scope)
	if err != nil {
		return nil, fmt.Errorf("bigquery: default context: %w", err)
	}
	return &Context{ProjectID: projectID, Credentials: creds}, nil
}

// Client may be used to perform BigQuery operations. It is the factory for
// the query, table, dataset, job and function handles of this package.
type Client struct {
	projectID string
	service   service
	formatter *Formatter
	legacySQL bool
	logger    *slog.Logger
}

// NewClient constructs a new Client which can perform BigQuery operations.
// Operations performed via the client are billed to bctx.ProjectID.
func NewClient(ctx context.Context, bctx *Context, opts ...option.ClientOption) (*Client, error) {
	if bctx == nil {
		return nil, errors.New("bigquery: NewClient requires a non-nil Context")
	}
	if bctx.ProjectID == "" {
		return nil, errors.New("bigquery: Context has no project ID")
	}
	logger := internallog.New(bctx.Logger)
	o := []option.ClientOption{
		option.WithScopes(Scope),
		option.WithUserAgent(fmt.Sprintf("%s/%s", userAgentPrefix, internal.Version)),
		option.WithLogger(logger),
	}
	switch {
	case bctx.Credentials != nil:
		o = append(o, option.WithCredentials(bctx.Credentials))
	case bctx.TokenSource != nil:
		o = append(o, option.WithTokenSource(bctx.TokenSource))
	}
	o = append(o, opts...)
	bqs, err := bq.NewService(ctx, o...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: constructing client: %w", err)
	}
	conf := newCustomClientConfig(opts...)
	c := &Client{
		projectID: bctx.ProjectID,
		service:   &bigqueryService{s: bqs, logger: logger},
		formatter: &Formatter{Dialect: conf.dialect},
		legacySQL: conf.legacySQL,
		logger:    logger,
	}
	logger.DebugContext(ctx, "bigquery client created", "project", c.projectID, "legacySQL", c.legacySQL)
	return c, nil
}

// Project returns the project ID that this client bills operations to.
func (c *Client) Project() string {
	return c.projectID
}

// Close closes any resources held by the client.
// Close should be called when the client is no longer needed.
// It need not be called at program exit.
func (c *Client) Close() error {
	return nil
}

// Sql formats a SQL template like the package-level Sql, but with the
// dialect the client was configured with. Without WithDialect that is the
// dialect matching the client's default SQL flavour: LegacySQL unless
// WithLegacySQL(false) was given.
func (c *Client) Sql(template string, args map[string]interface{}) (string, error) {
	return c.sqlFormatter().Format(template, args)
}

func (c *Client) sqlFormatter() *Formatter {
	if c.formatter == nil || c.formatter.Dialect == nil {
		return &Formatter{Dialect: defaultDialect(c.legacySQL)}
	}
	return c.formatter
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Convert a number of milliseconds since the Unix epoch to a time.Time.
// Treat an input of zero specially: convert it to the zero time,
// rather than the start of the epoch.
func unixMillisToTime(m int64) time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.Unix(0, m*1e6)
}
