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

// bqsql renders a SQL template with named placeholders and optionally
// dry-runs or runs the result against BigQuery.
//
// Usage:
//
//	bqsql [flags] 'SELECT * FROM t WHERE n > $min'
//	bqsql -param min=5 -execute < query.sql
//
// Parameter values are typed by their text: null, integers, floats, true
// and false are used as such, anything else is a string. Prefix a value
// with "s:" to force a string.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bbenabbes-sentelis/datalab/bigquery"
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "bqsql: %v\n", err)
		}
		os.Exit(1)
	}
}

// params collects repeated -param name=value flags.
type params map[string]interface{}

func (p params) String() string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (p params) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("parameter %q is not of the form name=value", s)
	}
	if _, dup := p[name]; dup {
		return fmt.Errorf("parameter %q given twice", name)
	}
	p[name] = parseValue(value)
	return nil
}

// parseValue types a parameter value from its text.
func parseValue(s string) interface{} {
	if rest, ok := strings.CutPrefix(s, "s:"); ok {
		return rest
	}
	switch s {
	case "null", "NULL":
		return nil
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

type config struct {
	project   string
	dialect   bigquery.Dialect
	legacySQL bool
	dryRun    bool
	execute   bool
	maxRows   int64
	timeout   time.Duration
	params    params
	template  string
	logger    *slog.Logger
}

func parseFlags(args []string, stdin io.Reader, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("bqsql", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := &config{params: params{}}
	var dialect string
	var verbose bool
	fs.StringVar(&cfg.project, "project", "", "project to bill; defaults to GOOGLE_CLOUD_PROJECT or the credentials' project")
	fs.StringVar(&dialect, "dialect", "", "literal syntax: ansi, legacy or standard; defaults to the one matching -legacy-sql")
	fs.BoolVar(&cfg.legacySQL, "legacy-sql", false, "run the query as legacy SQL")
	fs.BoolVar(&cfg.dryRun, "dry-run", false, "validate the query and report the bytes it would process")
	fs.BoolVar(&cfg.execute, "execute", false, "run the query and print the first page of results")
	fs.Int64Var(&cfg.maxRows, "max-rows", 100, "maximum number of rows to print")
	fs.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "how long the server may wait for the query to finish")
	fs.BoolVar(&verbose, "v", false, "log API requests")
	fs.Var(cfg.params, "param", "placeholder value as name=value; may be repeated")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if dialect == "" {
		dialect = "standard"
		if cfg.legacySQL {
			dialect = "legacy"
		}
	}
	switch dialect {
	case "ansi":
		cfg.dialect = bigquery.ANSI{}
	case "legacy":
		cfg.dialect = bigquery.LegacySQL{}
	case "standard":
		cfg.dialect = bigquery.StandardSQL{}
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	if cfg.dryRun && cfg.execute {
		return nil, errors.New("-dry-run and -execute are mutually exclusive")
	}

	switch fs.NArg() {
	case 0:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		cfg.template = string(b)
	case 1:
		cfg.template = fs.Arg(0)
	default:
		return nil, errors.New("expected a single template argument")
	}
	if strings.TrimSpace(cfg.template) == "" {
		return nil, errors.New("empty template")
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stdin, stderr)
	if err != nil {
		return err
	}
	f := &bigquery.Formatter{Dialect: cfg.dialect}
	sql, err := f.Format(cfg.template, cfg.params)
	if err != nil {
		return err
	}
	if !cfg.dryRun && !cfg.execute {
		fmt.Fprintln(stdout, sql)
		return nil
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()
	q := client.Query(sql)

	if cfg.dryRun {
		st, err := q.DryRun(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Query is valid and will process %d bytes.\n", st.TotalBytesProcessed)
		return nil
	}

	res, err := q.Results(ctx, &bigquery.ReadOptions{MaxResults: cfg.maxRows, Timeout: cfg.timeout})
	if err != nil {
		return err
	}
	if !res.Complete {
		fmt.Fprintf(stdout, "Query is still running as job %s.\n", res.Job)
		return nil
	}
	return printRows(stdout, &res.RowPage)
}

func newClient(ctx context.Context, cfg *config) (*bigquery.Client, error) {
	var bctx *bigquery.Context
	if cfg.project == "" {
		var err error
		if bctx, err = bigquery.DefaultContext(ctx); err != nil {
			return nil, err
		}
	} else {
		bctx = &bigquery.Context{ProjectID: cfg.project}
	}
	bctx.Logger = cfg.logger
	return bigquery.NewClient(ctx, bctx, bigquery.WithDialect(cfg.dialect), bigquery.WithLegacySQL(cfg.legacySQL))
}

// printRows writes a page of rows as an aligned table with a header line.
func printRows(w io.Writer, page *bigquery.RowPage) error {
	// one-space padding.
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	sep := ""
	for _, f := range page.Schema.Fields() {
		fmt.Fprintf(tw, "%s%s", sep, f.Name)
		sep = "\t"
	}
	fmt.Fprintln(tw)
	for _, row := range page.Rows {
		sep = ""
		for _, v := range row {
			if v == nil {
				v = "NULL"
			}
			fmt.Fprintf(tw, "%s%v", sep, v)
			sep = "\t"
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n := uint64(len(page.Rows)); page.TotalRows > n {
		fmt.Fprintf(w, "(%d of %d rows)\n", n, page.TotalRows)
	}
	return nil
}
