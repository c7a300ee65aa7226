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

/*
Package bigquery provides a client for the BigQuery service, along with a
templating engine for building SQL statements from named placeholders.

The following assumes a basic familiarity with BigQuery concepts.
See https://cloud.google.com/bigquery/docs.

# Formatting SQL

Sql replaces $name placeholders in a template with SQL literals. Write $$
for a literal dollar sign:

	sql, err := bigquery.Sql(`SELECT * FROM logs WHERE user = $user AND cost > $$$min`,
		map[string]interface{}{"user": "o'brien", "min": 5})
	// SELECT * FROM logs WHERE user = 'o''brien' AND cost > $5

Strings are quoted, numbers and booleans are written as is, nil becomes
NULL, slices become parenthesized lists and maps or structs become struct
literals. A *Table, *DataSet or *Query can be bound too: tables render as
references and queries as sub-selects.

The package-level Sql uses the ANSI dialect. A Client formats with the
dialect matching the SQL its queries run as: LegacySQL by default, or
StandardSQL after WithLegacySQL(false). WithDialect overrides either, and a
Formatter can be built for any Dialect.

# Creating a Client

Resolve a Context once, then create a client from it:

	ctx := context.Background()
	bctx, err := bigquery.DefaultContext(ctx)
	if err != nil {
		// TODO: Handle error.
	}
	client, err := bigquery.NewClient(ctx, bctx)
	if err != nil {
		// TODO: Handle error.
	}

# Querying

	q := client.Query(sql)
	res, err := q.Results(ctx, &bigquery.ReadOptions{MaxResults: 100, Timeout: 30 * time.Second})
	if err != nil {
		// TODO: Handle error.
	}
	if !res.Complete {
		// The query is still running; read res.Job's results later.
	}
	for _, row := range res.Rows {
		fmt.Println(row)
	}

Every method makes a single API call and returns. Long running work is
started with Query.ExecuteAsync and observed with Job.Status; nothing in
this package waits or retries. Reads return one page, and the PageToken of
a page can be passed in ReadOptions to fetch the next.

# Tables and Datasets

	t, err := client.Table("mydataset.mytable")
	if err != nil {
		// TODO: Handle error.
	}
	schema, err := bigquery.NewTableSchema(`[{"name": "n", "type": "INTEGER"}]`)
	if err != nil {
		// TODO: Handle error.
	}
	if err := t.Create(ctx, schema, false); err != nil {
		// TODO: Handle error.
	}

# Errors

Errors from the BigQuery service are *googleapi.Error values wrapped with
context, and can be inspected with errors.As. Failed jobs report *Error.
*/
package bigquery // import "github.com/bbenabbes-sentelis/datalab/bigquery"
