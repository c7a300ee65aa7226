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
	"time"

	"github.com/bbenabbes-sentelis/datalab/internal/optional"
	bq "google.golang.org/api/bigquery/v2"
)

// DataSet is a reference to a BigQuery dataset.
type DataSet struct {
	ProjectID string
	DatasetID string
	c         *Client
}

// DataSet returns a handle to the dataset with the given name, written as
// [<project>:]<dataset> or <project>.<dataset>, optionally enclosed in []
// or backquotes. The client's project is used when the name has none.
func (c *Client) DataSet(name string) (*DataSet, error) {
	n := unwrapName(name)
	if m := standardDatasetName.FindStringSubmatch(n); m != nil {
		return &DataSet{ProjectID: m[1], DatasetID: m[2], c: c}, nil
	}
	if m := legacyDatasetName.FindStringSubmatch(n); m != nil {
		p := m[1]
		if p == "" {
			p = c.projectID
		}
		return &DataSet{ProjectID: p, DatasetID: m[2], c: c}, nil
	}
	return nil, &InvalidNameError{Kind: "dataset name", Name: name}
}

func (d *DataSet) String() string {
	return d.ProjectID + ":" + d.DatasetID
}

// SQLLiteral renders the dataset as a reference in the dialect's syntax.
func (d *DataSet) SQLLiteral(dl Dialect) (string, error) {
	return dl.TableName(d.ProjectID, d.DatasetID, ""), nil
}

// Table returns a handle to the table with the given ID in the dataset.
func (d *DataSet) Table(tableID string) (*Table, error) {
	if !validTableID(tableID) {
		return nil, &InvalidNameError{Kind: "table ID", Name: tableID}
	}
	return &Table{ProjectID: d.ProjectID, DatasetID: d.DatasetID, TableID: tableID, c: d.c}, nil
}

// DatasetMetadata contains information about a BigQuery dataset.
type DatasetMetadata struct {
	FullID                 string
	Name                   string // The user-friendly name for this dataset.
	Description            string
	Location               string
	DefaultTableExpiration time.Duration
	CreationTime           time.Time
	LastModifiedTime       time.Time
	ETag                   string
}

func bqToDatasetMetadata(d *bq.Dataset) *DatasetMetadata {
	return &DatasetMetadata{
		FullID:                 d.Id,
		Name:                   d.FriendlyName,
		Description:            d.Description,
		Location:               d.Location,
		DefaultTableExpiration: time.Duration(d.DefaultTableExpirationMs) * time.Millisecond,
		CreationTime:           unixMillisToTime(d.CreationTime),
		LastModifiedTime:       unixMillisToTime(d.LastModifiedTime),
		ETag:                   d.Etag,
	}
}

// Metadata fetches the metadata for the dataset.
func (d *DataSet) Metadata(ctx context.Context) (*DatasetMetadata, error) {
	ds, err := d.c.service.getDataset(ctx, d.ProjectID, d.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("bigquery: dataset %s metadata: %w", d, err)
	}
	return bqToDatasetMetadata(ds), nil
}

// Exists reports whether the dataset exists.
func (d *DataSet) Exists(ctx context.Context) (bool, error) {
	_, err := d.c.service.getDataset(ctx, d.ProjectID, d.DatasetID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("bigquery: dataset %s: %w", d, err)
}

// Create creates the dataset with the given friendly name and description,
// either of which may be empty.
func (d *DataSet) Create(ctx context.Context, friendlyName, description string) error {
	ds := &bq.Dataset{
		DatasetReference: &bq.DatasetReference{ProjectId: d.ProjectID, DatasetId: d.DatasetID},
		FriendlyName:     friendlyName,
		Description:      description,
	}
	if _, err := d.c.service.insertDataset(ctx, d.ProjectID, ds); err != nil {
		return fmt.Errorf("bigquery: creating dataset %s: %w", d, err)
	}
	d.c.log().DebugContext(ctx, "bigquery dataset created", "dataset", d.String())
	return nil
}

// DatasetMetadataToUpdate is used when updating a dataset's metadata.
// Only non-nil fields will be updated.
type DatasetMetadataToUpdate struct {
	// FriendlyName, if set to a string, replaces the user-friendly name.
	FriendlyName optional.String
	// Description, if set to a string, replaces the description.
	Description optional.String
}

// Update modifies specific Dataset metadata fields. Setting a field to the
// empty string clears it.
func (d *DataSet) Update(ctx context.Context, dm DatasetMetadataToUpdate) (*DatasetMetadata, error) {
	ds := &bq.Dataset{}
	forceSend := func(field string) {
		ds.ForceSendFields = append(ds.ForceSendFields, field)
	}
	if dm.FriendlyName != nil {
		ds.FriendlyName = optional.ToString(dm.FriendlyName)
		forceSend("FriendlyName")
	}
	if dm.Description != nil {
		ds.Description = optional.ToString(dm.Description)
		forceSend("Description")
	}
	res, err := d.c.service.patchDataset(ctx, d.ProjectID, d.DatasetID, ds)
	if err != nil {
		return nil, fmt.Errorf("bigquery: updating dataset %s: %w", d, err)
	}
	return bqToDatasetMetadata(res), nil
}

// Delete deletes the dataset. If deleteContents is false, deleting a
// dataset that still holds tables fails.
func (d *DataSet) Delete(ctx context.Context, deleteContents bool) error {
	if err := d.c.service.deleteDataset(ctx, d.ProjectID, d.DatasetID, deleteContents); err != nil {
		return fmt.Errorf("bigquery: deleting dataset %s: %w", d, err)
	}
	return nil
}

// Tables lists one page of the tables in the dataset. The returned token,
// if non-empty, can be passed as opts.PageToken to list the next page.
func (d *DataSet) Tables(ctx context.Context, opts *ReadOptions) ([]*Table, string, error) {
	res, err := d.c.service.listTables(ctx, d.ProjectID, d.DatasetID, opts.toConf())
	if err != nil {
		return nil, "", fmt.Errorf("bigquery: listing tables of %s: %w", d, err)
	}
	var tables []*Table
	for _, t := range res.Tables {
		if t.TableReference == nil {
			continue
		}
		tables = append(tables, &Table{
			ProjectID: t.TableReference.ProjectId,
			DatasetID: t.TableReference.DatasetId,
			TableID:   t.TableReference.TableId,
			c:         d.c,
		})
	}
	return tables, res.NextPageToken, nil
}
