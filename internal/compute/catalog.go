// Copyright 2025 The vmcp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compute

import (
	"context"
	"encoding/json"
	"net/http"
)

// Catalog listings. All are read-only and return the upstream's paginated
// envelope unmodified.

// ListImages returns one page of the image catalog. Images default to
// platform order with newest end-of-life first.
func (c *Client) ListImages(ctx context.Context, opts *ListOptions) (json.RawMessage, error) {
	return c.list(ctx, "images", opts, DefaultImageSort)
}

// ListMachineTypes returns one page of available machine types.
func (c *Client) ListMachineTypes(ctx context.Context, opts *ListOptions) (json.RawMessage, error) {
	return c.list(ctx, "machine-types", opts, DefaultMachineTypeSort)
}

// ListSnapshots returns one page of the tenant's snapshots.
func (c *Client) ListSnapshots(ctx context.Context, opts *ListOptions) (json.RawMessage, error) {
	return c.list(ctx, "snapshots", opts, DefaultSnapshotSort)
}

// ListBackups returns one page of the tenant's backups.
func (c *Client) ListBackups(ctx context.Context, opts *ListOptions) (json.RawMessage, error) {
	return c.list(ctx, "backups", opts, DefaultBackupSort)
}

func (c *Client) list(ctx context.Context, path string, opts *ListOptions, defaultSort string) (json.RawMessage, error) {
	resolved := opts.withDefaults(defaultSort)

	u, err := addOptions(path, resolved)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodGet, u, nil, resolved.TenantID)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
