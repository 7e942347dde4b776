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

// Upstream entity shapes, mirrored for documentation and tests. List and
// get operations return the upstream payload as raw JSON rather than
// round-tripping it through these structs, so unknown upstream fields are
// never dropped.

// Instance is a virtual machine as reported by the upstream. Its lifecycle
// is fully owned upstream; this client only reads it or requests
// transitions.
type Instance struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	State     string           `json:"state"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Flavor    map[string]any   `json:"flavor"`
	Image     map[string]any   `json:"image"`
	Networks  []map[string]any `json:"networks"`
}

// InstanceList is the upstream's paginated instance envelope.
type InstanceList struct {
	Instances []Instance `json:"instances"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// Default sort expressions per resource type. The upstream applies these
// itself for some resources; sending them explicitly pins the order.
const (
	DefaultInstanceSort    = "created_at:desc"
	DefaultImageSort       = "platform:asc,end_life_at:desc"
	DefaultMachineTypeSort = "created_at:asc"
	DefaultSnapshotSort    = "created_at:asc"
	DefaultBackupSort      = "created_at:asc"
)

// DefaultLimit is the page size used when a listing call does not specify
// one. Single page only; callers paginate themselves via offset.
const DefaultLimit = 50

// ListOptions are the pagination and sort controls shared by every listing
// operation. The underscore-prefixed parameter names are the upstream's
// convention.
type ListOptions struct {
	// Limit is the maximum number of results to return. Zero means
	// DefaultLimit.
	Limit int `url:"_limit"`

	// Offset is the number of results to skip.
	Offset int `url:"_offset"`

	// Sort is the sort expression, e.g. "created_at:desc". Zero value
	// means the resource's default sort.
	Sort string `url:"_sort"`

	// Expand lists response fields to expand.
	Expand []string `url:"expand,omitempty"`

	// TenantID scopes the call to a tenant; sent as a header, not a
	// query parameter.
	TenantID string `url:"-"`
}

// withDefaults returns a copy of o with zero values replaced by the
// defaults for a resource whose default sort is defaultSort.
func (o *ListOptions) withDefaults(defaultSort string) ListOptions {
	opts := ListOptions{}
	if o != nil {
		opts = *o
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Sort == "" {
		opts.Sort = defaultSort
	}
	return opts
}
