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
	"encoding/json"
	"fmt"
)

// Reference identifies an upstream resource (machine type, image, VPC)
// either by opaque identifier or by human-readable name. Exactly one of
// the two must be set: the upstream treats `{"id": ...}` and `{"name":
// ...}` as distinct lookup modes and rejects bodies carrying both.
type Reference struct {
	id   string
	name string
}

// ByID returns a Reference that resolves by identifier.
func ByID(id string) Reference {
	return Reference{id: id}
}

// ByName returns a Reference that resolves by name.
func ByName(name string) Reference {
	return Reference{name: name}
}

// IsZero reports whether neither case is set.
func (r Reference) IsZero() bool {
	return r.id == "" && r.name == ""
}

// Validate checks the exactly-one-case invariant.
func (r Reference) Validate() error {
	if r.id == "" && r.name == "" {
		return fmt.Errorf("reference requires an id or a name")
	}
	if r.id != "" && r.name != "" {
		return fmt.Errorf("reference cannot carry both an id and a name")
	}
	return nil
}

// MarshalJSON emits exactly one of {"id": ...} or {"name": ...}.
func (r Reference) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.id != "" {
		return json.Marshal(map[string]string{"id": r.id})
	}
	return json.Marshal(map[string]string{"name": r.name})
}

// UnmarshalJSON accepts either case, preferring the id when both appear.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID != "" {
		*r = ByID(raw.ID)
		return nil
	}
	*r = ByName(raw.Name)
	return nil
}
