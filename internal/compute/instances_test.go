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
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListInstances_Defaults(t *testing.T) {
	var gotQuery string
	payload := `{"instances":[{"id":"vm-1","name":"web1"}],"total":1,"limit":50,"offset":0}`

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/instances", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get(headerAPIKey))
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))

	raw, err := c.ListInstances(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "_limit=50&_offset=0&_sort=created_at%3Adesc", gotQuery)
	// Pass-through identity: the upstream payload comes back byte for byte.
	assert.JSONEq(t, payload, string(raw))

	// The raw page still decodes into the documented envelope shape.
	var page InstanceList
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Instances, 1)
	assert.Equal(t, Instance{ID: "vm-1", Name: "web1"}, page.Instances[0])
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 50, page.Limit)
}

func TestListInstances_ExplicitControls(t *testing.T) {
	var gotQuery, gotTenant string

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotTenant = r.Header.Get(headerTenantID)
		fmt.Fprint(w, `{"instances":[],"total":0,"limit":10,"offset":20}`)
	}))

	_, err := c.ListInstances(context.Background(), &ListOptions{
		Limit:    10,
		Offset:   20,
		Sort:     "name:asc",
		Expand:   []string{"network"},
		TenantID: "tenant-b",
	})
	require.NoError(t, err)

	assert.Equal(t, "_limit=10&_offset=20&_sort=name%3Aasc&expand=network", gotQuery)
	assert.Equal(t, "tenant-b", gotTenant)
}

func TestGetInstance(t *testing.T) {
	payload := `{"id":"vm-1","name":"web1","status":"active","state":"running"}`

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/instances/vm-1", r.URL.Path)
		fmt.Fprint(w, payload)
	}))

	raw, err := c.GetInstance(context.Background(), "vm-1")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestGetInstance_RequiresID(t *testing.T) {
	c, err := NewClient("test-key")
	require.NoError(t, err)

	_, err = c.GetInstance(context.Background(), "")
	require.Error(t, err)
}

func TestGetInstance_EscapesID(t *testing.T) {
	var gotPath string
	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{}`)
	}))

	_, err := c.GetInstance(context.Background(), "vm/../../etc")
	require.NoError(t, err)
	assert.Equal(t, "/v1/instances/vm%2F..%2F..%2Fetc", gotPath)
}

func TestCreateInstance_BodyShape(t *testing.T) {
	var gotBody map[string]any

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/instances", r.URL.Path)

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"vm-new","name":"web1"}`)
	}))

	result, err := c.CreateInstance(context.Background(), &CreateInstanceRequest{
		Name:        "web1",
		MachineType: ByID("mt-1"),
		SSHKeyName:  "k1",
		Image:       ByID("img-1"),
		Network: &Network{
			VPC:               refPtr(ByID("vpc-9")),
			AssociatePublicIP: true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "vm-new", result.ID)
	assert.Equal(t, "web1", result.Name)

	want := map[string]any{
		"name":         "web1",
		"machine_type": map[string]any{"id": "mt-1"},
		"ssh_key_name": "k1",
		"image":        map[string]any{"id": "img-1"},
		"network": map[string]any{
			"vpc":                 map[string]any{"id": "vpc-9"},
			"associate_public_ip": true,
		},
	}
	assert.Equal(t, want, gotBody)
}

func TestCreateInstance_OmitsUnsetOptionalFields(t *testing.T) {
	var gotBody map[string]any

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		fmt.Fprint(w, `{"id":"vm-new","name":"web1"}`)
	}))

	_, err := c.CreateInstance(context.Background(), &CreateInstanceRequest{
		Name:        "web1",
		MachineType: ByName("cloud-bs1.small"),
		SSHKeyName:  "k1",
		Image:       ByName("ubuntu-24.04"),
	})
	require.NoError(t, err)

	// Absent, not null: presence of an empty field changes upstream behavior.
	assert.NotContains(t, gotBody, "availability_zone")
	assert.NotContains(t, gotBody, "network")
	assert.NotContains(t, gotBody, "user_data")

	assert.Equal(t, map[string]any{"name": "cloud-bs1.small"}, gotBody["machine_type"])
	assert.Equal(t, map[string]any{"name": "ubuntu-24.04"}, gotBody["image"])
}

func TestCreateInstance_InvalidReference(t *testing.T) {
	c, err := NewClient("test-key")
	require.NoError(t, err)

	_, err = c.CreateInstance(context.Background(), &CreateInstanceRequest{
		Name:       "web1",
		SSHKeyName: "k1",
		Image:      ByID("img-1"),
		// MachineType left zero: neither id nor name.
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machine type")
}

func TestDeleteInstance_NoContent(t *testing.T) {
	var gotQuery string

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/instances/vm-1", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))

	raw, err := c.DeleteInstance(context.Background(), "vm-1", &DeleteInstanceOptions{DeletePublicIP: true})
	require.NoError(t, err)

	// 204 yields no payload; the caller synthesizes the acknowledgment.
	assert.Nil(t, raw)
	assert.Equal(t, "delete_public_ip=true", gotQuery)
}

func TestDeleteInstance_DefaultKeepsPublicIP(t *testing.T) {
	var gotQuery string

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))

	_, err := c.DeleteInstance(context.Background(), "vm-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "delete_public_ip=false", gotQuery)
}

func TestInstanceActions(t *testing.T) {
	actions := []struct {
		name string
		call func(c *Client) (json.RawMessage, error)
		path string
	}{
		{"start", func(c *Client) (json.RawMessage, error) { return c.StartInstance(context.Background(), "vm-1", "") }, "/v1/instances/vm-1/start"},
		{"stop", func(c *Client) (json.RawMessage, error) { return c.StopInstance(context.Background(), "vm-1", "") }, "/v1/instances/vm-1/stop"},
		{"reboot", func(c *Client) (json.RawMessage, error) { return c.RebootInstance(context.Background(), "vm-1", "") }, "/v1/instances/vm-1/reboot"},
		{"suspend", func(c *Client) (json.RawMessage, error) { return c.SuspendInstance(context.Background(), "vm-1", "") }, "/v1/instances/vm-1/suspend"},
	}

	for _, tt := range actions {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath string

			c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			}))

			raw, err := tt.call(c)
			require.NoError(t, err)
			assert.Nil(t, raw)
			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, tt.path, gotPath)
		})
	}
}

func TestInstanceAction_TenantHeader(t *testing.T) {
	var gotTenant string

	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.Header.Get(headerTenantID)
		w.WriteHeader(http.StatusNoContent)
	}))

	_, err := c.StartInstance(context.Background(), "vm-1", "tenant-z")
	require.NoError(t, err)
	assert.Equal(t, "tenant-z", gotTenant)
}

func TestInstanceAction_UpstreamRejection(t *testing.T) {
	// The client forwards every action blindly; an illegal transition is
	// whatever error the upstream decides to return.
	c := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail":"instance is not in a startable state"}`)
	}))

	_, err := c.StartInstance(context.Background(), "vm-1", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func refPtr(r Reference) *Reference {
	return &r
}
