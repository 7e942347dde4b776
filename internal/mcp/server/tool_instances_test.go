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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestHandleListVMs_PassThrough(t *testing.T) {
	payload := `{"instances":[{"id":"vm-1","name":"web1","status":"active"}],"total":1,"limit":50,"offset":0}`
	var gotQuery string

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, payload)
	}))

	result, err := s.handleListVMs(context.Background(), callRequest("list_vms", nil))
	if err != nil {
		t.Fatalf("handleListVMs() error = %v", err)
	}

	if got := resultText(t, result); got != payload {
		t.Errorf("result = %s, want upstream payload unmodified", got)
	}
	if gotQuery != "_limit=50&_offset=0&_sort=created_at%3Adesc" {
		t.Errorf("query = %q, want defaults", gotQuery)
	}
}

func TestHandleListVMs_ErrorEnvelope(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"detail":"forbidden"}`)
	}))

	result, err := s.handleListVMs(context.Background(), callRequest("list_vms", nil))
	if err != nil {
		t.Fatalf("handleListVMs() error = %v", err)
	}

	var envelope struct {
		Error      string `json:"error"`
		StatusCode int    `json:"status_code"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &envelope); err != nil {
		t.Fatalf("result is not a JSON envelope: %v", err)
	}

	if envelope.Error == "" {
		t.Error("envelope error should be non-empty")
	}
	if envelope.StatusCode != http.StatusForbidden {
		t.Errorf("status_code = %d, want %d", envelope.StatusCode, http.StatusForbidden)
	}
}

func TestHandleGetVM(t *testing.T) {
	payload := `{"id":"vm-1","name":"web1","status":"active","state":"running"}`

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/instances/vm-1" {
			t.Errorf("path = %q, want /v1/instances/vm-1", r.URL.Path)
		}
		fmt.Fprint(w, payload)
	}))

	result, err := s.handleGetVM(context.Background(), callRequest("get_vm", map[string]any{"vm_id": "vm-1"}))
	if err != nil {
		t.Fatalf("handleGetVM() error = %v", err)
	}

	if got := resultText(t, result); got != payload {
		t.Errorf("result = %s, want upstream payload", got)
	}
}

func TestHandleGetVM_MissingArgument(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected for a bad argument")
	}))

	result, err := s.handleGetVM(context.Background(), callRequest("get_vm", nil))
	if err != nil {
		t.Fatalf("handleGetVM() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing vm_id should produce a tool error result")
	}
}

func TestHandleCreateVM_BodyExample(t *testing.T) {
	var gotBody map[string]any

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"vm-new","name":"web1"}`)
	}))

	result, err := s.handleCreateVM(context.Background(), callRequest("create_vm", map[string]any{
		"name":            "web1",
		"machine_type_id": "mt-1",
		"ssh_key_name":    "k1",
		"image_id":        "img-1",
		"vpc_id":          "vpc-9",
	}))
	if err != nil {
		t.Fatalf("handleCreateVM() error = %v", err)
	}

	wantBody := map[string]any{
		"name":         "web1",
		"machine_type": map[string]any{"id": "mt-1"},
		"ssh_key_name": "k1",
		"image":        map[string]any{"id": "img-1"},
		"network": map[string]any{
			"vpc":                 map[string]any{"id": "vpc-9"},
			"associate_public_ip": true,
		},
	}
	assertJSONEqual(t, wantBody, gotBody)

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &created); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if created.ID != "vm-new" || created.Name != "web1" {
		t.Errorf("result = %+v, want id vm-new, name web1", created)
	}
}

func TestHandleCreateVM_ReferenceErrors(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected for a bad reference")
	}))

	tests := []struct {
		name string
		args map[string]any
	}{
		{
			"both machine type id and name",
			map[string]any{
				"name": "web1", "ssh_key_name": "k1", "image_id": "img-1",
				"machine_type_id": "mt-1", "machine_type_name": "small",
			},
		},
		{
			"neither image id nor name",
			map[string]any{
				"name": "web1", "ssh_key_name": "k1", "machine_type_id": "mt-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCreateVM(context.Background(), callRequest("create_vm", tt.args))
			if err != nil {
				t.Fatalf("handleCreateVM() error = %v", err)
			}
			if !result.IsError {
				t.Error("malformed reference should produce a tool error result")
			}
		})
	}
}

func TestHandleCreateVM_OmitsOptionalFields(t *testing.T) {
	var gotBody map[string]any

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		fmt.Fprint(w, `{"id":"vm-new","name":"web1"}`)
	}))

	_, err := s.handleCreateVM(context.Background(), callRequest("create_vm", map[string]any{
		"name":              "web1",
		"machine_type_name": "cloud-bs1.small",
		"ssh_key_name":      "k1",
		"image_name":        "ubuntu-24.04",
	}))
	if err != nil {
		t.Fatalf("handleCreateVM() error = %v", err)
	}

	for _, absent := range []string{"availability_zone", "network", "user_data"} {
		if _, ok := gotBody[absent]; ok {
			t.Errorf("body should not contain %q when unset", absent)
		}
	}
}

func TestHandleDeleteVM_Acknowledgment(t *testing.T) {
	var gotQuery string

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))

	result, err := s.handleDeleteVM(context.Background(), callRequest("delete_vm", map[string]any{
		"vm_id":            "vm-1",
		"delete_public_ip": true,
	}))
	if err != nil {
		t.Fatalf("handleDeleteVM() error = %v", err)
	}

	if got := resultText(t, result); got != `{"status":"deleted"}` {
		t.Errorf("result = %s, want {\"status\":\"deleted\"}", got)
	}
	if gotQuery != "delete_public_ip=true" {
		t.Errorf("query = %q, want delete_public_ip=true", gotQuery)
	}
}

func TestHandleActions_Acknowledgments(t *testing.T) {
	tests := []struct {
		tool     string
		wantPath string
		wantAck  string
	}{
		{"start_instance", "/v1/instances/vm-1/start", `{"status":"started"}`},
		{"stop_instance", "/v1/instances/vm-1/stop", `{"status":"stopped"}`},
		{"reboot_instance", "/v1/instances/vm-1/reboot", `{"status":"rebooted"}`},
		{"suspend_instance", "/v1/instances/vm-1/suspend", `{"status":"suspended"}`},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			var gotPath string

			s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			}))

			var result *mcp.CallToolResult
			var err error
			switch tt.tool {
			case "start_instance":
				result, err = s.handleStartInstance(context.Background(), callRequest(tt.tool, map[string]any{"id": "vm-1"}))
			case "stop_instance":
				result, err = s.handleStopInstance(context.Background(), callRequest(tt.tool, map[string]any{"id": "vm-1"}))
			case "reboot_instance":
				result, err = s.handleRebootInstance(context.Background(), callRequest(tt.tool, map[string]any{"id": "vm-1"}))
			case "suspend_instance":
				result, err = s.handleSuspendInstance(context.Background(), callRequest(tt.tool, map[string]any{"id": "vm-1"}))
			}
			if err != nil {
				t.Fatalf("%s handler error = %v", tt.tool, err)
			}

			if got := resultText(t, result); got != tt.wantAck {
				t.Errorf("result = %s, want %s", got, tt.wantAck)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
		})
	}
}

func TestHandleAction_UpstreamErrorEnvelope(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail":"illegal transition"}`)
	}))

	result, err := s.handleStartInstance(context.Background(), callRequest("start_instance", map[string]any{"id": "vm-1"}))
	if err != nil {
		t.Fatalf("handleStartInstance() error = %v", err)
	}

	var envelope struct {
		Error      string `json:"error"`
		StatusCode int    `json:"status_code"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &envelope); err != nil {
		t.Fatalf("result is not a JSON envelope: %v", err)
	}
	if envelope.StatusCode != http.StatusConflict {
		t.Errorf("status_code = %d, want %d", envelope.StatusCode, http.StatusConflict)
	}
}

// assertJSONEqual compares two decoded JSON values.
func assertJSONEqual(t *testing.T, want, got map[string]any) {
	t.Helper()

	wantData, _ := json.Marshal(want)
	gotData, _ := json.Marshal(got)
	if string(wantData) != string(gotData) {
		t.Errorf("JSON mismatch\n got: %s\nwant: %s", gotData, wantData)
	}
}
