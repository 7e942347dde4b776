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
	"net/http"
	"net/url"
)

// ListInstances returns one page of instances as the upstream's paginated
// envelope, unmodified.
func (c *Client) ListInstances(ctx context.Context, opts *ListOptions) (json.RawMessage, error) {
	return c.list(ctx, "instances", opts, DefaultInstanceSort)
}

// GetInstance returns a single instance by id. A missing instance surfaces
// as whatever status the upstream returns, wrapped in *Error.
func (c *Client) GetInstance(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("instance id is required")
	}

	req, err := c.newRequest(http.MethodGet, "instances/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Network describes the network attachment of a new instance.
type Network struct {
	VPC               *Reference `json:"vpc,omitempty"`
	AssociatePublicIP bool       `json:"associate_public_ip"`
}

// CreateInstanceRequest is the body for CreateInstance. Optional fields
// are omitted from the wire entirely when unset; the upstream treats a
// present-but-null field differently from an absent one.
type CreateInstanceRequest struct {
	Name             string     `json:"name"`
	MachineType      Reference  `json:"machine_type"`
	SSHKeyName       string     `json:"ssh_key_name"`
	Image            Reference  `json:"image"`
	AvailabilityZone string     `json:"availability_zone,omitempty"`
	Network          *Network   `json:"network,omitempty"`
	UserData         string     `json:"user_data,omitempty"`

	// TenantID scopes the call; sent as a header, never in the body.
	TenantID string `json:"-"`
}

// Validate checks the request shape before it is put on the wire.
func (r *CreateInstanceRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("instance name is required")
	}
	if r.SSHKeyName == "" {
		return fmt.Errorf("ssh key name is required")
	}
	if err := r.MachineType.Validate(); err != nil {
		return fmt.Errorf("machine type: %w", err)
	}
	if err := r.Image.Validate(); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	return nil
}

// CreateInstanceResult is the subset of the creation response surfaced to
// callers.
type CreateInstanceResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateInstance requests a new instance. There is no idempotency key:
// calling this twice creates two instances.
func (c *Client) CreateInstance(ctx context.Context, createReq *CreateInstanceRequest) (*CreateInstanceResult, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request is required")
	}
	if err := createReq.Validate(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodPost, "instances", createReq, createReq.TenantID)
	if err != nil {
		return nil, err
	}

	result := &CreateInstanceResult{}
	if err := c.do(ctx, req, result); err != nil {
		return nil, err
	}
	if result.Name == "" {
		result.Name = createReq.Name
	}
	return result, nil
}

// DeleteInstanceOptions controls instance deletion.
type DeleteInstanceOptions struct {
	// DeletePublicIP releases the instance's public IP along with the
	// instance.
	DeletePublicIP bool `url:"delete_public_ip"`

	// TenantID scopes the call; sent as a header.
	TenantID string `url:"-"`
}

// DeleteInstance requests deletion of an instance. The returned payload is
// nil when the upstream answers 204. This is a request to delete, not a
// confirmation that the instance is gone.
func (c *Client) DeleteInstance(ctx context.Context, id string, opts *DeleteInstanceOptions) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("instance id is required")
	}

	resolved := DeleteInstanceOptions{}
	if opts != nil {
		resolved = *opts
	}

	u, err := addOptions("instances/"+url.PathEscape(id), resolved)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodDelete, u, nil, resolved.TenantID)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Instance lifecycle actions. Each is fire-and-forget: the upstream
// accepts or rejects the transition request and this client reports only
// the HTTP outcome, never the resulting instance state. A nil payload
// means the upstream answered 204.

// StartInstance requests that an instance be started.
func (c *Client) StartInstance(ctx context.Context, id, tenantID string) (json.RawMessage, error) {
	return c.instanceAction(ctx, id, "start", tenantID)
}

// StopInstance requests that an instance be stopped.
func (c *Client) StopInstance(ctx context.Context, id, tenantID string) (json.RawMessage, error) {
	return c.instanceAction(ctx, id, "stop", tenantID)
}

// RebootInstance requests that an instance be rebooted.
func (c *Client) RebootInstance(ctx context.Context, id, tenantID string) (json.RawMessage, error) {
	return c.instanceAction(ctx, id, "reboot", tenantID)
}

// SuspendInstance requests that an instance be suspended.
func (c *Client) SuspendInstance(ctx context.Context, id, tenantID string) (json.RawMessage, error) {
	return c.instanceAction(ctx, id, "suspend", tenantID)
}

func (c *Client) instanceAction(ctx context.Context, id, action, tenantID string) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("instance id is required")
	}

	req, err := c.newRequest(http.MethodPost, "instances/"+url.PathEscape(id)+"/"+action, nil, tenantID)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
