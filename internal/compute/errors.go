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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an upstream error body is read into the
// error message.
const maxErrorBody = 4 << 10

// Error represents a non-success response from the upstream API. The body
// of the failed response is carried as an opaque message; it is never
// interpreted beyond the status code.
type Error struct {
	// StatusCode is the HTTP status returned by the upstream.
	StatusCode int

	// Message is the upstream response body, or the status text when the
	// body is empty.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// checkResponse returns an *Error when the response status is outside the
// 2xx range, and nil otherwise.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	if body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			msg = trimmed
		}
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

// StatusCode extracts the upstream HTTP status from err. It returns 500
// for transport failures and anything else that carries no status.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
