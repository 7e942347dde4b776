// Package httpclient provides the HTTP client factory used for all
// outbound upstream calls.
//
// The factory composes transport layers to provide:
//   - Request logging with sanitized URLs (key-like params redacted)
//   - User-Agent header injection
//   - TLS 1.2+ with secure defaults
//   - Connection pooling for the lifetime of the process
//
// There is deliberately no retry layer: every upstream call is made
// exactly once and its outcome reported to the caller as-is.
//
// Example usage:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "vmcp/1.0"
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Get("https://api.example.com/resource")
package httpclient
