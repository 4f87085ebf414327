// Package request performs single HTTP request/response exchanges on behalf
// of the auth orchestrators. It owns content negotiation (JSON vs form
// encoding), response deserialization, and the uniform error surface for
// transport and non-2xx failures.
package request

import (
	"context"
	"errors"
	"net/url"
)

// ErrEmptyResponse reports a 2xx response whose body was empty when the
// caller expected a payload. Orchestrators treat it as an invalid response
// from the server.
var ErrEmptyResponse = errors.New("empty response body")

// Exchanger performs one blocking request/response cycle. Implementations
// must surface transport errors and non-2xx statuses as a *StatusError or
// wrapped error rather than raw I/O errors, and must decode a 2xx body into
// out when out is non-nil.
type Exchanger interface {
	// ExchangeJSON sends payload JSON-encoded via POST, or issues a GET when
	// payload is nil. headers may be nil.
	ExchangeJSON(ctx context.Context, endpoint string, payload any, out any, headers map[string]string) error

	// ExchangeForm sends fields form-encoded via POST.
	ExchangeForm(ctx context.Context, endpoint string, fields url.Values, out any) error
}
