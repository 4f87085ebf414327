// Package requestfakes provides a scriptable Exchanger for orchestrator
// tests: responses are registered per endpoint and every call is recorded.
package requestfakes

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-mcauth/request"
)

var _ request.Exchanger = (*FakeExchanger)(nil)

// Call records one exchange as seen by the fake.
type Call struct {
	Endpoint string
	Payload  any        // JSON exchanges
	Fields   url.Values // form exchanges
	Headers  map[string]string
}

// Handler produces the scripted outcome for one endpoint. Returning a non-nil
// response marshals it into the caller's out value; returning an error fails
// the exchange.
type Handler func(call Call) (response any, err error)

type FakeExchanger struct {
	handlers map[string]Handler
	calls    []Call
}

func NewFakeExchanger() *FakeExchanger {
	return &FakeExchanger{handlers: make(map[string]Handler)}
}

// Respond registers a fixed successful response for an endpoint.
func (f *FakeExchanger) Respond(endpoint string, response any) {
	f.handlers[endpoint] = func(Call) (any, error) { return response, nil }
}

// Fail registers a fixed failure for an endpoint.
func (f *FakeExchanger) Fail(endpoint string, err error) {
	f.handlers[endpoint] = func(Call) (any, error) { return nil, err }
}

// Handle registers a custom handler for an endpoint.
func (f *FakeExchanger) Handle(endpoint string, handler Handler) {
	f.handlers[endpoint] = handler
}

// Calls returns every exchange recorded so far, in order.
func (f *FakeExchanger) Calls() []Call {
	return f.calls
}

// CallsTo returns the recorded exchanges against one endpoint.
func (f *FakeExchanger) CallsTo(endpoint string) []Call {
	var matched []Call
	for _, c := range f.calls {
		if c.Endpoint == endpoint {
			matched = append(matched, c)
		}
	}
	return matched
}

func (f *FakeExchanger) ExchangeJSON(_ context.Context, endpoint string, payload any, out any, headers map[string]string) error {
	return f.exchange(Call{Endpoint: endpoint, Payload: payload, Headers: headers}, out)
}

func (f *FakeExchanger) ExchangeForm(_ context.Context, endpoint string, fields url.Values, out any) error {
	return f.exchange(Call{Endpoint: endpoint, Fields: fields}, out)
}

func (f *FakeExchanger) exchange(call Call, out any) error {
	f.calls = append(f.calls, call)

	handler, ok := f.handlers[call.Endpoint]
	if !ok {
		return errors.Errorf("no handler registered for %s", call.Endpoint)
	}
	response, err := handler(call)
	if err != nil {
		return err
	}
	if out == nil || response == nil {
		return nil
	}

	// Round-trip through JSON so scripted responses can be declared with the
	// same wire types the orchestrators decode into.
	encoded, err := json.Marshal(response)
	if err != nil {
		return errors.Wrap(err, "marshal scripted response")
	}
	return json.Unmarshal(encoded, out)
}
