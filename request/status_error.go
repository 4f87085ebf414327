package request

import "fmt"

// StatusError is the uniform failure for a non-2xx response. ErrorCode and
// Message are filled from the server's error body when one was decodable:
// legacy servers answer {"error","errorMessage"}, OAuth endpoints answer
// {"error","error_description"}.
type StatusError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *StatusError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("request failed: status %d: %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("request failed: status %d", e.StatusCode)
}

// Pending reports whether the failure is the OAuth device flow telling the
// caller the user has not finished browser authorization yet. Callers poll
// again after the advertised interval; on slow_down they back off further.
func (e *StatusError) Pending() bool {
	return e.ErrorCode == "authorization_pending" || e.ErrorCode == "slow_down"
}
