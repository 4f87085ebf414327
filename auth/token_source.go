package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// SessionProvider is the read surface a TokenSource needs from an
// orchestrator. Both mojang.Service and msa.Service satisfy it.
type SessionProvider interface {
	AccessToken() string
	LoggedIn() bool
}

// TokenSource adapts an authenticated orchestrator into an
// oauth2.TokenSource, so bearer-authorized HTTP clients can be built with
// oauth2.NewClient for the platform's profile and services APIs.
//
// The source reflects the orchestrator's current token on every call, so a
// re-login through the same orchestrator is picked up transparently.
func TokenSource(p SessionProvider) oauth2.TokenSource {
	return sessionTokenSource{provider: p}
}

type sessionTokenSource struct {
	provider SessionProvider
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	if !s.provider.LoggedIn() {
		return nil, errors.Wrap(ErrNotLoggedIn, "[TokenSource] no active session")
	}

	token := &oauth2.Token{
		AccessToken: s.provider.AccessToken(),
		TokenType:   "Bearer",
	}
	if expiry, err := TokenExpiry(token.AccessToken); err == nil {
		token.Expiry = expiry
	}
	return token, nil
}
