// Package auth holds the session state shared by the two credential
// providers and the error vocabulary both of them surface.
//
// The mojang and msa packages each own an independent orchestrator; the only
// thing they share is this data shape and these errors. There is no common
// base type on purpose.
package auth

import "github.com/jrsteele09/go-mcauth/profile"

// Session is the mutable identity/credential record a login sequence
// populates. It is owned exclusively by the orchestrator that embeds it and
// must only be mutated during Login/Logout/profile selection.
//
// A Session is not safe for concurrent use; the login sequence is a single
// logical caller's blocking call chain.
type Session struct {
	// Username is the account display name. Required for legacy password
	// login, derived from the profile or login response for Microsoft
	// accounts.
	Username string

	// AccessToken is the opaque bearer token for the active session. Set on
	// successful login, cleared on logout.
	AccessToken string

	// LoggedIn is true only after a full login sequence has completed.
	LoggedIn bool

	// SelectedProfile is the profile currently bound to the session, if any.
	// When non-nil it is an element of Profiles.
	SelectedProfile *profile.GameProfile

	// Profiles lists the profiles available to the account, in server order.
	// Microsoft accounts hold at most one.
	Profiles []profile.GameProfile

	// Properties are opaque account properties. Legacy accounts only; the
	// set is replaced wholesale on every successful login.
	Properties []profile.Property
}

// Reset clears the session back to its unauthenticated defaults.
func (s *Session) Reset() {
	*s = Session{}
}
