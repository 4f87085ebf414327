// Package profile defines the player profile types shared by both
// authentication providers.
package profile

import "github.com/google/uuid"

// GameProfile is a named, identified player entity that can be bound to an
// authenticated session. Legacy accounts may own several profiles; Microsoft
// accounts expose at most one.
type GameProfile struct {
	ID         uuid.UUID
	Name       string
	Properties []Property
}

// Property is an opaque key/value pair attached to a profile or account by
// the legacy auth server (e.g. texture payloads). Signature is present only
// when the server signed the value.
type Property struct {
	Name      string
	Value     string
	Signature string
}

// Equal reports whether two profiles identify the same player. Properties
// are not compared; the server may attach or refresh them between calls.
func (p GameProfile) Equal(other GameProfile) bool {
	return p.ID == other.ID && p.Name == other.Name
}

// Contains reports whether profiles holds a profile equal to candidate.
func Contains(profiles []GameProfile, candidate GameProfile) bool {
	for _, p := range profiles {
		if p.Equal(candidate) {
			return true
		}
	}
	return false
}
