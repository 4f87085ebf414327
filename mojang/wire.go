package mojang

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-mcauth/profile"
)

// Wire types for the Yggdrasil auth server. Field names are part of the
// protocol and must not change.

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authenticateRequest struct {
	Agent       agent  `json:"agent"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

type refreshRequest struct {
	ClientToken     string       `json:"clientToken"`
	AccessToken     string       `json:"accessToken"`
	SelectedProfile *wireProfile `json:"selectedProfile,omitempty"`
	RequestUser     bool         `json:"requestUser"`
}

type invalidateRequest struct {
	ClientToken string `json:"clientToken"`
	AccessToken string `json:"accessToken"`
}

type authenticateResponse struct {
	AccessToken       string        `json:"accessToken"`
	ClientToken       string        `json:"clientToken"`
	SelectedProfile   *wireProfile  `json:"selectedProfile"`
	AvailableProfiles []wireProfile `json:"availableProfiles"`
	User              *wireUser     `json:"user"`
}

type wireUser struct {
	ID         string         `json:"id"`
	Properties []wireProperty `json:"properties"`
}

// wireProfile carries profile IDs as undashed hex, the server's format.
type wireProfile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Properties []wireProperty `json:"properties,omitempty"`
}

type wireProperty struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

func toWireProfile(p profile.GameProfile) *wireProfile {
	return &wireProfile{
		ID:   strings.ReplaceAll(p.ID.String(), "-", ""),
		Name: p.Name,
	}
}

func (w wireProfile) gameProfile() (profile.GameProfile, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return profile.GameProfile{}, errors.Wrapf(err, "profile %q has malformed id %q", w.Name, w.ID)
	}
	return profile.GameProfile{
		ID:         id,
		Name:       w.Name,
		Properties: toProperties(w.Properties),
	}, nil
}

func toProperties(wires []wireProperty) []profile.Property {
	if len(wires) == 0 {
		return nil
	}
	properties := make([]profile.Property, 0, len(wires))
	for _, wp := range wires {
		properties = append(properties, profile.Property{
			Name:      wp.Name,
			Value:     wp.Value,
			Signature: wp.Signature,
		})
	}
	return properties
}
