// Package mojang drives authentication against the legacy centralized
// (Yggdrasil) auth server: password login, token refresh, invalidation, and
// one-time game-profile selection.
package mojang

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-mcauth/auth"
	"github.com/jrsteele09/go-mcauth/internal/utils"
	"github.com/jrsteele09/go-mcauth/profile"
	"github.com/jrsteele09/go-mcauth/request"
)

const (
	// DefaultBaseURL is the production legacy auth server.
	DefaultBaseURL = "https://authserver.mojang.com/"

	authenticateEndpoint = "authenticate"
	refreshEndpoint      = "refresh"
	invalidateEndpoint   = "invalidate"
)

// Service is the legacy auth orchestrator. It owns its auth.Session and a
// stable per-instance client token that is sent on every request and
// validated against every response.
//
// A Service supports one logical caller; it performs no internal locking.
type Service struct {
	exchanger   request.Exchanger
	log         zerolog.Logger
	baseURL     string
	clientToken string

	id       string
	password string
	session  auth.Session
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithExchanger replaces the HTTP exchanger (tests, custom transports).
func WithExchanger(exchanger request.Exchanger) ServiceOption {
	return func(s *Service) { s.exchanger = exchanger }
}

// WithClientToken sets the client token instead of generating one. Callers
// that persist the token across runs re-supply it here.
func WithClientToken(clientToken string) ServiceOption {
	return func(s *Service) { s.clientToken = clientToken }
}

// WithBaseURL points the service at a different auth server.
func WithBaseURL(baseURL string) ServiceOption {
	return func(s *Service) { s.baseURL = baseURL }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// New creates a legacy auth Service. The client token is generated once per
// instance unless WithClientToken overrides it.
func New(options ...ServiceOption) (*Service, error) {
	service := &Service{
		log:         zerolog.Nop(),
		baseURL:     DefaultBaseURL,
		clientToken: uuid.NewString(),
	}
	for _, opt := range options {
		opt(service)
	}

	if service.clientToken == "" {
		return nil, errors.New("[mojang.New] client token cannot be empty")
	}
	if service.exchanger == nil {
		exchanger, err := request.NewClient()
		if err != nil {
			return nil, errors.Wrap(err, "[mojang.New] default exchanger")
		}
		service.exchanger = exchanger
	}
	return service, nil
}

// SetUsername sets the account username used for password login.
func (s *Service) SetUsername(username string) { s.session.Username = username }

// SetPassword sets the account password. It refuses while the user is
// logged in with a selected profile, matching the server's constraint that
// the bound session cannot change credentials.
func (s *Service) SetPassword(password string) error {
	if s.session.LoggedIn && s.session.SelectedProfile != nil {
		return errors.Wrap(auth.ErrProfileSelected, "[SetPassword] cannot change password while logged in")
	}
	s.password = password
	return nil
}

// SetAccessToken seeds a previously issued session token for the refresh
// login path.
func (s *Service) SetAccessToken(accessToken string) { s.session.AccessToken = accessToken }

// ID returns the resolved account identifier (server id, or the username
// when the server supplied none).
func (s *Service) ID() string { return s.id }

// ClientToken returns the per-instance client token.
func (s *Service) ClientToken() string { return s.clientToken }

// Username returns the account username.
func (s *Service) Username() string { return s.session.Username }

// AccessToken returns the current session token, if any.
func (s *Service) AccessToken() string { return s.session.AccessToken }

// LoggedIn reports whether a full login sequence has completed.
func (s *Service) LoggedIn() bool { return s.session.LoggedIn }

// Profiles returns the profiles available to the account.
func (s *Service) Profiles() []profile.GameProfile { return s.session.Profiles }

// SelectedProfile returns the profile bound to the session, or nil.
func (s *Service) SelectedProfile() *profile.GameProfile { return s.session.SelectedProfile }

// Properties returns the account properties from the last login.
func (s *Service) Properties() []profile.Property { return s.session.Properties }

// Login authenticates against the legacy server. With a seeded access token
// it refreshes the existing session; otherwise it authenticates with
// username and password. On any failure the session is left unchanged.
func (s *Service) Login(ctx context.Context) error {
	if strings.TrimSpace(s.session.Username) == "" {
		return errors.Wrap(auth.ErrInvalidCredentials, "[Login] invalid username")
	}

	haveToken := s.session.AccessToken != ""
	havePassword := s.password != ""
	if !haveToken && !havePassword {
		return errors.Wrap(auth.ErrInvalidCredentials, "[Login] invalid password or access token")
	}

	var response *authenticateResponse
	var err error
	if haveToken {
		response, err = s.refresh(ctx, nil)
	} else {
		response, err = s.authenticate(ctx)
	}
	if err != nil {
		return err
	}

	return s.applyLogin(response)
}

// Logout invalidates the session token server-side and scrubs local auth
// state. The invalidate response body carries no success indicator, so the
// local scrub happens regardless of its content; only a transport failure
// aborts it.
func (s *Service) Logout(ctx context.Context) error {
	payload := invalidateRequest{ClientToken: s.clientToken, AccessToken: s.session.AccessToken}
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoint(invalidateEndpoint), payload, nil, nil); err != nil {
		return errors.Wrap(err, "[Logout] invalidate")
	}

	s.session.Reset()
	s.id = ""
	s.log.Debug().Msg("logged out")
	return nil
}

// SelectGameProfile binds candidate to the session. The server allows
// binding once per token, so selection fails when a profile is already
// bound. candidate must be one of Profiles.
func (s *Service) SelectGameProfile(ctx context.Context, candidate profile.GameProfile) error {
	if !s.session.LoggedIn {
		return errors.Wrap(auth.ErrNotLoggedIn, "[SelectGameProfile] cannot change profile")
	}
	if s.session.SelectedProfile != nil {
		return errors.Wrap(auth.ErrProfileSelected, "[SelectGameProfile] cannot change profile")
	}
	if !profile.Contains(s.session.Profiles, candidate) {
		return errors.Wrapf(auth.ErrInvalidProfile, "[SelectGameProfile] profile %q", candidate.Name)
	}

	response, err := s.refresh(ctx, toWireProfile(candidate))
	if err != nil {
		return err
	}

	s.session.AccessToken = response.AccessToken
	s.session.SelectedProfile = utils.Ptr(candidate)
	s.log.Debug().Str("profile", candidate.Name).Msg("selected game profile")
	return nil
}

func (s *Service) authenticate(ctx context.Context) (*authenticateResponse, error) {
	payload := authenticateRequest{
		Agent:       agent{Name: "Minecraft", Version: 1},
		Username:    s.session.Username,
		Password:    s.password,
		ClientToken: s.clientToken,
		RequestUser: true,
	}
	return s.exchange(ctx, authenticateEndpoint, payload)
}

func (s *Service) refresh(ctx context.Context, selected *wireProfile) (*authenticateResponse, error) {
	payload := refreshRequest{
		ClientToken:     s.clientToken,
		AccessToken:     s.session.AccessToken,
		SelectedProfile: selected,
		RequestUser:     true,
	}
	return s.exchange(ctx, refreshEndpoint, payload)
}

func (s *Service) exchange(ctx context.Context, endpoint string, payload any) (*authenticateResponse, error) {
	var response authenticateResponse
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoint(endpoint), payload, &response, nil); err != nil {
		if errors.Is(err, request.ErrEmptyResponse) {
			return nil, errors.Wrapf(auth.ErrInvalidResponse, "[mojang] %s", endpoint)
		}
		return nil, errors.Wrapf(err, "[mojang] %s", endpoint)
	}
	if response.ClientToken != s.clientToken {
		return nil, errors.Wrapf(auth.ErrClientTokenMismatch, "[mojang] %s", endpoint)
	}
	return &response, nil
}

// applyLogin commits a validated authenticate/refresh response to the
// session. LoggedIn flips last, once every field is in place.
func (s *Service) applyLogin(response *authenticateResponse) error {
	profiles := make([]profile.GameProfile, 0, len(response.AvailableProfiles))
	for _, wp := range response.AvailableProfiles {
		gp, err := wp.gameProfile()
		if err != nil {
			return errors.Wrap(err, "[Login] available profiles")
		}
		profiles = append(profiles, gp)
	}

	var selected *profile.GameProfile
	if response.SelectedProfile != nil {
		gp, err := response.SelectedProfile.gameProfile()
		if err != nil {
			return errors.Wrap(err, "[Login] selected profile")
		}
		selected = utils.Ptr(gp)
	}

	if response.User != nil && response.User.ID != "" {
		s.id = response.User.ID
	} else {
		s.id = s.session.Username
	}

	s.session.AccessToken = response.AccessToken
	s.session.Profiles = profiles
	s.session.SelectedProfile = selected
	s.session.Properties = nil
	if response.User != nil {
		s.session.Properties = toProperties(response.User.Properties)
	}
	s.session.LoggedIn = true

	s.log.Debug().Str("id", s.id).Int("profiles", len(profiles)).Msg("logged in")
	return nil
}

func (s *Service) endpoint(path string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + path
}
