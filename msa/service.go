// Package msa drives the federated Microsoft-account login chain: a
// device-code grant against the Microsoft identity platform, exchanged
// through Xbox Live and XSTS into a Minecraft session token, plus a
// best-effort profile fetch.
package msa

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-mcauth/auth"
	"github.com/jrsteele09/go-mcauth/internal/utils"
	"github.com/jrsteele09/go-mcauth/profile"
	"github.com/jrsteele09/go-mcauth/request"
)

// Endpoints are the URLs of every exchange in the chain. The zero value is
// never used; DefaultEndpoints returns production URLs and tests override
// via WithEndpoints.
type Endpoints struct {
	DeviceCode     string
	Token          string
	XblAuth        string
	XstsAuth       string
	MinecraftLogin string
	Profile        string
}

// DefaultEndpoints returns the production endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		DeviceCode:     "https://login.microsoftonline.com/consumers/oauth2/v2.0/devicecode",
		Token:          "https://login.microsoftonline.com/consumers/oauth2/v2.0/token",
		XblAuth:        "https://user.auth.xboxlive.com/user/authenticate",
		XstsAuth:       "https://xsts.auth.xboxlive.com/xsts/authorize",
		MinecraftLogin: "https://api.minecraftservices.com/authentication/login_with_xbox",
		Profile:        "https://api.minecraftservices.com/minecraft/profile",
	}
}

// Service is the federated auth orchestrator. It holds no state between
// login steps other than the device code, which is retained across a failed
// login so the caller can retry the remaining steps without re-requesting
// one.
//
// The device-code grant is user-interactive: RequestDeviceCode returns a
// code for the user to approve in a browser, and the caller waits out the
// approval (polling Login after the advertised interval) before the token
// exchange can succeed. The Service itself never polls.
type Service struct {
	exchanger request.Exchanger
	log       zerolog.Logger
	endpoints Endpoints

	clientID   string
	deviceCode string
	password   string
	session    auth.Session
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithExchanger replaces the HTTP exchanger (tests, custom transports).
func WithExchanger(exchanger request.Exchanger) ServiceOption {
	return func(s *Service) { s.exchanger = exchanger }
}

// WithDeviceCode seeds a previously obtained device code, skipping the
// device-code request during Login.
func WithDeviceCode(deviceCode string) ServiceOption {
	return func(s *Service) { s.deviceCode = deviceCode }
}

// WithEndpoints replaces the endpoint set (tests, sovereign clouds).
func WithEndpoints(endpoints Endpoints) ServiceOption {
	return func(s *Service) { s.endpoints = endpoints }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// New creates a federated auth Service for the application identified by
// clientID.
func New(clientID string, options ...ServiceOption) (*Service, error) {
	service := &Service{
		log:       zerolog.Nop(),
		endpoints: DefaultEndpoints(),
		clientID:  clientID,
	}
	for _, opt := range options {
		opt(service)
	}

	if service.exchanger == nil {
		exchanger, err := request.NewClient()
		if err != nil {
			return nil, errors.Wrap(err, "[msa.New] default exchanger")
		}
		service.exchanger = exchanger
	}
	return service, nil
}

// SetUsername sets the account username. It is required only for the
// (unsupported) password path; device-code logins derive it from the
// profile or login response.
func (s *Service) SetUsername(username string) { s.session.Username = username }

// SetPassword sets the account password. Password-based token generation is
// not implemented; Login fails with auth.ErrUnsupported when one is set.
func (s *Service) SetPassword(password string) { s.password = password }

// ClientID returns the application client identifier, or "" after Logout.
func (s *Service) ClientID() string { return s.clientID }

// DeviceCode returns the held device code, if any.
func (s *Service) DeviceCode() string { return s.deviceCode }

// Username returns the account username.
func (s *Service) Username() string { return s.session.Username }

// AccessToken returns the Minecraft session token, if any.
func (s *Service) AccessToken() string { return s.session.AccessToken }

// LoggedIn reports whether a full login sequence has completed.
func (s *Service) LoggedIn() bool { return s.session.LoggedIn }

// Profiles returns the account's profiles: a single linked profile, or
// empty for unlinked accounts.
func (s *Service) Profiles() []profile.GameProfile { return s.session.Profiles }

// SelectedProfile returns the linked profile, or nil for unlinked accounts.
func (s *Service) SelectedProfile() *profile.GameProfile { return s.session.SelectedProfile }

// RequestDeviceCode starts the device-authorization grant and returns the
// full response so the caller can present the user code and verification
// URI to the end user. The device code is retained for Login.
func (s *Service) RequestDeviceCode(ctx context.Context) (*DeviceCode, error) {
	if s.clientID == "" {
		return nil, errors.Wrap(auth.ErrInvalidCredentials, "[RequestDeviceCode] invalid client id")
	}

	fields := url.Values{}
	fields.Set("client_id", s.clientID)
	fields.Set("scope", deviceCodeScope)

	var response DeviceCode
	if err := s.exchanger.ExchangeForm(ctx, s.endpoints.DeviceCode, fields, &response); err != nil {
		return nil, errors.Wrap(err, "[RequestDeviceCode] device code exchange")
	}

	s.deviceCode = response.DeviceCode
	s.log.Debug().Str("verification_uri", response.VerificationURI).Int("expires_in", response.ExpiresIn).Msg("device code issued")
	return &response, nil
}

// Login runs the federated chain: device code → Microsoft access token →
// XBL token → XSTS token → Minecraft session token → best-effort profile.
// Each exchange blocks until complete before the next is issued.
//
// When no device code is held one is requested first; the token exchange
// then fails with an authorization_pending error until the user approves,
// and the caller re-invokes Login after the advertised interval. A failed
// login keeps the device code so the retry skips the device-code request.
func (s *Service) Login(ctx context.Context) error {
	haveClient := s.clientID != ""
	haveDevice := s.deviceCode != ""
	havePassword := s.password != ""

	if !haveClient && !havePassword {
		return errors.Wrap(auth.ErrInvalidCredentials, "[Login] invalid client id or password")
	}
	if havePassword {
		if s.session.Username == "" {
			return errors.Wrap(auth.ErrInvalidCredentials, "[Login] invalid username")
		}
		// No specification exists for exchanging a password for a Microsoft
		// access token; failing beats proceeding with a stale token.
		return errors.Wrap(auth.ErrUnsupported, "[Login] password-based token generation")
	}

	if !haveDevice {
		if _, err := s.RequestDeviceCode(ctx); err != nil {
			return err
		}
	}

	msToken, err := s.exchangeDeviceCode(ctx)
	if err != nil {
		return err
	}
	xblToken, err := s.authenticateXbl(ctx, msToken.AccessToken)
	if err != nil {
		return err
	}
	xstsToken, err := s.authorizeXsts(ctx, xblToken.Token)
	if err != nil {
		return err
	}
	if len(xstsToken.DisplayClaims.Xui) == 0 {
		return errors.Wrap(auth.ErrInvalidResponse, "[Login] XSTS response carries no user hash")
	}

	login, err := s.loginWithXbox(ctx, xstsToken.DisplayClaims.Xui[0].UserHash, xstsToken.Token)
	if err != nil {
		return err
	}

	s.session.AccessToken = login.AccessToken

	// Unlinked accounts (no purchased profile) are a valid end state, so a
	// failed profile lookup never fails the login.
	if linkedProfile, linked := s.lookupProfile(ctx); linked {
		s.session.SelectedProfile = utils.Ptr(linkedProfile)
		s.session.Profiles = []profile.GameProfile{linkedProfile}
		s.session.Username = linkedProfile.Name
	} else if s.session.Username == "" {
		s.session.Username = login.Username
	}

	s.session.LoggedIn = true
	s.log.Debug().Str("username", s.session.Username).Bool("linked", s.session.SelectedProfile != nil).Msg("logged in")
	return nil
}

// Logout clears the local session. The client identifier is single-use per
// login cycle and is cleared with it; a new login needs a fresh one. The
// device code is left in place, matching its retention-for-retry semantics.
func (s *Service) Logout() {
	s.session.Reset()
	s.clientID = ""
	s.log.Debug().Msg("logged out")
}

func (s *Service) exchangeDeviceCode(ctx context.Context) (*msTokenResponse, error) {
	if s.deviceCode == "" {
		return nil, errors.Wrap(auth.ErrInvalidCredentials, "[Login] invalid device code")
	}

	fields := url.Values{}
	fields.Set("grant_type", deviceGrantType)
	fields.Set("client_id", s.clientID)
	fields.Set("device_code", s.deviceCode)

	var response msTokenResponse
	if err := s.exchanger.ExchangeForm(ctx, s.endpoints.Token, fields, &response); err != nil {
		return nil, errors.Wrap(err, "[Login] token exchange")
	}
	return &response, nil
}

func (s *Service) authenticateXbl(ctx context.Context, accessToken string) (*xblAuthResponse, error) {
	payload := xblAuthRequest{
		RelyingParty: xblRelyingParty,
		TokenType:    "JWT",
		Properties: xblAuthProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  "d=" + accessToken,
		},
	}

	var response xblAuthResponse
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoints.XblAuth, payload, &response, nil); err != nil {
		return nil, errors.Wrap(err, "[Login] XBL authenticate")
	}
	return &response, nil
}

func (s *Service) authorizeXsts(ctx context.Context, xblToken string) (*xblAuthResponse, error) {
	payload := xstsAuthRequest{
		RelyingParty: xstsRelyingParty,
		TokenType:    "JWT",
		Properties: xstsAuthProperties{
			UserTokens: []string{xblToken},
			SandboxID:  "RETAIL",
		},
	}

	var response xblAuthResponse
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoints.XstsAuth, payload, &response, nil); err != nil {
		return nil, errors.Wrap(err, "[Login] XSTS authorize")
	}
	return &response, nil
}

func (s *Service) loginWithXbox(ctx context.Context, userHash, xstsToken string) (*mcLoginResponse, error) {
	payload := mcLoginRequest{IdentityToken: "XBL3.0 x=" + userHash + ";" + xstsToken}

	var response mcLoginResponse
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoints.MinecraftLogin, payload, &response, nil); err != nil {
		if errors.Is(err, request.ErrEmptyResponse) {
			return nil, errors.Wrap(auth.ErrInvalidResponse, "[Login] platform login")
		}
		return nil, errors.Wrap(err, "[Login] platform login")
	}
	return &response, nil
}

// lookupProfile fetches the account's Minecraft profile. The boolean
// reports whether the account has one; absence is a documented outcome, not
// an error.
func (s *Service) lookupProfile(ctx context.Context) (profile.GameProfile, bool) {
	headers := map[string]string{"Authorization": "Bearer " + s.session.AccessToken}

	var response mcProfileResponse
	if err := s.exchanger.ExchangeJSON(ctx, s.endpoints.Profile, nil, &response, headers); err != nil {
		s.log.Debug().Err(err).Msg("profile fetch failed, treating account as unlinked")
		return profile.GameProfile{}, false
	}

	id, err := uuid.Parse(response.ID)
	if err != nil {
		s.log.Debug().Err(err).Str("id", response.ID).Msg("malformed profile id, treating account as unlinked")
		return profile.GameProfile{}, false
	}
	return profile.GameProfile{ID: id, Name: response.Name}, true
}
