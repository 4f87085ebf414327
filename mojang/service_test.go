package mojang_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-mcauth/auth"
	"github.com/jrsteele09/go-mcauth/mojang"
	"github.com/jrsteele09/go-mcauth/profile"
	"github.com/jrsteele09/go-mcauth/request"
	"github.com/jrsteele09/go-mcauth/request/requestfakes"
)

const (
	testClientToken = "C1"
	testUsername    = "alice"
	testPassword    = "secret"
	testAccessToken = "T1"
)

var _ auth.SessionProvider = (*mojang.Service)(nil)

var (
	authenticateURL = mojang.DefaultBaseURL + "authenticate"
	refreshURL      = mojang.DefaultBaseURL + "refresh"
	invalidateURL   = mojang.DefaultBaseURL + "invalidate"

	aliceID      = uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aabf")
	aliceWireID  = "069a79f444e94726a5befca90e38aabf"
	secondID     = uuid.MustParse("853c80ef-3c37-49fd-aa49-938b674adae6")
	secondWireID = "853c80ef3c3749fdaa49938b674adae6"
)

type wireProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type authResponse struct {
	AccessToken       string        `json:"accessToken"`
	ClientToken       string        `json:"clientToken"`
	SelectedProfile   *wireProfile  `json:"selectedProfile,omitempty"`
	AvailableProfiles []wireProfile `json:"availableProfiles,omitempty"`
	User              *wireUser     `json:"user,omitempty"`
}

type wireUser struct {
	ID         string         `json:"id"`
	Properties []wireProperty `json:"properties,omitempty"`
}

type wireProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newService(t *testing.T, fake *requestfakes.FakeExchanger) *mojang.Service {
	t.Helper()

	service, err := mojang.New(
		mojang.WithExchanger(fake),
		mojang.WithClientToken(testClientToken),
	)
	require.NoError(t, err)
	return service
}

// payloadMap round-trips a recorded payload through JSON so tests can assert
// on the wire field names.
func payloadMap(t *testing.T, payload any) map[string]any {
	t.Helper()

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(encoded, &fields))
	return fields
}

func TestLoginWithPassword(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken:       testAccessToken,
		ClientToken:       testClientToken,
		SelectedProfile:   &wireProfile{ID: aliceWireID, Name: "Alice"},
		AvailableProfiles: []wireProfile{{ID: aliceWireID, Name: "Alice"}},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))

	require.NoError(t, service.Login(context.Background()))

	require.True(t, service.LoggedIn())
	require.Equal(t, testAccessToken, service.AccessToken())
	require.Equal(t, testUsername, service.ID()) // no user block, falls back to username
	require.Len(t, service.Profiles(), 1)
	require.NotNil(t, service.SelectedProfile())
	require.Equal(t, profile.GameProfile{ID: aliceID, Name: "Alice"}, *service.SelectedProfile())
	require.True(t, profile.Contains(service.Profiles(), *service.SelectedProfile()))

	calls := fake.CallsTo(authenticateURL)
	require.Len(t, calls, 1)
	fields := payloadMap(t, calls[0].Payload)
	require.Equal(t, testUsername, fields["username"])
	require.Equal(t, testPassword, fields["password"])
	require.Equal(t, testClientToken, fields["clientToken"])
	require.Equal(t, true, fields["requestUser"])
	require.Equal(t, map[string]any{"name": "Minecraft", "version": float64(1)}, fields["agent"])
}

func TestLoginSetsIDAndPropertiesFromUser(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken: testAccessToken,
		ClientToken: testClientToken,
		User: &wireUser{
			ID:         "U100",
			Properties: []wireProperty{{Name: "preferredLanguage", Value: "en"}},
		},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))

	require.NoError(t, service.Login(context.Background()))

	require.Equal(t, "U100", service.ID())
	require.Len(t, service.Properties(), 1)
	require.Equal(t, "preferredLanguage", service.Properties()[0].Name)
	require.Empty(t, service.Profiles())
	require.Nil(t, service.SelectedProfile())
}

func TestLoginRequiresUsername(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	service := newService(t, fake)
	require.NoError(t, service.SetPassword(testPassword))

	err := service.Login(context.Background())
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Empty(t, fake.Calls())
}

func TestLoginRequiresPasswordOrToken(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	service := newService(t, fake)
	service.SetUsername(testUsername)

	err := service.Login(context.Background())
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Empty(t, fake.Calls())
}

func TestLoginRejectsMismatchedClientToken(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken: testAccessToken,
		ClientToken: "someone-elses-token",
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))

	err := service.Login(context.Background())
	require.ErrorIs(t, err, auth.ErrClientTokenMismatch)
	require.False(t, service.LoggedIn())
	require.Empty(t, service.AccessToken())
}

func TestLoginRefreshesWithSeededToken(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(refreshURL, authResponse{
		AccessToken: "T2",
		ClientToken: testClientToken,
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	service.SetAccessToken(testAccessToken)

	require.NoError(t, service.Login(context.Background()))

	require.True(t, service.LoggedIn())
	require.Equal(t, "T2", service.AccessToken())
	require.Empty(t, fake.CallsTo(authenticateURL))

	calls := fake.CallsTo(refreshURL)
	require.Len(t, calls, 1)
	fields := payloadMap(t, calls[0].Payload)
	require.Equal(t, testAccessToken, fields["accessToken"])
	require.Equal(t, testClientToken, fields["clientToken"])
	require.NotContains(t, fields, "selectedProfile")
}

func TestLoginSurfacesRequestFailure(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Fail(authenticateURL, &request.StatusError{StatusCode: 403, ErrorCode: "ForbiddenOperationException", Message: "Invalid credentials."})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))

	err := service.Login(context.Background())
	var statusErr *request.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 403, statusErr.StatusCode)
	require.False(t, service.LoggedIn())
}

func TestLogoutScrubsLocalState(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken:       testAccessToken,
		ClientToken:       testClientToken,
		SelectedProfile:   &wireProfile{ID: aliceWireID, Name: "Alice"},
		AvailableProfiles: []wireProfile{{ID: aliceWireID, Name: "Alice"}},
	})
	fake.Respond(invalidateURL, nil)

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))

	require.NoError(t, service.Logout(context.Background()))

	require.False(t, service.LoggedIn())
	require.Empty(t, service.AccessToken())
	require.Empty(t, service.ID())
	require.Nil(t, service.SelectedProfile())
	require.Empty(t, service.Profiles())

	calls := fake.CallsTo(invalidateURL)
	require.Len(t, calls, 1)
	fields := payloadMap(t, calls[0].Payload)
	require.Equal(t, testAccessToken, fields["accessToken"])
	require.Equal(t, testClientToken, fields["clientToken"])
}

func TestLogoutSurfacesTransportFailure(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{AccessToken: testAccessToken, ClientToken: testClientToken})
	fake.Fail(invalidateURL, &request.StatusError{StatusCode: 502})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))

	err := service.Logout(context.Background())
	var statusErr *request.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.True(t, service.LoggedIn()) // scrub only happens once the call goes through
}

func TestSelectGameProfile(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken: testAccessToken,
		ClientToken: testClientToken,
		AvailableProfiles: []wireProfile{
			{ID: aliceWireID, Name: "Alice"},
			{ID: secondWireID, Name: "AliceAlt"},
		},
	})
	fake.Respond(refreshURL, authResponse{
		AccessToken:     "T2",
		ClientToken:     testClientToken,
		SelectedProfile: &wireProfile{ID: secondWireID, Name: "AliceAlt"},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))
	require.Nil(t, service.SelectedProfile())

	candidate := profile.GameProfile{ID: secondID, Name: "AliceAlt"}
	require.NoError(t, service.SelectGameProfile(context.Background(), candidate))

	require.Equal(t, "T2", service.AccessToken())
	require.NotNil(t, service.SelectedProfile())
	require.Equal(t, candidate, *service.SelectedProfile())

	calls := fake.CallsTo(refreshURL)
	require.Len(t, calls, 1)
	fields := payloadMap(t, calls[0].Payload)
	selected, ok := fields["selectedProfile"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, secondWireID, selected["id"])
	require.Equal(t, "AliceAlt", selected["name"])
}

func TestSelectGameProfileRequiresLogin(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	service := newService(t, fake)

	err := service.SelectGameProfile(context.Background(), profile.GameProfile{ID: aliceID, Name: "Alice"})
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	require.Empty(t, fake.Calls())
}

func TestSelectGameProfileIsOneTime(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken:       testAccessToken,
		ClientToken:       testClientToken,
		SelectedProfile:   &wireProfile{ID: aliceWireID, Name: "Alice"},
		AvailableProfiles: []wireProfile{{ID: aliceWireID, Name: "Alice"}},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))

	err := service.SelectGameProfile(context.Background(), profile.GameProfile{ID: aliceID, Name: "Alice"})
	require.ErrorIs(t, err, auth.ErrProfileSelected)
}

func TestSelectGameProfileRejectsUnknownProfile(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken:       testAccessToken,
		ClientToken:       testClientToken,
		AvailableProfiles: []wireProfile{{ID: aliceWireID, Name: "Alice"}},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))

	err := service.SelectGameProfile(context.Background(), profile.GameProfile{ID: secondID, Name: "Stranger"})
	require.ErrorIs(t, err, auth.ErrInvalidProfile)
	require.Len(t, fake.Calls(), 1) // only the login call went out
}

func TestSetPasswordWhileProfileSelected(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	fake.Respond(authenticateURL, authResponse{
		AccessToken:       testAccessToken,
		ClientToken:       testClientToken,
		SelectedProfile:   &wireProfile{ID: aliceWireID, Name: "Alice"},
		AvailableProfiles: []wireProfile{{ID: aliceWireID, Name: "Alice"}},
	})

	service := newService(t, fake)
	service.SetUsername(testUsername)
	require.NoError(t, service.SetPassword(testPassword))
	require.NoError(t, service.Login(context.Background()))

	require.ErrorIs(t, service.SetPassword("new-secret"), auth.ErrProfileSelected)
}

func TestNewGeneratesClientToken(t *testing.T) {
	fake := requestfakes.NewFakeExchanger()
	first, err := mojang.New(mojang.WithExchanger(fake))
	require.NoError(t, err)
	second, err := mojang.New(mojang.WithExchanger(fake))
	require.NoError(t, err)

	require.NotEmpty(t, first.ClientToken())
	require.NotEqual(t, first.ClientToken(), second.ClientToken())
}
