package msa

// Wire types for the Microsoft device-code chain. Field names, relying
// parties, and constants are part of the protocol and must not change.

const (
	deviceCodeScope = "XboxLive.signin"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	xblRelyingParty  = "http://auth.xboxlive.com"
	xstsRelyingParty = "rp://api.minecraftservices.com/"
)

// DeviceCode is the device-authorization response. It is returned to the
// caller so the user code and verification URI can be shown to the end
// user; everything after this step is machine-to-machine.
type DeviceCode struct {
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

type msTokenResponse struct {
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

type xblAuthRequest struct {
	RelyingParty string            `json:"RelyingParty"`
	TokenType    string            `json:"TokenType"`
	Properties   xblAuthProperties `json:"Properties"`
}

type xblAuthProperties struct {
	AuthMethod string `json:"AuthMethod"`
	SiteName   string `json:"SiteName"`
	RpsTicket  string `json:"RpsTicket"`
}

type xstsAuthRequest struct {
	RelyingParty string             `json:"RelyingParty"`
	TokenType    string             `json:"TokenType"`
	Properties   xstsAuthProperties `json:"Properties"`
}

type xstsAuthProperties struct {
	UserTokens []string `json:"UserTokens"`
	SandboxID  string   `json:"SandboxId"`
}

// xblAuthResponse is shared by the XBL and XSTS exchanges; both return a
// token plus display claims carrying the user hash.
type xblAuthResponse struct {
	IssueInstant  string        `json:"IssueInstant"`
	NotAfter      string        `json:"NotAfter"`
	Token         string        `json:"Token"`
	DisplayClaims displayClaims `json:"DisplayClaims"`
}

type displayClaims struct {
	Xui []xuiClaim `json:"xui"`
}

type xuiClaim struct {
	UserHash string `json:"uhs"`
}

type mcLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

type mcLoginResponse struct {
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
}

type mcProfileResponse struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Skins []profileSkin `json:"skins"`
}

type profileSkin struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	URL     string `json:"url"`
	Variant string `json:"variant"`
	Alias   string `json:"alias"`
}
