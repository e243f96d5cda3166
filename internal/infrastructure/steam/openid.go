package steam

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
)

const openIDLoginURL = "https://steamcommunity.com/openid/login"

var claimedIDPattern = regexp.MustCompile(`^https://steamcommunity\.com/openid/id/(\d{17})$`)

// OpenID implements the §4.9 Steam OpenID web login: building the redirect
// URL and verifying the provider's callback.
type OpenID struct {
	httpClient *http.Client
	realm      string
	returnTo   string
	loginURL   string
}

// NewOpenID creates an OpenID helper bound to a fixed realm and return-to URL.
func NewOpenID(httpClient *http.Client, realm, returnTo string) *OpenID {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenID{httpClient: httpClient, realm: realm, returnTo: returnTo, loginURL: openIDLoginURL}
}

// SetLoginURL overrides the Steam OpenID provider endpoint. Intended for
// tests to point the client at an httptest server.
func (o *OpenID) SetLoginURL(u string) {
	o.loginURL = u
}

// LoginURL builds the standards-compliant checkid_setup redirect URL.
func (o *OpenID) LoginURL() string {
	q := url.Values{}
	q.Set("openid.ns", "http://specs.openid.net/auth/2.0")
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.return_to", o.returnTo)
	q.Set("openid.realm", o.realm)
	q.Set("openid.identity", "http://specs.openid.net/auth/2.0/identifier_select")
	q.Set("openid.claimed_id", "http://specs.openid.net/auth/2.0/identifier_select")
	return o.loginURL + "?" + q.Encode()
}

// Verify re-posts the callback's query parameters back to Steam with
// mode=check_authentication and, on is_valid:true, extracts the 64-bit
// SteamID from claimed_id. Any deviation from the expected shape is a
// BadRequest (§4.9): realm mismatch is the caller's responsibility to check
// against the request's return_to before calling Verify.
func (o *OpenID) Verify(ctx context.Context, callback url.Values) (uint64, error) {
	claimedID := callback.Get("openid.claimed_id")
	matches := claimedIDPattern.FindStringSubmatch(claimedID)
	if matches == nil {
		return 0, apperr.New(codes.InvalidArgument, "unparseable steam claimed_id")
	}

	verify := url.Values{}
	for k, v := range callback {
		verify[k] = v
	}
	verify.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.loginURL, nil)
	if err != nil {
		return 0, apperr.Wrap(err, codes.Internal, "failed to build steam openid verification request")
	}
	req.URL.RawQuery = verify.Encode()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, apperr.Wrap(err, codes.Unavailable, "steam openid verification request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, apperr.New(codes.Unavailable, "steam openid verification returned non-200")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0, apperr.Wrap(err, codes.Unavailable, "failed to read steam openid verification response")
	}
	if !regexp.MustCompile(`is_valid\s*:\s*true`).Match(body) {
		return 0, apperr.New(codes.InvalidArgument, "steam openid verification failed")
	}

	steamID, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return 0, apperr.Wrap(err, codes.InvalidArgument, "malformed steam claimed_id")
	}
	return steamID, nil
}
