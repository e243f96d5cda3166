// Package steam implements the Steam Web API client used by the §4.2 ticket
// verifier and the §4.9 OpenID web login.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/pkg/api"
	"github.com/wavebreaker/backend/pkg/throttle"
)

const (
	authenticateUserTicketURL = "https://api.steampowered.com/ISteamUserAuth/AuthenticateUserTicket/v1/"
	playerSummariesURL        = "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2/"
	// appID is the fixed app id the game registers its session tickets under.
	appID = "12900"
	// Steam does not publish a hard rate limit for these endpoints; this is a
	// conservative self-imposed cap.
	rateLimitInterval = 200 * time.Millisecond
)

// Client talks to the Steam Web API for ticket authentication and profile
// lookups. It holds the publisher's web API key.
type Client struct {
	httpClient          *http.Client
	webAPIKey           string
	authenticateURL     string
	playerSummariesURL  string
	throttler           *throttle.Throttler
	logger              *logging.Logger
}

// NewClient creates a new Steam Web API client.
func NewClient(httpClient *http.Client, webAPIKey string, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient:         httpClient,
		webAPIKey:          webAPIKey,
		authenticateURL:    authenticateUserTicketURL,
		playerSummariesURL: playerSummariesURL,
		throttler:          throttle.New(rateLimitInterval, 100),
		logger:             logger.With(slog.String("component", "steam")),
	}
}

// SetAuthenticateURL overrides the AuthenticateUserTicket endpoint. Intended
// for tests to point the client at an httptest server.
func (c *Client) SetAuthenticateURL(u string) {
	c.authenticateURL = u
}

// SetPlayerSummariesURL overrides the GetPlayerSummaries endpoint. Intended
// for tests to point the client at an httptest server.
func (c *Client) SetPlayerSummariesURL(u string) {
	c.playerSummariesURL = u
}

type authenticateUserTicketResponse struct {
	Response struct {
		Params *struct {
			Result          string `json:"result"`
			SteamID         string `json:"steamid"`
			OwnerSteamID    string `json:"ownersteamid"`
			VacBanned       bool   `json:"vacbanned"`
			PublisherBanned bool   `json:"publisherbanned"`
		} `json:"params"`
		Error *struct {
			ErrorCode int    `json:"errorcode"`
			ErrorDesc string `json:"errordesc"`
		} `json:"error"`
	} `json:"response"`
}

// AuthenticateUserTicket validates an opaque session ticket against Steam and
// returns the 64-bit SteamID it was issued for. Ticket rejection surfaces as
// codes.Unauthenticated; anything that prevents reaching Steam surfaces as
// codes.Unavailable (§4.2 step 3).
func (c *Client) AuthenticateUserTicket(ctx context.Context, ticket string) (uint64, error) {
	q := url.Values{}
	q.Set("key", c.webAPIKey)
	q.Set("appid", appID)
	q.Set("ticket", ticket)

	reqURL := c.authenticateURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, apperr.Wrap(err, codes.Internal, "failed to build steam auth request")
	}

	var resp *http.Response
	err = c.throttler.Do(ctx, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		return doErr
	})
	if err := api.FromHTTP(err, resp, "steam authenticateuserticket request failed"); err != nil {
		c.logger.Error(ctx, "steam ticket authentication request failed", err)
		return 0, apperr.Wrap(err, codes.Unavailable, "steam authenticateuserticket request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	var data authenticateUserTicketResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, apperr.Wrap(err, codes.Unavailable, "failed to decode steam authenticateuserticket response")
	}

	if data.Response.Error != nil {
		return 0, apperr.New(codes.Unauthenticated, fmt.Sprintf("steam ticket rejected: %s", data.Response.Error.ErrorDesc))
	}
	if data.Response.Params == nil || data.Response.Params.Result != "OK" {
		return 0, apperr.New(codes.Unauthenticated, "steam ticket rejected")
	}
	if data.Response.Params.VacBanned || data.Response.Params.PublisherBanned {
		return 0, apperr.New(codes.Unauthenticated, "steam account is banned")
	}

	var steamID uint64
	if _, err := fmt.Sscan(data.Response.Params.SteamID, &steamID); err != nil {
		return 0, apperr.Wrap(err, codes.Unavailable, "malformed steamid in steam response")
	}
	return steamID, nil
}

// PlayerSummary is the subset of Steam's GetPlayerSummaries payload the login
// flow needs.
type PlayerSummary struct {
	SteamID    uint64
	PersonaName string
	AvatarFull string
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID    string `json:"steamid"`
			PersonaName string `json:"personaname"`
			AvatarFull string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}

// GetPlayerSummary fetches the public profile summary used to populate a
// player's username and avatar on Steam login (§4.7 login_steam).
func (c *Client) GetPlayerSummary(ctx context.Context, steamID uint64) (*PlayerSummary, error) {
	q := url.Values{}
	q.Set("key", c.webAPIKey)
	q.Set("steamids", fmt.Sprintf("%d", steamID))

	reqURL := c.playerSummariesURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to build steam player summary request")
	}

	var resp *http.Response
	err = c.throttler.Do(ctx, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		return doErr
	})
	if err := api.FromHTTP(err, resp, "steam getplayersummaries request failed"); err != nil {
		c.logger.Error(ctx, "steam player summary request failed", err, slog.Uint64("steamID", steamID))
		return nil, apperr.Wrap(err, codes.Unavailable, "steam getplayersummaries request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	var data playerSummariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.Unavailable, "failed to decode steam player summary response")
	}
	if len(data.Response.Players) == 0 {
		return nil, apperr.New(codes.NotFound, "steam profile not found")
	}

	p := data.Response.Players[0]
	var id uint64
	if _, err := fmt.Sscan(p.SteamID, &id); err != nil {
		return nil, apperr.Wrap(err, codes.Unavailable, "malformed steamid in steam response")
	}

	return &PlayerSummary{SteamID: id, PersonaName: p.PersonaName, AvatarFull: p.AvatarFull}, nil
}

// Close releases the throttler's worker goroutine.
func (c *Client) Close() {
	c.throttler.Close()
}
