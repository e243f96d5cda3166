// Package musicbrainz provides a client for the MusicBrainz Web Service and
// the Cover Art Archive, used by the §4.4 external metadata enricher.
//
// Usage Guidelines and Constraints (based on MusicBrainz API TOS and Social Contract):
//
//  1. Rate Limiting (The "1.0s" Rule)
//     MusicBrainz enforces a strict rate limit of 1 request per second per IP address.
//     Exceeding this limit will result in a 503 Service Unavailable error and
//     potential temporary IP blocking. Implement a robust throttling mechanism
//     within your application to ensure compliance.
//
//  2. User-Agent Identification
//
// A descriptive User-Agent header is MANDATORY. It must follow the format:
// "ApplicationName/Version ( ContactEmailOrWebsite )"
// Generic User-Agents (like "Go-http-client/1.1") are frequently blocked to
// prevent anonymous scraping.
//
// 3. Caching and Efficiency
// Cache data locally whenever possible (e.g., using MBIDs as keys) to avoid
// redundant requests for static metadata. Do not perform "blanket crawls" of
// the database.
//
// For more details, refer to: https://musicbrainz.org/doc/MusicBrainz_API/Ethics
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/pkg/api"
	"github.com/wavebreaker/backend/pkg/throttle"
)

const (
	baseURL       = "https://musicbrainz.org/ws/2/"
	coverArtURL   = "https://coverartarchive.org/release/"
	userAgent     = "Wavebreaker/1.0.0 ( contact: ops@wavebreaker.example )"
	// MusicBrainz rate limit is 1 request per second (§6.3).
	rateLimitInterval = 1 * time.Second
)

// Recording is the subset of a MusicBrainz recording the enricher needs.
type Recording struct {
	MBID        string
	Title       string
	Artist      string
	LengthMS    int32
	ReleaseMBID string
}

// Release is the subset of a MusicBrainz release the enricher needs.
type Release struct {
	MBID string
}

// Cover holds the front-cover image URLs at the two resolutions the wire
// protocol serves (§4.4). Either may be empty if Cover Art Archive lacks
// that thumbnail size.
type Cover struct {
	URL500 string
	URL250 string
}

type recordingSearchResponse struct {
	Recordings []recordingResponse `json:"recordings"`
}

type recordingResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Length   int32            `json:"length"`
	Credits  []artistCredit   `json:"artist-credit"`
	Releases []releaseSummary `json:"releases"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
}

type releaseSummary struct {
	ID string `json:"id"`
}

// Client queries the MusicBrainz Web Service and Cover Art Archive.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	coverArtURL string
	throttler   *throttle.Throttler
	logger      *logging.Logger
}

// NewClient creates a new MusicBrainz client instance.
func NewClient(httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		coverArtURL: coverArtURL,
		throttler:   throttle.New(rateLimitInterval, 100),
		logger:      logger.With(slog.String("component", "musicbrainz")),
	}
}

// SetBaseURL allows overriding the Web Service base URL used by the client.
// This is primarily intended for tests to point the client at an httptest
// server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetCoverArtURL allows overriding the Cover Art Archive base URL used by the
// client. This is primarily intended for tests to point the client at an
// httptest server.
func (c *Client) SetCoverArtURL(u string) {
	c.coverArtURL = u
}

func joinArtistCredits(credits []artistCredit) string {
	var b strings.Builder
	for _, c := range credits {
		b.WriteString(c.Name)
		b.WriteString(c.JoinPhrase)
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, req *http.Request, msg string) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)

	var resp *http.Response
	err := c.throttler.Do(ctx, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		return doErr
	})
	if err := api.FromHTTP(err, resp, msg); err != nil {
		c.logger.Error(ctx, msg, err)
		return nil, err
	}
	return resp, nil
}

// SearchRecording queries MusicBrainz for recordings matching title, artist,
// and a duration window of ±6s (§4.4, §6.3). Returns the first result, or
// apperr.ErrNotFound if nothing matches.
func (c *Client) SearchRecording(ctx context.Context, title, artist string, durationMS int32) (*Recording, error) {
	lucene := fmt.Sprintf(
		`(recording:"%s" OR alias:"%s") AND artist:"%s" AND dur:[%d TO %d]`,
		escapeLucenePhrase(title), escapeLucenePhrase(title), escapeLucenePhrase(artist),
		durationMS-6000, durationMS+6000,
	)

	reqURL := fmt.Sprintf("%srecording/?query=%s&fmt=json", c.baseURL, url.QueryEscape(lucene))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to build musicbrainz recording search request")
	}

	resp, err := c.do(ctx, req, "musicbrainz recording search request failed")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data recordingSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz recording search response")
	}
	if len(data.Recordings) == 0 {
		return nil, apperr.New(codes.NotFound, "no matching musicbrainz recording")
	}

	return recordingFromResponse(data.Recordings[0]), nil
}

// LookupRecording fetches a recording by MBID with its releases and artist
// credits (§6.3).
func (c *Client) LookupRecording(ctx context.Context, mbid string) (*Recording, error) {
	reqURL := fmt.Sprintf("%srecording/%s?inc=releases+artists&fmt=json", c.baseURL, mbid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to build musicbrainz recording lookup request")
	}

	resp, err := c.do(ctx, req, "musicbrainz recording lookup request failed")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data recordingResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz recording lookup response")
	}

	return recordingFromResponse(data), nil
}

func recordingFromResponse(r recordingResponse) *Recording {
	rec := &Recording{
		MBID:     r.ID,
		Title:    r.Title,
		Artist:   joinArtistCredits(r.Credits),
		LengthMS: r.Length,
	}
	if len(r.Releases) > 0 {
		rec.ReleaseMBID = r.Releases[0].ID
	}
	return rec
}

// FetchCovers fetches the front-cover image URLs at 500px and 250px for a
// release from the Cover Art Archive. Either field is left empty if that
// thumbnail size is unavailable; a 404 from Cover Art Archive is not an
// error, since most releases have no artwork (§4.4).
func (c *Client) FetchCovers(ctx context.Context, releaseMBID string) (*Cover, error) {
	type coverArtResponse struct {
		Images []struct {
			Front      bool              `json:"front"`
			Thumbnails map[string]string `json:"thumbnails"`
		} `json:"images"`
	}

	reqURL := c.coverArtURL + releaseMBID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to build cover art archive request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Unavailable, "cover art archive request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &Cover{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(codes.Unavailable, fmt.Sprintf("cover art archive returned status %d", resp.StatusCode))
	}

	var data coverArtResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode cover art archive response")
	}

	cover := &Cover{}
	for _, img := range data.Images {
		if !img.Front {
			continue
		}
		cover.URL500 = img.Thumbnails["500"]
		cover.URL250 = img.Thumbnails["250"]
		break
	}
	return cover, nil
}

// Close releases the throttler's worker goroutine.
func (c *Client) Close() {
	c.throttler.Close()
}

// escapeLucenePhrase escapes characters that are special inside a Lucene
// double-quoted phrase (backslash and double-quote).
func escapeLucenePhrase(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}
