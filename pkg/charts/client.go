package charts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chartbot/pkg/config"
)

const (
	defaultBaseURL  = "https://www.shazam.com"
	defaultLanguage = "en-US"
	defaultRegion   = "US"
	defaultTimeout  = 20 * time.Second
)

// Client calls the Shazam web chart and search endpoints.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	language       string
	region         string
	requestTimeout time.Duration
}

// ChartResult is the response shape of the chart endpoints.
type ChartResult struct {
	Tracks []TrackPayload `json:"tracks"`
}

// TrackList returns the chart tracks in display form.
func (r *ChartResult) TrackList() []Track {
	return NormalizeTracks(r.Tracks)
}

// SearchResult is the response shape of the search endpoint.
//
// Depending on the query the API exposes tracks either directly under
// tracks or wrapped per-hit under song_hits. Entries of song_hits that are
// not well-formed wrapper objects are skipped during extraction.
type SearchResult struct {
	Tracks   []TrackPayload    `json:"tracks"`
	SongHits []json.RawMessage `json:"song_hits"`
}

// TrackList extracts tracks from whichever shape the result carries,
// preferring the flat tracks list. A result carrying neither yields nil
// rather than an error.
func (r *SearchResult) TrackList() []Track {
	if len(r.Tracks) > 0 {
		return NormalizeTracks(r.Tracks)
	}

	if len(r.SongHits) > 0 {
		payloads := make([]TrackPayload, 0, len(r.SongHits))
		for _, raw := range r.SongHits {
			var hit struct {
				Track *TrackPayload `json:"track"`
			}
			if err := json.Unmarshal(raw, &hit); err != nil || hit.Track == nil {
				continue
			}
			payloads = append(payloads, *hit.Track)
		}
		if len(payloads) > 0 {
			return NormalizeTracks(payloads)
		}
	}

	return nil
}

// NewClient constructs a chart client, applying defaults for any unset
// configuration value.
func NewClient(cfg config.ChartsConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	requestTimeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = defaultTimeout
	}

	return &Client{
		httpClient:     &http.Client{},
		baseURL:        baseURL,
		language:       language,
		region:         region,
		requestTimeout: requestTimeout,
	}
}

// TopCountryTracks fetches the top tracks chart of one country.
func (c *Client) TopCountryTracks(ctx context.Context, country string, limit int) (*ChartResult, error) {
	path := fmt.Sprintf("/shazam/v3/%s/%s/web/-/tracks/ip-country-chart-%s", c.language, c.region, country)

	var result ChartResult
	if err := c.getJSON(ctx, "top_country_tracks", path, pageQuery(limit), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// TopWorldTracks fetches the global top tracks chart.
func (c *Client) TopWorldTracks(ctx context.Context, limit int) (*ChartResult, error) {
	path := fmt.Sprintf("/shazam/v3/%s/%s/web/-/tracks/ip-global-chart", c.language, c.region)

	var result ChartResult
	if err := c.getJSON(ctx, "top_world_tracks", path, pageQuery(limit), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// TopCountryGenreTracks fetches the top tracks chart of one genre within a
// country.
func (c *Client) TopCountryGenreTracks(ctx context.Context, country string, genre Genre, limit int) (*ChartResult, error) {
	path := fmt.Sprintf("/shazam/v3/%s/%s/web/-/tracks/genre-country-chart-%s-%s", c.language, c.region, country, genre)

	var result ChartResult
	if err := c.getJSON(ctx, "top_country_genre_tracks", path, pageQuery(limit), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SearchTracks searches songs by free-text query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) (*SearchResult, error) {
	path := fmt.Sprintf("/services/search/v2/%s/%s/web/search", c.language, c.region)
	values := url.Values{
		"term":   {query},
		"limit":  {strconv.Itoa(limit)},
		"offset": {"0"},
		"types":  {"songs"},
	}

	var result SearchResult
	if err := c.getJSON(ctx, "search_tracks", path, values, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// pageQuery builds the paging parameters of the chart endpoints. The limit
// is forwarded verbatim as the page size.
func pageQuery(limit int) url.Values {
	return url.Values{
		"pageSize":  {strconv.Itoa(limit)},
		"startFrom": {"0"},
	}
}

func (c *Client) getJSON(ctx context.Context, operation string, path string, values url.Values, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := chartsLogger().With("operation", operation)
	startedAt := time.Now()
	log.Debug("chart request started")

	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		log.Debug("chart request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		log.Debug("chart request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "status", response.StatusCode)
		return fmt.Errorf("%s request returned status %d", operation, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		log.Debug("chart request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("decode %s response: %w", operation, err)
	}

	log.Debug("chart request completed", "duration_ms", time.Since(startedAt).Milliseconds())
	return nil
}

func chartsLogger() *slog.Logger {
	return slog.Default().With("component", "charts.client")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}
