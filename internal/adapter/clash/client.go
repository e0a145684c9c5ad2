package clash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iho/legendtrack/internal/domain"
)

// legendLeagueID is the Legend League identifier in the Clash of Clans API.
const legendLeagueID = 29000022

// Config holds Client settings.
type Config struct {
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	RequestsPS float64
	MaxRetries uint64
}

// Client implements usecase.SnapshotSource against the Clash of Clans
// player API. All requests pass through a shared rate limiter so the batch
// poller cannot exceed the upstream quota.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	logger     zerolog.Logger
}

// NewClient creates a new Client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	rps := cfg.RequestsPS
	if rps <= 0 {
		rps = 10
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

type playerResponse struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Trophies int    `json:"trophies"`
	Clan     *struct {
		Name string `json:"name"`
	} `json:"clan"`
	League *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
}

// Fetch retrieves the current upstream state of a player. The tag may be
// passed with or without the leading '#'.
func (c *Client) Fetch(ctx context.Context, tag string) (*domain.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/players/%s", c.baseURL, url.PathEscape("#"+domain.NormalizeTag(tag)))

	var snapshot *domain.Snapshot

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		upstreamDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			upstreamRequests.WithLabelValues("network_error").Inc()
			// Network errors are worth one more attempt.
			return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()

		upstreamRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(domain.ErrUpstreamNotFound)
		case resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(domain.ErrUpstreamForbidden)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode))
		}

		var body playerResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamUnavailable, err))
		}

		snapshot = toSnapshot(&body)

		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx))
	if err != nil {
		c.logger.Debug().Err(err).Str("tag", tag).Msg("player fetch failed")
		return nil, err
	}

	return snapshot, nil
}

func toSnapshot(body *playerResponse) *domain.Snapshot {
	clanName := "No Clan"
	if body.Clan != nil && body.Clan.Name != "" {
		clanName = body.Clan.Name
	}

	// The proxy occasionally reports renamed league IDs; the name check
	// keeps those players tracked.
	inLegend := body.League != nil &&
		(body.League.ID == legendLeagueID || strings.Contains(body.League.Name, "Legend"))

	return &domain.Snapshot{
		Tag:            domain.NormalizeTag(body.Tag),
		Name:           body.Name,
		ClanName:       clanName,
		Trophies:       body.Trophies,
		InLegendLeague: inLegend,
	}
}
