// Package tmdb is a rate-limited client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"

	defaultTimeout = 30 * time.Second
	defaultRPS     = 20.0
	defaultBurst   = 10
	userAgent      = "Cinelist/1.0"
)

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	APIKey            string
	BaseURL           string
	Language          string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client implements domain.CatalogRepository for TMDB
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ domain.CatalogRepository = (*Client)(nil)

// NewClient creates a new TMDB API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// doRequest performs a rate-limited, authenticated GET request
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, domain.ErrMovieNotFound
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	default:
		var status statusResponse
		_ = json.Unmarshal(body, &status)
		c.logger.Error("tmdb request error", "status", resp.StatusCode, "message", status.StatusMessage)
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", domain.ErrServerOffline, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// GetMovieDetails returns the full detail record for a movie
func (c *Client) GetMovieDetails(ctx context.Context, id int) (*domain.MovieDetail, error) {
	if id <= 0 {
		return nil, wrapError("getMovie", id, domain.ErrInvalidMovieID)
	}

	body, err := c.doRequest(ctx, "/movie/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, wrapError("getMovie", id, err)
	}

	var resp MovieResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getMovie", id, fmt.Errorf("failed to parse response: %w", err))
	}
	if resp.ID == 0 {
		resp.ID = id
	}
	return MapMovie(&resp), nil
}

// SearchMovies returns the first page of title matches
func (c *Client) SearchMovies(ctx context.Context, query string) ([]domain.MovieStub, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	body, err := c.doRequest(ctx, "/search/movie", url.Values{"query": {query}})
	if err != nil {
		return nil, wrapError("search", 0, err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", 0, fmt.Errorf("failed to parse response: %w", err))
	}
	return MapSearchResults(resp.Results), nil
}

// VerifyKey checks the API key against the authentication endpoint
func (c *Client) VerifyKey(ctx context.Context) error {
	if _, err := c.doRequest(ctx, "/authentication", nil); err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			err = fmt.Errorf("unexpected endpoint response: %w", err)
		}
		return wrapError("verify", 0, err)
	}
	return nil
}

// MovieURL returns the public web page of a movie
func MovieURL(id int) string {
	return "https://www.themoviedb.org/movie/" + strconv.Itoa(id)
}
