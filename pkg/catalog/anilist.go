package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
)

const (
	// DefaultURL is the AniList GraphQL endpoint
	DefaultURL = "https://graphql.anilist.co"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 60 * time.Second

	// DefaultRate stays under the public limit of 90 requests per minute
	DefaultRate = 1.5
)

// AniListClient is a rate-limited GraphQL client for the AniList API
type AniListClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	url        string
	log        *slog.Logger
}

// ClientOption configures an AniListClient
type ClientOption func(*AniListClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AniListClient) {
		c.httpClient = hc
	}
}

// WithURL points the client at another endpoint (for testing)
func WithURL(url string) ClientOption {
	return func(c *AniListClient) {
		c.url = url
	}
}

// WithRate sets the sustained request rate in requests per second
func WithRate(perSecond float64) ClientOption {
	return func(c *AniListClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *AniListClient) {
		c.httpClient.Timeout = d
	}
}

// NewAniListClient creates a client with the default endpoint, timeout and
// rate limit
func NewAniListClient(opts ...ClientOption) *AniListClient {
	c := &AniListClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
		url:        DefaultURL,
		log:        logging.New("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("anilist", c.log)
	return c
}

func newBreaker(name string, log *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A missing item is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || IsNotFound(err)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query runs one GraphQL request and decodes its data member into out
func (c *AniListClient) query(ctx context.Context, op, query string, vars map[string]any, out any) error {
	start := time.Now()
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, op, query, vars)
	})
	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CatalogRequests.WithLabelValues(op, "success").Inc()
	case IsNotFound(err):
		metrics.CatalogRequests.WithLabelValues(op, "not_found").Inc()
		return err
	default:
		metrics.CatalogRequests.WithLabelValues(op, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrInvalidResponse, op, err)
	}
	return nil
}

func (c *AniListClient) post(ctx context.Context, op, query string, vars map[string]any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug("catalog request", "operation", op, "variables", vars)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	if err := checkErrors(op, resp.StatusCode, envelope.Errors); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, decodeErr)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}
	return envelope.Data, nil
}

// checkErrors maps HTTP status and GraphQL errors onto catalog errors.
// AniList reports a missing item as a 404 with a "Not Found." error.
func checkErrors(op string, status int, gqlErrors []graphQLError) error {
	for _, e := range gqlErrors {
		if e.Status == http.StatusNotFound || strings.Contains(strings.ToLower(e.Message), "not found") {
			return fmt.Errorf("%w: %s", ErrNotFound, e.Message)
		}
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", ErrNotFound, status)
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, status)
	}
	if status != http.StatusOK {
		msg := fmt.Sprintf("unexpected response status code: %d", status)
		if len(gqlErrors) > 0 {
			msg = gqlErrors[0].Message
		}
		return &APIError{StatusCode: status, Message: msg, Operation: op}
	}
	if len(gqlErrors) > 0 {
		messages := make([]string, len(gqlErrors))
		for i, e := range gqlErrors {
			messages[i] = e.Message
		}
		return &APIError{StatusCode: status, Message: strings.Join(messages, "; "), Operation: op}
	}
	return nil
}

// FetchMedia fetches one item with its recommendations
func (c *AniListClient) FetchMedia(ctx context.Context, id int64) (*model.Media, error) {
	var data struct {
		Media *model.Media `json:"Media"`
	}
	if err := c.query(ctx, "media", mediaQuery, map[string]any{"mediaId": id}, &data); err != nil {
		return nil, fmt.Errorf("fetching media %d: %w", id, err)
	}
	if data.Media == nil {
		return nil, fmt.Errorf("fetching media %d: %w", id, ErrNotFound)
	}
	return data.Media, nil
}

// SearchMedia returns the first page of items matching query
func (c *AniListClient) SearchMedia(ctx context.Context, query string, t model.MediaType) (*model.SearchPage, error) {
	mediaType, err := model.ParseMediaType(string(t))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, t)
	}

	var data struct {
		Page *model.SearchPage `json:"Page"`
	}
	vars := map[string]any{
		"search":  query,
		"page":    1,
		"perPage": SearchPageSize,
		"type":    string(mediaType),
	}
	if err := c.query(ctx, "search", searchQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	if data.Page == nil {
		return &model.SearchPage{}, nil
	}
	return data.Page, nil
}

// FetchUserList fetches the anime list and the manga list of username and
// returns them as one collection, anime groups first
func (c *AniListClient) FetchUserList(ctx context.Context, username string) (*model.MediaListCollection, error) {
	combined := &model.MediaListCollection{}
	for _, t := range []model.MediaType{model.MediaTypeAnime, model.MediaTypeManga} {
		var data struct {
			Collection *model.MediaListCollection `json:"MediaListCollection"`
		}
		vars := map[string]any{"userName": username, "type": string(t)}
		if err := c.query(ctx, "user", userQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("fetching %s list of %q: %w", strings.ToLower(string(t)), username, err)
		}
		combined.Merge(data.Collection)
	}
	return combined, nil
}
