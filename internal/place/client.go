// Package place searches for places by keyword through the Kakao Local API.
package place

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/gbsb/tripmate/internal/domain"
)

const (
	// DefaultBaseURL is the Kakao API host.
	DefaultBaseURL = "https://dapi.kakao.com"

	// Kakao rejects pages and sizes outside these bounds.
	MaxPage = 45
	MaxSize = 15

	keywordPath = "/v2/local/search/keyword.json"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	RPS     float64
	Burst   int

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client calls the keyword search endpoint. Outbound calls are throttled by a
// token bucket shared by every caller of the Client. Failed calls are not retried.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
	}
}

// Search returns one page of places matching query.
//
// Caller mistakes yield domain.ErrInvalidRequest or domain.ErrFailEncoding;
// a query with no match yields domain.ErrInvalidAddress. Any failure of the
// remote API itself, including a response that cannot be parsed, yields
// domain.ErrPlaceSearchUnavailable.
func (c *Client) Search(ctx context.Context, query string, page, size int) (domain.PlacePage, error) {
	if err := validate(query, page, size); err != nil {
		return domain.PlacePage{}, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PlacePage{}, fmt.Errorf("place.Client.Search: rate limit wait: %w", err)
	}

	body, err := c.get(ctx, query, page, size)
	if err != nil {
		return domain.PlacePage{}, fmt.Errorf("place.Client.Search: %w", err)
	}

	result, err := parsePage(body)
	if err != nil {
		return domain.PlacePage{}, fmt.Errorf("place.Client.Search: %w", err)
	}
	return result, nil
}

func validate(query string, page, size int) error {
	if !utf8.ValidString(query) {
		return domain.ErrFailEncoding
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}
	if page < 1 || page > MaxPage {
		return fmt.Errorf("page must be between 1 and %d: %w", MaxPage, domain.ErrInvalidRequest)
	}
	if size < 1 || size > MaxSize {
		return fmt.Errorf("size must be between 1 and %d: %w", MaxSize, domain.ErrInvalidRequest)
	}
	return nil
}

func (c *Client) get(ctx context.Context, query string, page, size int) ([]byte, error) {
	q := url.Values{}
	q.Set("query", strings.TrimSpace(query))
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+keywordPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "place search request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPlaceSearchUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrPlaceSearchUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "place search rejected", "status", resp.StatusCode,
			"message", gjson.GetBytes(body, "message").String())
		return nil, fmt.Errorf("%w: status %d", domain.ErrPlaceSearchUnavailable, resp.StatusCode)
	}
	return body, nil
}

// parsePage maps a keyword search response onto domain.PlacePage. Kakao sends
// id, x and y as strings; gjson converts them. A body that is not a keyword
// search response is the provider's fault, not the caller's.
func parsePage(body []byte) (domain.PlacePage, error) {
	if !gjson.ValidBytes(body) {
		return domain.PlacePage{}, fmt.Errorf("%w: malformed response body", domain.ErrPlaceSearchUnavailable)
	}
	root := gjson.ParseBytes(body)
	docs := root.Get("documents")
	if !docs.IsArray() {
		return domain.PlacePage{}, fmt.Errorf("%w: response has no documents", domain.ErrPlaceSearchUnavailable)
	}

	items := docs.Array()
	if len(items) == 0 {
		return domain.PlacePage{}, domain.ErrInvalidAddress
	}

	places := make([]domain.Place, 0, len(items))
	for _, d := range items {
		places = append(places, domain.Place{
			ID:              d.Get("id").Int(),
			AddressName:     d.Get("address_name").String(),
			RoadAddressName: d.Get("road_address_name").String(),
			PlaceName:       d.Get("place_name").String(),
			Phone:           d.Get("phone").String(),
			PlaceURL:        d.Get("place_url").String(),
			X:               d.Get("x").Float(),
			Y:               d.Get("y").Float(),
		})
	}

	meta := root.Get("meta")
	return domain.PlacePage{
		Places:        places,
		TotalCount:    meta.Get("total_count").Int(),
		PageableCount: meta.Get("pageable_count").Int(),
		IsEnd:         meta.Get("is_end").Bool(),
	}, nil
}
