package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/prospect-dedup/internal/address"
)

// ClientConfig configures the Nominatim lookup client
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RateLimit rate.Limit
}

// Client queries the Nominatim search API. Calls are rate limited to honor
// the service's usage policy and carry the configured identifying user agent.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Nominatim client. The identifying user agent is
// mandatory; a missing one fails here, before any batch work starts.
func NewClient(config ClientConfig) (*Client, error) {
	if config.UserAgent == "" {
		return nil, ErrMissingUserAgent
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(time.Second)
	}

	return &Client{
		baseURL:   config.BaseURL,
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(config.RateLimit, 1),
	}, nil
}

// nominatimPlace mirrors the fields we read from the search response
type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber   string `json:"house_number"`
		Road          string `json:"road"`
		Street        string `json:"street"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		State         string `json:"state"`
		Postcode      string `json:"postcode"`
	} `json:"address"`
}

// Resolve looks up a single address string. It waits for the rate limiter,
// so a cancelled or expired context aborts before the request is sent.
func (c *Client) Resolve(ctx context.Context, query string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &LookupError{Query: query, Err: err}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{Query: query, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{Query: query, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &LookupError{Query: query, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(places) == 0 {
		return nil, &LookupError{Query: query, Err: ErrNoMatch}
	}

	return placeToResult(places[0]), nil
}

// placeToResult maps a Nominatim place onto structured components. City
// falls back through town, village, suburb and neighbourhood, smallest
// plausible settlement first.
func placeToResult(p nominatimPlace) *Result {
	city := p.Address.City
	for _, alt := range []string{p.Address.Town, p.Address.Village, p.Address.Suburb, p.Address.Neighbourhood} {
		if city != "" {
			break
		}
		city = alt
	}

	street := p.Address.Road
	if street == "" {
		street = p.Address.Street
	}

	return &Result{
		DisplayName: p.DisplayName,
		Components: address.ParsedAddress{
			HouseNumber: p.Address.HouseNumber,
			Street:      street,
			City:        city,
			State:       p.Address.State,
			Zip:         p.Address.Postcode,
		},
	}
}
