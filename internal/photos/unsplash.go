// Package photos fetches gallery pages from the Unsplash API and falls back
// to generated placeholders whenever the API cannot serve them.
package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"
	DefaultPerPage = 12
	DefaultOrder   = "latest"
	maxPerPage     = 30
)

// ListParams selects one page of the photo listing
type ListParams struct {
	Page    int
	PerPage int
	Order   string
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	return p
}

// SearchParams selects one page of a free-text search
type SearchParams struct {
	Query string
	ListParams
}

// Source is a paginated photo API.
type Source interface {
	List(ctx context.Context, p ListParams) (models.PhotoPage, error)
	Search(ctx context.Context, p SearchParams) (models.PhotoPage, error)
}

// APIError is a non-2xx answer from the photo API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unsplash: status %d: %s", e.StatusCode, e.Body)
}

// UnsplashClient implements Source against api.unsplash.com.
type UnsplashClient struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	limiter    *rate.Limiter
}

// UnsplashOption configures an UnsplashClient
type UnsplashOption func(*UnsplashClient)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) UnsplashOption {
	return func(c *UnsplashClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) UnsplashOption {
	return func(c *UnsplashClient) { c.httpClient = h }
}

// WithRateLimit replaces the request limiter.
func WithRateLimit(l *rate.Limiter) UnsplashOption {
	return func(c *UnsplashClient) { c.limiter = l }
}

// NewUnsplashClient creates a client authenticated with an access key. The
// default limiter allows one request per second with bursts of five.
func NewUnsplashClient(accessKey string, opts ...UnsplashOption) *UnsplashClient {
	c := &UnsplashClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		accessKey:  accessKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type unsplashPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
	Likes          int     `json:"likes"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

func (p unsplashPhoto) toModel() models.Photo {
	photo := models.Photo{
		ID: p.ID,
		URLs: models.PhotoURLs{
			Small:   p.URLs.Small,
			Regular: p.URLs.Regular,
			Thumb:   p.URLs.Thumb,
		},
		Author:         p.User.Name,
		AuthorUsername: p.User.Username,
		Likes:          p.Likes,
		Width:          p.Width,
		Height:         p.Height,
	}
	switch {
	case p.Description != nil && *p.Description != "":
		photo.Description = *p.Description
	case p.AltDescription != nil:
		photo.Description = *p.AltDescription
	}
	return photo
}

type unsplashSearchResult struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []unsplashPhoto `json:"results"`
}

// List fetches GET /photos. Another page is assumed while pages come back
// non-empty.
func (c *UnsplashClient) List(ctx context.Context, p ListParams) (models.PhotoPage, error) {
	p = p.normalized()
	var raw []unsplashPhoto
	if err := c.get(ctx, "/photos", pageValues(p), &raw); err != nil {
		return models.PhotoPage{}, err
	}
	page := models.PhotoPage{Photos: toModels(raw), Page: p.Page, PerPage: p.PerPage}
	if len(raw) > 0 {
		page.NextPage = p.Page + 1
	}
	return page, nil
}

// Search fetches GET /search/photos.
func (c *UnsplashClient) Search(ctx context.Context, p SearchParams) (models.PhotoPage, error) {
	p.ListParams = p.ListParams.normalized()
	values := pageValues(p.ListParams)
	values.Set("query", p.Query)

	var raw unsplashSearchResult
	if err := c.get(ctx, "/search/photos", values, &raw); err != nil {
		return models.PhotoPage{}, err
	}
	page := models.PhotoPage{
		Photos:     toModels(raw.Results),
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: raw.TotalPages,
		Total:      raw.Total,
	}
	if raw.TotalPages > p.Page {
		page.NextPage = p.Page + 1
	}
	return page, nil
}

func pageValues(p ListParams) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("per_page", strconv.Itoa(p.PerPage))
	values.Set("order_by", p.Order)
	return values
}

func toModels(raw []unsplashPhoto) []models.Photo {
	out := make([]models.Photo, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toModel())
	}
	return out
}

func (c *UnsplashClient) get(ctx context.Context, path string, values url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("unsplash: rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("unsplash: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unsplash: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unsplash: decode %s: %w", path, err)
	}
	return nil
}
