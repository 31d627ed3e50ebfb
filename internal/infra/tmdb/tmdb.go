package infra_tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/humanbelnik/kinoreco/internal/config"
	"github.com/humanbelnik/kinoreco/internal/model"
)

// Client talks to the TMDB-style metadata API: paginated listing queries
// plus per-item detail and watch-provider queries. Every request carries
// the client timeout so one slow call cannot stall a refresh cycle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(cfg config.Metadata) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

type listResponse struct {
	Results []struct {
		ID           int     `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
		VoteAverage  float64 `json:"vote_average"`
		Overview     string  `json:"overview"`
	} `json:"results"`
}

type detailResponse struct {
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type watchProvidersResponse struct {
	Results map[string]struct {
		Flatrate []struct {
			ProviderName string `json:"provider_name"`
		} `json:"flatrate"`
	} `json:"results"`
}

// List fetches one page of a listing query. Trending lists live under
// /trending/{media}/{window}; everything else under /{media}/{list}.
func (c *Client) List(ctx context.Context, media, list string, page int) ([]model.ProviderItem, error) {
	var path string
	if window, ok := strings.CutPrefix(list, "trending/"); ok {
		path = fmt.Sprintf("/trending/%s/%s", media, window)
	} else {
		path = fmt.Sprintf("/%s/%s", media, list)
	}

	var resp listResponse
	if err := c.get(ctx, path, url.Values{"page": {strconv.Itoa(page)}}, &resp); err != nil {
		return nil, err
	}

	items := make([]model.ProviderItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = r.Name
		}
		releaseDate := r.ReleaseDate
		if releaseDate == "" {
			releaseDate = r.FirstAirDate
		}
		items = append(items, model.ProviderItem{
			ID:          r.ID,
			Title:       title,
			ReleaseDate: releaseDate,
			Rating:      r.VoteAverage,
			Overview:    r.Overview,
		})
	}
	return items, nil
}

func (c *Client) Genres(ctx context.Context, media string, id int) ([]string, error) {
	var resp detailResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", media, id), nil, &resp); err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Name)
	}
	return genres, nil
}

func (c *Client) WatchProviders(ctx context.Context, media string, id int) ([]string, error) {
	var resp watchProvidersResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/watch/providers", media, id), nil, &resp); err != nil {
		return nil, err
	}

	region, ok := resp.Results["US"]
	if !ok {
		return nil, nil
	}

	providers := make([]string, 0, len(region.Flatrate))
	for _, p := range region.Flatrate {
		providers = append(providers, p.ProviderName)
	}
	return providers, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
