// Package aggregator assembles the recommendation catalog from the
// metadata provider's listing queries.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/humanbelnik/kinoreco/internal/model"
)

// ErrAllSourcesFailed is returned when every listing query failed. The
// resolver falls back to cached content on it; it exists so that "provider
// down" is distinguishable from "provider returned nothing".
var ErrAllSourcesFailed = errors.New("all listing queries failed")

// OverviewLimit caps stored descriptions to keep the snapshot small.
const OverviewLimit = 200

//go:generate mockery --name=MetadataProvider --output=./mocks/provider --filename=provider.go
type MetadataProvider interface {
	List(ctx context.Context, media, list string, page int) ([]model.ProviderItem, error)
	Genres(ctx context.Context, media string, id int) ([]string, error)
	WatchProviders(ctx context.Context, media string, id int) ([]string, error)
}

// Query names one upstream listing endpoint.
type Query struct {
	Media string
	List  string
}

func defaultQueries() []Query {
	return []Query{
		{Media: "movie", List: "trending/day"},
		{Media: "movie", List: "trending/week"},
		{Media: "movie", List: "popular"},
		{Media: "movie", List: "top_rated"},
		{Media: "movie", List: "now_playing"},
		{Media: "tv", List: "trending/day"},
		{Media: "tv", List: "trending/week"},
		{Media: "tv", List: "popular"},
		{Media: "tv", List: "top_rated"},
		{Media: "tv", List: "on_the_air"},
	}
}

type Aggregator struct {
	provider MetadataProvider
	queries  []Query
	pages    int

	logger *slog.Logger
}

type Option func(*Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

func WithQueries(queries []Query) Option {
	return func(a *Aggregator) {
		a.queries = queries
	}
}

func WithPages(pages int) Option {
	return func(a *Aggregator) {
		if pages > 0 {
			a.pages = pages
		}
	}
}

func New(provider MetadataProvider, opts ...Option) *Aggregator {
	a := &Aggregator{
		provider: provider,
		queries:  defaultQueries(),
		pages:    3,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// seenKey identifies a raw item within one aggregation run. Provider ids
// are only unique per media type (movie 603 and tv 603 are different
// titles), so the media name is part of the key.
type seenKey struct {
	media string
	id    int
}

// Aggregate runs every configured listing query, dedups raw items by
// (media, provider id) within this run, enriches each surviving item with
// genres and availability, and returns the catalog in uniformly shuffled
// order.
//
// A failed listing query is logged and skipped; a failed detail call
// degrades that item to empty lists. Only the total loss of every listing
// query is reported, as ErrAllSourcesFailed.
func (a *Aggregator) Aggregate(ctx context.Context) ([]model.Content, error) {
	seen := make(map[seenKey]struct{})
	out := make([]model.Content, 0, 256)

	calls, failures := 0, 0
	for _, q := range a.queries {
		for page := 1; page <= a.pages; page++ {
			calls++
			items, err := a.provider.List(ctx, q.Media, q.List, page)
			if err != nil {
				failures++
				a.logger.Warn("listing query failed",
					slog.String("media", q.Media),
					slog.String("list", q.List),
					slog.Int("page", page),
					slog.String("error", err.Error()),
				)
				continue
			}

			for _, item := range items {
				key := seenKey{media: q.Media, id: item.ID}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				out = append(out, a.assemble(ctx, q.Media, item))
			}
		}
	}

	if failures == calls {
		return nil, fmt.Errorf("%w: %d queries", ErrAllSourcesFailed, calls)
	}

	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out, nil
}

func (a *Aggregator) assemble(ctx context.Context, media string, item model.ProviderItem) model.Content {
	genres, err := a.provider.Genres(ctx, media, item.ID)
	if err != nil {
		a.logger.Warn("genre detail failed, degrading",
			slog.String("title", item.Title),
			slog.String("error", err.Error()),
		)
		genres = nil
	}

	providers, err := a.provider.WatchProviders(ctx, media, item.ID)
	if err != nil {
		a.logger.Warn("watch provider detail failed, degrading",
			slog.String("title", item.Title),
			slog.String("error", err.Error()),
		)
		providers = nil
	}

	return model.Content{
		Title:        item.Title,
		Year:         releaseYear(item.ReleaseDate),
		Rating:       item.Rating,
		Genres:       genres,
		Overview:     truncate(item.Overview, OverviewLimit),
		WhereToWatch: providers,
	}
}

func releaseYear(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	return releaseDate[:4]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
