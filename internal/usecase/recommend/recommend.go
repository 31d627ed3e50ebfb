package usecase_recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
	"time"

	infra_s3 "github.com/humanbelnik/kinoreco/internal/infra/s3"
	"github.com/humanbelnik/kinoreco/internal/model"
	"github.com/humanbelnik/kinoreco/internal/service/retry"
	"github.com/humanbelnik/kinoreco/internal/service/snapshot"
)

const (
	// rotationFloor is the exhaustion threshold: when a user's eligible
	// pool drops below it, their rotation resets and repeats are allowed.
	rotationFloor = 10
	// maxResults bounds one response.
	maxResults = 20

	// persistRetries is the number of re-attempts after the initial
	// snapshot write fails; with the 2s base that is 2s, 4s, 8s of
	// backoff before giving up.
	persistRetries     = 3
	defaultBackoffBase = 2 * time.Second
	defaultSnapshotKey = "latest.snapshot.gz"
)

var (
	ErrFailedToAggregate = errors.New("failed to aggregate catalog")
	ErrFailedToPersist   = errors.New("failed to persist snapshot")
)

//go:generate mockery --name=Aggregator --output=./mocks/aggregator --filename=aggregator.go
type Aggregator interface {
	Aggregate(ctx context.Context) ([]model.Content, error)
}

// BlobRepository is the durable object store. Get reports a missing key
// with infra_s3.ErrNotFound.
//
//go:generate mockery --name=BlobRepository --output=./mocks/blob --filename=blob.go
type BlobRepository interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Catalog is the shared in-process cache plus per-user rotation state.
type Catalog interface {
	IsStale() bool
	Read() ([]model.Content, bool)
	Replace(content []model.Content) model.Snapshot
	Restore(snap model.Snapshot)
	Shown(key model.UserKey) map[string]struct{}
	MarkShown(key model.UserKey, titles []string)
	ResetUser(key model.UserKey)
	LastUpdated() time.Time
	Len() int
}

type Usecase struct {
	aggregator Aggregator
	catalog    Catalog
	blobs      BlobRepository

	snapshotKey string
	backoffBase time.Duration

	logger    *slog.Logger
	persistWG sync.WaitGroup
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithBackoffBase overrides the persist retry backoff base (tests).
func WithBackoffBase(base time.Duration) Option {
	return func(u *Usecase) {
		u.backoffBase = base
	}
}

func WithSnapshotKey(key string) Option {
	return func(u *Usecase) {
		u.snapshotKey = key
	}
}

func New(aggregator Aggregator, catalog Catalog, blobs BlobRepository, opts ...Option) *Usecase {
	u := &Usecase{
		aggregator:  aggregator,
		catalog:     catalog,
		blobs:       blobs,
		snapshotKey: defaultSnapshotKey,
		backoffBase: defaultBackoffBase,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Recommend returns up to maxResults catalog entries matching the
// preferences, excluding what the user has already been served. Upstream
// and storage faults degrade the result, they never fail the call; an
// empty list is a valid outcome.
func (u *Usecase) Recommend(ctx context.Context, prefs model.UserPreferences) ([]model.Content, error) {
	key := prefs.BuildUserKey()

	content := u.freshCatalog(ctx)
	candidates := filterByPreferences(content, prefs)

	eligible := excludeShown(candidates, u.catalog.Shown(key))
	if len(eligible) < rotationFloor {
		u.catalog.ResetUser(key)
		eligible = candidates
	}

	eligible = slices.Clone(eligible)
	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	picks := eligible[:min(maxResults, len(eligible))]

	titles := make([]string, 0, len(picks))
	for _, c := range picks {
		titles = append(titles, c.Title)
	}
	u.catalog.MarkShown(key, titles)

	return picks, nil
}

// freshCatalog returns the catalog to recommend from. A fresh cache is
// read as-is; a stale or empty one triggers re-aggregation, falling back
// to whatever is cached when the provider is down.
func (u *Usecase) freshCatalog(ctx context.Context) []model.Content {
	if !u.catalog.IsStale() {
		if content, ok := u.catalog.Read(); ok {
			return content
		}
	}

	content, err := u.aggregator.Aggregate(ctx)
	if err != nil || len(content) == 0 {
		if err != nil {
			u.logger.Warn("aggregation failed, serving cached catalog",
				slog.String("error", err.Error()),
			)
		}
		cached, _ := u.catalog.Read()
		return cached
	}

	snap := u.catalog.Replace(content)
	u.persistAsync(ctx, snap)

	return content
}

// Refresh re-aggregates the catalog and persists the new snapshot. Used
// by the periodic background refresh. A persist failure is reported but
// the already-replaced in-memory catalog stays authoritative.
func (u *Usecase) Refresh(ctx context.Context) error {
	content, err := u.aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToAggregate, err)
	}
	if len(content) == 0 {
		u.logger.Warn("aggregation returned no content, keeping current catalog")
		return nil
	}

	snap := u.catalog.Replace(content)
	return u.persist(ctx, snap)
}

// Restore primes the catalog on cold start. A missing snapshot is the
// expected first-boot path; a corrupt one is logged distinctly. Both fall
// through to a fresh aggregation.
func (u *Usecase) Restore(ctx context.Context) error {
	data, err := u.blobs.Get(ctx, u.snapshotKey)
	switch {
	case err == nil:
		snap, derr := snapshot.Decode(data)
		if derr == nil {
			u.catalog.Restore(snap)
			u.logger.Info("catalog restored from snapshot",
				slog.Int("content", len(snap.Content)),
				slog.Int("rotation_users", len(snap.Rotation)),
			)
			return nil
		}
		u.logger.Error("snapshot is corrupt, re-aggregating",
			slog.String("error", derr.Error()),
		)
	case errors.Is(err, infra_s3.ErrNotFound):
		u.logger.Info("no snapshot yet, aggregating fresh catalog")
	default:
		u.logger.Warn("failed to load snapshot, re-aggregating",
			slog.String("error", err.Error()),
		)
	}

	return u.Refresh(ctx)
}

// Status reports catalog size, refresh clock and staleness.
func (u *Usecase) Status() (int, time.Time, bool) {
	return u.catalog.Len(), u.catalog.LastUpdated(), u.catalog.IsStale()
}

// Wait drains in-flight best-effort snapshot writes (shutdown).
func (u *Usecase) Wait() {
	u.persistWG.Wait()
}

func (u *Usecase) persist(ctx context.Context, snap model.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToPersist, err)
	}

	err = retry.Do(ctx, persistRetries+1, retry.Exponential(u.backoffBase), func(ctx context.Context) error {
		return u.blobs.Put(ctx, u.snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToPersist, err)
	}
	return nil
}

// persistAsync writes the snapshot off the request path. The request
// context may end before the upload does, hence WithoutCancel.
func (u *Usecase) persistAsync(ctx context.Context, snap model.Snapshot) {
	u.persistWG.Add(1)
	go func() {
		defer u.persistWG.Done()
		if err := u.persist(context.WithoutCancel(ctx), snap); err != nil {
			u.logger.Error("best-effort snapshot write failed",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// filterByPreferences keeps entries rated at or above the minimum whose
// genres intersect the favorites. An empty favorite set matches nothing:
// callers get an empty list, not the whole catalog.
func filterByPreferences(content []model.Content, prefs model.UserPreferences) []model.Content {
	out := make([]model.Content, 0, len(content))
	for _, c := range content {
		if c.Rating >= prefs.MinimumRating && intersects(c.Genres, prefs.FavoriteGenres) {
			out = append(out, c)
		}
	}
	return out
}

func intersects(genres, favorites []string) bool {
	for _, g := range genres {
		if slices.Contains(favorites, g) {
			return true
		}
	}
	return false
}

func excludeShown(candidates []model.Content, shown map[string]struct{}) []model.Content {
	if len(shown) == 0 {
		return candidates
	}

	out := make([]model.Content, 0, len(candidates))
	for _, c := range candidates {
		if _, served := shown[c.Title]; served {
			continue
		}
		out = append(out, c)
	}
	return out
}
