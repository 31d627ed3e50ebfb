//go:build !integration
// +build !integration

package usecase_recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	infra_s3 "github.com/humanbelnik/kinoreco/internal/infra/s3"
	"github.com/humanbelnik/kinoreco/internal/model"
	"github.com/humanbelnik/kinoreco/internal/service/snapshot"
	storage_catalog "github.com/humanbelnik/kinoreco/internal/storage/catalog"
	aggregator_mocks "github.com/humanbelnik/kinoreco/internal/usecase/recommend/mocks/aggregator"
	blob_mocks "github.com/humanbelnik/kinoreco/internal/usecase/recommend/mocks/blob"
)

type UsecaseRecommendUnitSuite struct {
	suite.Suite
}

func TestUsecaseRecommendUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRecommendUnitSuite))
}

type resources struct {
	usecase    *Usecase
	aggregator *aggregator_mocks.Aggregator
	blobs      *blob_mocks.BlobRepository
	catalog    *storage_catalog.Storage
	ctx        context.Context
}

func initResources(t provider.T) *resources {
	aggregator := aggregator_mocks.NewAggregator(t)
	blobs := blob_mocks.NewBlobRepository(t)
	catalog := storage_catalog.New(12 * time.Hour)
	usecase := New(aggregator, catalog, blobs, WithBackoffBase(0))

	return &resources{
		usecase:    usecase,
		aggregator: aggregator,
		blobs:      blobs,
		catalog:    catalog,
		ctx:        context.Background(),
	}
}

type ContentBuilder struct {
	count  int
	genres []string
	rating float64
}

func NewContentBuilder() *ContentBuilder {
	return &ContentBuilder{
		count:  40,
		genres: []string{"Action"},
		rating: 7.5,
	}
}

func (b *ContentBuilder) WithCount(count int) *ContentBuilder {
	b.count = count
	return b
}

func (b *ContentBuilder) WithGenres(genres ...string) *ContentBuilder {
	b.genres = genres
	return b
}

func (b *ContentBuilder) WithRating(rating float64) *ContentBuilder {
	b.rating = rating
	return b
}

func (b *ContentBuilder) Build() []model.Content {
	out := make([]model.Content, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, model.Content{
			Title:  fmt.Sprintf("Title %03d %v", i, b.genres),
			Year:   "2024",
			Rating: b.rating,
			Genres: b.genres,
		})
	}
	return out
}

func titlesOf(content []model.Content) map[string]struct{} {
	out := make(map[string]struct{}, len(content))
	for _, c := range content {
		out[c.Title] = struct{}{}
	}
	return out
}

func (suite *UsecaseRecommendUnitSuite) TestFilteringProperties(t provider.T) {
	t.Parallel()

	r := initResources(t)
	catalog := append(
		append(NewContentBuilder().WithCount(10).WithGenres("Action", "Thriller").WithRating(8).Build(),
			NewContentBuilder().WithCount(10).WithGenres("Action").WithRating(4).Build()...),
		NewContentBuilder().WithCount(10).WithGenres("Romance").WithRating(9).Build()...)
	r.catalog.Replace(catalog)

	got, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action"},
		MinimumRating:  7,
	})

	assert.NoError(t, err)
	assert.Len(t, got, 10)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Rating, 7.0)
		assert.Contains(t, c.Genres, "Action")
	}
}

func (suite *UsecaseRecommendUnitSuite) TestEmptyFavoriteGenresMatchNothing(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Replace(NewContentBuilder().Build())

	got, err := r.usecase.Recommend(r.ctx, model.UserPreferences{MinimumRating: 0})

	assert.NoError(t, err)
	assert.Empty(t, got)
}

func (suite *UsecaseRecommendUnitSuite) TestRotationAvoidsRepeatsUntilExhaustion(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Replace(NewContentBuilder().WithCount(40).Build())
	prefs := model.UserPreferences{FavoriteGenres: []string{"Action"}, MinimumRating: 5}

	first, err := r.usecase.Recommend(r.ctx, prefs)
	assert.NoError(t, err)
	assert.Len(t, first, 20)

	second, err := r.usecase.Recommend(r.ctx, prefs)
	assert.NoError(t, err)
	assert.Len(t, second, 20)

	firstTitles, secondTitles := titlesOf(first), titlesOf(second)
	for title := range secondTitles {
		assert.NotContains(t, firstTitles, title)
	}

	// Pool is now exhausted; rotation resets and repeats become possible.
	third, err := r.usecase.Recommend(r.ctx, prefs)
	assert.NoError(t, err)
	assert.Len(t, third, 20)
}

func (suite *UsecaseRecommendUnitSuite) TestExhaustionResetWithSmallPool(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Replace(NewContentBuilder().WithCount(5).Build())
	prefs := model.UserPreferences{FavoriteGenres: []string{"Action"}, MinimumRating: 5}

	for i := 0; i < 3; i++ {
		got, err := r.usecase.Recommend(r.ctx, prefs)
		assert.NoError(t, err)
		assert.Len(t, got, 5)
	}
}

func (suite *UsecaseRecommendUnitSuite) TestRotationSharedAcrossGenreOrderings(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Replace(NewContentBuilder().WithCount(40).WithGenres("Action", "Comedy").Build())

	first, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action", "Comedy"},
		MinimumRating:  5,
	})
	assert.NoError(t, err)

	second, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Comedy", "Action"},
		MinimumRating:  5,
	})
	assert.NoError(t, err)

	firstTitles := titlesOf(first)
	for _, c := range second {
		assert.NotContains(t, firstTitles, c.Title)
	}
}

func (suite *UsecaseRecommendUnitSuite) TestServesStaleCatalogWhenAggregationFails(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Restore(model.Snapshot{
		Content:     NewContentBuilder().WithCount(15).Build(),
		LastUpdated: time.Now().Add(-24 * time.Hour),
	})

	r.aggregator.On("Aggregate", mock.Anything).Return(nil, errors.New("provider down")).Once()

	got, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action"},
		MinimumRating:  5,
	})

	assert.NoError(t, err)
	assert.Len(t, got, 15)
}

func (suite *UsecaseRecommendUnitSuite) TestEmptyCacheAndFailedAggregationYieldEmptyResult(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.aggregator.On("Aggregate", mock.Anything).Return(nil, errors.New("provider down")).Once()

	got, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action"},
		MinimumRating:  5,
	})

	assert.NoError(t, err)
	assert.Empty(t, got)
}

func (suite *UsecaseRecommendUnitSuite) TestRecommendRefreshesStaleCatalogAndPersists(t provider.T) {
	t.Parallel()

	r := initResources(t)
	fresh := NewContentBuilder().WithCount(25).Build()
	r.aggregator.On("Aggregate", mock.Anything).Return(fresh, nil).Once()
	r.blobs.On("Put", mock.Anything, defaultSnapshotKey, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	got, err := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action"},
		MinimumRating:  5,
	})
	r.usecase.Wait()

	assert.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, 25, r.catalog.Len())
}

func (suite *UsecaseRecommendUnitSuite) TestRefreshSurvivesPersistFailure(t provider.T) {
	t.Parallel()

	r := initResources(t)
	fresh := NewContentBuilder().WithCount(30).Build()
	r.aggregator.On("Aggregate", mock.Anything).Return(fresh, nil).Once()
	// Initial write plus persistRetries re-attempts before giving up.
	r.blobs.On("Put", mock.Anything, defaultSnapshotKey, mock.Anything).
		Return(errors.New("storage outage")).Times(persistRetries + 1)

	err := r.usecase.Refresh(r.ctx)
	assert.ErrorIs(t, err, ErrFailedToPersist)

	// In-memory state stays authoritative: recommendations still work
	// without another aggregation.
	got, rerr := r.usecase.Recommend(r.ctx, model.UserPreferences{
		FavoriteGenres: []string{"Action"},
		MinimumRating:  5,
	})
	assert.NoError(t, rerr)
	assert.Len(t, got, 20)
}

func (suite *UsecaseRecommendUnitSuite) TestRefreshClearsRotation(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.catalog.Replace(NewContentBuilder().WithCount(40).Build())
	prefs := model.UserPreferences{FavoriteGenres: []string{"Action"}, MinimumRating: 5}

	_, err := r.usecase.Recommend(r.ctx, prefs)
	assert.NoError(t, err)
	assert.NotEmpty(t, r.catalog.Shown(prefs.BuildUserKey()))

	r.aggregator.On("Aggregate", mock.Anything).Return(NewContentBuilder().WithCount(40).Build(), nil).Once()
	r.blobs.On("Put", mock.Anything, defaultSnapshotKey, mock.Anything).Return(nil).Once()

	assert.NoError(t, r.usecase.Refresh(r.ctx))
	assert.Empty(t, r.catalog.Shown(prefs.BuildUserKey()))
}

func (suite *UsecaseRecommendUnitSuite) TestRestoreFromSnapshot(t provider.T) {
	t.Parallel()

	r := initResources(t)
	key := model.UserPreferences{FavoriteGenres: []string{"Action"}, MinimumRating: 5}.BuildUserKey()
	data, err := snapshot.Encode(model.Snapshot{
		Content:     NewContentBuilder().WithCount(12).Build(),
		Rotation:    map[model.UserKey][]string{key: {"Title 000 [Action]"}},
		LastUpdated: time.Now().UTC(),
	})
	assert.NoError(t, err)

	r.blobs.On("Get", mock.Anything, defaultSnapshotKey).Return(data, nil).Once()

	assert.NoError(t, r.usecase.Restore(r.ctx))
	assert.Equal(t, 12, r.catalog.Len())
	assert.Len(t, r.catalog.Shown(key), 1)
}

func (suite *UsecaseRecommendUnitSuite) TestRestoreMissingSnapshotAggregatesFresh(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.blobs.On("Get", mock.Anything, defaultSnapshotKey).
		Return(nil, fmt.Errorf("%w: %s", infra_s3.ErrNotFound, defaultSnapshotKey)).Once()
	r.aggregator.On("Aggregate", mock.Anything).Return(NewContentBuilder().WithCount(8).Build(), nil).Once()
	r.blobs.On("Put", mock.Anything, defaultSnapshotKey, mock.Anything).Return(nil).Once()

	assert.NoError(t, r.usecase.Restore(r.ctx))
	assert.Equal(t, 8, r.catalog.Len())
}

func (suite *UsecaseRecommendUnitSuite) TestRestoreCorruptSnapshotAggregatesFresh(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.blobs.On("Get", mock.Anything, defaultSnapshotKey).
		Return([]byte("not a gzip stream"), nil).Once()
	r.aggregator.On("Aggregate", mock.Anything).Return(NewContentBuilder().WithCount(8).Build(), nil).Once()
	r.blobs.On("Put", mock.Anything, defaultSnapshotKey, mock.Anything).Return(nil).Once()

	assert.NoError(t, r.usecase.Restore(r.ctx))
	assert.Equal(t, 8, r.catalog.Len())
}
