package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"advertisement-service/internal/config"
	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/pkg/database"

	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) AdRepository {
	t.Helper()
	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "ads.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLAdRepository(db, config.DriverSQLite, metrics.NewTestRegistry().Repository)
}

func mustCreate(t *testing.T, repo AdRepository, title string, price float64, author string) *domain.Advertisement {
	t.Helper()
	ad, err := repo.CreateAd(context.Background(), &domain.Advertisement{
		Title:     title,
		Price:     price,
		Author:    author,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	return ad
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestCreateAndGetAd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	created, err := repo.CreateAd(ctx, &domain.Advertisement{
		Title:       "Bike",
		Description: strPtr("red, barely used"),
		Price:       100,
		Author:      "A",
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.True(t, created.CreatedAt.Equal(createdAt))

	got, err := repo.GetAdByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Bike", got.Title)
	require.Equal(t, "red, barely used", *got.Description)
	require.Equal(t, 100.0, got.Price)
	require.Equal(t, "A", got.Author)
	require.True(t, got.CreatedAt.Equal(createdAt))
}

func TestGetAdByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetAdByID(context.Background(), 42)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateAdAppliesOnlyPresentFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ad := mustCreate(t, repo, "Bike", 100, "A")

	updated, err := repo.UpdateAd(ctx, ad.ID, domain.UpdateAdvertisementInput{Price: domain.Some(50.0)})
	require.NoError(t, err)
	require.Equal(t, 50.0, updated.Price)
	require.Equal(t, "Bike", updated.Title)
	require.Equal(t, "A", updated.Author)
	require.Nil(t, updated.Description)
	require.True(t, updated.CreatedAt.Equal(ad.CreatedAt))
}

func TestUpdateAdWritesZeroValuesAndNull(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ad, err := repo.CreateAd(ctx, &domain.Advertisement{
		Title: "Lamp", Description: strPtr("desk lamp"), Price: 15, Author: "B",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)

	updated, err := repo.UpdateAd(ctx, ad.ID, domain.UpdateAdvertisementInput{
		Title:       domain.Some(""),
		Price:       domain.Some(0.0),
		Description: domain.Null[string](),
	})
	require.NoError(t, err)
	require.Equal(t, "", updated.Title)
	require.Equal(t, 0.0, updated.Price)
	require.Nil(t, updated.Description)
	require.Equal(t, "B", updated.Author)
}

func TestUpdateAdEmptyInputReturnsCurrent(t *testing.T) {
	repo := newTestRepository(t)
	ad := mustCreate(t, repo, "Bike", 100, "A")

	got, err := repo.UpdateAd(context.Background(), ad.ID, domain.UpdateAdvertisementInput{})
	require.NoError(t, err)
	require.Equal(t, ad.Title, got.Title)
	require.Equal(t, ad.Price, got.Price)
}

func TestUpdateAdNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.UpdateAd(context.Background(), 9, domain.UpdateAdvertisementInput{Price: domain.Some(1.0)})
	require.ErrorIs(t, err, sql.ErrNoRows)

	_, err = repo.UpdateAd(context.Background(), 9, domain.UpdateAdvertisementInput{})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteAd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ad := mustCreate(t, repo, "Bike", 100, "A")

	require.NoError(t, repo.DeleteAd(ctx, ad.ID))

	_, err := repo.GetAdByID(ctx, ad.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	require.ErrorIs(t, repo.DeleteAd(ctx, ad.ID), sql.ErrNoRows)
}

func TestSearchAds(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, "foo bike", 5, "alice")
	mustCreate(t, repo, "Foo lamp", 10, "bob")
	mustCreate(t, repo, "table foo", 15, "alice")
	mustCreate(t, repo, "chair", 20, "carol")
	mustCreate(t, repo, "sofa", 25, "alice")

	titles := func(ads []*domain.Advertisement) []string {
		out := make([]string, 0, len(ads))
		for _, ad := range ads {
			out = append(out, ad.Title)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.SearchFilter
		want   []string
	}{
		{
			name: "no filters returns everything in insertion order",
			want: []string{"foo bike", "Foo lamp", "table foo", "chair", "sofa"},
		},
		{
			name:   "title substring is case-sensitive",
			filter: domain.SearchFilter{Title: strPtr("foo")},
			want:   []string{"foo bike", "table foo"},
		},
		{
			name:   "author exact match",
			filter: domain.SearchFilter{Author: strPtr("alice")},
			want:   []string{"foo bike", "table foo", "sofa"},
		},
		{
			name:   "author is not a prefix match",
			filter: domain.SearchFilter{Author: strPtr("ali")},
			want:   []string{},
		},
		{
			name:   "inclusive price bounds",
			filter: domain.SearchFilter{PriceMin: floatPtr(10), PriceMax: floatPtr(20)},
			want:   []string{"Foo lamp", "table foo", "chair"},
		},
		{
			name:   "filters combine with AND",
			filter: domain.SearchFilter{Author: strPtr("alice"), PriceMin: floatPtr(10)},
			want:   []string{"table foo", "sofa"},
		},
		{
			name:   "no match",
			filter: domain.SearchFilter{PriceMin: floatPtr(100)},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ads, err := repo.SearchAds(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, ads)
			require.Equal(t, tt.want, titles(ads))
		})
	}
}
