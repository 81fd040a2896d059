package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"advertisement-service/internal/config"
	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const selectColumns = `SELECT id, title, description, price, author, created_at FROM advertisement`

type AdRepository interface {
	SearchAds(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error)
	GetAdByID(ctx context.Context, id int64) (*domain.Advertisement, error)
	CreateAd(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error)
	UpdateAd(ctx context.Context, id int64, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error)
	DeleteAd(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type sqlAdRepository struct {
	db      *sqlx.DB
	driver  string
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

// NewSQLAdRepository returns a repository over db. driver selects the SQL
// dialect used for the case-sensitive title filter.
func NewSQLAdRepository(db *sqlx.DB, driver string, metrics *metrics.RepositoryMetrics) AdRepository {
	tracer := otel.Tracer("advertisement-service/repository")
	return &sqlAdRepository{
		db:      db,
		driver:  driver,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (r *sqlAdRepository) titleContains() string {
	if r.driver == config.DriverMySQL {
		return "INSTR(BINARY title, ?) > 0"
	}
	// instr is case-sensitive in sqlite, unlike LIKE.
	return "instr(title, ?) > 0"
}

func (r *sqlAdRepository) SearchAds(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository SearchAds")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("SearchAds", status, startTime) }()

	var (
		conditions []string
		args       []interface{}
	)

	if filter.Title != nil {
		conditions = append(conditions, r.titleContains())
		args = append(args, *filter.Title)
		span.SetAttributes(attribute.String("filter.title", *filter.Title))
	}
	if filter.Author != nil {
		conditions = append(conditions, "author = ?")
		args = append(args, *filter.Author)
		span.SetAttributes(attribute.String("filter.author", *filter.Author))
	}
	if filter.PriceMin != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *filter.PriceMin)
		span.SetAttributes(attribute.Float64("filter.price_min", *filter.PriceMin))
	}
	if filter.PriceMax != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *filter.PriceMax)
		span.SetAttributes(attribute.Float64("filter.price_max", *filter.PriceMax))
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	ads := []*domain.Advertisement{}
	if err := r.db.SelectContext(ctx, &ads, query, args...); err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String("query", query))
		return nil, fmt.Errorf("failed to search ads: %w", err)
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	return ads, nil
}

func (r *sqlAdRepository) GetAdByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAdByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("GetAdByID", status, startTime) }()

	ad, err := getAd(ctx, r.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}

	return ad, nil
}

func (r *sqlAdRepository) CreateAd(ctx context.Context, ad *domain.Advertisement) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CreateAd")
	defer span.End()

	span.SetAttributes(
		attribute.String("ad.title", ad.Title),
		attribute.Float64("ad.price", ad.Price),
	)

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("CreateAd", status, startTime) }()

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO advertisement (title, description, price, author, created_at) VALUES (?, ?, ?, ?, ?)",
		ad.Title, ad.Description, ad.Price, ad.Author, ad.CreatedAt)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to insert ad: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	insertedAd, err := getAd(ctx, r.db, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch inserted ad: %w", err)
	}

	return insertedAd, nil
}

// UpdateAd writes only the fields present in input. The existence check,
// the write and the re-read share one transaction; an empty input is a
// plain read.
func (r *sqlAdRepository) UpdateAd(ctx context.Context, id int64, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository UpdateAd")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("UpdateAd", status, startTime) }()

	if input.Empty() {
		currentAd, err := getAd(ctx, r.db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				status = "not_found"
				return nil, err
			}
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load ad: %w", err)
		}
		return currentAd, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getAd(ctx, tx, id); err != nil {
		if err == sql.ErrNoRows {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load ad: %w", err)
	}

	var (
		sets []string
		args []interface{}
	)
	if input.Title.Set {
		sets = append(sets, "title = ?")
		args = append(args, input.Title.Value)
	}
	if input.Description.Set {
		sets = append(sets, "description = ?")
		args = append(args, input.Description.Ptr())
	}
	if input.Price.Set {
		sets = append(sets, "price = ?")
		args = append(args, input.Price.Value)
	}
	if input.Author.Set {
		sets = append(sets, "author = ?")
		args = append(args, input.Author.Value)
	}

	query := "UPDATE advertisement SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update ad: %w", err)
	}

	updatedAd, err := getAd(ctx, tx, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch updated ad: %w", err)
	}

	if err := tx.Commit(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return updatedAd, nil
}

func (r *sqlAdRepository) DeleteAd(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "Repository DeleteAd")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("DeleteAd", status, startTime) }()

	result, err := r.db.ExecContext(ctx, "DELETE FROM advertisement WHERE id = ?", id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to delete ad: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}

	if rowsAffected == 0 {
		status = "not_found"
		return sql.ErrNoRows
	}

	return nil
}

func (r *sqlAdRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func getAd(ctx context.Context, q sqlx.QueryerContext, id int64) (*domain.Advertisement, error) {
	var ad domain.Advertisement
	if err := sqlx.GetContext(ctx, q, &ad, selectColumns+" WHERE id = ?", id); err != nil {
		return nil, err
	}
	ad.CreatedAt = ad.CreatedAt.UTC()
	return &ad, nil
}
