package service

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"time"

	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type AdService interface {
	SearchAds(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error)
	GetAdByID(ctx context.Context, id int64) (*domain.Advertisement, error)
	CreateAd(ctx context.Context, input domain.CreateAdvertisementInput) (*domain.Advertisement, error)
	UpdateAd(ctx context.Context, id int64, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error)
	DeleteAd(ctx context.Context, id int64) error
	Health(ctx context.Context) error
}

type adService struct {
	repository repository.AdRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
	validate   *validator.Validate
	now        func() time.Time
}

func NewAdService(repository repository.AdRepository, metrics *metrics.ServiceMetrics) AdService {
	tracer := otel.Tracer("advertisement-service/service")
	return &adService{
		repository: repository,
		metrics:    metrics,
		tracer:     tracer,
		validate:   newValidator(),
		now:        time.Now,
	}
}

// SetClock overrides the time source used for created_at.
func (s *adService) SetClock(now func() time.Time) {
	s.now = now
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *adService) SearchAds(ctx context.Context, filter domain.SearchFilter) ([]*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "SearchAds")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("SearchAds", status, startTime) }()

	ads, err := s.repository.SearchAds(ctx, filter)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, &StoreError{Op: "SearchAds", Err: err}
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	return ads, nil
}

func (s *adService) GetAdByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "GetAdByID")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("GetAdByID", status, startTime) }()

	span.SetAttributes(attribute.Int64("ad.id", id))

	ad, err := s.repository.GetAdByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, &StoreError{Op: "GetAdByID", Err: err}
	}

	return ad, nil
}

func (s *adService) CreateAd(ctx context.Context, input domain.CreateAdvertisementInput) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("CreateAd", status, startTime) }()

	if err := s.validateCreate(input); err != nil {
		status = "invalid"
		return nil, err
	}

	ad := &domain.Advertisement{
		Title:       *input.Title,
		Description: input.Description,
		Price:       *input.Price,
		Author:      *input.Author,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}

	createdAd, err := s.repository.CreateAd(ctx, ad)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, &StoreError{Op: "CreateAd", Err: err}
	}

	span.SetAttributes(
		attribute.Int64("ad.id", createdAd.ID),
		attribute.String("ad.title", createdAd.Title),
		attribute.Float64("ad.price", createdAd.Price),
	)
	return createdAd, nil
}

func (s *adService) validateCreate(input domain.CreateAdvertisementInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("body", err.Error())
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			verr.Fields[fe.Field()] = "field required"
		} else {
			verr.Fields[fe.Field()] = "failed " + fe.Tag() + " check"
		}
	}
	return verr
}

// validateUpdate rejects explicit nulls for the non-nullable columns.
func validateUpdate(input domain.UpdateAdvertisementInput) error {
	fields := map[string]string{}
	if input.Title.Set && input.Title.Null {
		fields["title"] = "must not be null"
	}
	if input.Price.Set && input.Price.Null {
		fields["price"] = "must not be null"
	}
	if input.Author.Set && input.Author.Null {
		fields["author"] = "must not be null"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *adService) UpdateAd(ctx context.Context, id int64, input domain.UpdateAdvertisementInput) (*domain.Advertisement, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "UpdateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("UpdateAd", status, startTime) }()

	span.SetAttributes(attribute.Int64("ad.id", id))

	if err := validateUpdate(input); err != nil {
		status = "invalid"
		return nil, err
	}

	updatedAd, err := s.repository.UpdateAd(ctx, id, input)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, &StoreError{Op: "UpdateAd", Err: err}
	}

	return updatedAd, nil
}

func (s *adService) DeleteAd(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "DeleteAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { s.metrics.Observe("DeleteAd", status, startTime) }()

	span.SetAttributes(attribute.Int64("ad.id", id))

	if err := s.repository.DeleteAd(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return &StoreError{Op: "DeleteAd", Err: err}
	}

	return nil
}

func (s *adService) Health(ctx context.Context) error {
	if err := s.repository.Ping(ctx); err != nil {
		return &StoreError{Op: "Ping", Err: err}
	}
	return nil
}
