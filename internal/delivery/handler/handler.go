package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"advertisement-service/internal/delivery/middleware"
	"advertisement-service/internal/domain"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/service"
	"advertisement-service/pkg/logger"
	"advertisement-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	collectionEndpoint = "/advertisement"
	itemEndpoint       = "/advertisement/{id}"
)

type AdHandler struct {
	service service.AdService
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewAdHandler(service service.AdService, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdHandler {
	tracer := otel.Tracer("advertisement-service/handler")
	return &AdHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func parseID(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	if idParam == "" {
		return 0, service.NewValidationError("id", "missing id parameter")
	}
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// decodeBody maps JSON syntax and type errors to a ValidationError. The body
// must hold exactly one JSON value.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return service.NewValidationError("body", "invalid JSON payload")
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return service.NewValidationError(typeErr.Field, "must be "+describeKind(typeErr.Type.Kind()))
	case errors.Is(err, io.EOF):
		return service.NewValidationError("body", "request body is empty")
	default:
		return service.NewValidationError("body", "invalid JSON payload")
	}
}

func describeKind(k reflect.Kind) string {
	switch k {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return k.String()
	}
}

func parseSearchFilter(r *http.Request) (domain.SearchFilter, error) {
	query := r.URL.Query()
	var filter domain.SearchFilter

	if title := query.Get("title"); title != "" {
		filter.Title = &title
	}
	if author := query.Get("author"); author != "" {
		filter.Author = &author
	}

	fields := map[string]string{}
	parseBound := func(name string) *float64 {
		raw := query.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fields[name] = "must be a number"
			return nil
		}
		return &v
	}
	filter.PriceMin = parseBound("price_min")
	filter.PriceMax = parseBound("price_max")

	if len(fields) > 0 {
		return filter, &service.ValidationError{Fields: fields}
	}
	return filter, nil
}

// respondError maps the service error taxonomy onto HTTP and returns the
// metrics status label.
func (h *AdHandler) respondError(w http.ResponseWriter, r *http.Request, span trace.Span, msg string, err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondWithValidationError(w, "validation failed", verr.Fields)
		return "invalid"
	case errors.Is(err, service.ErrInvalidID):
		utils.RespondWithValidationError(w, "validation failed", map[string]string{"id": "must be a positive integer"})
		return "invalid"
	case errors.Is(err, service.ErrAdNotFound):
		utils.RespondWithErrorJSON(w, http.StatusNotFound, "advertisement not found")
		return "not_found"
	default:
		span.RecordError(err)
		h.logger.ErrorLogger.Error(msg,
			utils.Err(err),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
		return "error"
	}
}

func (h *AdHandler) GetAdByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAdByID")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodGet, itemEndpoint, status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, r, span, "invalid id", err)
		return
	}

	span.SetAttributes(attribute.Int64("ad.id", id))

	ad, err := h.service.GetAdByID(ctx, id)
	if err != nil {
		status = h.respondError(w, r, span, "failed to get ad by ID", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) SearchAds(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SearchAds")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodGet, collectionEndpoint, status, startTime) }()

	filter, err := parseSearchFilter(r)
	if err != nil {
		status = h.respondError(w, r, span, "invalid search filter", err)
		return
	}

	ads, err := h.service.SearchAds(ctx, filter)
	if err != nil {
		status = h.respondError(w, r, span, "failed to search ads", err)
		return
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	utils.RespondWithJSON(w, http.StatusOK, ads)
}

func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodPost, collectionEndpoint, status, startTime) }()

	var input domain.CreateAdvertisementInput
	if err := decodeBody(r, &input); err != nil {
		status = h.respondError(w, r, span, "invalid request payload", err)
		return
	}

	createdAd, err := h.service.CreateAd(ctx, input)
	if err != nil {
		status = h.respondError(w, r, span, "could not create ad", err)
		return
	}

	span.SetAttributes(attribute.Int64("ad.id", createdAd.ID))
	utils.RespondWithJSON(w, http.StatusCreated, createdAd)
}

func (h *AdHandler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodPatch, itemEndpoint, status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, r, span, "invalid id", err)
		return
	}

	span.SetAttributes(attribute.Int64("ad.id", id))

	var input domain.UpdateAdvertisementInput
	if err := decodeBody(r, &input); err != nil {
		status = h.respondError(w, r, span, "failed to decode request body", err)
		return
	}

	updatedAd, err := h.service.UpdateAd(ctx, id, input)
	if err != nil {
		status = h.respondError(w, r, span, "failed to update ad", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updatedAd)
}

func (h *AdHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAd")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodDelete, itemEndpoint, status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = h.respondError(w, r, span, "invalid id", err)
		return
	}

	span.SetAttributes(attribute.Int64("ad.id", id))

	if err := h.service.DeleteAd(ctx, id); err != nil {
		status = h.respondError(w, r, span, "failed to delete ad", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		h.logger.ErrorLogger.Error("health check failed", utils.Err(err))
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
