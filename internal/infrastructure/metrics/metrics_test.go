package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistryObserve(t *testing.T) {
	reg := NewTestRegistry()

	reg.Handler.Observe("GET", "/advertisement/{id}", "not_found", time.Now())
	reg.Service.Observe("GetAdByID", "not_found", time.Now())
	reg.Repository.Observe("GetAdByID", "success", time.Now())
	reg.Repository.Observe("GetAdByID", "success", time.Now())

	require.Equal(t, 1.0, testutil.ToFloat64(reg.Handler.RequestCount.WithLabelValues("GET", "/advertisement/{id}", "not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(reg.Service.MethodCount.WithLabelValues("GetAdByID", "not_found")))
	require.Equal(t, 2.0, testutil.ToFloat64(reg.Repository.QueryCount.WithLabelValues("GetAdByID", "success")))
}

func TestHTTPHandlerExposesCollectors(t *testing.T) {
	reg := NewTestRegistry()
	reg.Service.Observe("CreateAd", "success", time.Now())

	rec := httptest.NewRecorder()
	reg.Handler.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `advertisement_service_methods_total{method="CreateAd",status="success"} 1`)
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	tp, err := InitTracer("advertisement-service", "test", "dev", "")
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))
}
