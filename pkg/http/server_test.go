package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type panicHandler struct{}

func (panicHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/panic", func(echo.Context) error { panic("handler blew up") })
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_HealthzAndMetrics(t *testing.T) {
	s := NewServer(nil, WithRegistry(prometheus.NewRegistry()))

	rec := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":{"status":"ok"}}`, rec.Body.String())

	rec = get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockmon_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestServer_HandlerPanicIsRecovered(t *testing.T) {
	s := NewServer(panicHandler{}, WithRegistry(prometheus.NewRegistry()))

	rec := get(s, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")

	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
}

func TestServer_Addr(t *testing.T) {
	s := NewServer(nil, WithHost("0.0.0.0"), WithPort(8081))
	assert.Equal(t, "0.0.0.0:8081", s.Addr())
}
