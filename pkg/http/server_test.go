package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })
	e.GET("/plain", func(c echo.Context) error { return errors.New("dsn=secret") })
	e.GET("/app", func(c echo.Context) error {
		return ErrorResponse(c, ServiceUnavailableError(CodeModelNotReady, "model not ready"))
	})
	e.POST("/echo", func(c echo.Context) error {
		req := &struct {
			Name  string `json:"name" validate:"required"`
			Score int    `json:"score" default:"300" validate:"gte=300,lte=900"`
		}{}
		if err := ReadAndValidateRequest(c, req); err != nil {
			return ErrorResponse(c, err)
		}
		return SuccessResponse(c, req)
	})
}

func serve(s *Server, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func bodyError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var b ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b.Error
}

func newTestServer() *Server {
	return NewServer(nil, []Handler{routes{}}, WithMetrics("", 0))
}

func TestServerErrorShapes(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name, method, path string
		status             int
		msg                string
	}{
		{"panic", http.MethodGet, "/boom", http.StatusInternalServerError, "internal server error"},
		{"raw error", http.MethodGet, "/plain", http.StatusInternalServerError, "internal server error"},
		{"app error", http.MethodGet, "/app", http.StatusServiceUnavailable, "model not ready"},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodPut, "/app", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, bodyError(t, rec))
		})
	}
}

func TestReadAndValidateRequest(t *testing.T) {
	s := newTestServer()

	rec := serve(s, http.MethodPost, "/echo", `{"name":"a"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"a","score":300}`, rec.Body.String())

	rec = serve(s, http.MethodPost, "/echo", `{"score":500}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", bodyError(t, rec))

	rec = serve(s, http.MethodPost, "/echo", `{"name":"a","score":901}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "score must be less than or equal to 900", bodyError(t, rec))

	rec = serve(s, http.MethodPost, "/echo", `{"name":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", bodyError(t, rec))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer()

	rec := serve(s, http.MethodOptions, "/echo", "", map[string]string{
		echo.HeaderOrigin: "http://localhost:3000",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
}

func TestCORSDisabled(t *testing.T) {
	s := NewServer(nil, []Handler{routes{}}, WithMetrics("", 0), WithCORS(false))
	rec := serve(s, http.MethodGet, "/app", "", map[string]string{echo.HeaderOrigin: "http://x"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := InvalidInputError("credit_score", "bad").WithError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.Contains(t, err.Error(), "root")
}
