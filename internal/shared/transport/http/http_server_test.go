package http

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ggeorgiev0/backend-base/internal/shared/httperr"
	"github.com/ggeorgiev0/backend-base/internal/shared/transport/http/middleware"
	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
)

func newTestServer(t *testing.T, production bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logx.NewZapLogger(zap.NewNop())
	classifier := httperr.NewClassifier(production)
	errLogger := httperr.NewErrorLogger(logger, production)
	return NewServer(":0", gin.New(), logger, classifier, errLogger)
}

func doRequest(s *Server, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, false)
	w := doRequest(s, nethttp.MethodGet, "/healthz", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
}

func TestServer_领域错误走统一线上契约(t *testing.T) {
	s := newTestServer(t, false)
	s.Group().GET("/boom", func(c *gin.Context) {
		_ = c.Error(errx.New(errx.KindResourceNotFound, "User not found"))
	})

	w := doRequest(s, nethttp.MethodGet, "/boom", "", nil)
	require.Equal(t, nethttp.StatusNotFound, w.Code)

	body := decodeError(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, float64(404), body["statusCode"])
	assert.Equal(t, "E04001", body["errorCode"])
	assert.Equal(t, "User not found", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	// 未带关联 ID 时由边界上游生成并同时写进响应头和响应体
	cid := w.Header().Get(middleware.HeaderCorrelationID)
	require.NotEmpty(t, cid)
	assert.Equal(t, cid, body["correlationId"])
}

func TestServer_调用方的关联ID被复用(t *testing.T) {
	s := newTestServer(t, false)
	s.Group().GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("plain failure"))
	})

	w := doRequest(s, nethttp.MethodGet, "/boom", "", map[string]string{
		middleware.HeaderCorrelationID: "caller-supplied-id",
	})
	assert.Equal(t, "caller-supplied-id", w.Header().Get(middleware.HeaderCorrelationID))
	body := decodeError(t, w)
	assert.Equal(t, "caller-supplied-id", body["correlationId"])
}

func TestServer_panic被边界接住并归一化(t *testing.T) {
	s := newTestServer(t, false)
	s.Group().GET("/panic", func(c *gin.Context) {
		panic("totally unexpected")
	})

	w := doRequest(s, nethttp.MethodGet, "/panic", "", nil)
	require.Equal(t, nethttp.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "E07001", body["errorCode"])
	assert.Equal(t, "An unexpected error occurred", body["message"])
	// 非生产环境携带诊断数据
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "totally unexpected", data["exception"])
}

func TestServer_生产环境不带data(t *testing.T) {
	s := newTestServer(t, true)
	s.Group().GET("/panic", func(c *gin.Context) {
		panic("totally unexpected")
	})

	w := doRequest(s, nethttp.MethodGet, "/panic", "", nil)
	body := decodeError(t, w)
	_, ok := body["data"]
	assert.False(t, ok, "生产环境响应不允许出现 data")
}

func TestServer_NoRoute归一成404(t *testing.T) {
	s := newTestServer(t, false)
	w := doRequest(s, nethttp.MethodGet, "/no/such/route", "", nil)
	require.Equal(t, nethttp.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "E04001", body["errorCode"])
	assert.Contains(t, body["message"], "Cannot GET /no/such/route")
}

func TestServer_校验错误携带字段明细(t *testing.T) {
	s := newTestServer(t, false)
	s.Group().POST("/users", func(c *gin.Context) {
		_ = c.Error(errx.NewValidation("Validation failed", map[string][]string{
			"email": {"Email is invalid"},
		}))
	})

	w := doRequest(s, nethttp.MethodPost, "/users",
		`{"email":"bad","password":"x"}`, map[string]string{"Content-Type": "application/json"})
	require.Equal(t, nethttp.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Email is invalid"}, errs["email"])
}
