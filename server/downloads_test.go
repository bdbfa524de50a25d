package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openfetch/bankdl/direct"
	"github.com/openfetch/bankdl/session"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

func testServer(t *testing.T) (*server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	s := &server{
		logger:      zap.NewNop(),
		downloading: atomic.NewBool(false),
		lastResults: cache.New(time.Minute, time.Minute),
		download: func(opts direct.Options) direct.Result {
			return direct.Result{Success: true, Files: []string{"/downloads/chase/chase_20200314_150926.ofx"}, Institution: opts.Institution}
		},
		synthesize: func(opts session.Options) (session.Result, error) {
			return session.Result{Status: session.StatusOK, Sources: opts.Institutions}, nil
		},
	}
	engine := gin.New()
	s.setupAPI(engine.Group("/api/v1"))
	return s, engine
}

func TestDownloadStatement(t *testing.T) {
	_, engine := testServer(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ofx/download", strings.NewReader(`{"institution":"chase","days":7}`))
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":true`)
	assert.Contains(t, recorder.Body.String(), `"institution":"chase"`)
}

func TestDownloadStatementRejectsBadIdentity(t *testing.T) {
	_, engine := testServer(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ofx/download", strings.NewReader(`{"institution":"../sneaky"}`))
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDownloadStatementBusy(t *testing.T) {
	s, engine := testServer(t)
	s.downloading.Store(true)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ofx/download", strings.NewReader(`{"institution":"chase"}`))
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestDownloadStatementFailureIsBadGateway(t *testing.T) {
	s, engine := testServer(t)
	s.download = func(opts direct.Options) direct.Result {
		return direct.Result{Success: false, Files: []string{}, Error: "connection refused"}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ofx/download", strings.NewReader(`{"institution":"usaa"}`))
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "connection refused")
}

func TestLastDownload(t *testing.T) {
	_, engine := testServer(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ofx/download", strings.NewReader(`{"institution":"chase"}`))
	engine.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/downloads/chase", nil)
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":true`)

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/downloads/usaa", nil)
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSynthesizeConfig(t *testing.T) {
	_, engine := testServer(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/config", strings.NewReader(`{"institutions":["capitalone"]}`))
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"sources":["capitalone"]`)
}

func TestVersion(t *testing.T) {
	_, engine := testServer(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "version")
}
