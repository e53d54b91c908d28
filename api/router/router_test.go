package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/simulate"
)

func setup(t *testing.T) (*gin.Engine, *simulate.Server) {
	t.Helper()
	srv, err := simulate.Start(simulate.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(srv.Stop)

	opts := fortinet.DefaultOptions()
	opts.Timeout = 3 * time.Second
	open := service.NewOpener(opts, nil)

	cfg := &config.Config{Backup: config.BackupConfig{
		StorageBackend: config.BackendLocal,
		Local:          config.LocalBackupConfig{BaseDir: t.TempDir(), MkdirIfMissing: true},
	}}
	r := SetupRouter(gin.TestMode, service.NewBatchService(config.BatchConfig{Concurrency: 2}, open), service.NewBackupService(cfg, open, nil))
	return r, srv
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestListGetters(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/getters", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Getters []string `json:"getters"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, fortinet.GetterNames(), data.Getters)

	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRunGetters(t *testing.T) {
	r, srv := setup(t)

	w := do(r, http.MethodPost, "/api/v1/getters", gin.H{
		"targets": []gin.H{{"host": srv.Host(), "port": srv.Port(), "username": "admin", "password": "admin"}},
		"getters": []string{"get_facts", "get_interfaces_ip"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Total   int `json:"total"`
		Results []struct {
			Host    string `json:"host"`
			Results struct {
				Facts fortinet.Facts        `json:"get_facts"`
				IP    fortinet.InterfacesIP `json:"get_interfaces_ip"`
			} `json:"results"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Equal(t, 1, data.Total)
	assert.Equal(t, "FGVMEVSIMULATOR0", data.Results[0].Results.Facts.SerialNumber)
	assert.Equal(t, 24, data.Results[0].Results.IP["port1"].IPv4["10.0.0.1"].PrefixLength)
}

func TestRunGettersBadRequest(t *testing.T) {
	r, srv := setup(t)

	w := do(r, http.MethodPost, "/api/v1/getters", gin.H{"getters": []string{"get_facts"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Code)

	w = do(r, http.MethodPost, "/api/v1/getters", gin.H{
		"targets": []gin.H{{"host": srv.Host(), "username": "admin"}},
		"getters": []string{"get_everything"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_GETTER", decode(t, w).Code)
}

func TestBackupEndpoint(t *testing.T) {
	r, srv := setup(t)

	w := do(r, http.MethodPost, "/api/v1/backup", gin.H{"host": srv.Host(), "port": srv.Port(), "username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.BackupResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, "running", result.Retrieve)
	assert.Equal(t, config.BackendLocal, result.Object.Backend)

	w = do(r, http.MethodPost, "/api/v1/backup", gin.H{"host": srv.Host(), "username": "admin", "retrieve": "candidate"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RETRIEVE", decode(t, w).Code)

	w = do(r, http.MethodPost, "/api/v1/backup", gin.H{"host": srv.Host(), "port": srv.Port(), "username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "DEVICE_UNREACHABLE", decode(t, w).Code)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/facts/10.0.0.1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disabled"`)
}

func TestMetricsAndNotFound(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = do(r, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
