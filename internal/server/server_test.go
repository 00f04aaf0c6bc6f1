package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"hidecan/internal/archive"
	"hidecan/internal/service"
	"hidecan/internal/store"
	"hidecan/internal/store/gormstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	dir := t.TempDir()
	gs, err := gormstore.NewGormStore(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	arch, err := archive.NewStore(filepath.Join(dir, "archive"))
	require.NoError(t, err)

	datasets := service.NewDatasetService(gs, arch, store.NewMemoryDatasetCache())
	plots := service.NewPlotService(datasets, gs, nil, service.RenderOptions{})

	srv, err := NewHTTPServer(HTTPConfig{Addr: ":0", Datasets: datasets, Plots: plots})
	require.NoError(t, err)
	return srv
}

func uploadCSV(t *testing.T, srv *HTTPServer, trackType, name, csv string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name+".csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("type", trackType))
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Dataset struct {
			ID string `json:"id"`
		} `json:"dataset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Dataset.ID)
	return resp.Dataset.ID
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestDatasetLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "gwas", "trial",
		"chromosome,position,p_value,name\nchr1,100,0.001,m1\nchr2,5000,0.5,m2\n")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "trial")

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"feature_count":2`)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/features?chromosome=chr2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":5000`)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDatasetUploadBadType(t *testing.T) {
	srv := newTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "x.csv")
	_, _ = fw.Write([]byte("chromosome,position\nchr1,1\n"))
	_ = mw.WriteField("type", "manhattan")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlotCreateAndFetch(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "gwas", "peaks",
		"chromosome,position,p_value,name\nchr1,100,0.0001,hit1\nchr1,900,0.9,weak\nchr2,400,0.00005,hit2\n")

	body := fmt.Sprintf(`{"dataset_ids":[%q],"score_thr":2,"title":"Peaks"}`, id)
	req := httptest.NewRequest(http.MethodPost, "/api/plots", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Plot struct {
			ID     string `json:"id"`
			Status int    `json:"status"`
		} `json:"plot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Plot.ID)
	assert.Equal(t, 1, resp.Plot.Status)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plots/"+resp.Plot.ID+"/html", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chr1")

	// No PNG was requested, so the image route reports not found.
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plots/"+resp.Plot.ID+"/image", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlotCreateUnknownDataset(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/plots",
		bytes.NewBufferString(`{"dataset_ids":["nope"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExampleEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/example", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qtl")
	assert.Contains(t, w.Body.String(), "methylation")
}
