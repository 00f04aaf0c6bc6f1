package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hidecan/internal/example"
	"hidecan/internal/genome"
	"hidecan/internal/ingest"
	"hidecan/internal/service"
	"hidecan/internal/store/model"

	"github.com/gin-gonic/gin"
)

// HTTPServer exposes the dataset and plot APIs over gin.
type HTTPServer struct {
	addr     string
	datasets *service.DatasetService
	plots    *service.PlotService
	router   *gin.Engine
}

type HTTPConfig struct {
	Addr     string
	Datasets *service.DatasetService
	Plots    *service.PlotService
}

func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Datasets == nil || cfg.Plots == nil {
		return nil, errors.New("dataset and plot services are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9990"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServer{
		addr:     cfg.Addr,
		datasets: cfg.Datasets,
		plots:    cfg.Plots,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *HTTPServer) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api")
	api.POST("/datasets", s.handleDatasetUpload)
	api.GET("/datasets", s.handleDatasetList)
	api.GET("/datasets/:id", s.handleDatasetDetail)
	api.GET("/datasets/:id/features", s.handleDatasetFeatures)
	api.DELETE("/datasets/:id", s.handleDatasetDelete)
	api.POST("/plots", s.handlePlotCreate)
	api.GET("/plots", s.handlePlotList)
	api.GET("/plots/:id", s.handlePlotDetail)
	api.GET("/plots/:id/html", s.handlePlotHTML)
	api.GET("/plots/:id/image", s.handlePlotImage)
	api.GET("/example", s.handleExample)
}

// Router exposes the gin engine for tests.
func (s *HTTPServer) Router() http.Handler {
	return s.router
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) handleDatasetUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	typ, err := genome.ParseTrackType(c.PostForm("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmp := filepath.Join(os.TempDir(), "hidecan-upload-"+strconv.FormatInt(time.Now().UnixNano(), 10)+".csv")
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(tmp)

	name := c.PostForm("name")
	if name == "" {
		base := filepath.Base(file.Filename)
		name = base[:len(base)-len(filepath.Ext(base))]
	}
	meta, err := s.datasets.ImportFile(c.Request.Context(), ingest.Spec{
		Path:    tmp,
		Type:    typ,
		Name:    name,
		AesType: c.PostForm("aes_type"),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dataset": datasetSummary(meta)})
}

func (s *HTTPServer) handleDatasetList(c *gin.Context) {
	list, err := s.datasets.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, datasetSummary(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

func (s *HTTPServer) handleDatasetDetail(c *gin.Context) {
	meta, err := s.datasets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return
	}
	resp := datasetSummary(meta)
	if manifest, err := s.datasets.Manifest(c.Request.Context(), meta.UUID); err == nil {
		resp["manifest"] = manifest
	}
	c.JSON(http.StatusOK, gin.H{"dataset": resp})
}

func (s *HTTPServer) handleDatasetFeatures(c *gin.Context) {
	id := c.Param("id")
	meta, err := s.datasets.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return
	}
	start, _ := strconv.ParseInt(c.Query("start"), 10, 64)
	end, _ := strconv.ParseInt(c.Query("end"), 10, 64)
	features, err := s.datasets.FeaturesByChromosome(c.Request.Context(), id, c.Query("chromosome"), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": features})
}

func (s *HTTPServer) handleDatasetDelete(c *gin.Context) {
	if err := s.datasets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (s *HTTPServer) handlePlotCreate(c *gin.Context) {
	var req service.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := s.plots.Render(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if rec != nil && rec.Status == model.PlotStatusFailed {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plot": plotSummary(rec)})
}

func (s *HTTPServer) handlePlotList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	plots, err := s.plots.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(plots))
	for i := range plots {
		out = append(out, plotSummary(&plots[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plots": out})
}

func (s *HTTPServer) handlePlotDetail(c *gin.Context) {
	rec, err := s.plots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plot not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plot": plotSummary(rec)})
}

func (s *HTTPServer) handlePlotHTML(c *gin.Context) {
	rec, err := s.plots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil || len(rec.HTML) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "plot html not found"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", rec.HTML)
}

func (s *HTTPServer) handlePlotImage(c *gin.Context) {
	rec, err := s.plots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil || len(rec.PNG) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "plot image not found"})
		return
	}
	c.Data(http.StatusOK, "image/png", rec.PNG)
}

func (s *HTTPServer) handleExample(c *gin.Context) {
	bundle, err := example.Generate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0)
	for _, ds := range bundle.Datasets() {
		out = append(out, gin.H{
			"name":          ds.Name,
			"type":          ds.Type.String(),
			"aes_type":      ds.AesType,
			"feature_count": len(ds.Features),
		})
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

func datasetSummary(m *model.DatasetModel) gin.H {
	return gin.H{
		"id":            m.UUID,
		"name":          m.Name,
		"type":          m.TrackType,
		"aes_type":      m.AesType,
		"source_file":   m.SourceFile,
		"feature_count": m.FeatureCount,
		"created_at":    m.CreatedAtUnix,
	}
}

func plotSummary(m *model.PlotModel) gin.H {
	return gin.H{
		"id":          m.UUID,
		"title":       m.Title,
		"description": m.Description,
		"status":      int(m.Status),
		"error":       m.ErrorText,
		"has_png":     len(m.PNG) > 0,
		"created_at":  m.CreatedAtUnix,
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
