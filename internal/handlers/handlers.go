package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neurascan/neurascan-api/internal/auth"
	"github.com/neurascan/neurascan-api/internal/model"
	"github.com/neurascan/neurascan-api/internal/pipeline"
	"github.com/neurascan/neurascan-api/internal/report"
	"github.com/neurascan/neurascan-api/internal/store"
)

const apiVersion = "1.0.0"

// Handler wires the prediction pipeline to the HTTP surface. Storage is
// optional; when absent, history and report personalization degrade but
// predictions still work.
type Handler struct {
	pipeline       *pipeline.Pipeline
	models         *model.Manager
	store          *store.Store
	auth           *auth.Manager
	labels         pipeline.LabelTable
	logger         *zap.Logger
	maxUploadBytes int64
}

type Options struct {
	Pipeline       *pipeline.Pipeline
	Models         *model.Manager
	Store          *store.Store
	Auth           *auth.Manager
	Labels         pipeline.LabelTable
	Logger         *zap.Logger
	MaxUploadBytes int64
}

func New(opts Options) *Handler {
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = pipeline.DefaultMaxUploadBytes
	}
	return &Handler{
		pipeline:       opts.Pipeline,
		models:         opts.Models,
		store:          opts.Store,
		auth:           opts.Auth,
		labels:         opts.Labels,
		logger:         opts.Logger.Named("handlers"),
		maxUploadBytes: maxBytes,
	}
}

// Routes mounts all endpoints on the router.
func (h *Handler) Routes(r *gin.Engine) {
	r.Use(CORS())

	r.GET("/api/health", h.Health)

	users := r.Group("/api/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		authed := users.Group("", AuthRequired(h.auth))
		{
			authed.GET("/profile", h.Profile)
			authed.PUT("/profile", h.UpdateProfile)
			authed.POST("/change-password", h.ChangePassword)
		}
	}

	predictions := r.Group("/api/predictions")
	{
		predictions.GET("/health", h.PredictionHealth)
		predictions.GET("/model-status", h.ModelStatus)
		authed := predictions.Group("", AuthRequired(h.auth))
		{
			authed.POST("/predict", h.Predict)
			authed.POST("/model-reload", h.ModelReload)
			authed.GET("/history", h.History)
			authed.POST("/generate-report", h.GenerateReport)
		}
	}
}

// Predict accepts a multipart upload under the "image" field and runs it
// through the pipeline. Every failure comes back as a structured document.
func (h *Handler) Predict(c *gin.Context) {
	userID := currentUserID(c)

	// Leave headroom for multipart framing; the hard 16 MiB cap on the
	// image itself is enforced by the preprocessor.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+(1<<20))

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		h.failure(c, fmt.Errorf("%w: no image file provided, use 'image' as the form field name", pipeline.ErrInvalidImage))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.failure(c, fmt.Errorf("%w: failed to read upload: %v", pipeline.ErrInvalidImage, err))
		return
	}

	meta := pipeline.RequestMeta{
		Filename:  header.Filename,
		SizeBytes: int64(len(raw)),
		UserID:    h.displayName(c, userID),
	}

	doc, err := h.pipeline.Analyze(c.Request.Context(), raw, meta)
	if err != nil {
		h.logger.Warn("prediction failed",
			zap.Int64("user_id", userID),
			zap.String("filename", header.Filename),
			zap.Error(err))
		h.failure(c, err)
		return
	}

	h.saveHistory(c, userID, doc)
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) failure(c *gin.Context, err error) {
	doc := pipeline.Failure(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, pipeline.ErrInvalidImage):
		status = http.StatusBadRequest
	}
	c.JSON(status, doc)
}

// saveHistory persists the outcome when storage is configured. Best effort:
// a failed insert is logged, never surfaced.
func (h *Handler) saveHistory(c *gin.Context, userID int64, doc *pipeline.ResponseDocument) {
	if h.store == nil {
		return
	}
	err := h.store.SaveAnalysis(c.Request.Context(), &store.Analysis{
		ID:                doc.Metadata.AnalysisID,
		UserID:            userID,
		Filename:          doc.Metadata.Filename,
		FileSizeBytes:     doc.Metadata.FileSizeBytes,
		PredictedClass:    doc.Prediction.Name,
		PrimaryConfidence: doc.Prediction.PrimaryConfidence,
		ModelVersion:      doc.Metadata.ModelVersion,
	})
	if err != nil {
		h.logger.Warn("failed to save analysis history",
			zap.String("analysis_id", doc.Metadata.AnalysisID),
			zap.Error(err))
	}
}

func (h *Handler) displayName(c *gin.Context, userID int64) string {
	if h.store != nil {
		if user, err := h.store.UserByID(c.Request.Context(), userID); err == nil {
			return user.FullName()
		}
	}
	return fmt.Sprintf("User %d", userID)
}

// History lists the caller's persisted analyses, newest first.
func (h *Handler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "History unavailable",
			"message": "Analysis history requires database storage.",
		})
		return
	}
	analyses, err := h.store.AnalysesByUser(c.Request.Context(), currentUserID(c), 50)
	if err != nil {
		h.logger.Error("failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to load analysis history.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analyses": analyses})
}

// ModelStatus exposes the handle state, including whether a placeholder is
// active.
func (h *Handler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.models.Status())
}

// ModelReload swaps in a freshly loaded handle.
func (h *Handler) ModelReload(c *gin.Context) {
	state, err := h.models.Reload()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Model reload failed",
			"message": err.Error(),
			"state":   state.String(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   state.String(),
		"status":  h.models.Status(),
	})
}

// Health is the application-wide health check.
func (h *Handler) Health(c *gin.Context) {
	modelLoaded := h.models.State() == model.StateLoaded

	dbState := "not_configured"
	dbOK := true
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			dbState = "disconnected"
			dbOK = false
		} else {
			dbState = "connected"
		}
	}

	healthy := modelLoaded && dbOK
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":    healthStr(healthy),
		"database":  dbState,
		"ai_model":  loadedStr(modelLoaded),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   apiVersion,
	})
}

// PredictionHealth reports on the prediction service alone.
func (h *Handler) PredictionHealth(c *gin.Context) {
	st := h.models.Status()
	status := http.StatusOK
	if !st.Loaded {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":       healthStr(st.Loaded),
		"service":      "prediction_service",
		"model_loaded": st.Loaded,
		"model_kind":   st.Kind,
		"detail":       st.Detail,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

type reportRequest struct {
	Results  *pipeline.Prediction `json:"results"`
	Filename string               `json:"filename"`
}

// GenerateReport renders a PDF for a previously returned prediction.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Results == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing results",
			"message": "Analysis results are required to generate a report.",
		})
		return
	}

	patientName := h.displayName(c, currentUserID(c))
	patientEmail := "Unknown"
	if h.store != nil {
		if user, err := h.store.UserByID(c.Request.Context(), currentUserID(c)); err == nil {
			patientEmail = user.Email
		}
	}

	pdf, err := report.Generate(report.Input{
		PatientName:  patientName,
		PatientEmail: patientEmail,
		Prediction:   *req.Results,
		Labels:       h.labels,
		ModelVersion: h.models.Status().ModelVersion,
		GeneratedAt:  time.Now(),
	})
	if err != nil {
		h.logger.Error("failed to generate report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "PDF generation failed",
			"message": err.Error(),
		})
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("medical_report_%s.pdf", time.Now().Format("20060102_150405"))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func healthStr(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}

func loadedStr(ok bool) string {
	if ok {
		return "loaded"
	}
	return "not_loaded"
}
