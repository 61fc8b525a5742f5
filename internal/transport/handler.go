package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/localens-go/internal/analyzer"
	"github.com/anime-shed/localens-go/internal/config"
	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/overlay"
	"github.com/anime-shed/localens-go/internal/repository"
	"github.com/anime-shed/localens-go/internal/service"
	"github.com/anime-shed/localens-go/internal/storage"
	"github.com/anime-shed/localens-go/pkg/export"
	"github.com/anime-shed/localens-go/pkg/geometry"
	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
)

// ResultIDHeader carries the stored result id on analyze responses
const ResultIDHeader = "X-Result-ID"

// Deps are the services behind the HTTP API. Results, Sink, Publisher and
// Gatherer are optional.
type Deps struct {
	Analysis     service.AnalysisService
	Alternatives *service.AlternativesService
	Results      repository.ResultRepository
	Sink         storage.ReportSink
	Publisher    observer.Subject
	Gatherer     prometheus.Gatherer
}

// OverlayResponse is the mapped overlay for one container size
type OverlayResponse struct {
	Geometry geometry.Geometry         `json:"geometry"`
	Shapes   []overlay.Shape           `json:"shapes"`
	Counts   issueindex.SeverityCounts `json:"counts"`
}

// ExportResponse reports where a stored export went
type ExportResponse struct {
	FileName string `json:"file_name"`
	Location string `json:"location"`
	Format   string `json:"format"`
}

func NewHandler(deps Deps, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.POST("/analyze", analyze(deps, cfg))
	api.POST("/generate-alternatives", generateAlternatives(deps, cfg))
	api.POST("/overlay", mapOverlay)
	api.POST("/export", exportIssues(deps))
	if deps.Results != nil {
		api.GET("/results", listResults(deps.Results))
		api.GET("/results/:id", getResult(deps.Results))
		api.GET("/results/:id/export", exportResult(deps))
		api.POST("/results/:id/issues/:issue/alternatives", issueAlternatives(deps, cfg))
	}
	if deps.Sink != nil {
		api.GET("/reports/:name", getReport(deps.Sink))
	}

	return r
}

func analyze(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if !errors.As(err, &tooLarge) {
				err = apperrors.NewValidationError("Expected multipart form data with files.", err)
			}
			respondError(c, err)
			return
		}
		uploads, err := readUploads(form.File["files"])
		if err != nil {
			respondError(c, err)
			return
		}

		opts := analyzer.DefaultOptions()
		if cfg.ProviderStrategy != "" {
			opts.Strategy = cfg.ProviderStrategy
		}
		if p := c.PostForm("provider"); p != "" {
			opts = opts.WithProvider(models.Provider(p))
		}
		if t := c.PostForm("input_type"); t != "" {
			opts = opts.WithInputType(models.InputType(t))
		}

		logger.WithFields(logrus.Fields{
			"files":      len(uploads),
			"provider":   opts.Provider,
			"input_type": opts.InputType,
			"ip":         c.ClientIP(),
		}).Info("Processing analysis request")

		id, result, err := deps.Analysis.AnalyzeAndStore(ctx, uploads, opts)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("Analysis timed out", err)
			}
			respondError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"result_id":          id,
			"total_issues":       result.TotalIssues,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Analysis completed successfully")

		if id != "" {
			c.Header(ResultIDHeader, id)
		}
		c.JSON(http.StatusOK, result)
	}
}

func readUploads(headers []*multipart.FileHeader) ([]models.Upload, error) {
	uploads := make([]models.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("Cannot read uploaded file '"+fh.Filename+"'.", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.NewValidationError("Cannot read uploaded file '"+fh.Filename+"'.", err)
		}
		uploads = append(uploads, models.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func generateAlternatives(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AlternativesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("original_text and language are required.", err))
			return
		}

		alts, err := deps.Alternatives.Generate(ctx, req.OriginalText, req.Language)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.AlternativesResponse{
			Success:      true,
			OriginalText: req.OriginalText,
			Alternatives: alts,
		})
	}
}

// issueAlternatives serves the alternatives of one stored issue, fetching them
// once. ?regenerate=true replaces them.
func issueAlternatives(deps Deps, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		resultID := c.Param("id")
		result, err := deps.Results.Get(ctx, resultID)
		if err != nil {
			respondError(c, notFound(err, "Analysis result not found."))
			return
		}
		issue, ok := issueindex.Find(result.AllIssues(), c.Param("issue"))
		if !ok {
			respondError(c, apperrors.NewNotFoundError("Issue not found.", nil))
			return
		}
		issue.ID = service.ResultIssueID(resultID, issue.ID)

		var alts []string
		if c.Query("regenerate") == "true" {
			alts, err = deps.Alternatives.Regenerate(ctx, issue)
		} else {
			alts, err = deps.Alternatives.Get(ctx, issue)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.AlternativesResponse{
			Success:      true,
			OriginalText: issue.SourceText(),
			Alternatives: alts,
		})
	}
}

func mapOverlay(c *gin.Context) {
	var req models.OverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("Container and media sizes are required.", err))
		return
	}

	g, ok := geometry.ContainFit(
		geometry.Size{Width: req.ContainerWidth, Height: req.ContainerHeight},
		geometry.Size{Width: req.MediaWidth, Height: req.MediaHeight},
	)
	if !ok {
		respondError(c, apperrors.NewValidationError("Container and media sizes must be positive.", nil))
		return
	}

	c.JSON(http.StatusOK, OverlayResponse{
		Geometry: g,
		Shapes:   overlay.Render(g, req.Issues, req.ActiveIssueID),
		Counts:   issueindex.CountSeverities(req.Issues),
	})
}

func exportIssues(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var issues []models.Issue
		if err := json.NewDecoder(c.Request.Body).Decode(&issues); err != nil {
			respondError(c, apperrors.NewValidationError("Expected a JSON array of issues.", err))
			return
		}
		writeExport(c, deps, issues)
	}
}

func exportResult(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := deps.Results.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, notFound(err, "Analysis result not found."))
			return
		}
		writeExport(c, deps, result.AllIssues())
	}
}

// writeExport renders issues in ?format= (json by default). With ?store=true
// the report goes to the sink and its location is returned instead.
func writeExport(c *gin.Context, deps Deps, issues []models.Issue) {
	format := export.FormatJSON
	if f := c.Query("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			respondError(c, apperrors.NewValidationError(err.Error(), nil))
			return
		}
		format = parsed
	}

	data, err := export.Render(issues, format)
	if err != nil {
		respondError(c, apperrors.NewProcessingError("Failed to render report", err))
		return
	}
	name := export.FileName(c.Query("name"), format)

	if c.Query("store") == "true" {
		if deps.Sink == nil {
			respondError(c, apperrors.NewValidationError("No report sink is configured.", nil))
			return
		}
		loc, err := deps.Sink.Put(c.Request.Context(), name, data, format.ContentType())
		if err != nil {
			respondError(c, err)
			return
		}
		if deps.Publisher != nil {
			deps.Publisher.NotifyObservers(c.Request.Context(), observer.Event{
				EventType:  observer.ReportExported,
				IssueCount: len(issues),
				Success:    true,
				Metadata:   map[string]interface{}{"format": string(format), "location": loc},
			})
		}
		c.JSON(http.StatusCreated, ExportResponse{FileName: name, Location: loc, Format: string(format)})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, format.ContentType(), data)
}

func listResults(repo repository.ResultRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.NewInternalError("Failed to list results", err))
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func getResult(repo repository.ResultRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := repo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, notFound(err, "Analysis result not found."))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getReport(sink storage.ReportSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		data, err := sink.Get(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		contentType := "application/octet-stream"
		if f, ok := export.FormatOf(name); ok {
			contentType = f.ContentType()
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrResultNotFound) {
		return apperrors.NewNotFoundError(message, err)
	}
	return apperrors.NewInternalError("Result lookup failed", err)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"detail": ...}, the only error shape clients read
func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{Detail: apperrors.UserMessage(err)})
}
