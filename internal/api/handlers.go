package api

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediaconv/internal/logger"
	"mediaconv/internal/models"
	"mediaconv/internal/scratch"
	"mediaconv/internal/worker"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	// multipart parts above this size spill to disk while parsing
	multipartMemory = 32 << 20
)

//go:embed web/index.html
var indexPage []byte

// Converter runs the conversion pipelines.
type Converter interface {
	Run(ctx context.Context, req models.ConversionRequest) (*models.ConversionResult, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// ConversionRecorder persists request metadata. Optional.
type ConversionRecorder interface {
	Record(ctx context.Context, rec *models.ConversionRecord) error
	Recent(ctx context.Context, limit int) ([]*models.ConversionRecord, error)
}

// Options carries the handler dependencies.
type Options struct {
	Converter      Converter
	Scratch        *scratch.Manager
	Limiter        *worker.Limiter
	Recorder       ConversionRecorder
	Logger         *slog.Logger
	MaxUploadBytes int64
}

// Handler wires HTTP routes to the conversion service.
type Handler struct {
	converter Converter
	scratch   *scratch.Manager
	limiter   *worker.Limiter
	recorder  ConversionRecorder
	log       *slog.Logger
	maxUpload int64
}

// NewHandler constructs a Handler instance.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Converter == nil {
		return nil, errors.New("converter required")
	}
	if opts.Scratch == nil {
		return nil, errors.New("scratch manager required")
	}
	if opts.Limiter == nil {
		opts.Limiter = worker.NewLimiter(1)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 200 << 20
	}
	return &Handler{
		converter: opts.Converter,
		scratch:   opts.Scratch,
		limiter:   opts.Limiter,
		recorder:  opts.Recorder,
		log:       opts.Logger,
		maxUpload: opts.MaxUploadBytes,
	}, nil
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger())
	router.GET("/", h.index)
	router.POST("/convert", h.limitBody(), h.convert)
	router.POST("/summarize", h.summarize)
	router.GET("/health", h.health)
	router.GET("/conversions", h.listConversions)
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// requestLogger tags each request with an id and logs its outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		log := h.log.With("request_id", id)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
