package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
	"github.com/joseph-ayodele/lease-extractor/internal/extract"
	"github.com/joseph-ayodele/lease-extractor/internal/repository"
)

// ServiceName is reported by GET /health and the gRPC health service.
const ServiceName = "address_extractor"

// Extractor is the part of extract.Extractor the handlers use.
type Extractor interface {
	ExtractWithOutcome(ctx context.Context, text string) (entity.PropertyRecord, extract.Outcome)
}

// Recorder accepts extractions for asynchronous persistence.
type Recorder interface {
	Enqueue(e *entity.Extraction) error
}

// Exporter renders history as a workbook.
type Exporter interface {
	ExportExtractionsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error)
}

type Options struct {
	Extractor      Extractor
	History        repository.ExtractionRepository // nil disables the /extractions routes
	Recorder       Recorder                        // optional
	Exporter       Exporter                        // optional
	AllowedOrigins []string
	MaxBodyBytes   int64
	Logger         *slog.Logger
}

type handlers struct {
	extractor    Extractor
	history      repository.ExtractionRepository
	recorder     Recorder
	exporter     Exporter
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handlers{
		extractor:    opts.Extractor,
		history:      opts.History,
		recorder:     opts.Recorder,
		exporter:     opts.Exporter,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, RequestLogger(opts.Logger), Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/extract-address", h.extractAddress)
	r.Get("/health", h.health)

	if h.history != nil {
		r.Route("/extractions", func(r chi.Router) {
			r.Get("/", h.listExtractions)
			if h.exporter != nil {
				r.Get("/export.xlsx", h.exportExtractions)
			}
			r.Get("/{id}", h.getExtraction)
		})
	}

	return r
}

// NewHTTPServer builds the listener-side server for a router.
func NewHTTPServer(cfg common.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
