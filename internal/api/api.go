// Package api exposes the resolver pipeline and Component H snapshots over
// HTTP, for integrators that want analysis as a service rather than a CLI
// invocation per document.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
	"github.com/phosphorco/legalnlp/pkg/logging"
)

// Analyzer builds a snapshot for a tokenized document, as
// internal/legal/pipeline.NewStandard plus pipeline.SnapshotRegistry do.
// Passed in so this package never imports a resolver package directly.
type Analyzer func(doc *document.Document) (*snapshot.Snapshot, error)

// Server wires the HTTP surface: POST /v1/analyze builds and returns a
// snapshot for inline text; GET /v1/snapshots/:id serves a previously cached
// one; GET /metrics (if a telemetry handler is set) exposes Prometheus
// metrics. Errors from the resolver pipeline are logged through
// logging.Logger rather than just returned to the client, so operators can
// find failing documents in aggregated logs.
type Server struct {
	engine   *gin.Engine
	analyze  Analyzer
	cache    SnapshotCache
	logger   *logging.Logger
	validate *validator.Validate
}

// SnapshotCache is the subset of internal/lnlp/cache.Cache the API needs;
// an interface here so the API can be tested without a real badger store.
type SnapshotCache interface {
	Get(docID uint64) (*snapshot.Snapshot, bool, error)
	Put(docID uint64, snap *snapshot.Snapshot) error
}

// AnalyzeRequest is the POST /v1/analyze body.
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,max=1048576"`
}

// AnalyzeResponse wraps a built snapshot with the request ID that produced
// it, for client-side correlation with server logs.
type AnalyzeResponse struct {
	RequestID string             `json:"request_id"`
	Snapshot  *snapshot.Snapshot `json:"snapshot"`
}

// NewServer builds a Server. metricsHandler may be nil to omit /metrics.
func NewServer(analyze Analyzer, cache SnapshotCache, logger *logging.Logger, metricsHandler http.Handler) *Server {
	s := &Server{
		analyze:  analyze,
		cache:    cache,
		logger:   logger,
		validate: validator.New(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("legalnlp-api"))
	r.Use(s.requestIDMiddleware())

	r.POST("/v1/analyze", s.handleAnalyze)
	r.GET("/v1/snapshots/:id", s.handleGetSnapshot)
	s.registerWebsocket(r)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	s.engine = r
	return s
}

// Handler returns the underlying http.Handler for use with http.Server or
// httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("request_id", uuid.NewString())
		c.Next()
	}
}

func (s *Server) handleAnalyze(c *gin.Context) {
	requestID, _ := c.Get("request_id")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}

	doc, err := document.FromText(req.Text)
	if err != nil {
		s.logger.LogPipelineError("tokenize", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}

	start := time.Now()
	snap, err := s.analyze(doc)
	if err != nil {
		s.logger.LogPipelineError("analyze", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}
	s.logger.Info("analyzed document",
		"request_id", requestID,
		"doc_id", doc.ID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s.cache != nil {
		if err := s.cache.Put(doc.ID(), snap); err != nil {
			s.logger.Warn("caching snapshot failed", "request_id", requestID, "error", err.Error())
		}
	}

	c.JSON(http.StatusOK, AnalyzeResponse{RequestID: requestID.(string), Snapshot: snap})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	requestID, _ := c.Get("request_id")
	id := c.Param("id")

	docID, ok := parseDocID(id)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot id", "request_id": requestID})
		return
	}
	if s.cache == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cache configured", "request_id": requestID})
		return
	}
	snap, found, err := s.cache.Get(docID)
	if err != nil {
		s.logger.LogPipelineError("cache-get", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "request_id": requestID})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found", "request_id": requestID})
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{RequestID: requestID.(string), Snapshot: snap})
}

func parseDocID(s string) (uint64, bool) {
	var id uint64
	var n int
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		id = id*10 + uint64(s[i]-'0')
		n++
	}
	return id, n > 0
}
