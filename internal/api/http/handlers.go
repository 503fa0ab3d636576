package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/nuclear-add/internal/backend"
	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/types"
)

// maxBatch caps the number of elements accepted in one request
const maxBatch = 1 << 20

// Handlers serves the arithmetic API for one engine
type Handlers struct {
	engine  *engine.Engine
	version string
}

// NewHandlers creates a new handler set
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return &Handlers{engine: e, version: version}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	v1.POST("/add", h.Add)
	v1.POST("/add-with-error", h.AddWithError)
	v1.POST("/sum", h.Sum)
	v1.POST("/evaluate", h.Evaluate)
	v1.POST("/gradient", h.Gradient)
	v1.POST("/batch/add", h.BatchAdd)
	v1.POST("/batch/reduce", h.BatchReduce)
	v1.GET("/backends", h.ListBackends)
	v1.GET("/events", h.ListEvents)
	v1.DELETE("/events", h.ClearEvents)
}

type addRequest struct {
	A      ValueJSON `json:"a"`
	B      ValueJSON `json:"b"`
	Mode   string    `json:"mode,omitempty"`
	Strict *bool     `json:"strict,omitempty"`
}

type pairRequest struct {
	A types.Float `json:"a"`
	B types.Float `json:"b"`
}

type sumRequest struct {
	Values []types.Float `json:"values"`
}

type exprRequest struct {
	Expr ExprJSON `json:"expr"`
	Wrt  string   `json:"wrt,omitempty"`
}

type batchAddRequest struct {
	A []types.Float `json:"a"`
	B []types.Float `json:"b"`
}

// Health reports liveness and the engine's bound configuration
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nuclear-add",
		"version": h.version,
		"engine":  h.engine.ID().String(),
		"config":  h.engine.Config().String(),
		"backend": h.engine.Backend().Name(),
	})
}

// Add adds two tagged values. An optional mode or strict flag overrides
// the engine's config for this call only.
func (h *Handlers) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := req.A.Decode()
	if err != nil {
		badRequest(c, err)
		return
	}
	b, err := req.B.Decode()
	if err != nil {
		badRequest(c, err)
		return
	}

	var cfg *engine.Config
	if req.Mode != "" || req.Strict != nil {
		override, err := h.override(req.Mode, req.Strict)
		if err != nil {
			badRequest(c, err)
			return
		}
		cfg = &override
	}

	mode := h.engine.Config().PrecisionMode()
	if cfg != nil {
		mode = cfg.PrecisionMode()
	}
	tag(c, "numeric.mode", mode.String())

	result, err := h.engine.AddWithConfig(a, b, cfg)
	if err != nil {
		fail(c, err)
		return
	}
	tag(c, "numeric.kind", result.Kind().String())
	c.JSON(http.StatusOK, gin.H{"result": EncodeValue(result)})
}

func (h *Handlers) override(mode string, strict *bool) (engine.Config, error) {
	var opts []engine.Option
	if mode != "" {
		m, err := engine.ParsePrecisionMode(mode)
		if err != nil {
			return engine.Config{}, err
		}
		opts = append(opts, engine.WithPrecisionMode(m))
	}
	if strict != nil {
		opts = append(opts, engine.WithStrict(*strict))
	}
	return h.engine.Config().With(opts...)
}

// AddWithError returns a sum and an interval that contains the exact sum
func (h *Handlers) AddWithError(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sum, bound, err := h.engine.AddWithError(float64(req.A), float64(req.B))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": types.Float(sum),
		"bound":  EncodeValue(bound),
		"width":  types.Float(bound.Width()),
	})
}

// Sum adds a list of floats. The naive left fold is returned next to the
// engine's result so clients can see the compensation.
func (h *Handlers) Sum(c *gin.Context) {
	var req sumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Values) > maxBatch {
		tooLarge(c, len(req.Values))
		return
	}

	xs := types.Float64s(req.Values)
	sum, err := h.engine.Sum(xs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": types.Float(sum),
		"naive":  types.Float(numeric.NaiveSum(xs)),
		"count":  len(xs),
	})
}

// Evaluate evaluates an expression tree with a compensated sum
func (h *Handlers) Evaluate(c *gin.Context) {
	var req exprRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expr, err := req.Expr.Decode()
	if err != nil {
		badRequest(c, err)
		return
	}

	sum, err := h.engine.EvaluateSafe(expr)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":     types.Float(sum),
		"naive":      types.Float(expr.Evaluate()),
		"expression": expr.String(),
	})
}

// Gradient differentiates an expression with respect to one leaf, or
// every leaf when wrt is empty
func (h *Handlers) Gradient(c *gin.Context) {
	var req exprRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expr, err := req.Expr.Decode()
	if err != nil {
		badRequest(c, err)
		return
	}

	if req.Wrt != "" {
		c.JSON(http.StatusOK, gin.H{
			"wrt":      req.Wrt,
			"gradient": types.Float(h.engine.Gradient(expr, req.Wrt)),
		})
		return
	}

	grads := make(map[string]types.Float)
	for _, name := range expr.Variables() {
		grads[name] = types.Float(h.engine.Gradient(expr, name))
	}
	c.JSON(http.StatusOK, gin.H{"gradients": grads})
}

// BatchAdd adds two equal-length vectors on the engine's backend
func (h *Handlers) BatchAdd(c *gin.Context) {
	var req batchAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.A) > maxBatch {
		tooLarge(c, len(req.A))
		return
	}

	out, err := h.engine.AddElementwise(types.Float64s(req.A), types.Float64s(req.B))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  types.Floats(out),
		"backend": h.engine.Backend().Name(),
	})
}

// BatchReduce reduces a vector on the engine's backend without
// compensation
func (h *Handlers) BatchReduce(c *gin.Context) {
	var req sumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Values) > maxBatch {
		tooLarge(c, len(req.Values))
		return
	}

	sum, err := h.engine.Reduce(types.Float64s(req.Values))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  types.Float(sum),
		"backend": h.engine.Backend().Name(),
	})
}

// ListBackends lists the registered backends
func (h *Handlers) ListBackends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"backends": backend.List(),
		"bound":    h.engine.Backend().Name(),
	})
}

// ListEvents returns recorded anomalies, optionally filtered by
// min_severity. format=ndjson streams one event per line.
func (h *Handlers) ListEvents(c *gin.Context) {
	if strings.EqualFold(c.Query("format"), "ndjson") {
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
		if err := h.engine.Tracer().WriteNDJSON(c.Writer); err != nil {
			_ = c.Error(err)
		}
		return
	}

	threshold := errtrace.Info
	if s := c.Query("min_severity"); s != "" {
		parsed, err := errtrace.ParseSeverity(s)
		if err != nil {
			badRequest(c, err)
			return
		}
		threshold = parsed
	}

	events := make([]errtrace.ErrorEvent, 0)
	for ev := range h.engine.Tracer().EventsAtOrAbove(threshold) {
		events = append(events, ev)
	}
	c.JSON(http.StatusOK, gin.H{
		"events":  events,
		"count":   len(events),
		"summary": h.engine.Tracer().Summary(),
	})
}

// ClearEvents empties the trace log
func (h *Handlers) ClearEvents(c *gin.Context) {
	h.engine.Tracer().Clear()
	c.Status(http.StatusNoContent)
}

func badRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "limit": tooLarge.Limit})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func tooLarge(c *gin.Context, n int) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": "too many values",
		"count": n,
		"limit": maxBatch,
	})
}

// tag annotates the request span, when the tracing middleware installed one
func tag(c *gin.Context, key, value string) {
	if span := tracing.SpanFromContext(c.Request.Context()); span != nil {
		span.SetTag(key, value)
	}
}

// fail maps engine errors onto status codes
func fail(c *gin.Context, err error) {
	var anomaly *engine.AnomalyError
	switch {
	case errors.As(err, &anomaly):
		tag(c, "numeric.anomaly", anomaly.Event.Type.String())
		tag(c, "numeric.severity", anomaly.Event.Severity.String())
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"event": anomaly.Event,
		})
	case errors.Is(err, numeric.ErrTypeMismatch),
		errors.Is(err, numeric.ErrInvalidInterval),
		errors.Is(err, numeric.ErrNegativeVariance),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, backend.ErrLengthMismatch),
		errors.Is(err, errBadValue):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
