package api

import (
	"encoding/json"
	"fmt"
	"time"

	models "VolPull/internal/domain/models"
	domrepo "VolPull/internal/domain/repository"
	icache "VolPull/internal/service/cache"
	"VolPull/internal/service/metrics"
	"VolPull/internal/service/ratelimit"
	"VolPull/internal/usecase"
	xhttp "VolPull/pkg/http"
	xlogger "VolPull/pkg/logger"
	"VolPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// DvolEchoHandler serves the index read API.
type DvolEchoHandler struct {
	logger     *xlogger.Logger
	results    domrepo.ResultStore
	validation *usecase.ValidationUseCase
	cache      icache.BytesCache
	rl         *ratelimit.Limiter
	cacheTTL   time.Duration
}

func NewDvolEchoHandler(
	logger *xlogger.Logger,
	results domrepo.ResultStore,
	validation *usecase.ValidationUseCase,
	cache icache.BytesCache,
	cacheTTL time.Duration,
) *DvolEchoHandler {
	metrics.Register()
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &DvolEchoHandler{
		logger:     logger,
		results:    results,
		validation: validation,
		cache:      cache,
		rl:         ratelimit.New(),
		cacheTTL:   cacheTTL,
	}
}

func (h *DvolEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dvol", h.Dvol)
	g.GET("/vov", h.Vov)
	g.GET("/validation", h.Validation)
	e.GET("/health", h.Health)
}

// Dvol returns the latest N hourly index values for an asset.
func (h *DvolEchoHandler) Dvol(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.EndpointLatency.WithLabelValues("dvol").Observe(time.Since(start).Seconds())
	}()

	req := &models.DvolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.Fail(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":dvol", 10, 5) {
		return xhttp.Fail(c, &xhttp.AppError{Status: 429, Code: "rate_limited", Message: "too many requests"})
	}

	key := fmt.Sprintf("dvol:%s:%d:%s:%s", req.Asset, req.N, req.From, req.To)
	if b, ok := h.cached(c, key); ok {
		metrics.CacheHits.WithLabelValues("dvol").Inc()
		return c.JSONBlob(200, b)
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.AddDate(-2, 0, 0))
	to := util.ParseTimeDefault(req.To, now)
	recs, err := h.results.QueryHourly(c.Request().Context(), req.Asset, from, to, req.N)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("dvol").Inc()
		h.logger.Error("dvol query failed", xlogger.Error(err))
		return xhttp.Fail(c, xhttp.NewInternal("query hourly dvol", err))
	}
	if len(recs) == 0 {
		return xhttp.Fail(c, xhttp.NewNotFound("no index values for "+req.Asset))
	}
	return h.respond(c, "dvol", key, recs)
}

// Vov returns the latest N daily VoV records for an asset.
func (h *DvolEchoHandler) Vov(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.EndpointLatency.WithLabelValues("vov").Observe(time.Since(start).Seconds())
	}()

	req := &models.VovRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.Fail(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":vov", 10, 5) {
		return xhttp.Fail(c, &xhttp.AppError{Status: 429, Code: "rate_limited", Message: "too many requests"})
	}

	key := fmt.Sprintf("vov:%s:%d:%s:%s", req.Asset, req.N, req.From, req.To)
	if b, ok := h.cached(c, key); ok {
		metrics.CacheHits.WithLabelValues("vov").Inc()
		return c.JSONBlob(200, b)
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.AddDate(-2, 0, 0))
	to := util.ParseTimeDefault(req.To, now)
	recs, err := h.results.QueryVov(c.Request().Context(), req.Asset, from, to, req.N)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("vov").Inc()
		h.logger.Error("vov query failed", xlogger.Error(err))
		return xhttp.Fail(c, xhttp.NewInternal("query vov", err))
	}
	if len(recs) == 0 {
		return xhttp.Fail(c, xhttp.NewNotFound("no vov records for "+req.Asset))
	}
	return h.respond(c, "vov", key, recs)
}

// Validation compares the computed series against the exchange index over
// the trailing 90 days.
func (h *DvolEchoHandler) Validation(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.EndpointLatency.WithLabelValues("validation").Observe(time.Since(start).Seconds())
	}()

	req := &models.ValidationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.Fail(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":validation", 2, 0.5) {
		return xhttp.Fail(c, &xhttp.AppError{Status: 429, Code: "rate_limited", Message: "too many requests"})
	}

	now := time.Now().UTC()
	report, err := h.validation.Validate(c.Request().Context(), req.Asset, now.AddDate(0, 0, -90), now)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("validation").Inc()
		h.logger.Error("validation failed", xlogger.Error(err))
		return xhttp.Fail(c, xhttp.NewInternal("validate", err))
	}
	return xhttp.OK(c, report)
}

// Health reports storage liveness.
func (h *DvolEchoHandler) Health(c echo.Context) error {
	if err := h.results.Health(c.Request().Context()); err != nil {
		return xhttp.Fail(c, xhttp.NewInternal("storage unhealthy", err))
	}
	return xhttp.OK(c, map[string]string{"status": "ok"})
}

func (h *DvolEchoHandler) cached(c echo.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(c.Request().Context(), key)
	if err != nil || !ok {
		return nil, false
	}
	return b, true
}

func (h *DvolEchoHandler) respond(c echo.Context, endpoint, key string, data interface{}) error {
	env := xhttp.APIResponse{Success: true, Data: data}
	b, err := json.Marshal(env)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return xhttp.Fail(c, xhttp.NewInternal("encode response", err))
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(c.Request().Context(), key, b, h.cacheTTL); err != nil {
			h.logger.Warn("cache write failed", xlogger.Error(err))
		}
	}
	return c.JSONBlob(200, b)
}
