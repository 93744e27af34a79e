package api

import (
	"encoding/json"
	"fmt"
	"time"

	models "SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
	icache "SignalPulse/internal/service/cache"
	"SignalPulse/internal/service/metrics"
	"SignalPulse/internal/service/ratelimit"
	"SignalPulse/internal/usecase"
	xhttp "SignalPulse/pkg/http"
	xlogger "SignalPulse/pkg/logger"
	"SignalPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes the signal engine over HTTP.
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	evaluator *usecase.SignalEvaluator
	archive   domrepo.SignalArchive
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, evaluator *usecase.SignalEvaluator, archive domrepo.SignalArchive) *SignalsEchoHandler {
	metrics.Register()
	return &SignalsEchoHandler{logger: logger, evaluator: evaluator, archive: archive, rl: ratelimit.New()}
}

// SetCache injects a response cache for the indicator endpoint.
func (h *SignalsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/indicators", h.Indicators)
	g.GET("/signals/history", h.History)
	g.GET("/assets", h.Assets)
}

// Signal runs a full evaluation pass for one asset. Non-HOLD verdicts are
// dispatched as part of the pass; the response carries the record either way.
func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	start := time.Now()
	endpoint := "signal"
	defer func() { metrics.SignalsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":signal", 5, 2) {
		h.logger.Warn("signals.signal rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	rec, err := h.evaluator.EvaluateAsset(c.Request().Context(), req.Asset)
	if err != nil {
		metrics.SignalsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals.signal error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rec)
}

// Indicators returns the indicator snapshot without side effects.
func (h *SignalsEchoHandler) Indicators(c echo.Context) error {
	start := time.Now()
	endpoint := "indicators"
	defer func() { metrics.SignalsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := fmt.Sprintf("indicators:%s:%d", req.Asset, req.N)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("signals.indicators cache_get_error", xlogger.Error(err))
		} else if ok {
			h.logger.Debug("signals.indicators cache_hit", xlogger.String("key", cacheKey))
			return c.JSONBlob(200, b)
		}
	}

	rec, err := h.evaluator.Inspect(c.Request().Context(), req.Asset, req.N)
	if err != nil {
		metrics.SignalsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals.indicators error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	payload := map[string]interface{}{
		"asset":    rec.Asset,
		"price":    rec.Price,
		"snapshot": rec.Snapshot,
	}
	if h.cache != nil {
		if b, err := json.Marshal(payload); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("signals.indicators cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, payload)
}

// History reads archived signals for an asset over a time range.
func (h *SignalsEchoHandler) History(c echo.Context) error {
	start := time.Now()
	endpoint := "history"
	defer func() { metrics.SignalsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)

	rows, err := h.archive.Query(c.Request().Context(), req.Asset, from, to, req.Limit)
	if err != nil {
		metrics.SignalsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals.history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Assets lists the tracked asset identifiers.
func (h *SignalsEchoHandler) Assets(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.evaluator.Assets())
}

var _ xhttp.Handler = (*SignalsEchoHandler)(nil)
