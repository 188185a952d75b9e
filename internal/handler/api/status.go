package api

import (
	"sort"
	"strings"

	"StockMon/internal/domain/models"
	xhttp "StockMon/pkg/http"
	xlogger "StockMon/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PriceSource serves the latest price snapshot.
type PriceSource interface {
	Snapshot() models.PriceMap
}

// AlertSource serves the current alert settings.
type AlertSource interface {
	AlertSettings() map[string]models.AlertSetting
}

// StatusHandler exposes read-only views of prices and alert settings.
type StatusHandler struct {
	logger *xlogger.Logger
	prices PriceSource
	alerts AlertSource
}

func NewStatusHandler(logger *xlogger.Logger, prices PriceSource, alerts AlertSource) *StatusHandler {
	return &StatusHandler{logger: logger, prices: prices, alerts: alerts}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/prices", h.Prices)
	g.GET("/prices/:code", h.Price)
	g.GET("/alerts", h.Alerts)
}

// Prices lists every price ordered by code.
func (h *StatusHandler) Prices(c echo.Context) error {
	snap := h.prices.Snapshot()
	out := make([]models.StockPrice, 0, len(snap))
	for _, code := range snap.Codes() {
		out = append(out, snap[code])
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *StatusHandler) Price(c echo.Context) error {
	code := strings.ToUpper(c.Param("code"))
	p, ok := h.prices.Snapshot()[code]
	if !ok {
		return xhttp.NotFoundResponse(c, "Unknown stock code: "+code)
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *StatusHandler) Alerts(c echo.Context) error {
	settings := h.alerts.AlertSettings()
	out := make([]models.AlertSetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return xhttp.SuccessResponse(c, out)
}
