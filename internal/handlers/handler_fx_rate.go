package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/SscSPs/statement_importer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// fxRateHandler handles HTTP requests related to exchange rates.
type fxRateHandler struct {
	fxService portssvc.FxRateSvcFacade
	now       func() time.Time
}

func newFxRateHandler(fs portssvc.FxRateSvcFacade) *fxRateHandler {
	return &fxRateHandler{fxService: fs, now: time.Now}
}

// RegisterFxRateRoutes registers routes related to exchange rates.
func RegisterFxRateRoutes(rg *gin.RouterGroup, fxService portssvc.FxRateSvcFacade) {
	h := newFxRateHandler(fxService)

	rates := rg.Group("/fx-rates/:from/:to")
	{
		rates.GET("", h.getRate)
		rates.PUT("", h.overrideRate)
		rates.DELETE("", h.clearOverride)
		rates.GET("/convert", h.convert)
	}
}

// pairFromPath reads the currency pair, rejecting anything that is not a 3-letter code.
func pairFromPath(c *gin.Context) (string, string, bool) {
	from, to := strings.ToUpper(c.Param("from")), strings.ToUpper(c.Param("to"))
	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return "", "", false
	}
	return from, to, true
}

// dateFromQuery reads the optional date query parameter, defaulting to today.
func (h *fxRateHandler) dateFromQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return domain.RateDay(h.now()), true
	}
	date, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must use the YYYY-MM-DD format"})
		return time.Time{}, false
	}
	return date, true
}

// getRate godoc
// @Summary Get an exchange rate
// @Description Resolves the rate between two currencies for a day, fetching reference rates when none is stored
// @Tags fx rates
// @Produce  json
// @Param   from path string true "Source currency code"
// @Param   to path string true "Target currency code"
// @Param   date query string false "Rate day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid currency code or date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to resolve exchange rate"
// @Security BearerAuth
// @Router /fx-rates/{from}/{to} [get]
func (h *fxRateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := pairFromPath(c)
	if !ok {
		return
	}
	date, ok := h.dateFromQuery(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from_code", from), slog.String("to_code", to), slog.String("date", date.Format(dto.DateLayout)))
	rate, err := h.fxService.GetRate(c.Request.Context(), from, to, date)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}
	if rate == nil {
		logger.Info("Exchange rate not available")
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}
	c.JSON(http.StatusOK, dto.ToFxRateResponse(rate))
}

// overrideRate godoc
// @Summary Override an exchange rate
// @Description Pins a rate for one day so fetched reference rates no longer replace it
// @Tags fx rates
// @Accept  json
// @Produce  json
// @Param   from path string true "Source currency code"
// @Param   to path string true "Target currency code"
// @Param   rate body dto.OverrideRateRequest true "Rate details"
// @Success 200 {object} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to store exchange rate"
// @Security BearerAuth
// @Router /fx-rates/{from}/{to} [put]
func (h *fxRateHandler) overrideRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := pairFromPath(c)
	if !ok {
		return
	}

	var req dto.OverrideRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OverrideRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	date, err := time.Parse(dto.DateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must use the YYYY-MM-DD format"})
		return
	}

	stored, err := h.fxService.OverrideRate(c.Request.Context(), from, to, req.Rate, date, req.Source)
	if err != nil {
		respondError(c, logger, err, "Failed to store exchange rate")
		return
	}

	logger.Info("Exchange rate overridden", slog.String("from_code", from), slog.String("to_code", to), slog.String("rate", stored.Rate.String()))
	c.JSON(http.StatusOK, dto.FxRateResponse{
		From:   stored.CurrencyFrom,
		To:     stored.CurrencyTo,
		Date:   stored.RateDate.Format(dto.DateLayout),
		Rate:   stored.Rate,
		Source: stored.Source,
	})
}

// clearOverride godoc
// @Summary Clear an exchange rate override
// @Description Removes a manual rate so the reference rate applies again
// @Tags fx rates
// @Param   from path string true "Source currency code"
// @Param   to path string true "Target currency code"
// @Param   date query string false "Rate day (YYYY-MM-DD), defaults to today"
// @Success 204 "Override cleared"
// @Failure 400 {object} map[string]string "Invalid currency code or date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No override for that day"
// @Failure 500 {object} map[string]string "Failed to clear exchange rate override"
// @Security BearerAuth
// @Router /fx-rates/{from}/{to} [delete]
func (h *fxRateHandler) clearOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := pairFromPath(c)
	if !ok {
		return
	}
	date, ok := h.dateFromQuery(c)
	if !ok {
		return
	}

	if err := h.fxService.ClearOverride(c.Request.Context(), from, to, date); err != nil {
		respondError(c, logger, err, "Failed to clear exchange rate override")
		return
	}
	c.Status(http.StatusNoContent)
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies using the rate for a day
// @Tags fx rates
// @Produce  json
// @Param   from path string true "Source currency code"
// @Param   to path string true "Target currency code"
// @Param   amount query string true "Decimal amount"
// @Param   date query string false "Rate day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid currency code, amount or date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to convert amount"
// @Security BearerAuth
// @Router /fx-rates/{from}/{to}/convert [get]
func (h *fxRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := pairFromPath(c)
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal number"})
		return
	}
	date, ok := h.dateFromQuery(c)
	if !ok {
		return
	}

	converted, err := h.fxService.ConvertAmount(c.Request.Context(), amount, from, to, date)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}
	if converted == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}
	c.JSON(http.StatusOK, dto.ConvertResponse{
		From:            from,
		To:              to,
		Date:            date.Format(dto.DateLayout),
		Amount:          amount,
		ConvertedAmount: *converted,
	})
}
