package handler

import (
	"net/http"

	"market-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetRefPrice godoc
// @Summary      Get reference USD price
// @Description  Returns the cached reference price for an asset, refreshing it from CoinGecko when expired. Serves a stale quote when upstream is rate limited.
// @Tags         oracle
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g., BTC, ETH)"
// @Success      200  {object}  domain.PriceQuote
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /oracle-refprice/{symbol} [get]
func (h *Handler) GetRefPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ref-price")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	quote, err := h.refPrice.GetPrice(ctx, symbol)
	if err != nil {
		h.respondError(c, span, err, "Unknown symbol")
		return
	}
	span.SetAttributes(attribute.Bool("stale", quote.Stale))

	c.JSON(http.StatusOK, quote)
}
