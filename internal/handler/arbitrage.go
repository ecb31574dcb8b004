package handler

import (
	"net/http"

	"market-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ScanArbitrage godoc
// @Summary      Scan for arbitrage opportunities
// @Description  Samples venue prices across the requested chains and returns up to 10 opportunities whose net profit clears minProfitBps, best first. Omitting asset scans the default basket.
// @Tags         arbitrage
// @Accept       json
// @Produce      json
// @Param        request  body  domain.ScanRequest  true  "Scan parameters"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /arbitrage-scanner [post]
func (h *Handler) ScanArbitrage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.scan-arbitrage")
	defer span.End()

	var req domain.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("asset", domain.NormalizeSymbol(req.Asset)),
		attribute.StringSlice("chains", req.Chains),
		attribute.Float64("min_profit_bps", req.MinProfitBps),
	)

	opportunities, err := h.scanner.Scan(ctx, req)
	if err != nil {
		h.respondError(c, span, err, "")
		return
	}
	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))

	c.JSON(http.StatusOK, gin.H{"opportunities": opportunities})
}
