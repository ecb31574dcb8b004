package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetDexPair godoc
// @Summary      Get DEX pair snapshot
// @Description  Returns price, liquidity, 24h volume and swap fee for a DEX pair. Snapshots are cached for 10 seconds.
// @Tags         oracle
// @Produce      json
// @Param        chain        path  string  true  "Chain id or alias (e.g., eth, polygon, solana)"
// @Param        pairAddress  path  string  true  "Pair contract address"
// @Success      200  {object}  domain.DexSnapshot
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /oracle-dex/{chain}/{pairAddress} [get]
func (h *Handler) GetDexPair(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-dex-pair")
	defer span.End()

	chain := c.Param("chain")
	pairAddress := c.Param("pairAddress")
	span.SetAttributes(attribute.String("chain", chain), attribute.String("pair_address", pairAddress))

	snap, err := h.dex.GetPairSnapshot(ctx, chain, pairAddress)
	if err != nil {
		h.respondError(c, span, err, "Pair not found")
		return
	}

	c.JSON(http.StatusOK, snap)
}
