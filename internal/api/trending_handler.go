package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/service"
)

type TrendingHandler struct {
	trending *service.TrendingService
}

func NewTrendingHandler(trending *service.TrendingService) *TrendingHandler {
	return &TrendingHandler{trending: trending}
}

func (h *TrendingHandler) Get(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 5
	}

	products, err := h.trending.GetTrendingProducts(c.Request().Context(), limit)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}
