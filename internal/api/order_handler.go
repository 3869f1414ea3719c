package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
	"github.com/DivyeshVarade/grocery-scout/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	cart := entity.CartRequest{}
	if err := c.Bind(&cart); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if len(cart.Items) == 0 {
		return c.JSON(400, map[string]string{"error": "Cart is empty"})
	}

	order, err := h.orderService.PlaceOrder(c.Request().Context(), userID, &cart)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, order)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	orders, err := h.orderService.GetOrdersByUser(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	status := entity.OrderStatus(body.Status)
	if !status.Valid() {
		return c.JSON(400, map[string]string{"error": "Unknown status: " + body.Status})
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), id, status)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

func (h *OrderHandler) ListPaginated(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 {
		size = 20
	}

	orders, err := h.orderService.GetOrdersPaginated(c.Request().Context(), page, size)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

func (h *OrderHandler) ListByStatus(c echo.Context) error {
	status := entity.OrderStatus(c.Param("status"))
	if !status.Valid() {
		return c.JSON(400, map[string]string{"error": "Unknown status: " + c.Param("status")})
	}

	orders, err := h.orderService.GetOrdersByStatus(c.Request().Context(), status)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

func (h *OrderHandler) DashboardStats(c echo.Context) error {
	stats, err := h.orderService.GetDashboardStats(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, stats)
}
