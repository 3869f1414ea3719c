package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
	"github.com/DivyeshVarade/grocery-scout/internal/repository"
	"github.com/DivyeshVarade/grocery-scout/internal/service"
)

type CartHandler struct {
	cart         *repository.CartRepository
	products     *repository.ProductRepository
	orderService *service.OrderService
}

func NewCartHandler(cart *repository.CartRepository, products *repository.ProductRepository,
	orderService *service.OrderService) *CartHandler {
	return &CartHandler{cart: cart, products: products, orderService: orderService}
}

func (h *CartHandler) Get(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	items, err := h.cart.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, items)
}

func (h *CartHandler) Add(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	var body struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}

	ctx := c.Request().Context()
	if _, err := h.products.GetByID(ctx, body.ProductID); err != nil {
		return errorJSON(c, err)
	}

	if err := h.cart.Add(ctx, userID, body.ProductID, body.Quantity); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Added to cart"})
}

func (h *CartHandler) Update(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	ctx := c.Request().Context()
	if body.Quantity <= 0 {
		if err := h.cart.Remove(ctx, userID, productID); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(200, map[string]string{"message": "Removed from cart"})
	}

	if err := h.cart.SetQuantity(ctx, userID, productID, body.Quantity); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Quantity updated"})
}

func (h *CartHandler) Remove(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.cart.Remove(c.Request().Context(), userID, productID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Removed from cart"})
}

func (h *CartHandler) Clear(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	if err := h.cart.Clear(c.Request().Context(), userID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Cart cleared"})
}

// Checkout folds the persisted cart into an order and clears the cart on
// success.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	var body struct {
		DeliveryAddress string `json:"delivery_address"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	ctx := c.Request().Context()
	items, err := h.cart.ListByUser(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}
	if len(items) == 0 {
		return c.JSON(400, map[string]string{"error": "Cart is empty"})
	}

	cart := entity.CartRequest{DeliveryAddress: body.DeliveryAddress}
	for _, item := range items {
		cart.Items = append(cart.Items, entity.CartItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orderService.PlaceOrder(ctx, userID, &cart)
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.cart.Clear(ctx, userID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, map[string]any{"message": "Order placed!", "order_id": order.ID})
}
