package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
	"github.com/DivyeshVarade/grocery-scout/internal/repository"
)

// ProductHandler serves catalog browsing and admin product management.
// Product CRUD has no business rules; it talks to the repository directly.
type ProductHandler struct {
	products *repository.ProductRepository
}

func NewProductHandler(products *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) ListActive(c echo.Context) error {
	products, err := h.products.ListActive(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

func (h *ProductHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(400, map[string]string{"error": "Query parameter q is required"})
	}

	products, err := h.products.SearchByName(c.Request().Context(), q)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.products.ListCategories(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, categories)
}

func (h *ProductHandler) ByCategory(c echo.Context) error {
	products, err := h.products.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	product, err := h.products.GetByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.products.Create(c.Request().Context(), &product)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, created)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id

	updated, err := h.products.Update(c.Request().Context(), &product)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, updated)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Product deleted"})
}
