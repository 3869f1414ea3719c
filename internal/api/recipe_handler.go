package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/service"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	orderService  *service.OrderService
	users         UserStore
}

func NewRecipeHandler(recipeService *service.RecipeService, orderService *service.OrderService,
	users UserStore) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, orderService: orderService, users: users}
}

func (h *RecipeHandler) Generate(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	var body struct {
		Prompt   string `json:"prompt"`
		Servings int    `json:"servings"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.Prompt == "" {
		return c.JSON(400, map[string]string{"error": "Prompt is required"})
	}

	recipe, err := h.recipeService.GenerateRecipe(c.Request().Context(), userID, body.Prompt, body.Servings)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, recipe)
}

func (h *RecipeHandler) MyRecipes(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	recipes, err := h.recipeService.RecipesForUser(ctx, user)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, recipes)
}

func (h *RecipeHandler) Delete(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.recipeService.DeleteRecipe(ctx, id, user); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Recipe deleted"})
}

// ToCart converts a recipe into a cart and places the resulting order.
func (h *RecipeHandler) ToCart(c echo.Context) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.JSON(401, map[string]string{"error": "invalid token"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	ctx := c.Request().Context()
	cart, err := h.recipeService.ConvertRecipeToCart(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	order, err := h.orderService.PlaceOrder(ctx, userID, cart)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(200, map[string]any{"message": "Order placed from recipe", "order_id": order.ID})
}
