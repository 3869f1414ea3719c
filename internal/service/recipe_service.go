package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/DivyeshVarade/grocery-scout/internal/config"
	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

// Generic terms that must never resolve to a product. A catalog search on
// "water" would otherwise false-positive against "watermelon".
var ingredientSkipList = map[string]bool{
	"water": true,
	"salt":  true,
	"ice":   true,
	"oil":   true,
	"sugar": true,
}

var (
	gramsPattern  = regexp.MustCompile(`\((\d+)g\)`)
	leadingNumber = regexp.MustCompile(`^(\d+)`)
)

// RecipeStore is the recipe persistence surface the service depends on.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error)
	GetByID(ctx context.Context, id int) (*entity.Recipe, error)
	ListByCreator(ctx context.Context, creatorID int) ([]*entity.Recipe, error)
	ListByCreatorRole(ctx context.Context, role entity.Role) ([]*entity.Recipe, error)
	Delete(ctx context.Context, id int) error
	HideForUser(ctx context.Context, userID, recipeID int) error
	HiddenRecipeIDs(ctx context.Context, userID int) (map[int]bool, error)
}

// ProductCatalog is the catalog search surface used by ingredient resolution.
type ProductCatalog interface {
	SearchByName(ctx context.Context, keyword string) ([]*entity.Product, error)
	GetByID(ctx context.Context, id int) (*entity.Product, error)
}

// RecipeService generates recipes through the AI endpoint, resolves their
// ingredients against the catalog, and converts recipes into purchasable carts.
type RecipeService struct {
	recipes RecipeStore
	catalog ProductCatalog
	events  *EventPublisher
	gemini  *geminiClient
}

func NewRecipeService(recipes RecipeStore, catalog ProductCatalog, events *EventPublisher,
	geminiCfg config.GeminiConfig, httpClient *http.Client) *RecipeService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RecipeService{
		recipes: recipes,
		catalog: catalog,
		events:  events,
		gemini:  &geminiClient{cfg: geminiCfg, httpClient: httpClient},
	}
}

// GenerateRecipe synthesizes a recipe for the prompt, links ingredients to
// catalog products where a confident match exists, persists the result, and
// emits a recipes.generated event.
func (s *RecipeService) GenerateRecipe(ctx context.Context, userID int, prompt string, servings int) (*entity.Recipe, error) {
	if servings <= 0 {
		servings = 2
	}

	generated, err := s.gemini.generate(ctx, prompt, servings)
	if err != nil {
		logger.Error().Err(err).Msg("Error generating recipe")
		return nil, err
	}

	var instructions strings.Builder
	for i, step := range generated.Instructions {
		fmt.Fprintf(&instructions, "%d. %s\n", i+1, step)
	}

	recipe := &entity.Recipe{
		Title:        generated.Title,
		Instructions: strings.TrimSpace(instructions.String()),
		PrepTime:     generated.PrepTime,
		Difficulty:   generated.Difficulty,
		CreatorID:    userID,
	}

	var names []string
	for _, ing := range generated.Ingredients {
		names = append(names, ing.Name)

		quantity := ing.Quantity
		if ing.QuantityGrams > 0 {
			quantity = fmt.Sprintf("%s (%dg)", ing.Quantity, ing.QuantityGrams)
		}

		ingredient := entity.Ingredient{
			Name:     ing.Name,
			Quantity: quantity,
		}

		matched, err := s.MatchIngredientToProduct(ctx, ing.Name)
		if err != nil {
			logger.Error().Err(err).Msgf("Error matching ingredient %q", ing.Name)
		} else if matched != nil {
			id := matched.ID
			ingredient.LinkedProductID = &id
		}

		recipe.Ingredients = append(recipe.Ingredients, ingredient)
	}

	saved, err := s.recipes.CreateRecipe(ctx, recipe)
	if err != nil {
		logger.Error().Err(err).Msg("Error saving recipe")
		return nil, err
	}

	s.events.RecipeGenerated(ctx, entity.RecipeGeneratedEvent{
		RecipeID:    saved.ID,
		Ingredients: strings.Join(names, ","),
	})

	return saved, nil
}

// MatchIngredientToProduct resolves a free-text ingredient name to a catalog
// product. Matching is best-effort and deliberately strict: a false negative
// costs one unmatched ingredient, a false positive puts the wrong product in
// the cart.
func (s *RecipeService) MatchIngredientToProduct(ctx context.Context, ingredientName string) (*entity.Product, error) {
	normalized := strings.ToLower(strings.TrimSpace(ingredientName))
	if normalized == "" || ingredientSkipList[normalized] {
		return nil, nil
	}

	// Pass 1: search by the full name; accept equality or containment in
	// either direction.
	matches, err := s.catalog.SearchByName(ctx, ingredientName)
	if err != nil {
		return nil, err
	}
	for _, p := range matches {
		pName := strings.ToLower(p.Name)
		if pName == normalized || strings.Contains(pName, normalized) || strings.Contains(normalized, pName) {
			return p, nil
		}
	}

	// Pass 2: fall back to significant tokens. Tokens shorter than 4 chars
	// are skipped to avoid "water" matching "watermelon" at the token level;
	// a candidate must start with the token or contain it as a separate word.
	for _, word := range strings.Fields(normalized) {
		if len(word) < 4 || ingredientSkipList[word] {
			continue
		}
		matches, err = s.catalog.SearchByName(ctx, word)
		if err != nil {
			return nil, err
		}
		for _, p := range matches {
			pName := strings.ToLower(p.Name)
			if strings.HasPrefix(pName, word) || strings.Contains(pName, " "+word) {
				return p, nil
			}
		}
	}

	return nil, nil
}

// ConvertRecipeToCart turns a recipe's resolved ingredients into purchase
// quantities. When an ingredient carries a gram amount and the product has a
// known package weight, the quantity is ceil(grams / package weight);
// otherwise a leading integer in the quantity text is used, defaulting to 1.
func (s *RecipeService) ConvertRecipeToCart(ctx context.Context, recipeID int) (*entity.CartRequest, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	cart := &entity.CartRequest{
		DeliveryAddress: "From Recipe: " + recipe.Title,
	}

	for _, ing := range recipe.Ingredients {
		if ing.LinkedProductID == nil {
			continue
		}

		product, err := s.catalog.GetByID(ctx, *ing.LinkedProductID)
		if err != nil {
			logger.Error().Err(err).Msgf("Linked product %d missing for ingredient %q", *ing.LinkedProductID, ing.Name)
			continue
		}

		quantity := 1
		requiredGrams := parseGramsFromQuantity(ing.Quantity)
		if requiredGrams > 0 && product.WeightInGrams > 0 {
			quantity = int(math.Ceil(float64(requiredGrams) / float64(product.WeightInGrams)))
		} else {
			quantity = parseLeadingQuantity(ing.Quantity)
		}
		if quantity < 1 {
			quantity = 1
		}

		cart.Items = append(cart.Items, entity.CartItemRequest{
			ProductID: product.ID,
			Quantity:  quantity,
		})
	}

	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, entity.ErrNoMatchedIngredients)
	}

	return cart, nil
}

// RecipesForUser returns the user's own recipes plus manager-shared recipes
// they have not hidden.
func (s *RecipeService) RecipesForUser(ctx context.Context, user *entity.User) ([]*entity.Recipe, error) {
	own, err := s.recipes.ListByCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	shared, err := s.recipes.ListByCreatorRole(ctx, entity.RoleManager)
	if err != nil {
		return nil, err
	}

	hidden, err := s.recipes.HiddenRecipeIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	result := own
	for _, recipe := range shared {
		if hidden[recipe.ID] || recipe.CreatorID == user.ID {
			continue
		}
		result = append(result, recipe)
	}
	return result, nil
}

// DeleteRecipe removes a recipe the user created (or any recipe, for admins).
// Manager-shared recipes are soft-hidden from the requesting user instead.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID int, user *entity.User) error {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}

	if user.Role == entity.RoleAdmin || recipe.CreatorID == user.ID {
		logger.Info().Msgf("Recipe %d permanently deleted by user %d", recipeID, user.ID)
		return s.recipes.Delete(ctx, recipeID)
	}

	creatorRecipes, err := s.recipes.ListByCreatorRole(ctx, entity.RoleManager)
	if err != nil {
		return err
	}
	for _, shared := range creatorRecipes {
		if shared.ID == recipeID {
			logger.Info().Msgf("Recipe %d hidden from user %d", recipeID, user.ID)
			return s.recipes.HideForUser(ctx, user.ID, recipeID)
		}
	}

	return fmt.Errorf("delete recipe %d: %w", recipeID, entity.ErrUnauthorized)
}

func parseLeadingQuantity(quantity string) int {
	if m := leadingNumber.FindStringSubmatch(strings.TrimSpace(quantity)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}

func parseGramsFromQuantity(quantity string) int {
	if m := gramsPattern.FindStringSubmatch(quantity); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
