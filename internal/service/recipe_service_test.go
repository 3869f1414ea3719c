package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DivyeshVarade/grocery-scout/internal/config"
	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

type fakeRecipeStore struct {
	nextID  int
	recipes map[int]*entity.Recipe
	hidden  map[int]map[int]bool
	users   map[int]entity.Role // creator id -> role
	deleted []int
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{
		recipes: make(map[int]*entity.Recipe),
		hidden:  make(map[int]map[int]bool),
		users:   make(map[int]entity.Role),
	}
}

func (f *fakeRecipeStore) CreateRecipe(_ context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	f.nextID++
	recipe.ID = f.nextID
	f.recipes[recipe.ID] = recipe
	return recipe, nil
}

func (f *fakeRecipeStore) GetByID(_ context.Context, id int) (*entity.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return recipe, nil
}

func (f *fakeRecipeStore) ListByCreator(_ context.Context, creatorID int) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	for _, r := range f.recipes {
		if r.CreatorID == creatorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeStore) ListByCreatorRole(_ context.Context, role entity.Role) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	for _, r := range f.recipes {
		if f.users[r.CreatorID] == role {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeStore) Delete(_ context.Context, id int) error {
	delete(f.recipes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecipeStore) HideForUser(_ context.Context, userID, recipeID int) error {
	if f.hidden[userID] == nil {
		f.hidden[userID] = make(map[int]bool)
	}
	f.hidden[userID][recipeID] = true
	return nil
}

func (f *fakeRecipeStore) HiddenRecipeIDs(_ context.Context, userID int) (map[int]bool, error) {
	return f.hidden[userID], nil
}

type fakeCatalog struct {
	products []*entity.Product
}

func (f *fakeCatalog) SearchByName(_ context.Context, keyword string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, entity.ErrNotFound
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func geminiStub(t *testing.T, recipeJSON string) *http.Client {
	t.Helper()
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		body := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": recipeJSON}},
				},
			}},
		}
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(payload)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
		}, nil
	})}
}

func newRecipeFixture(client *http.Client) (*RecipeService, *fakeRecipeStore, *fakeCatalog, *captureWriter) {
	recipes := newFakeRecipeStore()
	catalog := &fakeCatalog{products: []*entity.Product{
		{ID: 1, Name: "Fresh Tomatoes", WeightInGrams: 150},
		{ID: 2, Name: "Watermelon", WeightInGrams: 2000},
		{ID: 3, Name: "Paneer", WeightInGrams: 200},
	}}
	recipesTopic := &captureWriter{}
	publisher := NewEventPublisher(&captureWriter{}, &captureWriter{}, &captureWriter{}, recipesTopic)
	cfg := config.GeminiConfig{APIKey: "test-key", Model: "gemini-2.5-flash", Timeout: 5 * time.Second}
	svc := NewRecipeService(recipes, catalog, publisher, cfg, client)
	return svc, recipes, catalog, recipesTopic
}

func TestMatchIngredientToProduct(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newRecipeFixture(nil)
	ctx := context.Background()

	t.Run("skip-list term never matches", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "water")
		require.NoError(t, err)
		assert.Nil(t, p, "water must not match Watermelon")
	})

	t.Run("skip-list survives casing and whitespace", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "  Water ")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("exact name", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "Fresh Tomatoes")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1, p.ID)
	})

	t.Run("substring of product name", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "tomato")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1, p.ID)
	})

	t.Run("token fallback on separate word", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "ripe tomato chunks")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1, p.ID)
	})

	t.Run("short and skip-list tokens ignored", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "cold water")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		p, err := svc.MatchIngredientToProduct(ctx, "saffron threads")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestConvertRecipeToCart(t *testing.T) {
	t.Parallel()

	linked := func(id int) *int { return &id }

	t.Run("grams divided by package weight, ceiled", func(t *testing.T) {
		t.Parallel()
		svc, recipes, _, _ := newRecipeFixture(nil)
		recipes.recipes[1] = &entity.Recipe{ID: 1, Title: "Shakshuka", Ingredients: []entity.Ingredient{
			{Name: "tomato", Quantity: "2 cups (300g)", LinkedProductID: linked(1)},
		}}

		cart, err := svc.ConvertRecipeToCart(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "From Recipe: Shakshuka", cart.DeliveryAddress)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, entity.CartItemRequest{ProductID: 1, Quantity: 2}, cart.Items[0])
	})

	t.Run("leading integer fallback", func(t *testing.T) {
		t.Parallel()
		svc, recipes, catalog, _ := newRecipeFixture(nil)
		catalog.products[2].WeightInGrams = 0
		recipes.recipes[1] = &entity.Recipe{ID: 1, Title: "Curry", Ingredients: []entity.Ingredient{
			{Name: "paneer", Quantity: "3 blocks", LinkedProductID: linked(3)},
		}}

		cart, err := svc.ConvertRecipeToCart(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("quantity floors at one", func(t *testing.T) {
		t.Parallel()
		svc, recipes, _, _ := newRecipeFixture(nil)
		recipes.recipes[1] = &entity.Recipe{ID: 1, Title: "Soup", Ingredients: []entity.Ingredient{
			{Name: "tomato", Quantity: "a pinch", LinkedProductID: linked(1)},
		}}

		cart, err := svc.ConvertRecipeToCart(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Items[0].Quantity)
	})

	t.Run("unlinked ingredients skipped", func(t *testing.T) {
		t.Parallel()
		svc, recipes, _, _ := newRecipeFixture(nil)
		recipes.recipes[1] = &entity.Recipe{ID: 1, Title: "Salad", Ingredients: []entity.Ingredient{
			{Name: "exotic herb", Quantity: "1 bunch"},
			{Name: "tomato", Quantity: "(150g)", LinkedProductID: linked(1)},
		}}

		cart, err := svc.ConvertRecipeToCart(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].ProductID)
	})

	t.Run("no matched ingredients", func(t *testing.T) {
		t.Parallel()
		svc, recipes, _, _ := newRecipeFixture(nil)
		recipes.recipes[1] = &entity.Recipe{ID: 1, Title: "Mystery", Ingredients: []entity.Ingredient{
			{Name: "exotic herb", Quantity: "1 bunch"},
		}}

		_, err := svc.ConvertRecipeToCart(context.Background(), 1)
		assert.ErrorIs(t, err, entity.ErrNoMatchedIngredients)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newRecipeFixture(nil)
		_, err := svc.ConvertRecipeToCart(context.Background(), 404)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestGenerateRecipe(t *testing.T) {
	t.Parallel()

	recipeJSON := `{
		"title": "Tomato Curry",
		"instructions": ["Chop", "Simmer"],
		"prepTime": "30 minutes",
		"difficulty": "Easy",
		"ingredients": [
			{"name": "Fresh Tomatoes", "quantity": "2 cups", "quantity_grams": 300},
			{"name": "water", "quantity": "1 cup", "quantity_grams": 0}
		]
	}`

	t.Run("links ingredients and publishes event", func(t *testing.T) {
		t.Parallel()
		svc, _, _, recipesTopic := newRecipeFixture(geminiStub(t, recipeJSON))

		recipe, err := svc.GenerateRecipe(context.Background(), 7, "something with tomatoes", 2)
		require.NoError(t, err)

		assert.Equal(t, "Tomato Curry", recipe.Title)
		assert.Equal(t, "1. Chop\n2. Simmer", recipe.Instructions)
		require.Len(t, recipe.Ingredients, 2)
		assert.Equal(t, "2 cups (300g)", recipe.Ingredients[0].Quantity)
		require.NotNil(t, recipe.Ingredients[0].LinkedProductID)
		assert.Equal(t, 1, *recipe.Ingredients[0].LinkedProductID)
		assert.Nil(t, recipe.Ingredients[1].LinkedProductID, "water stays unlinked")

		require.Len(t, recipesTopic.msgs, 1)
		var event entity.RecipeGeneratedEvent
		require.NoError(t, json.Unmarshal(recipesTopic.msgs[0].Value, &event))
		assert.Equal(t, recipe.ID, event.RecipeID)
		assert.Equal(t, "Fresh Tomatoes,water", event.Ingredients)
	})

	t.Run("markdown fences tolerated", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newRecipeFixture(geminiStub(t, "```json\n"+recipeJSON+"\n```"))

		recipe, err := svc.GenerateRecipe(context.Background(), 7, "tomatoes", 2)
		require.NoError(t, err)
		assert.Equal(t, "Tomato Curry", recipe.Title)
	})

	t.Run("missing title degrades to default", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newRecipeFixture(geminiStub(t, `{"ingredients": []}`))

		recipe, err := svc.GenerateRecipe(context.Background(), 7, "anything", 2)
		require.NoError(t, err)
		assert.Equal(t, "Untitled Recipe", recipe.Title)
		assert.Empty(t, recipe.Instructions)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		})}
		svc, _, _, _ := newRecipeFixture(client)

		_, err := svc.GenerateRecipe(context.Background(), 7, "anything", 2)
		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
	})
}

func TestParseRecipeJSON(t *testing.T) {
	t.Parallel()

	t.Run("plain fences", func(t *testing.T) {
		t.Parallel()
		recipe, err := parseRecipeJSON("```\n{\"title\": \"X\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "X", recipe.Title)
	})

	t.Run("garbage fails", func(t *testing.T) {
		t.Parallel()
		_, err := parseRecipeJSON("the model apologizes and refuses")
		assert.Error(t, err)
	})
}

func TestDeleteRecipe(t *testing.T) {
	t.Parallel()

	setup := func() (*RecipeService, *fakeRecipeStore) {
		svc, recipes, _, _ := newRecipeFixture(nil)
		recipes.users[1] = entity.RoleUser
		recipes.users[2] = entity.RoleManager
		recipes.recipes[10] = &entity.Recipe{ID: 10, Title: "Mine", CreatorID: 1}
		recipes.recipes[20] = &entity.Recipe{ID: 20, Title: "Shared", CreatorID: 2}
		return svc, recipes
	}
	ctx := context.Background()

	t.Run("creator deletes own recipe", func(t *testing.T) {
		t.Parallel()
		svc, recipes := setup()
		err := svc.DeleteRecipe(ctx, 10, &entity.User{ID: 1, Role: entity.RoleUser})
		require.NoError(t, err)
		assert.Contains(t, recipes.deleted, 10)
	})

	t.Run("manager recipe is hidden, not deleted", func(t *testing.T) {
		t.Parallel()
		svc, recipes := setup()
		err := svc.DeleteRecipe(ctx, 20, &entity.User{ID: 1, Role: entity.RoleUser})
		require.NoError(t, err)
		assert.Empty(t, recipes.deleted)
		assert.True(t, recipes.hidden[1][20])
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		t.Parallel()
		svc, recipes := setup()
		err := svc.DeleteRecipe(ctx, 20, &entity.User{ID: 99, Role: entity.RoleAdmin})
		require.NoError(t, err)
		assert.Contains(t, recipes.deleted, 20)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		t.Parallel()
		svc, recipes := setup()
		recipes.users[3] = entity.RoleUser
		recipes.recipes[30] = &entity.Recipe{ID: 30, Title: "Else", CreatorID: 3}

		err := svc.DeleteRecipe(ctx, 30, &entity.User{ID: 1, Role: entity.RoleUser})
		assert.ErrorIs(t, err, entity.ErrUnauthorized)
	})
}

func TestRecipesForUser(t *testing.T) {
	t.Parallel()
	svc, recipes, _, _ := newRecipeFixture(nil)
	recipes.users[1] = entity.RoleUser
	recipes.users[2] = entity.RoleManager
	recipes.recipes[10] = &entity.Recipe{ID: 10, CreatorID: 1}
	recipes.recipes[20] = &entity.Recipe{ID: 20, CreatorID: 2}
	recipes.recipes[21] = &entity.Recipe{ID: 21, CreatorID: 2}
	require.NoError(t, recipes.HideForUser(context.Background(), 1, 21))

	visible, err := svc.RecipesForUser(context.Background(), &entity.User{ID: 1, Role: entity.RoleUser})
	require.NoError(t, err)

	var ids []int
	for _, r := range visible {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []int{10, 20}, ids)
}
