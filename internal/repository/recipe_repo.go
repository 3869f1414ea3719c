package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db}
}

// CreateRecipe persists the recipe and its ingredients in a single transaction.
func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	recipeQuery := `INSERT INTO recipes (title, instructions, prep_time, difficulty, image_url, creator_id) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, recipeQuery, recipe.Title, recipe.Instructions, recipe.PrepTime,
		recipe.Difficulty, recipe.ImageURL, recipe.CreatorID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	recipeID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	ingredientQuery := `INSERT INTO ingredients (recipe_id, name, quantity, linked_product_id) VALUES (?, ?, ?, ?)`
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		var linked any
		if ing.LinkedProductID != nil {
			linked = *ing.LinkedProductID
		}
		res, err := tx.ExecContext(ctx, ingredientQuery, recipeID, ing.Name, ing.Quantity, linked)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		ing.ID = int(id)
		ing.RecipeID = int(recipeID)
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	recipe.ID = int(recipeID)
	return recipe, nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int) (*entity.Recipe, error) {
	query := `SELECT id, title, instructions, prep_time, difficulty, image_url, creator_id FROM recipes WHERE id = ?`

	recipe := &entity.Recipe{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&recipe.ID, &recipe.Title, &recipe.Instructions,
		&recipe.PrepTime, &recipe.Difficulty, &recipe.ImageURL, &recipe.CreatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadIngredients(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *RecipeRepository) ListByCreator(ctx context.Context, creatorID int) ([]*entity.Recipe, error) {
	query := `SELECT id, title, instructions, prep_time, difficulty, image_url, creator_id FROM recipes WHERE creator_id = ?`
	return r.queryRecipes(ctx, query, creatorID)
}

// ListByCreatorRole returns recipes whose creator holds the given role.
func (r *RecipeRepository) ListByCreatorRole(ctx context.Context, role entity.Role) ([]*entity.Recipe, error) {
	query := `SELECT r.id, r.title, r.instructions, r.prep_time, r.difficulty, r.image_url, r.creator_id
		FROM recipes r JOIN users u ON u.id = r.creator_id WHERE u.role = ?`
	return r.queryRecipes(ctx, query, role)
}

// Delete removes the recipe; ingredients go with it via the cascading FK.
func (r *RecipeRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	return err
}

// HideForUser records a per-user soft delete of a shared recipe.
func (r *RecipeRepository) HideForUser(ctx context.Context, userID, recipeID int) error {
	query := `INSERT IGNORE INTO hidden_recipes (user_id, recipe_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, userID, recipeID)
	return err
}

// HiddenRecipeIDs returns the set of recipe ids the user has hidden.
func (r *RecipeRepository) HiddenRecipeIDs(ctx context.Context, userID int) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT recipe_id FROM hidden_recipes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hidden := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		hidden[id] = true
	}
	return hidden, rows.Err()
}

func (r *RecipeRepository) queryRecipes(ctx context.Context, query string, args ...any) ([]*entity.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*entity.Recipe
	for rows.Next() {
		recipe := &entity.Recipe{}
		err := rows.Scan(&recipe.ID, &recipe.Title, &recipe.Instructions, &recipe.PrepTime,
			&recipe.Difficulty, &recipe.ImageURL, &recipe.CreatorID)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, recipe := range recipes {
		if err := r.loadIngredients(ctx, recipe); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *RecipeRepository) loadIngredients(ctx context.Context, recipe *entity.Recipe) error {
	query := `SELECT id, recipe_id, name, quantity, linked_product_id FROM ingredients WHERE recipe_id = ?`
	rows, err := r.db.QueryContext(ctx, query, recipe.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		ing := entity.Ingredient{}
		var linked sql.NullInt64
		err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &linked)
		if err != nil {
			return err
		}
		if linked.Valid {
			id := int(linked.Int64)
			ing.LinkedProductID = &id
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	return rows.Err()
}
