package entity

type Recipe struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Instructions string       `json:"instructions"`
	PrepTime     string       `json:"prep_time"`
	Difficulty   string       `json:"difficulty"`
	ImageURL     string       `json:"image_url"`
	CreatorID    int          `json:"creator_id"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Ingredient is an immutable child of a recipe. Quantity is free text and may
// embed a gram amount as "(300g)". LinkedProductID is set when the ingredient
// resolved to a catalog product.
type Ingredient struct {
	ID              int    `json:"id"`
	RecipeID        int    `json:"recipe_id"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity"`
	LinkedProductID *int   `json:"linked_product_id,omitempty"`
}
