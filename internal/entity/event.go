package entity

// Wire schemas for the Kafka topics. Each topic carries exactly one shape;
// consumers decode strictly and drop nothing silently.

type OrderCreatedEvent struct {
	OrderID int              `json:"orderId"`
	UserID  int              `json:"userId"`
	Items   []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type OrderStatusChangedEvent struct {
	OrderID   int    `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	Status    string `json:"status"`
}

type InventoryUpdateEvent struct {
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	OldCount    int    `json:"oldCount"`
	NewCount    int    `json:"newCount"`
}

type RecipeGeneratedEvent struct {
	RecipeID    int    `json:"recipeId"`
	Ingredients string `json:"ingredients"`
}
