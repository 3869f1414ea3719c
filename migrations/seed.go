package migrations

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type seedProduct struct {
	name          string
	category      string
	price         string
	unit          string
	stock         int
	weightInGrams int
}

var seedProducts = []seedProduct{
	{"Fresh Tomatoes", "Fruits & Vegetables", "25.00", "kg", 100, 1000},
	{"Onions", "Fruits & Vegetables", "20.00", "kg", 150, 1000},
	{"Potatoes", "Fruits & Vegetables", "18.00", "kg", 120, 1000},
	{"Amul Butter", "Dairy & Eggs", "48.00", "100g", 80, 100},
	{"Paneer", "Dairy & Eggs", "70.00", "200g", 60, 200},
	{"Amul Milk", "Dairy & Eggs", "30.00", "0.5L", 200, 500},
	{"Organic Turmeric Powder", "Spices & Masalas", "35.00", "100g", 90, 100},
	{"Red Chilli Powder", "Spices & Masalas", "40.00", "100g", 85, 100},
	{"Garam Masala", "Spices & Masalas", "50.00", "100g", 70, 100},
	{"Basmati Rice Packet", "Rice & Grains", "90.00", "kg", 100, 1000},
	{"Toor Dal", "Rice & Grains", "85.00", "kg", 99, 1000},
	{"Wheat Flour Packet", "Rice & Grains", "35.00", "kg", 102, 1000},
	{"Chicken Breast", "Meat & Seafood", "120.00", "500g", 50, 500},
	{"Tomato Puree", "Fruits & Vegetables", "35.00", "200g", 80, 200},
	{"Garlic Paste", "Spices & Masalas", "30.00", "100g", 75, 100},
	{"Ginger Paste", "Spices & Masalas", "30.00", "100g", 75, 100},
	{"Bell Peppers", "Fruits & Vegetables", "45.00", "250g", 60, 250},
	{"Carrots", "Fruits & Vegetables", "25.00", "500g", 90, 500},
	{"Cucumber", "Fruits & Vegetables", "15.00", "piece", 100, 200},
	{"Cauliflower", "Fruits & Vegetables", "30.00", "head", 50, 600},
}

// Seed populates the catalog and default accounts. Products are seeded only
// when the table is empty; users are upserted by email.
func Seed(ctx context.Context, db *sql.DB) error {
	if err := seedUsers(ctx, db); err != nil {
		return err
	}
	return seedCatalog(ctx, db)
}

func seedUsers(ctx context.Context, db *sql.DB) error {
	users := []struct {
		email, password, name string
		role                  string
	}{
		{"admin@groceryscout.com", "admin123", "Default Admin", "ADMIN"},
		{"manager@groceryscout.com", "manager123", "Default Manager", "MANAGER"},
		{"user@test.com", "user123", "Default Customer", "USER"},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		query := `INSERT INTO users (email, password, name, role) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE password = VALUES(password), role = VALUES(role)`
		if _, err := db.ExecContext(ctx, query, u.email, string(hash), u.name, u.role); err != nil {
			return err
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msgf("Products already seeded (%d found), skipping", count)
		return nil
	}

	log.Info().Msg("Seeding product data")
	query := `INSERT INTO products (name, description, price, unit, category, inventory_count, weight_in_grams, image_url, is_active)
		VALUES (?, '', ?, ?, ?, ?, ?, '', 1)`
	for _, p := range seedProducts {
		if _, err := db.ExecContext(ctx, query, p.name, p.price, p.unit, p.category, p.stock, p.weightInGrams); err != nil {
			return err
		}
	}
	return nil
}
