package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'USER'
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		unit VARCHAR(50) NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		inventory_count INT NOT NULL DEFAULT 0,
		weight_in_grams INT NOT NULL DEFAULT 0,
		image_url TEXT,
		is_active TINYINT(1) NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		delivery_address TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		total_price DECIMAL(10,2) NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL,
		price_at_purchase DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		instructions TEXT NOT NULL,
		prep_time VARCHAR(100) NOT NULL DEFAULT '',
		difficulty VARCHAR(50) NOT NULL DEFAULT '',
		image_url TEXT,
		creator_id INT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id INT AUTO_INCREMENT PRIMARY KEY,
		recipe_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity VARCHAR(255) NOT NULL DEFAULT '',
		linked_product_id INT NULL,
		FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS hidden_recipes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		recipe_id INT NOT NULL,
		UNIQUE KEY uniq_user_recipe (user_id, recipe_id)
	);`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL,
		UNIQUE KEY uniq_user_product (user_id, product_id)
	);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INT AUTO_INCREMENT PRIMARY KEY,
		event_type VARCHAR(100) NOT NULL,
		payload TEXT,
		created_at DATETIME NOT NULL
	);`,
}

// AutoMigrate creates all application tables if they do not exist.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, query := range tables {
		_, err := db.Exec(query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(query)
				if err == nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
