package entity

import "github.com/shopspring/decimal"

type Product struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	InventoryCount int             `json:"inventory_count"`
	WeightInGrams  int             `json:"weight_in_grams"`
	ImageURL       string          `json:"image_url"`
	IsActive       bool            `json:"is_active"`
}

/*
Schema MySQL for products table:
CREATE TABLE `products` (
  `id` int(11) NOT NULL AUTO_INCREMENT,
  `name` varchar(255) NOT NULL UNIQUE,
  `description` text,
  `price` decimal(10,2) NOT NULL,
  `unit` varchar(50),
  `category` varchar(100),
  `inventory_count` int(11) NOT NULL DEFAULT 0,
  `weight_in_grams` int(11) NOT NULL DEFAULT 0,
  `image_url` text,
  `is_active` tinyint(1) NOT NULL DEFAULT 1,
  PRIMARY KEY (`id`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/
