package entity

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrUnauthorized         = errors.New("not authorized")
	ErrNoMatchedIngredients = errors.New("no products matched for recipe ingredients")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
)
