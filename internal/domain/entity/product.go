package entity

import "time"

// Product producto del catálogo (ej. "Carbón Vegetal Premium").
type Product struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
