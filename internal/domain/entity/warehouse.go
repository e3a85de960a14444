package entity

import "time"

// Warehouse representa un almacén donde se guarda stock vendible.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
