package domain

// Warehouse is immutable reference data owned by the admin panel.
type Warehouse struct {
	ID   int64
	Name string
}
