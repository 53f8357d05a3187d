package entity

import "time"

// Category categoría de ítems; toda creación de ítem debe referenciar una existente.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// CategoryPatch cambios de una categoría; nil deja el campo como está.
type CategoryPatch struct {
	Name        *string
	Description *string
}
