package entity

import "time"

// Item representa un producto físico del inventario.
// Code (SKU) y Tag (UID RFID) son opcionales pero únicos cuando existen.
type Item struct {
	ID         string
	Name       string
	Code       string // código de negocio (SKU)
	Tag        string // UID del tag RFID
	CategoryID string
	Attributes ItemAttributes
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ItemAttributes atributos de variante del ítem.
type ItemAttributes struct {
	Description string `json:"description,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ItemFilter filtros de búsqueda para listados.
// Search aplica coincidencia parcial sin distinguir mayúsculas sobre nombre o código.
type ItemFilter struct {
	Search     string
	CategoryID string
	Active     *bool
	Limit      int
	Offset     int
}

// ItemPatch cambios administrativos de un ítem; nil deja el campo como está.
// Code vacío desvincula el código. El tag sólo cambia vía movimientos.
type ItemPatch struct {
	Name        *string
	Code        *string
	CategoryID  *string
	Description *string
	Size        *string
	Color       *string
	Active      *bool
}

// Empty indica que el patch no cambia nada.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Code == nil && p.CategoryID == nil &&
		p.Description == nil && p.Size == nil && p.Color == nil && p.Active == nil
}

// Apply aplica el patch sobre it.
func (p ItemPatch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Code != nil {
		it.Code = *p.Code
	}
	if p.CategoryID != nil {
		it.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		it.Attributes.Description = *p.Description
	}
	if p.Size != nil {
		it.Attributes.Size = *p.Size
	}
	if p.Color != nil {
		it.Attributes.Color = *p.Color
	}
	if p.Active != nil {
		it.Active = *p.Active
	}
}
