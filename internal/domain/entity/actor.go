package entity

import (
	"fmt"
	"strings"
)

// Roles conocidos. El conjunto con permiso de mover inventario se configura.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleOperativo = "operativo"
	RoleVendedor  = "vendedor"
)

// Actor perfil de un usuario tal como lo ve el inventario: rol y estado.
type Actor struct {
	ID     string
	Name   string
	Role   string
	Active bool
}

// ParseSeedActors interpreta entradas "id:rol" como actores activos.
func ParseSeedActors(entries []string) ([]Actor, error) {
	out := make([]Actor, 0, len(entries))
	for _, entry := range entries {
		id, role, ok := strings.Cut(strings.TrimSpace(entry), ":")
		id, role = strings.TrimSpace(id), strings.ToLower(strings.TrimSpace(role))
		if !ok || id == "" || role == "" {
			return nil, fmt.Errorf("actor semilla %q: formato esperado id:rol", entry)
		}
		out = append(out, Actor{ID: id, Name: id, Role: role, Active: true})
	}
	return out, nil
}
