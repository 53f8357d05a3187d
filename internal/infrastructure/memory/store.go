// Package memory implementa los repositorios del inventario en memoria.
// Se usa en pruebas y con INVENTORY_STORAGE=memory para desarrollo local.
package memory

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu         sync.RWMutex
	items      map[string]entity.Item
	balances   map[string]entity.Balance
	movements  []entity.Movement
	categories map[string]entity.Category
	actors     map[string]entity.Actor
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]entity.Item),
		balances:   make(map[string]entity.Balance),
		categories: make(map[string]entity.Category),
		actors:     make(map[string]entity.Actor),
	}
}

// PutActor registra o reemplaza un perfil de usuario.
func (s *Store) PutActor(a entity.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[a.ID] = a
}

// SeedActors registra actores, normalmente los de INVENTORY_SEED_ACTORS.
func (s *Store) SeedActors(actors []entity.Actor) {
	for _, a := range actors {
		s.PutActor(a)
	}
}

// fold normaliza para comparar sin distinguir mayúsculas ni espacios externos.
// Usa minúsculas Unicode simples, como lower(btrim(...)) en PostgreSQL.
func fold(v string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(v))
}

func sortItemsByName(list []*entity.Item) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := fold(list[i].Name), fold(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].ID < list[j].ID
	})
}

func capLimit(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
