//go:build integration

// Package containers levanta dependencias reales para pruebas de integración.
// Los contenedores se comparten entre suites del mismo paquete; Ryuk los elimina al terminar.
package containers

import (
	"sync"
	"testing"
)

// Manager entrega contenedores únicos por proceso de prueba.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager devuelve el manager del proceso.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

// GetPostgres inicia PostgreSQL la primera vez y lo reutiliza después.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetRedis inicia Redis la primera vez y lo reutiliza después.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}
