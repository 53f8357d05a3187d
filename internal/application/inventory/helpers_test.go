package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: repositorios en memoria + motor, resolvedor y despachador
// ──────────────────────────────────────────────────────────────────────────────

const (
	actorBodega   = "u-bodega"
	actorAdmin    = "u-admin"
	actorVendedor = "u-vendedor"
	actorInactivo = "u-inactivo"
	categoryRopa  = "cat-ropa"
)

var (
	mutationRoles   = []string{entity.RoleAdmin, entity.RoleBodeguero, entity.RoleOperativo}
	privilegedRoles = []string{entity.RoleAdmin}
)

type fixture struct {
	store       *memory.Store
	items       *memory.ItemRepository
	balances    *memory.BalanceRepository
	ledger      *memory.LedgerRepository
	categories  *memory.CategoryRepository
	gate        *inventory.Gate
	provisioner *inventory.Provisioner
	resolver    *inventory.Resolver
	engine      *inventory.Engine
	dispatcher  *inventory.Dispatcher
	observer    *recordingObserver
}

// fixtureOption permite reemplazar puertos del motor (p. ej. un kardex que falla).
type fixtureOption func(f *fixture, deps *inventory.EngineDeps)

func withLedger(l repository.LedgerRepository) fixtureOption {
	return func(_ *fixture, deps *inventory.EngineDeps) { deps.Ledger = l }
}

// wrapBalances decora el repositorio de saldos que usa el motor; las aserciones leen el original.
func wrapBalances(wrap func(repository.BalanceRepository) repository.BalanceRepository) fixtureOption {
	return func(f *fixture, deps *inventory.EngineDeps) { deps.Balances = wrap(f.balances) }
}

func withLocker(l inventory.ItemLocker) fixtureOption {
	return func(_ *fixture, deps *inventory.EngineDeps) { deps.Locker = l }
}

func withPublisher(p inventory.MovementPublisher) fixtureOption {
	return func(_ *fixture, deps *inventory.EngineDeps) { deps.Publisher = p }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutActor(entity.Actor{ID: actorBodega, Name: "Bodega", Role: entity.RoleBodeguero, Active: true})
	store.PutActor(entity.Actor{ID: actorAdmin, Name: "Admin", Role: entity.RoleAdmin, Active: true})
	store.PutActor(entity.Actor{ID: actorVendedor, Name: "Ventas", Role: entity.RoleVendedor, Active: true})
	store.PutActor(entity.Actor{ID: actorInactivo, Name: "Retirado", Role: entity.RoleBodeguero, Active: false})

	f := &fixture{
		store:      store,
		items:      memory.NewItemRepository(store),
		balances:   memory.NewBalanceRepository(store),
		ledger:     memory.NewLedgerRepository(store),
		categories: memory.NewCategoryRepository(store),
		observer:   &recordingObserver{},
	}
	require.NoError(t, f.categories.Create(context.Background(), &entity.Category{
		ID: categoryRopa, Name: "Ropa", CreatedAt: time.Now(),
	}))

	log := zerolog.Nop()
	f.gate = inventory.NewGate(memory.NewActorRepository(store), mutationRoles, privilegedRoles)
	deps := inventory.EngineDeps{
		Items:    f.items,
		Balances: f.balances,
		Ledger:   f.ledger,
		Gate:     f.gate,
		Observer: f.observer,
		Logger:   log,
	}
	for _, opt := range opts {
		opt(f, &deps)
	}
	f.engine = inventory.NewEngine(deps)
	f.provisioner = inventory.NewProvisioner(f.items, f.balances, f.categories, f.observer, log)
	f.resolver = inventory.NewResolver(f.items, f.categories, f.provisioner, log)
	f.dispatcher = inventory.NewDispatcher(f.gate, f.resolver, f.engine)
	return f
}

// seedItem crea un ítem activo con el stock indicado, sin pasar por el kardex.
func (f *fixture) seedItem(t *testing.T, id, name, code, tag string, stock int64) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, f.items.Create(ctx, &entity.Item{
		ID: id, Name: name, Code: code, Tag: tag, CategoryID: categoryRopa,
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.balances.Create(ctx, &entity.Balance{ItemID: id, Stock: stock, UpdatedAt: now}))
}

func (f *fixture) stock(t *testing.T, itemID string) int64 {
	t.Helper()
	b, err := f.balances.Get(context.Background(), itemID)
	require.NoError(t, err)
	require.NotNil(t, b, "el ítem %s debe tener saldo", itemID)
	return b.Stock
}

func (f *fixture) movements(t *testing.T, itemID string) []*entity.Movement {
	t.Helper()
	list, err := f.ledger.List(context.Background(), entity.MovementFilter{ItemID: itemID})
	require.NoError(t, err)
	return list
}

func qty(n int64) *int64 { return &n }

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// failingLedger kardex cuyo Append siempre falla.
type failingLedger struct {
	repository.LedgerRepository
	err error
}

func (l failingLedger) Append(context.Context, *entity.Movement) error { return l.err }

// flakyBalances falla el compare-and-swap a partir de la llamada número failFrom (1-based).
type flakyBalances struct {
	repository.BalanceRepository
	failFrom int32
	calls    atomic.Int32
}

func (b *flakyBalances) CompareAndSwap(ctx context.Context, itemID string, expected, next int64) error {
	if b.calls.Add(1) >= b.failFrom {
		return errors.New("conexión perdida")
	}
	return b.BalanceRepository.CompareAndSwap(ctx, itemID, expected, next)
}

// failingBalanceCreate falla al crear el saldo inicial.
type failingBalanceCreate struct {
	repository.BalanceRepository
}

func (failingBalanceCreate) Create(context.Context, *entity.Balance) error {
	return errors.New("tabla de saldos no disponible")
}

// barrierBalances retiene las dos primeras escrituras hasta que ambas llegan, para forzar
// que dos movimientos lean el mismo saldo. Con blind=true ignora el valor esperado y
// reproduce la escritura ciega (lost update).
type barrierBalances struct {
	repository.BalanceRepository
	blind   bool
	arrived sync.WaitGroup
	calls   atomic.Int32
}

func newBarrierBalances(inner repository.BalanceRepository, blind bool) *barrierBalances {
	b := &barrierBalances{BalanceRepository: inner, blind: blind}
	b.arrived.Add(2)
	return b
}

func (b *barrierBalances) CompareAndSwap(ctx context.Context, itemID string, expected, next int64) error {
	if b.calls.Add(1) <= 2 {
		b.arrived.Done()
		b.arrived.Wait()
	}
	if !b.blind {
		return b.BalanceRepository.CompareAndSwap(ctx, itemID, expected, next)
	}
	for {
		cur, err := b.BalanceRepository.Get(ctx, itemID)
		if err != nil {
			return err
		}
		err = b.BalanceRepository.CompareAndSwap(ctx, itemID, cur.Stock, next)
		if !errors.Is(err, domain.ErrStaleBalance) {
			return err
		}
	}
}

// recordingObserver cuenta las observaciones del motor.
type recordingObserver struct {
	mu            sync.Mutex
	outcomes      map[string]int
	retries       int
	compensations map[string]bool
	provisioned   int
}

func (o *recordingObserver) ObserveMovement(_ entity.MovementKind, outcome string, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func (o *recordingObserver) ObserveBalanceRetry() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}

func (o *recordingObserver) ObserveCompensation(step string, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.compensations == nil {
		o.compensations = map[string]bool{}
	}
	o.compensations[step] = ok
}

func (o *recordingObserver) ObserveProvisioned() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.provisioned++
}

func (o *recordingObserver) outcome(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[name]
}

// failingSetActive falla al cambiar el estado del ítem.
type failingSetActive struct {
	repository.ItemRepository
}

func (failingSetActive) SetActive(context.Context, string, bool) error {
	return errors.New("tabla de ítems bloqueada")
}

// failingPublisher publicador que siempre falla.
type failingPublisher struct{ calls atomic.Int32 }

func (p *failingPublisher) PublishMovement(context.Context, *inventory.Result) error {
	p.calls.Add(1)
	return errors.New("broker caído")
}
