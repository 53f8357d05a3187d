package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

func TestResolve_TagGanaSobreCodigoYNombre(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "por-tag", "Pantalón", "PAN-01", "E200-0001", 0)
	f.seedItem(t, "por-codigo", "Camisa", "CAM-01", "", 0)

	res, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{
		Tag: "E200-0001", Code: "CAM-01", Name: "Camisa",
	}, actorBodega)
	require.NoError(t, err)
	assert.Equal(t, "por-tag", res.ItemID)
	assert.Equal(t, "tag", res.MatchedBy)
	assert.False(t, res.Created)
}

func TestResolve_IDInexistenteNoContinua(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 0)

	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{ID: "otro", Code: "CAM-01"}, actorBodega)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_NombreSinDistinguirMayusculas(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa Azul", "", "", 0)

	res, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Name: "  camisa AZUL "}, actorBodega)
	require.NoError(t, err)
	assert.Equal(t, "item-1", res.ItemID)
	assert.Equal(t, "name", res.MatchedBy)
}

func TestResolve_NombreAmbiguoListaCandidatos(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-S", "", 0)
	f.seedItem(t, "item-2", "camisa", "CAM-M", "", 0)

	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Name: "Camisa"}, actorBodega)

	var amb *domain.AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.ErrorIs(t, err, domain.ErrAmbiguous)
	assert.Equal(t, "name", amb.Field)
	require.Len(t, amb.Candidates, 2)
	ids := []string{amb.Candidates[0].ID, amb.Candidates[1].ID}
	assert.ElementsMatch(t, []string{"item-1", "item-2"}, ids)
}

func TestResolve_VinculaTagAlItemEncontrado(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 0)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, inventory.ItemRef{Code: "CAM-01", Tag: "E200-0009"}, actorBodega)
	require.NoError(t, err)
	assert.Equal(t, "code", res.MatchedBy)
	assert.True(t, res.TagAttached)

	item, _ := f.items.GetByID(ctx, "item-1")
	assert.Equal(t, "E200-0009", item.Tag)

	// Segunda vez: el tag ya resuelve directo y no se vuelve a vincular.
	res, err = f.resolver.Resolve(ctx, inventory.ItemRef{Code: "CAM-01", Tag: "E200-0009"}, actorBodega)
	require.NoError(t, err)
	assert.Equal(t, "tag", res.MatchedBy)
	assert.False(t, res.TagAttached)
}

func TestResolve_TagDeOtroItemEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "E200-0001", 0)
	f.seedItem(t, "item-2", "Pantalón", "PAN-01", "E200-0002", 0)

	// Se resuelve por id (pasa primero) y el tag enviado pertenece a item-2.
	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{ID: "item-1", Tag: "E200-0002"}, actorBodega)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestResolve_CreaItemConNombreYCategoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, inventory.ItemRef{
		Name: "Chaqueta", Code: "CHA-01", Tag: "E200-0100", CategoryID: categoryRopa,
		Creation: inventory.CreationFields{Color: "negro", Minimum: 3},
	}, actorBodega)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "created", res.MatchedBy)

	item, err := f.items.GetByID(ctx, res.ItemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Chaqueta", item.Name)
	assert.Equal(t, "E200-0100", item.Tag)
	assert.Equal(t, "negro", item.Attributes.Color)
	assert.Equal(t, actorBodega, item.CreatedBy)
	assert.True(t, item.Active)

	bal, err := f.balances.Get(ctx, res.ItemID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Stock)
	assert.Equal(t, int64(3), bal.Minimum)
	assert.Equal(t, 1, f.observer.provisioned)
}

func TestResolve_CategoriaPorNombre(t *testing.T) {
	f := newFixture(t)
	res, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{
		Name: "Bufanda", CategoryName: "ROPA",
	}, actorBodega)
	require.NoError(t, err)

	item, _ := f.items.GetByID(context.Background(), res.ItemID)
	assert.Equal(t, categoryRopa, item.CategoryID)
}

func TestResolve_CategoriaAmbigua(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.categories.Create(context.Background(), &entity.Category{
		ID: "cat-ropa-2", Name: "ropa", CreatedAt: time.Now(),
	}))

	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Name: "Bufanda", CategoryName: "Ropa"}, actorBodega)
	var amb *domain.AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "category", amb.Field)
	assert.Len(t, amb.Candidates, 2)
}

func TestResolve_SinCategoriaNoCrea(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Name: "Bufanda"}, actorBodega)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "category_id")

	_, err = f.resolver.Resolve(context.Background(), inventory.ItemRef{Code: "XX-99"}, actorBodega)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "name")
}

func TestResolve_CategoriaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Name: "Bufanda", CategoryID: "no-existe"}, actorBodega)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_ItemInactivoSeMarca(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 0)
	require.NoError(t, f.items.SetActive(context.Background(), "item-1", false))

	res, err := f.resolver.Resolve(context.Background(), inventory.ItemRef{Code: "CAM-01"}, actorBodega)
	require.NoError(t, err)
	assert.True(t, res.WasInactive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Provisioner: el saldo falla → el ítem se elimina
// ──────────────────────────────────────────────────────────────────────────────

func TestProvision_FalloSaldoEliminaItem(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	p := inventory.NewProvisioner(f.items, failingBalanceCreate{f.balances}, f.categories, obs, zerolog.Nop())

	_, _, err := p.Provision(context.Background(), inventory.NewItem{
		Name: "Gorra", Code: "GOR-01", CategoryID: categoryRopa, Active: true, CreatedBy: actorAdmin,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saldo falló")

	found, err := f.items.FindByCode(context.Background(), "GOR-01", 5)
	require.NoError(t, err)
	assert.Empty(t, found, "la compensación elimina el ítem huérfano")
	assert.True(t, obs.compensations["eliminar ítem"])
	assert.Zero(t, obs.provisioned)
}

func TestProvision_CodigoDuplicadoEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 0)

	_, _, err := f.provisioner.Provision(context.Background(), inventory.NewItem{
		Name: "Otra camisa", Code: "CAM-01", CategoryID: categoryRopa,
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProvision_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.provisioner.Provision(ctx, inventory.NewItem{CategoryID: categoryRopa})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.provisioner.Provision(ctx, inventory.NewItem{Name: "Gorra"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.provisioner.Provision(ctx, inventory.NewItem{Name: "Gorra", CategoryID: categoryRopa, Minimum: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// duplicatedTagItems devuelve dos ítems para el mismo tag y cuenta las búsquedas posteriores.
type duplicatedTagItems struct {
	repository.ItemRepository
	tagged    []*entity.Item
	codeCalls int
	nameCalls int
}

func (r *duplicatedTagItems) FindByTag(context.Context, string, int) ([]*entity.Item, error) {
	return r.tagged, nil
}

func (r *duplicatedTagItems) FindByCode(context.Context, string, int) ([]*entity.Item, error) {
	r.codeCalls++
	return nil, nil
}

func (r *duplicatedTagItems) FindByName(context.Context, string, int) ([]*entity.Item, error) {
	r.nameCalls++
	return nil, nil
}

func TestResolve_TagDuplicadoEsAmbiguo(t *testing.T) {
	f := newFixture(t)
	items := &duplicatedTagItems{tagged: []*entity.Item{
		{ID: "item-1", Name: "Camisa", Code: "CAM-01", Tag: "E-DUP", Active: true},
		{ID: "item-2", Name: "Camisa talla M", Code: "CAM-02", Tag: "E-DUP", Active: false},
	}}
	resolver := inventory.NewResolver(items, f.categories, f.provisioner, zerolog.Nop())

	_, err := resolver.Resolve(context.Background(), inventory.ItemRef{
		Tag: "E-DUP", Code: "CAM-01", Name: "Camisa",
	}, actorBodega)

	var amb *domain.AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "tag", amb.Field)
	assert.Equal(t, "E-DUP", amb.Value)
	require.Len(t, amb.Candidates, 2)
	assert.Equal(t, "item-1", amb.Candidates[0].ID)
	assert.Equal(t, "item-2", amb.Candidates[1].ID)
	assert.False(t, amb.Candidates[1].Active)
	assert.Zero(t, items.codeCalls, "el código no se consulta tras la ambigüedad")
	assert.Zero(t, items.nameCalls, "el nombre no se consulta tras la ambigüedad")
}
