package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

func TestDispatch_CreaItemYRecibe(t *testing.T) {
	f := newFixture(t)

	res, err := f.dispatcher.Dispatch(context.Background(), inventory.Request{
		ActorID:  actorBodega,
		Ref:      inventory.ItemRef{Name: "Chaqueta", Code: "CHA-01", CategoryID: categoryRopa},
		Kind:     entity.MovementReceipt,
		Quantity: qty(20),
	})
	require.NoError(t, err)
	assert.True(t, res.ItemCreated)
	assert.Equal(t, int64(0), res.Previous)
	assert.Equal(t, int64(20), res.New)
	assert.Equal(t, int64(20), f.stock(t, res.ItemID))
	assert.Len(t, f.movements(t, res.ItemID), 1)
}

func TestDispatch_ReactivaItemInactivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 0)
	require.NoError(t, f.items.SetActive(ctx, "item-1", false))

	res, err := f.dispatcher.Receipt(ctx, inventory.Request{
		ActorID: actorBodega, Ref: inventory.ItemRef{Code: "CAM-01"}, Quantity: qty(5),
	})
	require.NoError(t, err)
	assert.True(t, res.Activated)

	item, _ := f.items.GetByID(ctx, "item-1")
	assert.True(t, item.Active)
}

func TestDispatch_AjusteConDesactivacion(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "E200-0001", 7)

	res, err := f.dispatcher.Adjust(context.Background(), inventory.Request{
		ActorID:        actorAdmin,
		Ref:            inventory.ItemRef{Tag: "E200-0001"},
		Quantity:       qty(-7),
		Reason:         "baja por daño",
		DeactivateItem: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Deactivated)
	assert.Equal(t, int64(0), res.New)
}

func TestDispatch_ValidacionDeForma(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 5)
	ref := inventory.ItemRef{Code: "CAM-01"}

	cases := map[string]inventory.Request{
		"sin tipo":             {ActorID: actorBodega, Ref: ref, Quantity: qty(1)},
		"tipo desconocido":     {ActorID: actorBodega, Ref: ref, Kind: "MOVE", Quantity: qty(1)},
		"sin cantidad":         {ActorID: actorBodega, Ref: ref, Kind: entity.MovementReceipt},
		"sin referencia":       {ActorID: actorBodega, Kind: entity.MovementReceipt, Quantity: qty(1)},
		"entrada en cero":      {ActorID: actorBodega, Ref: ref, Kind: entity.MovementReceipt, Quantity: qty(0)},
		"salida negativa":      {ActorID: actorBodega, Ref: ref, Kind: entity.MovementIssue, Quantity: qty(-2)},
		"ajuste en cero":       {ActorID: actorBodega, Ref: ref, Kind: entity.MovementAdjustment, Quantity: qty(0), Reason: "x"},
		"ajuste sin motivo":    {ActorID: actorBodega, Ref: ref, Kind: entity.MovementAdjustment, Quantity: qty(3)},
		"mínimo negativo":      {ActorID: actorBodega, Ref: inventory.ItemRef{Name: "x", Creation: inventory.CreationFields{Minimum: -1}}, Kind: entity.MovementReceipt, Quantity: qty(1)},
		"referencia en blanco": {ActorID: actorBodega, Ref: inventory.ItemRef{Name: "   "}, Kind: entity.MovementReceipt, Quantity: qty(1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.dispatcher.Dispatch(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(5), f.stock(t, "item-1"))
}

func TestDispatch_Autorizacion(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 5)
	req := inventory.Request{Ref: inventory.ItemRef{Code: "CAM-01"}, Kind: entity.MovementIssue, Quantity: qty(1)}

	_, err := f.dispatcher.Dispatch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	req.ActorID = actorVendedor
	_, err = f.dispatcher.Dispatch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Un actor sin permiso no debe poder crear ítems vía la resolución.
	req.Ref = inventory.ItemRef{Name: "Nuevo", CategoryID: categoryRopa}
	req.Kind = entity.MovementReceipt
	_, err = f.dispatcher.Dispatch(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	found, _ := f.items.FindByName(context.Background(), "Nuevo", 5)
	assert.Empty(t, found)
}

func TestDispatchFromRequest_MapeaBodyHTTP(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 10)

	out, err := f.dispatcher.DispatchFromRequest(context.Background(), actorBodega, dto.MovementRequest{
		Code:     "CAM-01",
		Type:     " issue ",
		Quantity: qty(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "ISSUE", out.Movement.Type)
	assert.Equal(t, int64(10), out.Balance.Previous)
	assert.Equal(t, int64(6), out.Balance.New)
	assert.Equal(t, int64(10), out.Movement.StockBefore)
	assert.Equal(t, int64(6), out.Movement.StockAfter)
	assert.Equal(t, actorBodega, out.Movement.ActorID)
	assert.False(t, out.ItemCreated)
}

func TestDispatch_FalloDeshaceItemCreado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Issue(ctx, inventory.Request{
		ActorID:  actorBodega,
		Ref:      inventory.ItemRef{Name: "Fantasma", Code: "FAN-01", Tag: "E-77", CategoryID: categoryRopa},
		Quantity: qty(5),
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(0), insufficient.Available)

	found, err := f.items.FindByName(ctx, "Fantasma", 5)
	require.NoError(t, err)
	assert.Empty(t, found, "el ítem creado para el movimiento fallido se elimina")
	byTag, err := f.items.FindByTag(ctx, "E-77", 5)
	require.NoError(t, err)
	assert.Empty(t, byTag)

	// El mismo código vuelve a estar disponible.
	res, err := f.dispatcher.Receipt(ctx, inventory.Request{
		ActorID:  actorBodega,
		Ref:      inventory.ItemRef{Name: "Fantasma", Code: "FAN-01", CategoryID: categoryRopa},
		Quantity: qty(3),
	})
	require.NoError(t, err)
	assert.True(t, res.ItemCreated)
}

func TestDispatch_DesactivacionRechazadaDeshaceItemCreado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Receipt(ctx, inventory.Request{
		ActorID:        actorBodega,
		Ref:            inventory.ItemRef{Name: "Bufanda", CategoryID: categoryRopa},
		Quantity:       qty(2),
		DeactivateItem: true,
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	found, err := f.items.FindByName(ctx, "Bufanda", 5)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDispatch_FalloRestauraTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 2)
	f.seedItem(t, "item-2", "Pantalón", "PAN-01", "E-OLD", 1)

	_, err := f.dispatcher.Issue(ctx, inventory.Request{
		ActorID: actorBodega, Ref: inventory.ItemRef{Code: "CAM-01", Tag: "E-9"}, Quantity: qty(5),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	item, _ := f.items.GetByID(ctx, "item-1")
	assert.Empty(t, item.Tag, "el tag vinculado durante la resolución se retira")

	_, err = f.dispatcher.Adjust(ctx, inventory.Request{
		ActorID: actorBodega, Ref: inventory.ItemRef{Code: "PAN-01", Tag: "E-NEW"}, Quantity: qty(-3), Reason: "conteo",
	})
	require.ErrorIs(t, err, domain.ErrNegativeResult)
	item, _ = f.items.GetByID(ctx, "item-2")
	assert.Equal(t, "E-OLD", item.Tag)

	assert.Equal(t, int64(2), f.stock(t, "item-1"))
	assert.Equal(t, int64(1), f.stock(t, "item-2"))
	assert.Empty(t, f.movements(t, "item-1"))
}

func TestDispatch_ExitoConservaTagVinculado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedItem(t, "item-1", "Camisa", "CAM-01", "", 8)

	res, err := f.dispatcher.Issue(ctx, inventory.Request{
		ActorID: actorBodega, Ref: inventory.ItemRef{Code: "CAM-01", Tag: "E-9"}, Quantity: qty(5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.New)
	item, _ := f.items.GetByID(ctx, "item-1")
	assert.Equal(t, "E-9", item.Tag)
}

func TestDispatch_FalloDeEstadoConservaItemCreado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := &failingSetActive{ItemRepository: f.items}
	engine := inventory.NewEngine(inventory.EngineDeps{
		Items: items, Balances: f.balances, Ledger: f.ledger, Gate: f.gate, Logger: zerolog.Nop(),
	})
	dispatcher := inventory.NewDispatcher(f.gate, f.resolver, engine)

	_, err := dispatcher.Adjust(ctx, inventory.Request{
		ActorID:  actorBodega,
		Ref:      inventory.ItemRef{Name: "Gorra", CategoryID: categoryRopa},
		Quantity: qty(4),
		Reason:   "inventario inicial",
	})
	require.NoError(t, err)

	_, err = dispatcher.Adjust(ctx, inventory.Request{
		ActorID:        actorBodega,
		Ref:            inventory.ItemRef{Name: "Gorra", Tag: "E-GOR"},
		Quantity:       qty(-4),
		Reason:         "baja",
		DeactivateItem: true,
	})
	var applied *inventory.AppliedError
	require.ErrorAs(t, err, &applied)

	found, err := f.items.FindByName(ctx, "Gorra", 5)
	require.NoError(t, err)
	require.Len(t, found, 1, "el movimiento quedó registrado; el ítem se conserva")
	assert.Equal(t, "E-GOR", found[0].Tag)
	assert.Equal(t, int64(0), f.stock(t, found[0].ID))
}
