package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
)

func TestSaga_DeshaceEnOrdenInverso(t *testing.T) {
	saga := inventory.NewSaga(zerolog.Nop())
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		saga.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	require.Equal(t, 3, saga.Len())

	require.NoError(t, saga.Unwind(context.Background()))
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Zero(t, saga.Len())
}

func TestSaga_UnFalloNoDetieneLasDemas(t *testing.T) {
	saga := inventory.NewSaga(zerolog.Nop())
	boom := errors.New("boom")
	var ran []string
	saga.Add("primero", func(context.Context) error { ran = append(ran, "primero"); return nil })
	saga.Add("segundo", func(context.Context) error { ran = append(ran, "segundo"); return boom })

	err := saga.Unwind(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "segundo")
	assert.Equal(t, []string{"segundo", "primero"}, ran)
}

func TestSaga_IgnoraCancelacionDelLlamador(t *testing.T) {
	saga := inventory.NewSaga(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	saga.Add("paso", func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	})
	require.NoError(t, saga.Unwind(ctx))
	assert.NoError(t, sawErr)
}
