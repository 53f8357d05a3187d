package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-stock/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "u-1", "bodeguero", "inventario-test", 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "bodeguero", role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "u-1", "admin", "inventario-test", 5)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secreto", tok)
	assert.Error(t, err, "firma incorrecta")

	expired, err := pkgjwt.Generate("secreto", "u-1", "admin", "inventario-test", -1)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse("secreto", expired)
	assert.Error(t, err, "token expirado")

	_, _, err = pkgjwt.Parse("", tok)
	assert.Error(t, err, "secret vacío")

	_, err = pkgjwt.Generate("", "u-1", "admin", "x", 5)
	assert.Error(t, err)
}
