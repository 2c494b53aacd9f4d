package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/pkg/jwt"
)

var admin = jwt.Identity{UserID: "u1", OwnerID: "owner-1", Role: "admin"}

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "almacen-ledger", admin, 5*time.Minute)
	require.NoError(t, err)

	id, err := jwt.Parse("secreto", token)

	require.NoError(t, err)
	assert.Equal(t, admin, id)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("secreto", "almacen-ledger", admin, 5*time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)

	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "almacen-ledger", admin, -time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)

	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParse_DentroDeLaTolerancia(t *testing.T) {
	token, err := jwt.Generate("secreto", "almacen-ledger", admin, -10*time.Second)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)

	assert.NoError(t, err)
}

func TestParse_SinPropietario(t *testing.T) {
	token, err := jwt.Generate("secreto", "almacen-ledger", jwt.Identity{UserID: "u1", Role: "admin"}, 5*time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)

	assert.ErrorIs(t, err, jwt.ErrMissingOwner)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := jwt.Claims{OwnerID: "owner-1", RegisteredClaims: gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("secreto"))
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)

	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "x", admin, time.Minute)

	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
