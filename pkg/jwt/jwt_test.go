package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	sector := int64(3)
	tok, err := jwt.Generate("secret", 42, "manager", &sector, "punchlist", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	require.NotNil(t, claims.SectorID)
	assert.Equal(t, int64(3), *claims.SectorID)
	assert.Equal(t, "42", claims.Subject)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Generate("secret", 1, "root", nil, "punchlist", 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate("secret", 1, "root", nil, "punchlist", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", 1, "root", nil, "punchlist", 5)
	assert.Error(t, err)
}
