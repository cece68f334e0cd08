package sector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/punchlist-api/internal/application/sector"
)

func TestSuggestSlug(t *testing.T) {
	cases := map[string]string{
		"Facilities":              "facilities",
		"Mantenimiento Eléctrico": "mantenimiento-electrico",
		"  IT / Ops  ":            "it-ops",
		"Señalización_Norte":      "senalizacion_norte",
		"!!!":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sector.SuggestSlug(in), in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, sector.ValidSlug("it-ops_2"))
	assert.False(t, sector.ValidSlug("IT"))
	assert.False(t, sector.ValidSlug(""))
	assert.False(t, sector.ValidSlug("a b"))
}

func TestNormalizeColor(t *testing.T) {
	c, ok := sector.NormalizeColor("#0EA5E9")
	assert.True(t, ok)
	assert.Equal(t, "#0ea5e9", c)

	c, ok = sector.NormalizeColor("")
	assert.True(t, ok)
	assert.Empty(t, c)

	_, ok = sector.NormalizeColor("blue")
	assert.False(t, ok)
}
