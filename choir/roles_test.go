package choir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/choirscore/score"
)

func TestRolesMatch(t *testing.T) {
	assert := assert.New(t)
	roles := DefaultRoles()

	for name, want := range map[string]Role{
		"Sopraan":       Soprano,
		"  ALTO ":       Alto,
		"Tenor\nBas":    Men,
		"Mezzo-Sopraan": MezzoSoprano,
		"bari-bas":      BariBass,
		"Vrouwen":       Women,
		"Alt/Bas":       LowVoices,
	} {
		got, ok := roles.Match(name)
		assert.True(ok, name)
		assert.Equal(want, got, name)
	}
	_, ok := roles.Match("Piano")
	assert.False(ok)
}

func TestRolesAdd(t *testing.T) {
	assert := assert.New(t)
	roles := DefaultRoles()
	roles.Add(Soprano, "Élèves", " ")
	got, ok := roles.Match("ÉLÈVES")
	assert.True(ok)
	assert.Equal(Soprano, got)
	assert.Contains(roles.Spellings(Soprano), "sopraan")
	assert.Contains(roles.Spellings(Soprano), "élèves")
}

func TestRolesIsUsesLongName(t *testing.T) {
	roles := DefaultRoles()
	p := &score.Part{Name: "Staff 1", LongName: "Bas"}
	assert.True(t, roles.Is(p, Bass))
	assert.False(t, roles.Is(p, Tenor))
	assert.True(t, roles.IsChoirPart(p))
	assert.False(t, roles.IsChoirPart(&score.Part{Name: "Piano", LongName: "Piano"}))
}
