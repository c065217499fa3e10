package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agropredict/internal/model"
)

type stubLoader struct {
	species []model.Species
	regions []model.Region
	err     error
}

func (l *stubLoader) ListSpecies(ctx context.Context) ([]model.Species, error) {
	return l.species, l.err
}

func (l *stubLoader) ListRegions(ctx context.Context) ([]model.Region, error) {
	return l.regions, nil
}

func sampleRegions() []model.Region {
	return []model.Region{
		{ID: 1, Code: "RM", Name: "Región Metropolitana", Communes: []model.Commune{
			{ID: 10, RegionID: 1, Code: "ST", Name: "Santiago"},
			{ID: 11, RegionID: 1, Code: "BU", Name: "Buin"},
		}},
		{ID: 2, Code: "MA", Name: "Región del Maule", Communes: []model.Commune{
			{ID: 20, RegionID: 2, Code: "TC", Name: "Talca"},
		}},
	}
}

func TestLoadBuiltInCatalog(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1, f.Version)
	assert.Len(t, f.Species, 10)
	assert.Len(t, f.Regions, 5)

	regions, species := f.Models()
	codes := make(map[string]model.Species)
	for _, sp := range species {
		codes[sp.Code] = sp
	}
	assert.Equal(t, 12.5, codes["palto"].BaseYield)
	assert.Equal(t, 45.0, codes["manzano"].BaseYield)
	assert.False(t, codes["olivo"].HasEconomicData())
	assert.Equal(t, "Santiago", regions[0].Communes[0].Name)
}

func TestParseRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate region", "regions:\n  - {code: RM, name: A}\n  - {code: RM, name: B}\n"},
		{"duplicate commune", "regions:\n  - code: RM\n    communes: [{code: ST}, {code: ST}]\n"},
		{"duplicate species", "species:\n  - {code: palto, base_yield: 1}\n  - {code: palto, base_yield: 2}\n"},
		{"negative yield", "species:\n  - {code: palto, base_yield: -1}\n"},
		{"missing code", "species:\n  - {name: Avocado, base_yield: 1}\n"},
		{"bad yaml", "species: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestSnapshotLookups(t *testing.T) {
	snap := NewSnapshot([]model.Species{{ID: 3, Code: "palto", BaseYield: 12.5}}, sampleRegions())

	sp, ok := snap.Species(3)
	require.True(t, ok)
	assert.Equal(t, "palto", sp.Code)

	_, ok = snap.Species(99)
	assert.False(t, ok)

	sp, ok = snap.SpeciesByCode("palto")
	require.True(t, ok)
	assert.Equal(t, uint(3), sp.ID)

	c, ok := snap.Commune(20)
	require.True(t, ok)
	assert.Equal(t, "MA", c.Region.Code)

	c, ok = snap.CommuneByCode("ST")
	require.True(t, ok)
	assert.Equal(t, uint(1), c.Region.ID)

	c, ok = snap.CommuneByName("Santiago")
	require.True(t, ok)
	assert.Equal(t, "ST", c.Code)

	r, ok := snap.Region(1)
	require.True(t, ok)
	assert.Equal(t, []string{"Buin", "Santiago"}, []string{r.Communes[0].Name, r.Communes[1].Name})
	assert.False(t, snap.Empty())
}

func TestProviderReload(t *testing.T) {
	loader := &stubLoader{species: []model.Species{{ID: 1, Code: "cerezo"}}, regions: sampleRegions()}
	p := NewProvider(loader)
	assert.True(t, p.Snapshot().Empty())

	require.NoError(t, p.Reload(context.Background()))
	before := p.Snapshot()
	_, ok := before.SpeciesByCode("cerezo")
	assert.True(t, ok)

	loader.species = []model.Species{{ID: 2, Code: "nogal"}}
	require.NoError(t, p.Reload(context.Background()))

	_, ok = before.SpeciesByCode("cerezo")
	assert.True(t, ok, "earlier snapshots are never mutated")
	_, ok = p.Snapshot().SpeciesByCode("nogal")
	assert.True(t, ok)

	loader.err = errors.New("db down")
	assert.Error(t, p.Reload(context.Background()))
	_, ok = p.Snapshot().SpeciesByCode("nogal")
	assert.True(t, ok)
}

func TestFileSnapshotNumbersInFileOrder(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	snap := f.Snapshot()

	palto, ok := snap.SpeciesByCode("palto")
	require.True(t, ok)
	assert.Equal(t, uint(1), palto.ID)

	talca, ok := snap.CommuneByCode("TC")
	require.True(t, ok)
	assert.Equal(t, uint(6), talca.ID)
	assert.Equal(t, uint(4), talca.RegionID)
	assert.Equal(t, "MA", talca.Region.Code)

	santiago, ok := snap.CommuneByName("Santiago")
	require.True(t, ok)
	assert.Equal(t, uint(1), santiago.ID)
}
