// Package catalog holds the reference data estimates are computed against:
// species coefficients and the region/commune geography.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"agropredict/internal/model"
)

// Snapshot is an immutable view of the catalog. It is safe for concurrent
// reads and is replaced, never mutated, on reload.
type Snapshot struct {
	species   []model.Species
	regions   []model.Region
	byID      map[uint]int
	byCode    map[string]int
	communes  map[uint]model.Commune
	regionIdx map[uint]int
}

// NewSnapshot indexes species and regions. Regions are expected to carry
// their communes.
func NewSnapshot(species []model.Species, regions []model.Region) *Snapshot {
	s := &Snapshot{
		species:   append([]model.Species(nil), species...),
		regions:   make([]model.Region, len(regions)),
		byID:      make(map[uint]int, len(species)),
		byCode:    make(map[string]int, len(species)),
		communes:  make(map[uint]model.Commune),
		regionIdx: make(map[uint]int, len(regions)),
	}
	for i, sp := range s.species {
		s.byID[sp.ID] = i
		s.byCode[sp.Code] = i
	}
	for i, r := range regions {
		r.Communes = append([]model.Commune(nil), r.Communes...)
		sort.SliceStable(r.Communes, func(a, b int) bool { return r.Communes[a].Name < r.Communes[b].Name })
		s.regions[i] = r
		s.regionIdx[r.ID] = i
		for _, c := range r.Communes {
			c.Region = model.Region{ID: r.ID, Name: r.Name, Code: r.Code, Latitude: r.Latitude, Longitude: r.Longitude}
			s.communes[c.ID] = c
		}
	}
	return s
}

// Species returns the species with id
func (s *Snapshot) Species(id uint) (model.Species, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Species{}, false
	}
	return s.species[i], true
}

// SpeciesByCode returns the species with code
func (s *Snapshot) SpeciesByCode(code string) (model.Species, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return model.Species{}, false
	}
	return s.species[i], true
}

// AllSpecies returns every species in catalog order
func (s *Snapshot) AllSpecies() []model.Species {
	return append([]model.Species(nil), s.species...)
}

// Commune returns the commune with id, its Region populated
func (s *Snapshot) Commune(id uint) (model.Commune, bool) {
	c, ok := s.communes[id]
	return c, ok
}

// CommuneByCode looks a commune up by its unique code
func (s *Snapshot) CommuneByCode(code string) (model.Commune, bool) {
	for _, c := range s.communes {
		if c.Code == code {
			return c, true
		}
	}
	return model.Commune{}, false
}

// CommuneByName looks a commune up by display name
func (s *Snapshot) CommuneByName(name string) (model.Commune, bool) {
	for _, r := range s.regions {
		for _, c := range r.Communes {
			if c.Name == name {
				return s.communes[c.ID], true
			}
		}
	}
	return model.Commune{}, false
}

// Region returns the region with id, including its communes
func (s *Snapshot) Region(id uint) (model.Region, bool) {
	i, ok := s.regionIdx[id]
	if !ok {
		return model.Region{}, false
	}
	return s.regions[i], true
}

// Regions returns every region in catalog order
func (s *Snapshot) Regions() []model.Region {
	return append([]model.Region(nil), s.regions...)
}

// Empty reports whether the snapshot holds no species
func (s *Snapshot) Empty() bool {
	return len(s.species) == 0
}

// Loader reads the persisted catalog
type Loader interface {
	ListSpecies(ctx context.Context) ([]model.Species, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
}

// Provider serves the current snapshot and swaps it atomically on reload
type Provider struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
}

// NewProvider creates a provider holding an empty snapshot until Reload
func NewProvider(loader Loader) *Provider {
	p := &Provider{loader: loader}
	p.current.Store(NewSnapshot(nil, nil))
	return p
}

// Reload reads the catalog from the loader and publishes a new snapshot
func (p *Provider) Reload(ctx context.Context) error {
	species, err := p.loader.ListSpecies(ctx)
	if err != nil {
		return fmt.Errorf("load species: %w", err)
	}
	regions, err := p.loader.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	p.current.Store(NewSnapshot(species, regions))
	return nil
}

// Snapshot returns the current catalog
func (p *Provider) Snapshot() *Snapshot {
	return p.current.Load()
}
