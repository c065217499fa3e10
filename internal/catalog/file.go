package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"agropredict/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// File is the YAML layout of a catalog seed file
type File struct {
	Version int            `yaml:"version"`
	Regions []RegionEntry  `yaml:"regions"`
	Species []SpeciesEntry `yaml:"species"`
}

// RegionEntry is a region with its communes
type RegionEntry struct {
	Code      string         `yaml:"code"`
	Name      string         `yaml:"name"`
	Latitude  *float64       `yaml:"latitude,omitempty"`
	Longitude *float64       `yaml:"longitude,omitempty"`
	Communes  []CommuneEntry `yaml:"communes"`
}

// CommuneEntry is a commune inside a region entry
type CommuneEntry struct {
	Code      string   `yaml:"code"`
	Name      string   `yaml:"name"`
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
}

// SpeciesEntry holds the coefficients of one species
type SpeciesEntry struct {
	Code                 string  `yaml:"code"`
	Name                 string  `yaml:"name"`
	ScientificName       string  `yaml:"scientific_name"`
	BaseYield            float64 `yaml:"base_yield"`
	PricePerTon          float64 `yaml:"price_per_ton"`
	PlantingCostPerHa    float64 `yaml:"planting_cost_per_ha"`
	MaintenanceCostPerHa float64 `yaml:"maintenance_cost_per_ha"`
	WaterPerTon          float64 `yaml:"water_per_ton"`
}

// Load reads a catalog seed file. An empty path returns the built-in catalog.
func Load(path string) (*File, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and checks a catalog document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Check enforces unique codes and non-negative base yields
func (f *File) Check() error {
	regions := make(map[string]bool)
	communes := make(map[string]bool)
	for _, r := range f.Regions {
		if r.Code == "" {
			return fmt.Errorf("region %q has no code", r.Name)
		}
		if regions[r.Code] {
			return fmt.Errorf("duplicate region code %q", r.Code)
		}
		regions[r.Code] = true
		for _, c := range r.Communes {
			if c.Code == "" {
				return fmt.Errorf("commune %q has no code", c.Name)
			}
			if communes[c.Code] {
				return fmt.Errorf("duplicate commune code %q", c.Code)
			}
			communes[c.Code] = true
		}
	}

	species := make(map[string]bool)
	for _, s := range f.Species {
		if s.Code == "" {
			return fmt.Errorf("species %q has no code", s.Name)
		}
		if species[s.Code] {
			return fmt.Errorf("duplicate species code %q", s.Code)
		}
		if s.BaseYield < 0 {
			return fmt.Errorf("species %q has negative base yield", s.Code)
		}
		species[s.Code] = true
	}
	return nil
}

// Models converts the file into unsaved gorm models. Communes are nested in
// their regions so a single Create persists the whole geography.
func (f *File) Models() ([]model.Region, []model.Species) {
	regions := make([]model.Region, 0, len(f.Regions))
	for _, r := range f.Regions {
		region := model.Region{Code: r.Code, Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude}
		for _, c := range r.Communes {
			region.Communes = append(region.Communes, model.Commune{
				Code: c.Code, Name: c.Name, Latitude: c.Latitude, Longitude: c.Longitude,
			})
		}
		regions = append(regions, region)
	}

	species := make([]model.Species, 0, len(f.Species))
	for _, s := range f.Species {
		species = append(species, model.Species{
			Code:                 s.Code,
			Name:                 s.Name,
			ScientificName:       s.ScientificName,
			BaseYield:            s.BaseYield,
			PricePerTon:          s.PricePerTon,
			PlantingCostPerHa:    s.PlantingCostPerHa,
			MaintenanceCostPerHa: s.MaintenanceCostPerHa,
			WaterPerTon:          s.WaterPerTon,
		})
	}
	return regions, species
}

// Snapshot indexes the file directly, numbering species, regions and
// communes from 1 in file order. It serves offline use where no database
// assigns ids.
func (f *File) Snapshot() *Snapshot {
	regions, species := f.Models()
	var communeID uint
	for i := range regions {
		regions[i].ID = uint(i + 1)
		for j := range regions[i].Communes {
			communeID++
			regions[i].Communes[j].ID = communeID
			regions[i].Communes[j].RegionID = regions[i].ID
		}
	}
	for i := range species {
		species[i].ID = uint(i + 1)
	}
	return NewSnapshot(species, regions)
}
