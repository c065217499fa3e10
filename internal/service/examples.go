package service

import (
	"agropredict/internal/catalog"
	"agropredict/internal/estimator"
	"agropredict/internal/model"
)

// ExampleRequests draws n plausible drip-irrigated requests over the catalog
// for demo data. It returns nil when the catalog has no species or communes.
func ExampleRequests(snap *catalog.Snapshot, n int, src estimator.Source) []estimator.Request {
	species := snap.AllSpecies()
	var communes []model.Commune
	for _, r := range snap.Regions() {
		communes = append(communes, r.Communes...)
	}
	if len(species) == 0 || len(communes) == 0 {
		return nil
	}

	requests := make([]estimator.Request, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, estimator.Request{
			SpeciesID:     species[pick(src, len(species))].ID,
			CommuneID:     communes[pick(src, len(communes))].ID,
			Hectares:      round1(1 + 4*src.Float64()),
			TreeAge:       3 + pick(src, 8),
			Density:       200 + pick(src, 201),
			Irrigation:    model.IrrigationDrip,
			Soil:          model.SoilLoam,
			Fertilization: model.FertilizationMixed,
		})
	}
	return requests
}

// pick draws an index in [0, n)
func pick(src estimator.Source, n int) int {
	return int(src.Float64() * float64(n))
}
